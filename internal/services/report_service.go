package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"tradecharts/internal/chart"
	"tradecharts/internal/config"
	"tradecharts/internal/contribution"
	"tradecharts/internal/dataset"
	apperrors "tradecharts/internal/errors"
	"tradecharts/internal/exporter"
	"tradecharts/internal/files"
	"tradecharts/internal/infrastructure"
	"tradecharts/internal/validation"
)

// Report kinds
const (
	KindCommodities = "commodities"
	KindClients     = "clients"
	KindTrades      = "trades"
)

// ReportService produces comparison figures and their data exports
type ReportService struct {
	cfg       *config.Config
	telemetry *infrastructure.OTelProviders
	logger    *slog.Logger
	style     chart.Style
	series    *exporter.SeriesExporter
	workbook  *exporter.WorkbookExporter
	discovery *files.Discovery
	validator *validation.FileValidator
}

// NewReportService creates a report service. telemetry may be nil.
func NewReportService(cfg *config.Config, telemetry *infrastructure.OTelProviders, logger *slog.Logger) *ReportService {
	if telemetry == nil {
		telemetry = &infrastructure.OTelProviders{}
	}
	logger = infrastructure.WithComponent(logger, "report_service")
	return &ReportService{
		cfg:       cfg,
		telemetry: telemetry,
		logger:    logger,
		style:     chart.DefaultStyle(),
		series:    exporter.NewSeriesExporter(cfg.Output.Dir),
		workbook:  exporter.NewWorkbookExporter(cfg.Output.Dir),
		discovery: files.NewDiscovery(""),
		validator: validation.NewFileValidator(logger),
	}
}

// ReportResult describes one generated report
type ReportResult struct {
	Kind         string
	Title        string
	ChartPath    string
	SeriesPath   string
	RankingPath  string
	WorkbookPath string
	Panels       int
	Ahead        int
	Behind       int
	RowsScanned  int
	Duration     time.Duration
	Comparison   *contribution.Comparison
}

// LoadTable reads the configured input. A directory input selects its newest
// extract.
func (s *ReportService) LoadTable(ctx context.Context) (*dataset.Table, error) {
	if s.cfg.Input.Path == "" {
		return nil, apperrors.NewConfigError("input file is required", ErrNoInput)
	}

	ctx, span := s.telemetry.StartSpan(ctx, "report.load",
		attribute.String("input.path", s.cfg.Input.Path))
	defer span.End()

	path, err := s.discovery.ResolveInput(s.cfg.Input.Path)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	if err := s.validator.ValidateInputFile(path); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	table, err := dataset.Load(ctx, path, dataset.LoadOptions{
		Sheet:    s.cfg.Input.Sheet,
		Encoding: s.cfg.Input.Encoding,
		Logger:   s.logger,
	})
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "input loaded",
		slog.String("path", path),
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(table.Columns())))
	return table, nil
}

// Commodities renders the top commodities comparison
func (s *ReportService) Commodities(ctx context.Context, table *dataset.Table, params contribution.Params) (*ReportResult, error) {
	if params.TopN == 0 {
		params.TopN = s.cfg.Report.CommodityCount
	}
	return s.run(ctx, KindCommodities, func(ctx context.Context) (*contribution.Comparison, error) {
		return contribution.Compare(ctx, table, contribution.Commodities(), params)
	})
}

// Clients renders the top clients comparison
func (s *ReportService) Clients(ctx context.Context, table *dataset.Table, params contribution.Params) (*ReportResult, error) {
	if params.TopN == 0 {
		params.TopN = s.cfg.Report.ClientCount
	}
	return s.run(ctx, KindClients, func(ctx context.Context) (*contribution.Comparison, error) {
		return contribution.Compare(ctx, table, contribution.Clients(), params)
	})
}

// Trades renders the per-trade comparison. Empty trades, metric and mode fall
// back to the configured ones.
func (s *ReportService) Trades(ctx context.Context, table *dataset.Table, params contribution.TradeParams) (*ReportResult, error) {
	if len(params.Trades) == 0 {
		params.Trades = s.cfg.Report.Trades
	}
	if params.Metric == "" {
		params.Metric = contribution.Metric(s.cfg.Report.TradeMetric)
	}
	if params.Mode == "" {
		params.Mode = contribution.Mode(s.cfg.Report.TradeMode)
	}
	return s.run(ctx, KindTrades, func(ctx context.Context) (*contribution.Comparison, error) {
		return contribution.CompareTrades(ctx, table, params)
	})
}

// Generate dispatches on the report kind. TopN sizes the commodities and
// clients rankings; for trades it limits the default trade selection.
func (s *ReportService) Generate(ctx context.Context, kind string, table *dataset.Table, params contribution.Params) (*ReportResult, error) {
	switch kind {
	case KindCommodities:
		return s.Commodities(ctx, table, params)
	case KindClients:
		return s.Clients(ctx, table, params)
	case KindTrades:
		return s.Trades(ctx, table, contribution.TradeParams{Params: params})
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownReport, kind)
}

// GenerateAll renders the commodities, clients and trades reports
// concurrently on one table. TopN applies to commodities and clients only;
// trades keep their configured selection. Results are returned in that
// order; the first failure cancels the others.
func (s *ReportService) GenerateAll(ctx context.Context, table *dataset.Table, params contribution.Params) ([]*ReportResult, error) {
	kinds := []string{KindCommodities, KindClients, KindTrades}
	results := make([]*ReportResult, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		p := params
		if kind == KindTrades {
			p.TopN = 0
		}
		g.Go(func() error {
			res, err := s.Generate(gctx, kind, table, p)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// FileBase is the output base name of a report, e.g. commodities_2024_w30.
func FileBase(kind string, params contribution.Params) string {
	return fmt.Sprintf("%s_%d_w%d", kind, params.CurrentYear, params.CurrentWeek)
}

func (s *ReportService) run(ctx context.Context, kind string, build func(context.Context) (*contribution.Comparison, error)) (result *ReportResult, err error) {
	start := time.Now()
	ctx, span := s.telemetry.StartSpan(ctx, "report."+kind, attribute.String("report.kind", kind))
	defer span.End()

	logger := infrastructure.WithComponent(infrastructure.LoggerWithContext(ctx), "report_service").
		With(slog.String("report", kind))

	var panels, rows int
	defer func() {
		infrastructure.RecordReport(ctx, s.telemetry.Metrics, kind, panels, rows, time.Since(start), err)
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
	}()

	cmp, err := build(ctx)
	if err != nil {
		return nil, err
	}
	rows = cmp.RowsScanned

	fig, err := chart.Render(ctx, cmp, s.style)
	if err != nil {
		return nil, err
	}
	panels = len(fig.Panels)

	if err := s.validator.ValidateOutputDirectory(s.cfg.Output.Dir); err != nil {
		return nil, err
	}

	name := kind
	if cmp.Mode == contribution.ModeWeekly {
		name += "_weekly"
	}
	base := FileBase(name, cmp.Params)
	result = &ReportResult{
		Kind:        kind,
		Title:       cmp.Title,
		ChartPath:   filepath.Join(s.cfg.Output.Dir, base+"."+s.cfg.Output.Format),
		Panels:      panels,
		RowsScanned: rows,
		Comparison:  cmp,
	}
	result.Ahead, result.Behind = cmp.Growth()

	if err := fig.Save(result.ChartPath, s.cfg.Output.DPI); err != nil {
		return nil, err
	}

	if s.cfg.Output.ExportCSV {
		if err := s.series.ExportSeries(cmp, base+"_series.csv"); err != nil {
			return nil, err
		}
		if err := s.series.ExportRanking(cmp, base+"_ranking.csv"); err != nil {
			return nil, err
		}
		result.SeriesPath = filepath.Join(s.cfg.Output.Dir, base+"_series.csv")
		result.RankingPath = filepath.Join(s.cfg.Output.Dir, base+"_ranking.csv")
	}
	if s.cfg.Output.ExportXLSX {
		if err := s.workbook.Export(cmp, base+".xlsx"); err != nil {
			return nil, err
		}
		result.WorkbookPath = filepath.Join(s.cfg.Output.Dir, base+".xlsx")
	}

	result.Duration = time.Since(start)
	logger.InfoContext(ctx, "report generated",
		slog.String("path", result.ChartPath),
		slog.Int("panels", panels),
		slog.Int("ahead", result.Ahead),
		slog.Int("behind", result.Behind),
		slog.Duration("duration", result.Duration))
	return result, nil
}
