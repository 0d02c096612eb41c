package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tradecharts/internal/config"
	"tradecharts/internal/contribution"
	"tradecharts/internal/dataset"
	"tradecharts/internal/infrastructure"
	"tradecharts/internal/services"
)

// options collects the command line flags shared by every report command.
type options struct {
	input        string
	sheet        string
	year         int
	previousYear int
	week         int
	top          int
	out          string
	format       string
	dpi          int
	export       []string
	logLevel     string
	trades       []string
	metric       string
	mode         string
}

// app is the state set up before a report command runs.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	telemetry *infrastructure.OTelProviders
	service   *services.ReportService
	runID     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	state := &app{}

	root := &cobra.Command{
		Use:           config.AppName,
		Short:         "Year-over-year cumulative contribution charts from weekly trade extracts",
		Long:          "tradecharts ranks commodities, clients and trades by weighted contribution and draws the current and previous year cumulative curves side by side.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.input, "input", "i", "", "trade extract (.csv or .xlsx)")
	flags.StringVar(&opts.sheet, "sheet", "", "worksheet of an .xlsx input (default first sheet)")
	flags.IntVar(&opts.year, "year", 0, "current year")
	flags.IntVar(&opts.previousYear, "previous-year", 0, "compared year (default year-1)")
	flags.IntVar(&opts.week, "week", 0, "last week included, 1-53")
	flags.IntVar(&opts.top, "top", 0, "number of ranked entities (default per report)")
	flags.StringVarP(&opts.out, "out", "o", "", "output directory")
	flags.StringVar(&opts.format, "format", "", "figure format: png, jpg, svg or pdf")
	flags.IntVar(&opts.dpi, "dpi", 0, "raster resolution")
	flags.StringSliceVar(&opts.export, "export", nil, "also export the plotted data: csv, xlsx")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newReportCmd(services.KindCommodities, "Top commodities by weighted contribution", opts, state),
		newReportCmd(services.KindClients, "Top clients by weighted contribution", opts, state),
		newTradesCmd(opts, state),
		newAllCmd(opts, state),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration, applies flag overrides and starts logging and
// telemetry.
func (a *app) setup(cmd *cobra.Command, opts *options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := opts.apply(cmd, cfg); err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	telemetry, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFromTelemetry(cfg.Telemetry), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	ctx, runID := infrastructure.NewRunContext(cmd.Context())
	cmd.SetContext(ctx)

	a.cfg = cfg
	a.logger = infrastructure.WithComponent(logger, "cli").With(slog.String("run_id", runID))
	a.telemetry = telemetry
	a.service = services.NewReportService(cfg, telemetry, logger)
	a.runID = runID
	return nil
}

// teardown dumps metrics when a textfile is configured and stops telemetry.
func (a *app) teardown(ctx context.Context) error {
	if a.telemetry == nil {
		return nil
	}
	var err error
	if path := a.cfg.Telemetry.MetricsFile; path != "" {
		err = a.telemetry.WriteMetricsTextfile(path)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if serr := a.telemetry.Shutdown(shutdownCtx); serr != nil && err == nil {
		err = serr
	}
	return err
}

// apply overrides configuration values with explicitly set flags.
func (o *options) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input.Path = o.input
	}
	if flags.Changed("sheet") {
		cfg.Input.Sheet = o.sheet
	}
	if flags.Changed("out") {
		cfg.Output.Dir = o.out
	}
	if flags.Changed("format") {
		cfg.Output.Format = o.format
	}
	if flags.Changed("dpi") {
		cfg.Output.DPI = o.dpi
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("export") {
		cfg.Output.ExportCSV = false
		cfg.Output.ExportXLSX = false
		for _, e := range o.export {
			switch strings.ToLower(strings.TrimSpace(e)) {
			case "csv":
				cfg.Output.ExportCSV = true
			case "xlsx":
				cfg.Output.ExportXLSX = true
			default:
				return fmt.Errorf("unsupported export %q, want csv or xlsx", e)
			}
		}
	}
	if flags.Changed("trades") {
		cfg.Report.Trades = o.trades
	}
	if flags.Changed("metric") {
		cfg.Report.TradeMetric = o.metric
	}
	if flags.Changed("mode") {
		cfg.Report.TradeMode = o.mode
	}
	return cfg.Validate()
}

// params builds the comparison parameters from the flags.
func (o *options) params() (contribution.Params, error) {
	if o.year == 0 {
		return contribution.Params{}, fmt.Errorf("--year is required")
	}
	if o.week == 0 {
		return contribution.Params{}, fmt.Errorf("--week is required")
	}
	previous := o.previousYear
	if previous == 0 {
		previous = o.year - 1
	}
	p := contribution.Params{
		CurrentYear:  o.year,
		PreviousYear: previous,
		CurrentWeek:  o.week,
		TopN:         o.top,
	}
	return p, p.Validate()
}

// execute runs one report command end to end.
func (a *app) execute(cmd *cobra.Command, opts *options, generate func(context.Context, *dataset.Table, contribution.Params) ([]*services.ReportResult, error)) (err error) {
	params, err := opts.params()
	if err != nil {
		return err
	}
	if err := a.setup(cmd, opts); err != nil {
		return err
	}
	ctx := cmd.Context()
	defer func() {
		if terr := a.teardown(ctx); terr != nil && err == nil {
			err = terr
		}
	}()

	a.logger.InfoContext(ctx, "run started",
		slog.String("command", cmd.Name()),
		slog.String("params", params.String()))

	table, err := a.service.LoadTable(ctx)
	if err != nil {
		a.logger.ErrorContext(ctx, "failed to load input", slog.String("error", err.Error()))
		return err
	}

	results, err := generate(ctx, table, params)
	if err != nil {
		a.logger.ErrorContext(ctx, "report failed", slog.String("error", err.Error()))
		return err
	}

	printResults(cmd.OutOrStdout(), results)
	return nil
}
