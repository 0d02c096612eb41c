package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecharts/internal/config"
	"tradecharts/internal/contribution"
	"tradecharts/internal/dataset"
	apperrors "tradecharts/internal/errors"
	"tradecharts/internal/infrastructure"
	"tradecharts/internal/shared/testutil"
)

var sampleParams = contribution.Params{CurrentYear: 2024, PreviousYear: 2023, CurrentWeek: 6}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestService(t *testing.T, telemetry *infrastructure.OTelProviders) (*ReportService, *config.Config) {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Input.Path = testutil.WriteTradesCSV(t, dir, "extract.csv", testutil.SampleTrades(6))
	cfg.Output.Dir = filepath.Join(dir, "out")
	cfg.Output.Format = "svg"

	return NewReportService(cfg, telemetry, quietLogger()), cfg
}

func loadSample(t *testing.T, svc *ReportService) *dataset.Table {
	t.Helper()
	table, err := svc.LoadTable(context.Background())
	require.NoError(t, err)
	return table
}

func TestReportService_LoadTable(t *testing.T) {
	svc, _ := newTestService(t, nil)
	table := loadSample(t, svc)

	// 14 commodities over 6 weeks and 2 years plus one out-of-scope row per year
	assert.Equal(t, 14*6*2+2, table.Len())

	svc.cfg.Input.Path = ""
	_, err := svc.LoadTable(context.Background())
	assert.ErrorIs(t, err, ErrNoInput)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))

	svc.cfg.Input.Path = filepath.Join(t.TempDir(), "missing.csv")
	_, err = svc.LoadTable(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestReportService_LoadTableFromDirectory(t *testing.T) {
	svc, _ := newTestService(t, nil)
	svc.cfg.Input.Path = filepath.Dir(svc.cfg.Input.Path)

	table := loadSample(t, svc)
	assert.Equal(t, 14*6*2+2, table.Len())
}

func TestReportService_Commodities(t *testing.T) {
	svc, cfg := newTestService(t, nil)
	table := loadSample(t, svc)

	res, err := svc.Commodities(context.Background(), table, sampleParams)
	require.NoError(t, err)

	assert.Equal(t, KindCommodities, res.Kind)
	assert.Equal(t, 12, res.Panels)
	assert.Equal(t, 12, res.Ahead)
	assert.Zero(t, res.Behind)
	assert.Equal(t, filepath.Join(cfg.Output.Dir, "commodities_2024_w6.svg"), res.ChartPath)
	assert.FileExists(t, res.ChartPath)
	assert.Empty(t, res.SeriesPath)
	assert.Empty(t, res.WorkbookPath)

	assert.Equal(t, "#1 40 RUBBER\nCumulative Weighted Contribution", res.Comparison.Panels[0].Title)
}

func TestReportService_TopOverride(t *testing.T) {
	svc, _ := newTestService(t, nil)
	table := loadSample(t, svc)

	params := sampleParams
	params.TopN = 3
	res, err := svc.Commodities(context.Background(), table, params)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Panels)
}

func TestReportService_ClientsWithExports(t *testing.T) {
	svc, cfg := newTestService(t, nil)
	cfg.Output.ExportCSV = true
	cfg.Output.ExportXLSX = true
	table := loadSample(t, svc)

	res, err := svc.Clients(context.Background(), table, sampleParams)
	require.NoError(t, err)

	assert.Equal(t, len(testutil.SampleClients), res.Panels)
	for _, path := range []string{res.ChartPath, res.SeriesPath, res.RankingPath, res.WorkbookPath} {
		assert.FileExists(t, path)
	}
	assert.Equal(t, filepath.Join(cfg.Output.Dir, "clients_2024_w6_series.csv"), res.SeriesPath)
	assert.Equal(t, filepath.Join(cfg.Output.Dir, "clients_2024_w6.xlsx"), res.WorkbookPath)

	for _, p := range res.Comparison.Panels {
		assert.LessOrEqual(t, len([]rune(p.Entity.Label)), 25)
	}
}

func TestReportService_TradesDefaults(t *testing.T) {
	svc, _ := newTestService(t, nil)
	table := loadSample(t, svc)

	res, err := svc.Trades(context.Background(), table, contribution.TradeParams{Params: sampleParams})
	require.NoError(t, err)

	var keys []string
	for _, p := range res.Comparison.Panels {
		keys = append(keys, p.Entity.Key)
	}
	assert.Equal(t, []string{"EUROPE", "ASIA", "AMERICAS", contribution.TotalPanel}, keys)
	assert.Equal(t, "Cumulative Weighted Contribution (TEU × Contribution) by Trade: 2024 vs 2023", res.Title)
}

func TestReportService_TradesConfigured(t *testing.T) {
	svc, cfg := newTestService(t, nil)
	cfg.Report.Trades = []string{"ASIA"}
	cfg.Report.TradeMetric = "TEU"
	table := loadSample(t, svc)

	res, err := svc.Trades(context.Background(), table, contribution.TradeParams{Params: sampleParams})
	require.NoError(t, err)

	require.Len(t, res.Comparison.Panels, 2)
	assert.Equal(t, "ASIA - Cumulative TEU", res.Comparison.Panels[0].Title)
}

func TestReportService_GenerateAll(t *testing.T) {
	telemetry, err := infrastructure.InitializeOTel(nil, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = telemetry.Shutdown(context.Background()) })

	svc, cfg := newTestService(t, telemetry)
	table := loadSample(t, svc)

	results, err := svc.GenerateAll(context.Background(), table, sampleParams)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, KindCommodities, results[0].Kind)
	assert.Equal(t, KindClients, results[1].Kind)
	assert.Equal(t, KindTrades, results[2].Kind)

	entries, err := os.ReadDir(cfg.Output.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	path := filepath.Join(t.TempDir(), "tradecharts.prom")
	require.NoError(t, telemetry.WriteMetricsTextfile(path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `report_kind="clients"`)
	assert.Contains(t, string(content), "report_panels_total")
}

func TestReportService_GenerateAllTopN(t *testing.T) {
	svc, _ := newTestService(t, nil)
	table := loadSample(t, svc)

	params := sampleParams
	params.TopN = 2
	results, err := svc.GenerateAll(context.Background(), table, params)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, 2, results[0].Panels)
	assert.Equal(t, 2, results[1].Panels)
	// trades keep the default selection plus TOTAL
	assert.Equal(t, 4, results[2].Panels)
}

func TestReportService_TradesWeekly(t *testing.T) {
	svc, cfg := newTestService(t, nil)
	cfg.Report.TradeMetric = "TONS"
	cfg.Report.TradeMode = "weekly"
	cfg.Output.ExportCSV = true
	table := loadSample(t, svc)

	res, err := svc.Trades(context.Background(), table, contribution.TradeParams{Params: sampleParams})
	require.NoError(t, err)

	assert.Equal(t, contribution.ModeWeekly, res.Comparison.Mode)
	assert.Equal(t, "Weekly TONS by Trade: 2024 vs 2023", res.Title)
	assert.Equal(t, filepath.Join(cfg.Output.Dir, "trades_weekly_2024_w6.svg"), res.ChartPath)
	assert.FileExists(t, res.ChartPath)
	assert.FileExists(t, res.SeriesPath)

	res, err = svc.Trades(context.Background(), table, contribution.TradeParams{
		Params: sampleParams,
		Metric: contribution.MetricContribution,
	})
	require.NoError(t, err)
	assert.Equal(t, "Weekly Average Contribution by Trade: 2024 vs 2023", res.Title)
}

func TestReportService_Errors(t *testing.T) {
	svc, _ := newTestService(t, nil)
	table := loadSample(t, svc)
	ctx := context.Background()

	_, err := svc.Generate(ctx, "ports", table, sampleParams)
	assert.ErrorIs(t, err, ErrUnknownReport)

	bad := sampleParams
	bad.PreviousYear = bad.CurrentYear
	_, err = svc.Commodities(ctx, table, bad)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	empty := sampleParams
	empty.CurrentYear = 2030
	_, err = svc.GenerateAll(ctx, table, empty)
	assert.ErrorIs(t, err, apperrors.ErrEmptySelection)
}

func TestFileBase(t *testing.T) {
	assert.Equal(t, "trades_2024_w6", FileBase(KindTrades, sampleParams))
}
