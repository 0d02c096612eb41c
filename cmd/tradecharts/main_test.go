package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecharts/internal/config"
	"tradecharts/internal/shared/testutil"
)

func setupCLI(t *testing.T) (input, out string) {
	t.Helper()
	t.Setenv(config.ConfigFileEnv, "")
	t.Setenv("TRADECHARTS_LOGGING_LEVEL", "error")

	dir := t.TempDir()
	return testutil.WriteTradesCSV(t, dir, "extract.csv", testutil.SampleTrades(6)), filepath.Join(dir, "out")
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersionCommand(t *testing.T) {
	code, stdout, _ := runCLI("version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, config.AppName+" "+config.AppVersion)
}

func TestReportCommands(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		files []string
	}{
		{
			name:  "commodities",
			args:  []string{"commodities", "--top", "4"},
			files: []string{"commodities_2024_w6.svg"},
		},
		{
			name:  "clients with csv export",
			args:  []string{"clients", "--export", "csv"},
			files: []string{"clients_2024_w6.svg", "clients_2024_w6_series.csv", "clients_2024_w6_ranking.csv"},
		},
		{
			name:  "trades with metric",
			args:  []string{"trades", "--trades", "ASIA,EUROPE", "--metric", "tons"},
			files: []string{"trades_2024_w6.svg"},
		},
		{
			name:  "weekly trades",
			args:  []string{"trades", "--mode", "weekly", "--metric", "contribution", "--export", "csv"},
			files: []string{"trades_weekly_2024_w6.svg", "trades_weekly_2024_w6_series.csv"},
		},
		{
			name:  "all",
			args:  []string{"all", "--export", "xlsx"},
			files: []string{"commodities_2024_w6.svg", "clients_2024_w6.svg", "trades_2024_w6.svg", "trades_2024_w6.xlsx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, out := setupCLI(t)
			args := append(tt.args, "--input", input, "--out", out, "--year", "2024", "--week", "6", "--format", "svg")

			code, stdout, stderr := runCLI(args...)
			require.Equal(t, 0, code, stderr)

			for _, f := range tt.files {
				assert.FileExists(t, filepath.Join(out, f))
				assert.Contains(t, stdout, f)
			}
		})
	}
}

func TestReportCommandErrors(t *testing.T) {
	input, out := setupCLI(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing year", []string{"commodities", "--week", "6"}, "--year is required"},
		{"missing week", []string{"commodities", "--year", "2024"}, "--week is required"},
		{"bad week", []string{"clients", "--year", "2024", "--week", "60"}, "invalid comparison parameters"},
		{"bad export", []string{"clients", "--year", "2024", "--week", "6", "--export", "json"}, "unsupported export"},
		{"bad format", []string{"clients", "--year", "2024", "--week", "6", "--format", "gif"}, "unsupported output format"},
		{"bad metric", []string{"trades", "--year", "2024", "--week", "6", "--metric", "volume"}, "unsupported trade metric"},
		{"bad mode", []string{"trades", "--year", "2024", "--week", "6", "--mode", "daily"}, "unsupported trade mode"},
		{"contribution needs weekly", []string{"trades", "--year", "2024", "--week", "6", "--metric", "contribution"}, "requires weekly mode"},
		{"empty year", []string{"commodities", "--year", "2031", "--week", "6"}, "empty selection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--input", input, "--out", out)
			code, _, stderr := runCLI(args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, tt.wantErr)
		})
	}
}

func TestAllCommandTop(t *testing.T) {
	input, out := setupCLI(t)

	code, stdout, stderr := runCLI("all", "--top", "2", "--input", input, "--out", out,
		"--year", "2024", "--week", "6", "--format", "svg")
	require.Equal(t, 0, code, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "commodities_2024_w6.svg  panels=2 ")
	assert.Contains(t, lines[1], "clients_2024_w6.svg  panels=2 ")
	assert.Contains(t, lines[2], "trades_2024_w6.svg  panels=4 ")
}

func TestMissingInput(t *testing.T) {
	_, out := setupCLI(t)
	t.Setenv("TRADECHARTS_INPUT_FILE", "")

	code, _, stderr := runCLI("commodities", "--year", "2024", "--week", "6", "--out", out)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "input file is required")

	code, _, _ = runCLI("commodities", "--year", "2024", "--week", "6", "--out", out,
		"--input", filepath.Join(out, "missing.csv"))
	assert.Equal(t, 1, code)
}

func TestMetricsTextfile(t *testing.T) {
	input, out := setupCLI(t)
	metrics := filepath.Join(t.TempDir(), "tradecharts.prom")
	t.Setenv("TRADECHARTS_TELEMETRY_METRICS_FILE", metrics)

	code, _, stderr := runCLI("trades", "--input", input, "--out", out, "--year", "2024", "--week", "6", "--format", "svg")
	require.Equal(t, 0, code, stderr)

	content, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(content), "reports_generated_total")
}
