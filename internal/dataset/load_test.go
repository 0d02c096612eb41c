package dataset

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "tradecharts/internal/errors"
	"tradecharts/internal/shared/testutil"
)

func TestLoadCSV(t *testing.T) {
	rows := testutil.SampleTrades(3)
	table, err := LoadCSV(context.Background(), strings.NewReader(testutil.TradesCSV(rows)), LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, len(rows), table.Len())
	assert.Equal(t, testutil.TradeHeader, table.Columns())
	assert.True(t, table.IsNumeric("YEAR"))
	assert.True(t, table.IsNumeric("WEIGHTED CONTRIB"))
	assert.False(t, table.IsNumeric("CLEAN BUSINESS PARTNER"))
}

func TestLoadCSVStripsBOM(t *testing.T) {
	input := "\xEF\xBB\xBFYEAR,WEEK\n2024,1\n"
	table, err := LoadCSV(context.Background(), strings.NewReader(input), LoadOptions{Encoding: "utf-8"})
	require.NoError(t, err)

	assert.True(t, table.Has("YEAR"))
	assert.Equal(t, []string{"YEAR", "WEEK"}, table.Columns())
}

func TestLoadCSVLatin1(t *testing.T) {
	// "SOCIÉTÉ" in ISO-8859-1
	input := []byte("CLEAN BUSINESS PARTNER,WEIGHTED CONTRIB\nSOCI\xc9T\xc9,5\n")
	table, err := LoadCSV(context.Background(), bytes.NewReader(input), LoadOptions{Encoding: "latin1"})
	require.NoError(t, err)

	names, err := table.Text("CLEAN BUSINESS PARTNER")
	require.NoError(t, err)
	assert.Equal(t, "SOCIÉTÉ", names[0])
}

func TestLoadCSVErrors(t *testing.T) {
	ctx := context.Background()

	_, err := LoadCSV(ctx, strings.NewReader(""), LoadOptions{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))

	_, err = LoadCSV(ctx, strings.NewReader("A\n1\n"), LoadOptions{Encoding: "utf-16"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = LoadCSV(cancelled, strings.NewReader("A\n1\n"), LoadOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFromRecords(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)

	table, err := FromRecords(
		[]string{" WEEK ", "NAME", "NAME"},
		[][]string{{"1", "a", "b"}, {"2", "c"}},
		logger,
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"WEEK", "NAME", "NAME.1"}, table.Columns())
	dup, err := table.Text("NAME.1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", ""}, dup)
	testutil.AssertLogAttr(t, handler, "count", int64(1))
}

func TestLoadDispatch(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	csvPath := testutil.WriteTradesCSV(t, dir, "trades.csv", testutil.SampleTrades(2))
	table, err := Load(ctx, csvPath, LoadOptions{})
	require.NoError(t, err)
	assert.True(t, table.Has("TRADE"))

	_, err = Load(ctx, filepath.Join(dir, "trades.parquet"), LoadOptions{})
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFormat)

	_, err = Load(ctx, filepath.Join(dir, "absent.csv"), LoadOptions{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func writeWorkbook(t *testing.T, path, sheet string, rows [][]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.xlsx")
	writeWorkbook(t, path, "Weekly", [][]interface{}{
		{"YEAR", "WEEK", "CLEAN BUSINESS PARTNER", "WEIGHTED CONTRIB"},
		{2024, 1, "ACME", 1234.5},
		{2024, 2, "GLOBEX", 99},
	})

	table, err := Load(context.Background(), path, LoadOptions{Sheet: "Weekly"})
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	values, err := table.Number("WEIGHTED CONTRIB")
	require.NoError(t, err)
	assert.Equal(t, []float64{1234.5, 99}, values)

	_, err = Load(context.Background(), path, LoadOptions{Sheet: "Missing"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestLoadXLSXFirstSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "first.xlsx")
	writeWorkbook(t, path, "Sheet1", [][]interface{}{
		{"YEAR", "WEEK"},
		{2023, 52},
	})

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	table, err := LoadXLSX(context.Background(), file, LoadOptions{})
	require.NoError(t, err)

	weeks, err := table.Number("WEEK")
	require.NoError(t, err)
	assert.Equal(t, []float64{52}, weeks)
}
