package exporter

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"tradecharts/internal/contribution"
	apperrors "tradecharts/internal/errors"
	"tradecharts/internal/infrastructure"
)

// Sheet names of the exported workbook.
const (
	SeriesSheet  = "Series"
	RankingSheet = "Ranking"
)

// WorkbookExporter writes the series and ranking of a comparison into one
// Excel workbook.
type WorkbookExporter struct {
	baseDir string
	logger  *slog.Logger
}

// NewWorkbookExporter creates an exporter writing under baseDir
func NewWorkbookExporter(baseDir string) *WorkbookExporter {
	return &WorkbookExporter{
		baseDir: baseDir,
		logger:  infrastructure.WithComponent(nil, "exporter"),
	}
}

// Export saves the workbook to filePath
func (e *WorkbookExporter) Export(cmp *contribution.Comparison, filePath string) error {
	if cmp == nil {
		return apperrors.NewValidationError("no comparison to export", nil)
	}
	if !filepath.IsAbs(filePath) && e.baseDir != "" {
		filePath = filepath.Join(e.baseDir, filePath)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SeriesSheet); err != nil {
		return apperrors.NewStorageError("rename sheet", err)
	}
	if _, err := f.NewSheet(RankingSheet); err != nil {
		return apperrors.NewStorageError("create ranking sheet", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return apperrors.NewStorageError("create header style", err)
	}

	if err := writeSheet(f, SeriesSheet, seriesHeaders(cmp), seriesRows(cmp), bold); err != nil {
		return err
	}
	if err := writeSheet(f, RankingSheet, rankingHeaders, rankingRows(cmp), bold); err != nil {
		return err
	}
	if err := f.SetColWidth(SeriesSheet, "B", "B", 40); err != nil {
		return apperrors.NewStorageError("set column width", err)
	}
	if err := f.SetColWidth(RankingSheet, "B", "C", 40); err != nil {
		return apperrors.NewStorageError("set column width", err)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return apperrors.NewStorageError("create output directory", err)
	}
	if err := f.SaveAs(filePath); err != nil {
		return apperrors.NewStorageError("save workbook "+filePath, err)
	}

	e.logger.Info("Workbook exported",
		slog.String("kind", cmp.Kind),
		slog.String("path", filePath))
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}, headerStyle int) error {
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return apperrors.NewStorageError("write "+sheet+" header", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return apperrors.NewStorageError("style "+sheet+" header", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.NewStorageError("resolve cell", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return apperrors.NewStorageError("write "+sheet+" row", err)
		}
	}
	return nil
}

// seriesRows keeps numbers numeric so the workbook can be charted directly.
func seriesRows(cmp *contribution.Comparison) [][]interface{} {
	var rows [][]interface{}
	for _, p := range cmp.Panels {
		for i, week := range cmp.Weeks {
			cur := valueAt(p.Current.Values, i)
			prev := valueAt(p.Previous.Values, i)
			rows = append(rows, []interface{}{p.Entity.Rank, p.Entity.Key, week, cellValue(cur), cellValue(prev), cellValue(cur - prev)})
		}
	}
	return rows
}

// cellValue leaves undefined weeks as empty cells.
func cellValue(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func rankingRows(cmp *contribution.Comparison) [][]interface{} {
	rows := make([][]interface{}, 0, len(cmp.Ranking))
	for _, e := range cmp.Ranking {
		rows = append(rows, []interface{}{e.Rank, e.Key, e.Label, e.Total})
	}
	return rows
}
