package exporter

import (
	"fmt"
	"log/slog"
	"strconv"

	"tradecharts/internal/contribution"
	apperrors "tradecharts/internal/errors"
)

// seriesHeaders is the long-format layout of a comparison: one row per
// panel and week.
func seriesHeaders(cmp *contribution.Comparison) []string {
	return []string{
		"RANK",
		"ENTITY",
		"WEEK",
		strconv.Itoa(cmp.Params.CurrentYear),
		strconv.Itoa(cmp.Params.PreviousYear),
		"DIFFERENCE",
	}
}

var rankingHeaders = []string{"RANK", "ENTITY", "LABEL", "TOTAL"}

// seriesRecords flattens the panels of a comparison in panel order.
func seriesRecords(cmp *contribution.Comparison) [][]string {
	var records [][]string
	for _, p := range cmp.Panels {
		for i, week := range cmp.Weeks {
			cur := valueAt(p.Current.Values, i)
			prev := valueAt(p.Previous.Values, i)
			records = append(records, []string{
				formatInt(p.Entity.Rank),
				p.Entity.Key,
				formatInt(week),
				formatValue(cur),
				formatValue(prev),
				formatValue(cur - prev),
			})
		}
	}
	return records
}

func rankingRecords(cmp *contribution.Comparison) [][]string {
	records := make([][]string, 0, len(cmp.Ranking))
	for _, e := range cmp.Ranking {
		records = append(records, []string{
			formatInt(e.Rank),
			e.Key,
			e.Label,
			formatFloat(e.Total),
		})
	}
	return records
}

func valueAt(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

// SeriesExporter writes comparison data as CSV files
type SeriesExporter struct {
	writer *CSVWriter
}

// NewSeriesExporter creates an exporter writing under baseDir
func NewSeriesExporter(baseDir string) *SeriesExporter {
	return &SeriesExporter{writer: NewCSVWriter(baseDir)}
}

// ExportSeries streams the cumulative series of every panel to filePath
func (e *SeriesExporter) ExportSeries(cmp *contribution.Comparison, filePath string) error {
	if cmp == nil {
		return apperrors.NewValidationError("no comparison to export", nil)
	}

	stream, err := e.writer.CreateStreamWriter(filePath, seriesHeaders(cmp))
	if err != nil {
		return apperrors.NewStorageError("create series export", err)
	}

	for _, record := range seriesRecords(cmp) {
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return apperrors.NewStorageError("write series export", err)
		}
	}
	if err := stream.Close(); err != nil {
		return apperrors.NewStorageError("close series export", err)
	}

	e.writer.logger.Info("Series exported",
		slog.String("kind", cmp.Kind),
		slog.String("path", stream.Path()),
		slog.Int("panels", len(cmp.Panels)))
	return nil
}

// ExportRanking writes the ranking of a comparison to filePath
func (e *SeriesExporter) ExportRanking(cmp *contribution.Comparison, filePath string) error {
	if cmp == nil {
		return apperrors.NewValidationError("no comparison to export", nil)
	}
	if err := e.writer.WriteSimpleCSV(filePath, rankingHeaders, rankingRecords(cmp)); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("write ranking %s", filePath), err)
	}
	return nil
}
