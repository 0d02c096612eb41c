// Package exporter writes the data behind a comparison figure as CSV or as an
// Excel workbook.
//
// CSVWriter is the low level writer with UTF-8 BOM and streaming support.
// SeriesExporter writes the cumulative series and the ranking of a comparison
// as CSV files. WorkbookExporter writes both into one workbook.
//
// Example usage:
//
//	exp := exporter.NewSeriesExporter("out")
//	err := exp.ExportSeries(cmp, "commodities_2024_w30_series.csv")
package exporter
