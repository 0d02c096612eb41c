package testutil

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// TradeHeader is the column layout of the weekly trade extract.
var TradeHeader = []string{
	"YEAR", "WEEK", "TRADE", "COMMODITY HS CHAPTER", "CLEAN BUSINESS PARTNER",
	"TEU", "TONS", "AVG CONTRIBUTION", "WEIGHTED CONTRIB",
}

// TradeRow is one shipment line of the trade extract.
type TradeRow struct {
	Year            int
	Week            int
	Trade           string
	Commodity       string
	Client          string
	TEU             float64
	Tons            float64
	AvgContribution float64
}

// Weighted is TEU times the average contribution rate.
func (r TradeRow) Weighted() float64 {
	return r.TEU * r.AvgContribution
}

// Record renders the row in TradeHeader order. NaN values become blank cells.
func (r TradeRow) Record() []string {
	return []string{
		strconv.Itoa(r.Year),
		strconv.Itoa(r.Week),
		r.Trade,
		r.Commodity,
		r.Client,
		formatCell(r.TEU),
		formatCell(r.Tons),
		formatCell(r.AvgContribution),
		formatCell(r.Weighted()),
	}
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TradesCSV renders rows as CSV text with the TradeHeader.
func TradesCSV(rows []TradeRow) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write(TradeHeader)
	for _, r := range rows {
		_ = w.Write(r.Record())
	}
	w.Flush()
	return sb.String()
}

// WriteTradesCSV writes rows to dir/name and returns the path.
func WriteTradesCSV(t *testing.T, dir, name string, rows []TradeRow) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(TradesCSV(rows)), 0644); err != nil {
		t.Fatalf("failed to write trades fixture: %v", err)
	}
	return path
}

// Sample fixture dimensions.
var (
	SampleTradesList  = []string{"ASIA", "EUROPE", "AMERICAS"}
	SampleCommodities = []string{
		"84 MACHINERY", "85 ELECTRICAL", "87 VEHICLES", "39 PLASTICS",
		"73 IRON OR STEEL ARTICLES", "94 FURNITURE", "61 APPAREL KNITTED",
		"62 APPAREL NOT KNITTED", "64 FOOTWEAR", "95 TOYS", "90 OPTICAL", "44 WOOD",
		"48 PAPER", "40 RUBBER",
	}
	SampleClients = []string{
		"ACME LOGISTICS", "NORTHWIND TRADERS INTERNATIONAL SHIPPING", "BLUE OCEAN", "GLOBEX",
	}
)

// SampleTrades returns a deterministic two-year extract covering weeks
// 1..weeks for every sample commodity. Commodity i ships (i+1)*10 TEU per week
// in 2024 and (i+1)*8 in 2023, so rankings follow slice order. One row per
// year falls in the OUT OF SCOPE trade.
func SampleTrades(weeks int) []TradeRow {
	var rows []TradeRow
	for _, year := range []int{2023, 2024} {
		perWeek := 8.0
		if year == 2024 {
			perWeek = 10.0
		}
		for week := 1; week <= weeks; week++ {
			for i := len(SampleCommodities) - 1; i >= 0; i-- {
				rows = append(rows, TradeRow{
					Year:            year,
					Week:            week,
					Trade:           SampleTradesList[i%len(SampleTradesList)],
					Commodity:       SampleCommodities[i],
					Client:          SampleClients[i%len(SampleClients)],
					TEU:             float64(i+1) * perWeek,
					Tons:            float64(i+1) * perWeek * 12,
					AvgContribution: 2,
				})
			}
		}
		rows = append(rows, TradeRow{
			Year: year, Week: 1, Trade: "OUT OF SCOPE",
			Commodity: SampleCommodities[0], Client: SampleClients[0],
			TEU: 1, Tons: 1, AvgContribution: 1,
		})
	}
	return rows
}
