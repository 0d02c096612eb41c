// Package shared groups helpers used across tradecharts packages that belong
// to no single layer.
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler and assertions for captured slog records
//   - deterministic trade extract fixtures (TradeRow, SampleTrades)
//     rendered as CSV for loader and comparison tests
//
// Example usage:
//
//	func TestRanking(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    path := testutil.WriteTradesCSV(t, t.TempDir(), "trades.csv", testutil.SampleTrades(10))
//	    // load path, run the comparison with logger
//	    testutil.AssertNoErrors(t, handler)
//	}
package shared
