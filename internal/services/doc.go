// Package services implements the report layer of tradecharts. It sits
// between the CLI and the domain packages: it loads the trade extract, runs a
// comparison, renders the figure and writes it together with optional data
// exports.
//
// # Service Pattern
//
// Services receive their configuration and logger through the constructor
// and take a context on every operation:
//
//	svc := services.NewReportService(cfg, telemetry, logger)
//	table, err := svc.LoadTable(ctx)
//	result, err := svc.Commodities(ctx, table, params)
//
// # Reports
//
//   - Commodities: top commodities by weighted contribution
//   - Clients: top clients by weighted contribution
//   - Trades: trade list plus a TOTAL panel, cumulative or weekly
//   - GenerateAll: all three concurrently on one loaded table
//
// Every report runs inside a span and records its outcome in the report
// metrics when telemetry is configured.
//
// # Output Files
//
// Figures are written to the output directory as <kind>_<year>_w<week>.<ext>.
// With exports enabled the same base name is used for _series.csv,
// _ranking.csv and .xlsx files.
package services
