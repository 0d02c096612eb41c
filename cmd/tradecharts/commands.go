package main

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tradecharts/internal/config"
	"tradecharts/internal/contribution"
	"tradecharts/internal/dataset"
	"tradecharts/internal/services"
)

func newReportCmd(kind, short string, opts *options, state *app) *cobra.Command {
	return &cobra.Command{
		Use:   kind,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return state.execute(cmd, opts, func(ctx context.Context, table *dataset.Table, params contribution.Params) ([]*services.ReportResult, error) {
				res, err := state.service.Generate(ctx, kind, table, params)
				if err != nil {
					return nil, err
				}
				return []*services.ReportResult{res}, nil
			})
		},
	}
}

func newTradesCmd(opts *options, state *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   services.KindTrades,
		Short: "Cumulative or weekly TEU, tons or contribution per trade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return state.execute(cmd, opts, func(ctx context.Context, table *dataset.Table, params contribution.Params) ([]*services.ReportResult, error) {
				res, err := state.service.Trades(ctx, table, contribution.TradeParams{Params: params})
				if err != nil {
					return nil, err
				}
				return []*services.ReportResult{res}, nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&opts.trades, "trades", nil, "trades to plot in order (default first five in the data)")
	cmd.Flags().StringVar(&opts.metric, "metric", "", "TEU, TONS, WEIGHTED or CONTRIBUTION (weekly only)")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "cumulative or weekly")
	return cmd
}

func newAllCmd(opts *options, state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Commodities, clients and trades from one load of the input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return state.execute(cmd, opts, func(ctx context.Context, table *dataset.Table, params contribution.Params) ([]*services.ReportResult, error) {
				return state.service.GenerateAll(ctx, table, params)
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s %s/%s)\n",
				config.AppName, config.AppVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}

func printResults(w io.Writer, results []*services.ReportResult) {
	for _, res := range results {
		fmt.Fprintf(w, "%-12s %s  panels=%d ahead=%d behind=%d rows=%s\n",
			res.Kind, res.ChartPath, res.Panels, res.Ahead, res.Behind,
			humanize.Comma(int64(res.RowsScanned)))
		for _, path := range []string{res.SeriesPath, res.RankingPath, res.WorkbookPath} {
			if path != "" {
				fmt.Fprintf(w, "%-12s %s\n", "", path)
			}
		}
	}
}
