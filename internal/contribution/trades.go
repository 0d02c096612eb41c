package contribution

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"tradecharts/internal/dataset"
	apperrors "tradecharts/internal/errors"
	"tradecharts/internal/infrastructure"
)

// Metric is the quantity accumulated by the trade comparison.
type Metric string

const (
	MetricTEU      Metric = "TEU"
	MetricTons     Metric = "TONS"
	MetricWeighted Metric = "WEIGHTED"
	// MetricContribution is the mean AVG CONTRIBUTION per week; weekly mode
	// only.
	MetricContribution Metric = "CONTRIBUTION"
)

const (
	// OutOfScopeTrade rows are excluded from trade comparisons.
	OutOfScopeTrade = "OUT OF SCOPE"
	// TotalPanel is the extra panel summing every in-scope trade.
	TotalPanel = "TOTAL"

	defaultTradeCount = 5
)

// ParseMetric accepts TEU, TONS, WEIGHTED or CONTRIBUTION in any case.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToUpper(strings.TrimSpace(s))); m {
	case MetricTEU, MetricTons, MetricWeighted, MetricContribution:
		return m, nil
	}
	return "", apperrors.NewValidationError(fmt.Sprintf("unknown metric %q", s), nil)
}

// Title is the metric name shown in titles and axis labels.
func (m Metric) Title() string {
	switch m {
	case MetricWeighted:
		return "Weighted Contribution (TEU × Contribution)"
	case MetricContribution:
		return "Average Contribution"
	}
	return string(m)
}

// mean reports whether weekly values and the TOTAL are averaged rather than
// summed.
func (m Metric) mean() bool {
	return m == MetricContribution
}

// TradeDimension is the trade comparison layout for a metric: a 3x2 grid,
// ticks every two weeks.
func TradeDimension(m Metric) Dimension {
	dim := Dimension{
		Kind:         "trades",
		Noun:         "Trades",
		EntityColumn: TradeColumn,
		ValueColumn:  string(m),
		Rows:         3,
		Cols:         2,
		TopN:         defaultTradeCount,
		TickStep:     2,
		Width:        20,
		Height:       15,
		YLabel:       "Cumulative " + m.Title(),
		Label:        func(key string) string { return key },
		PanelTitle: func(_ int, label string) string {
			return fmt.Sprintf("%s - Cumulative %s", label, m.Title())
		},
		Title: func(_, current, previous int) string {
			return fmt.Sprintf("Cumulative %s by Trade: %d vs %d", m.Title(), current, previous)
		},
	}
	if m == MetricWeighted {
		dim.ValueColumn = DerivedWeightedColumn
		dim.VolumeColumn = TEUColumn
		dim.RateColumn = RateColumn
	}
	return dim
}

// WeeklyTradeDimension is the weekly trade layout: the same grid as
// TradeDimension with per-week values. CONTRIBUTION reads AVG CONTRIBUTION
// directly.
func WeeklyTradeDimension(m Metric) Dimension {
	dim := TradeDimension(m)
	dim.YLabel = m.Title()
	dim.PanelTitle = func(_ int, label string) string {
		return fmt.Sprintf("%s - %s", label, m.Title())
	}
	dim.Title = func(_, current, previous int) string {
		return fmt.Sprintf("Weekly %s by Trade: %d vs %d", m.Title(), current, previous)
	}
	if m == MetricContribution {
		dim.ValueColumn = RateColumn
		dim.VolumeColumn = ""
		dim.RateColumn = ""
		dim.PanelTitle = func(_ int, label string) string { return label }
	}
	return dim
}

// TradeParams extends Params with the trade list, metric and mode.
type TradeParams struct {
	Params
	// Trades are plotted in order. Empty selects the first five in-scope
	// trades in order of appearance.
	Trades []string
	Metric Metric
	// Mode defaults to cumulative.
	Mode   Mode
}

// CompareTrades builds one panel per trade plus a TOTAL panel. Rows of the
// OUT OF SCOPE trade are ignored everywhere.
//
// In cumulative mode trades absent from the data plot as zero and TOTAL is
// the running total over every in-scope trade. In weekly mode each week holds
// that week's sum (the mean for CONTRIBUTION), TOTAL combines the weekly
// values of every in-scope trade the same way, and weeks without data are
// linearly interpolated between their neighbours.
func CompareTrades(ctx context.Context, table *dataset.Table, params TradeParams) (*Comparison, error) {
	if err := params.Params.Validate(); err != nil {
		return nil, err
	}
	mode, err := ParseMode(string(params.Mode))
	if err != nil {
		return nil, err
	}
	params.Mode = mode
	if params.Metric == "" {
		params.Metric = MetricWeighted
	}
	metric, err := ParseMetric(string(params.Metric))
	if err != nil {
		return nil, err
	}
	if metric == MetricContribution && mode != ModeWeekly {
		return nil, apperrors.NewValidationError("metric CONTRIBUTION requires weekly mode", nil)
	}
	params.Metric = metric
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dim := TradeDimension(params.Metric)
	if mode == ModeWeekly {
		dim = WeeklyTradeDimension(params.Metric)
	}
	f, err := newFrame(table, dim)
	if err != nil {
		return nil, fmt.Errorf("trades comparison: %w", err)
	}

	inScope := func(i int) bool { return f.entity(i) != OutOfScopeTrade }

	trades := params.Trades
	if len(trades) == 0 {
		limit := dim.TopN
		if params.TopN > 0 {
			limit = params.TopN
		}
		trades = f.distinct(params.CurrentYear, params.CurrentWeek, inScope, limit)
	}
	if len(trades) == 0 {
		return nil, fmt.Errorf("trades comparison: %w: no in-scope trades in %d up to week %d",
			apperrors.ErrEmptySelection, params.CurrentYear, params.CurrentWeek)
	}

	var current, previous map[string]Series
	if mode == ModeWeekly {
		current = f.weekly(trades, params.CurrentYear, params.CurrentWeek, inScope, metric.mean())
		previous = f.weekly(trades, params.PreviousYear, params.CurrentWeek, inScope, metric.mean())
	} else {
		current = f.cumulative(trades, params.CurrentYear, params.CurrentWeek, inScope)
		previous = f.cumulative(trades, params.PreviousYear, params.CurrentWeek, inScope)
		current[TotalPanel] = f.total(params.CurrentYear, params.CurrentWeek, inScope)
		previous[TotalPanel] = f.total(params.PreviousYear, params.CurrentWeek, inScope)
	}

	categories := append(append([]string{}, trades...), TotalPanel)
	rows, cols := gridFor(len(categories), dim.Rows, dim.Cols)

	cmp := &Comparison{
		Kind:        dim.Kind,
		Mode:        mode,
		Title:       dim.Title(len(trades), params.CurrentYear, params.PreviousYear),
		XLabel:      "Week",
		YLabel:      dim.YLabel,
		Params:      params.Params,
		Weeks:       weekRange(params.CurrentWeek),
		Rows:        rows,
		Cols:        cols,
		TickStep:    dim.TickStep,
		Width:       dim.Width,
		Height:      dim.Height * float64(rows) / float64(dim.Rows),
		RowsScanned: table.Len(),
	}

	for i, trade := range categories {
		entity := RankedEntity{
			Rank:  i + 1,
			Key:   trade,
			Label: trade,
			Total: current[trade].Last(),
		}
		cmp.Ranking = append(cmp.Ranking, entity)
		cmp.Panels = append(cmp.Panels, Panel{
			Entity:   entity,
			Title:    dim.PanelTitle(entity.Rank, entity.Label),
			Current:  current[trade],
			Previous: previous[trade],
			Row:      i / cols,
			Col:      i % cols,
		})
	}

	infrastructure.WithComponent(nil, "contribution").DebugContext(ctx, "trade comparison built",
		slog.String("metric", string(params.Metric)),
		slog.String("mode", string(mode)),
		slog.Int("trades", len(trades)),
	)
	return cmp, nil
}

// distinct returns up to limit entities of year and weeks 1..week in order of
// first appearance.
func (f *frame) distinct(year, week int, keep func(int) bool, limit int) []string {
	seen := make(map[string]bool)
	var out []string
	for i := range f.entities {
		if len(out) == limit {
			break
		}
		if !f.inYear(i, year) {
			continue
		}
		if _, ok := f.week(i, week); !ok || !keep(i) {
			continue
		}
		key := f.entity(i)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}

// total is the running total over every row kept, regardless of entity.
func (f *frame) total(year, week int, keep func(int) bool) Series {
	weekly := make([]decimal.Decimal, week)
	for i := range f.entities {
		if !f.inYear(i, year) || !keep(i) {
			continue
		}
		w, ok := f.week(i, week)
		if !ok || f.entity(i) == "" {
			continue
		}
		if v := f.values[i]; finite(v) {
			weekly[w-1] = weekly[w-1].Add(decimal.NewFromFloat(v))
		}
	}
	return Series{Year: year, Values: runningTotal(weekly)}
}
