package contribution

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tradecharts/internal/errors"
)

const tradeExtract = `YEAR,WEEK,TRADE,TEU,TONS,AVG CONTRIBUTION
2024,1,ASIA,10,100,2
2024,2,EUROPE,5,60,1
2024,2,ASIA,1,10,2
2024,1,OUT OF SCOPE,1000,1000,1
2024,3,AFRICA,4,40,1
2023,1,ASIA,8,80,2
2023,3,EUROPE,20,200,1
`

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric(" tons ")
	require.NoError(t, err)
	assert.Equal(t, MetricTons, m)

	m, err = ParseMetric("contribution")
	require.NoError(t, err)
	assert.Equal(t, MetricContribution, m)
	assert.Equal(t, "Average Contribution", m.Title())

	_, err = ParseMetric("volume")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	assert.Equal(t, "TEU", MetricTEU.Title())
	assert.Equal(t, "Weighted Contribution (TEU × Contribution)", MetricWeighted.Title())
}

func TestCompareTradesWeighted(t *testing.T) {
	table := loadTable(t, tradeExtract)

	cmp, err := CompareTrades(context.Background(), table, TradeParams{
		Params: Params{CurrentYear: 2024, PreviousYear: 2023, CurrentWeek: 3},
		Trades: []string{"ASIA", "EUROPE", "MIDDLE EAST"},
	})
	require.NoError(t, err)

	assert.Equal(t, "trades", cmp.Kind)
	assert.Equal(t, "Cumulative Weighted Contribution (TEU × Contribution) by Trade: 2024 vs 2023", cmp.Title)
	assert.Equal(t, "Cumulative Weighted Contribution (TEU × Contribution)", cmp.YLabel)
	assert.Equal(t, 2, cmp.TickStep)
	assert.Equal(t, 3, cmp.Rows)
	assert.Equal(t, 2, cmp.Cols)
	require.Len(t, cmp.Panels, 4)

	byKey := make(map[string]Panel)
	for _, p := range cmp.Panels {
		byKey[p.Entity.Key] = p
	}

	assert.Equal(t, []float64{20, 22, 22}, byKey["ASIA"].Current.Values)
	assert.Equal(t, []float64{16, 16, 16}, byKey["ASIA"].Previous.Values)
	assert.Equal(t, []float64{0, 5, 5}, byKey["EUROPE"].Current.Values)
	assert.Equal(t, []float64{0, 0, 0}, byKey["MIDDLE EAST"].Current.Values)

	// TOTAL covers every in-scope trade, including ones not listed
	total := cmp.Panels[3]
	assert.Equal(t, TotalPanel, total.Entity.Key)
	assert.Equal(t, "TOTAL - Cumulative Weighted Contribution (TEU × Contribution)", total.Title)
	assert.Equal(t, []float64{20, 27, 31}, total.Current.Values)
	assert.Equal(t, []float64{16, 16, 36}, total.Previous.Values)
	assert.Equal(t, 1, total.Row)
	assert.Equal(t, 1, total.Col)
}

func TestCompareTradesDefaultsAndMetric(t *testing.T) {
	table := loadTable(t, tradeExtract)

	cmp, err := CompareTrades(context.Background(), table, TradeParams{
		Params: Params{CurrentYear: 2024, PreviousYear: 2023, CurrentWeek: 3},
		Metric: "teu",
	})
	require.NoError(t, err)

	keys := make([]string, len(cmp.Panels))
	for i, p := range cmp.Panels {
		keys[i] = p.Entity.Key
	}
	assert.Equal(t, []string{"ASIA", "EUROPE", "AFRICA", TotalPanel}, keys)
	assert.Equal(t, "ASIA - Cumulative TEU", cmp.Panels[0].Title)
	assert.Equal(t, []float64{10, 16, 20}, cmp.Panels[3].Current.Values)
}

func TestCompareTradesErrors(t *testing.T) {
	ctx := context.Background()
	params := Params{CurrentYear: 2024, PreviousYear: 2023, CurrentWeek: 3}

	_, err := CompareTrades(ctx, loadTable(t, tradeExtract), TradeParams{Params: params, Metric: "VOLUME"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	_, err = CompareTrades(ctx, loadTable(t, "YEAR,WEEK,TEU\n2024,1,1\n"), TradeParams{Params: params, Metric: MetricTEU})
	assert.ErrorIs(t, err, apperrors.ErrMissingColumn)

	_, err = CompareTrades(ctx, loadTable(t, "YEAR,WEEK,TRADE,TEU\n2024,1,OUT OF SCOPE,1\n"), TradeParams{Params: params, Metric: MetricTEU})
	assert.ErrorIs(t, err, apperrors.ErrEmptySelection)
}

const weeklyExtract = `YEAR,WEEK,TRADE,TEU,TONS,AVG CONTRIBUTION
2024,1,ASIA,10,100,2
2024,1,ASIA,6,60,4
2024,3,ASIA,20,200,6
2024,4,ASIA,2,20,
2024,2,EUROPE,5,50,1
2024,3,EUROPE,4,40,2
2024,1,OUT OF SCOPE,1000,1000,9
2023,1,ASIA,8,80,3
2023,2,ASIA,4,40,1
2023,3,EUROPE,1,10,5
`

func TestParseMode(t *testing.T) {
	tests := []struct {
		input string
		want  Mode
	}{
		{"", ModeCumulative},
		{"cumulative", ModeCumulative},
		{" Weekly ", ModeWeekly},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseMode("daily")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestInterpolate(t *testing.T) {
	nan := math.NaN()

	got := interpolate([]float64{nan, 2, nan, nan, 8, nan})
	assert.True(t, math.IsNaN(got[0]))
	assert.Equal(t, []float64{2, 4, 6, 8, 8}, got[1:])

	got = interpolate([]float64{nan, nan})
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))

	assert.Equal(t, []float64{1, 2, 3}, interpolate([]float64{1, 2, 3}))
}

func TestSeriesLastSkipsUndefined(t *testing.T) {
	nan := math.NaN()
	assert.Equal(t, 5.0, Series{Values: []float64{1, 5, nan}}.Last())
	assert.Equal(t, 0.0, Series{Values: []float64{nan, nan}}.Last())
	assert.Equal(t, 0.0, Series{}.Last())
}

func TestCompareTradesWeeklySums(t *testing.T) {
	table := loadTable(t, weeklyExtract)

	cmp, err := CompareTrades(context.Background(), table, TradeParams{
		Params: Params{CurrentYear: 2024, PreviousYear: 2023, CurrentWeek: 4},
		Trades: []string{"ASIA", "EUROPE", "AFRICA"},
		Metric: MetricTEU,
		Mode:   ModeWeekly,
	})
	require.NoError(t, err)

	assert.Equal(t, ModeWeekly, cmp.Mode)
	assert.Equal(t, "Weekly TEU by Trade: 2024 vs 2023", cmp.Title)
	assert.Equal(t, "TEU", cmp.YLabel)
	require.Len(t, cmp.Panels, 4)

	asia := cmp.Panels[0]
	assert.Equal(t, "ASIA - TEU", asia.Title)
	assert.Equal(t, []float64{16, 18, 20, 2}, asia.Current.Values)
	assert.Equal(t, []float64{8, 4, 4, 4}, asia.Previous.Values)

	europe := cmp.Panels[1]
	assert.True(t, math.IsNaN(europe.Current.Values[0]))
	assert.Equal(t, []float64{5, 4, 4}, europe.Current.Values[1:])
	assert.True(t, math.IsNaN(europe.Previous.Values[1]))
	assert.Equal(t, []float64{1, 1}, europe.Previous.Values[2:])

	africa := cmp.Panels[2]
	for _, v := range africa.Current.Values {
		assert.True(t, math.IsNaN(v))
	}
	assert.Equal(t, 0.0, africa.Entity.Total)

	total := cmp.Panels[3]
	assert.Equal(t, TotalPanel, total.Entity.Key)
	assert.Equal(t, []float64{16, 5, 24, 2}, total.Current.Values)
	assert.Equal(t, []float64{8, 4, 1, 1}, total.Previous.Values)
}

func TestCompareTradesWeeklyContribution(t *testing.T) {
	table := loadTable(t, weeklyExtract)

	cmp, err := CompareTrades(context.Background(), table, TradeParams{
		Params: Params{CurrentYear: 2024, PreviousYear: 2023, CurrentWeek: 4},
		Metric: "contribution",
		Mode:   "weekly",
	})
	require.NoError(t, err)

	assert.Equal(t, "Weekly Average Contribution by Trade: 2024 vs 2023", cmp.Title)
	require.Len(t, cmp.Panels, 3)

	asia := cmp.Panels[0]
	assert.Equal(t, "ASIA", asia.Title)
	assert.Equal(t, []float64{3, 4.5, 6, 6}, asia.Current.Values)
	assert.Equal(t, []float64{3, 1, 1, 1}, asia.Previous.Values)

	europe := cmp.Panels[1]
	assert.Equal(t, "EUROPE", europe.Entity.Key)
	assert.Equal(t, []float64{1, 2, 2}, europe.Current.Values[1:])

	// TOTAL averages the weekly means of the trades present that week
	total := cmp.Panels[2]
	assert.Equal(t, []float64{3, 1, 4, 4}, total.Current.Values)
	assert.Equal(t, []float64{3, 1, 5, 5}, total.Previous.Values)
}

func TestCompareTradesModeErrors(t *testing.T) {
	ctx := context.Background()
	table := loadTable(t, weeklyExtract)
	params := Params{CurrentYear: 2024, PreviousYear: 2023, CurrentWeek: 4}

	_, err := CompareTrades(ctx, table, TradeParams{Params: params, Metric: MetricContribution})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	_, err = CompareTrades(ctx, table, TradeParams{Params: params, Mode: "daily"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	cmp, err := CompareTrades(ctx, table, TradeParams{Params: params, Metric: MetricTons})
	require.NoError(t, err)
	assert.Equal(t, ModeCumulative, cmp.Mode)
}
