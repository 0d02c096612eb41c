package contribution

import (
	"github.com/shopspring/decimal"

	"tradecharts/internal/dataset"
)

// CumulativeSeries returns, for each key, the running total of the weighted
// contribution in year over weeks 1..week. Weeks without data carry the
// previous total; weeks before the first observation are zero.
func CumulativeSeries(table *dataset.Table, dim Dimension, keys []string, year, week int) (map[string]Series, error) {
	f, err := newFrame(table, dim)
	if err != nil {
		return nil, err
	}
	return f.cumulative(keys, year, week, nil), nil
}

// cumulative sums per (key, week). When keep is non-nil rows it rejects are
// skipped before grouping.
func (f *frame) cumulative(keys []string, year, week int, keep func(i int) bool) map[string]Series {
	weekly := make(map[string][]decimal.Decimal, len(keys))
	for _, k := range keys {
		weekly[k] = make([]decimal.Decimal, week)
	}

	for i := range f.entities {
		if !f.inYear(i, year) {
			continue
		}
		w, ok := f.week(i, week)
		if !ok {
			continue
		}
		if keep != nil && !keep(i) {
			continue
		}
		sums, ok := weekly[f.entity(i)]
		if !ok {
			continue
		}
		if v := f.values[i]; finite(v) {
			sums[w-1] = sums[w-1].Add(decimal.NewFromFloat(v))
		}
	}

	out := make(map[string]Series, len(keys))
	for _, k := range keys {
		out[k] = Series{Year: year, Values: runningTotal(weekly[k])}
	}
	return out
}

func runningTotal(weekly []decimal.Decimal) []float64 {
	out := make([]float64, len(weekly))
	acc := decimal.Zero
	for i, v := range weekly {
		acc = acc.Add(v)
		out[i] = acc.InexactFloat64()
	}
	return out
}
