package contribution

import (
	"math"

	"github.com/shopspring/decimal"
)

// weekAgg accumulates one entity's rows per week.
type weekAgg struct {
	sums   []decimal.Decimal
	counts []int
}

func newWeekAgg(week int) *weekAgg {
	return &weekAgg{sums: make([]decimal.Decimal, week), counts: make([]int, week)}
}

// value is the week's sum, or mean when mean is set. Weeks without a defined
// value are NaN.
func (a *weekAgg) value(w int, mean bool) float64 {
	if a == nil || a.counts[w] == 0 {
		return math.NaN()
	}
	if mean {
		return a.sums[w].Div(decimal.NewFromInt(int64(a.counts[w]))).InexactFloat64()
	}
	return a.sums[w].InexactFloat64()
}

// weekly returns the per-week values of keys plus a TOTAL series combining
// every entity kept, not only keys. NaN values do not count as observations.
func (f *frame) weekly(keys []string, year, week int, keep func(i int) bool, mean bool) map[string]Series {
	aggs := make(map[string]*weekAgg)
	var order []string
	for i := range f.entities {
		if !f.inYear(i, year) {
			continue
		}
		w, ok := f.week(i, week)
		if !ok || (keep != nil && !keep(i)) {
			continue
		}
		key := f.entity(i)
		v := f.values[i]
		if key == "" || !finite(v) {
			continue
		}
		agg, ok := aggs[key]
		if !ok {
			agg = newWeekAgg(week)
			aggs[key] = agg
			order = append(order, key)
		}
		agg.sums[w-1] = agg.sums[w-1].Add(decimal.NewFromFloat(v))
		agg.counts[w-1]++
	}

	out := make(map[string]Series, len(keys)+1)
	for _, k := range keys {
		values := make([]float64, week)
		for w := range values {
			values[w] = aggs[k].value(w, mean)
		}
		out[k] = Series{Year: year, Values: interpolate(values)}
	}

	total := make([]float64, week)
	for w := range total {
		acc := decimal.Zero
		n := 0
		for _, k := range order {
			v := aggs[k].value(w, mean)
			if math.IsNaN(v) {
				continue
			}
			acc = acc.Add(decimal.NewFromFloat(v))
			n++
		}
		switch {
		case n == 0:
			total[w] = math.NaN()
		case mean:
			total[w] = acc.Div(decimal.NewFromInt(int64(n))).InexactFloat64()
		default:
			total[w] = acc.InexactFloat64()
		}
	}
	out[TotalPanel] = Series{Year: year, Values: interpolate(total)}
	return out
}

// interpolate fills NaN gaps in place by linear interpolation between the
// nearest defined neighbours. Trailing gaps repeat the last defined value and
// leading gaps stay NaN.
func interpolate(values []float64) []float64 {
	last := -1
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if last >= 0 && i-last > 1 {
			step := (v - values[last]) / float64(i-last)
			for j := last + 1; j < i; j++ {
				values[j] = values[last] + step*float64(j-last)
			}
		}
		last = i
	}
	if last >= 0 {
		for j := last + 1; j < len(values); j++ {
			values[j] = values[last]
		}
	}
	return values
}
