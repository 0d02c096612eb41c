package contribution

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"tradecharts/internal/dataset"
)

// frame is the read-only view of the columns one comparison needs.
type frame struct {
	entities []string
	values   []float64
	years    []float64
	weeks    []float64
}

// newFrame resolves the dimension's columns. When the weighted column is
// absent and the dimension can derive it, the product is computed without
// modifying the table.
func newFrame(table *dataset.Table, dim Dimension) (*frame, error) {
	years, err := table.Number(YearColumn)
	if err != nil {
		return nil, err
	}
	weeks, err := table.Number(WeekColumn)
	if err != nil {
		return nil, err
	}
	entities, err := table.Text(dim.EntityColumn)
	if err != nil {
		return nil, err
	}
	values, err := weightedValues(table, dim.ValueColumn, dim.VolumeColumn, dim.RateColumn)
	if err != nil {
		return nil, err
	}

	return &frame{entities: entities, values: values, years: years, weeks: weeks}, nil
}

func weightedValues(table *dataset.Table, value, volume, rate string) ([]float64, error) {
	if table.Has(value) || volume == "" || rate == "" {
		return table.Number(value)
	}

	vol, err := table.Number(volume)
	if err != nil {
		return nil, err
	}
	r, err := table.Number(rate)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(vol))
	for i := range out {
		out[i] = vol[i] * r[i]
	}
	return out, nil
}

// week returns the row's week when it is a whole number in 1..cutoff.
func (f *frame) week(i, cutoff int) (int, bool) {
	w := f.weeks[i]
	if math.IsNaN(w) || w != math.Trunc(w) || w < 1 || w > float64(cutoff) {
		return 0, false
	}
	return int(w), true
}

// finite excludes NaN (blank cells) and infinities from sums.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (f *frame) inYear(i, year int) bool {
	return f.years[i] == float64(year)
}

func (f *frame) entity(i int) string {
	return strings.TrimSpace(f.entities[i])
}

// TopEntities returns the n entities with the largest summed weighted
// contribution for year over weeks 1..week, in descending order. Equal sums
// keep the order in which entities first appear in the table. NaN values are
// skipped and rows with a blank entity are dropped.
func TopEntities(table *dataset.Table, dim Dimension, year, week, n int) ([]RankedEntity, error) {
	f, err := newFrame(table, dim)
	if err != nil {
		return nil, err
	}
	return f.top(dim, year, week, n), nil
}

func (f *frame) top(dim Dimension, year, week, n int) []RankedEntity {
	type total struct {
		key string
		sum decimal.Decimal
	}

	index := make(map[string]int)
	var totals []total

	for i := range f.entities {
		if !f.inYear(i, year) {
			continue
		}
		if _, ok := f.week(i, week); !ok {
			continue
		}
		key := f.entity(i)
		if key == "" {
			continue
		}

		pos, ok := index[key]
		if !ok {
			pos = len(totals)
			index[key] = pos
			totals = append(totals, total{key: key, sum: decimal.Zero})
		}
		if v := f.values[i]; finite(v) {
			totals[pos].sum = totals[pos].sum.Add(decimal.NewFromFloat(v))
		}
	}

	sort.SliceStable(totals, func(a, b int) bool {
		return totals[a].sum.GreaterThan(totals[b].sum)
	})

	if n > len(totals) {
		n = len(totals)
	}

	label := dim.Label
	if label == nil {
		label = func(key string) string { return key }
	}

	ranking := make([]RankedEntity, n)
	for i := 0; i < n; i++ {
		ranking[i] = RankedEntity{
			Rank:  i + 1,
			Key:   totals[i].key,
			Label: label(totals[i].key),
			Total: totals[i].sum.InexactFloat64(),
		}
	}
	return ranking
}
