package chart

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/plot"
)

// weekTicker labels weeks 1, 1+Step, 1+2*Step, ... up to Max.
type weekTicker struct {
	Step int
	Max  int
}

func (t weekTicker) Ticks(_, _ float64) []plot.Tick {
	step := t.Step
	if step < 1 {
		step = 1
	}
	var ticks []plot.Tick
	for w := 1; w <= t.Max; w += step {
		ticks = append(ticks, plot.Tick{Value: float64(w), Label: strconv.Itoa(w)})
	}
	return ticks
}

// thousandsTicker keeps the default tick positions and labels them with
// thousands separators.
type thousandsTicker struct{}

func (thousandsTicker) Ticks(min, max float64) []plot.Tick {
	if max <= min {
		max = min + 1
	}
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label == "" {
			continue
		}
		ticks[i].Label = formatThousands(ticks[i].Value)
	}
	return ticks
}

// formatThousands rounds half to even, as fixed-point formatting does.
func formatThousands(v float64) string {
	return humanize.Comma(int64(math.RoundToEven(v)))
}
