package chart

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// region is a closed polygon between the two series in data coordinates.
type region struct {
	ahead  bool
	points []point
}

type point struct{ x, y float64 }

// fillRegions splits the area between cur and prev into polygons that are
// entirely ahead (cur >= prev) or behind. Where the series cross inside a
// segment the crossing point is interpolated so neighbouring polygons meet.
func fillRegions(xs, cur, prev []float64) []region {
	n := len(xs)
	if len(cur) < n {
		n = len(cur)
	}
	if len(prev) < n {
		n = len(prev)
	}
	if n < 2 {
		return nil
	}

	var (
		out   []region
		upper []point
		lower []point
	)
	flush := func(ahead bool) {
		if len(upper) >= 2 {
			pts := append([]point{}, upper...)
			for i := len(lower) - 1; i >= 0; i-- {
				pts = append(pts, lower[i])
			}
			out = append(out, region{ahead: ahead, points: pts})
		}
		upper, lower = upper[:0], lower[:0]
	}

	ahead := cur[0] >= prev[0]
	upper = append(upper, point{xs[0], cur[0]})
	lower = append(lower, point{xs[0], prev[0]})

	for i := 1; i < n; i++ {
		next := cur[i] >= prev[i]
		if next != ahead {
			d0 := cur[i-1] - prev[i-1]
			d1 := cur[i] - prev[i]
			t := d0 / (d0 - d1)
			x := xs[i-1] + t*(xs[i]-xs[i-1])
			y := cur[i-1] + t*(cur[i]-cur[i-1])
			upper = append(upper, point{x, y})
			lower = append(lower, point{x, y})
			flush(ahead)
			upper = append(upper, point{x, y})
			lower = append(lower, point{x, y})
			ahead = next
		}
		upper = append(upper, point{xs[i], cur[i]})
		lower = append(lower, point{xs[i], prev[i]})
	}
	flush(ahead)
	return out
}

// fillBetween shades the area between the current and previous series.
type fillBetween struct {
	xs, cur, prev []float64
	ahead, behind color.Color
}

var (
	_ plot.Plotter    = (*fillBetween)(nil)
	_ plot.DataRanger = (*fillBetween)(nil)
)

func (f *fillBetween) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for _, r := range fillRegions(f.xs, f.cur, f.prev) {
		poly := make([]vg.Point, len(r.points))
		for i, pt := range r.points {
			poly[i] = vg.Point{X: trX(pt.x), Y: trY(pt.y)}
		}
		clr := f.behind
		if r.ahead {
			clr = f.ahead
		}
		c.FillPolygon(clr, c.ClipPolygonXY(poly))
	}
}

func (f *fillBetween) DataRange() (xmin, xmax, ymin, ymax float64) {
	if len(f.xs) == 0 {
		return 0, 0, 0, 0
	}
	xmin, xmax = f.xs[0], f.xs[len(f.xs)-1]
	ymin, ymax = 0, 0
	for _, s := range [][]float64{f.cur, f.prev} {
		for _, v := range s {
			if v < ymin {
				ymin = v
			}
			if v > ymax {
				ymax = v
			}
		}
	}
	return xmin, xmax, ymin, ymax
}

// weekBars returns one rectangle per week spanning x-0.5..x+0.5 between the
// two values. Weeks where either value is NaN or both are equal get none.
func weekBars(xs, cur, prev []float64) []region {
	n := min(len(xs), len(cur), len(prev))
	var out []region
	for i := 0; i < n; i++ {
		c, p := cur[i], prev[i]
		if math.IsNaN(c) || math.IsNaN(p) || c == p {
			continue
		}
		lo, hi := min(c, p), max(c, p)
		x0, x1 := xs[i]-0.5, xs[i]+0.5
		out = append(out, region{
			ahead:  c > p,
			points: []point{{x0, lo}, {x1, lo}, {x1, hi}, {x0, hi}},
		})
	}
	return out
}

// fillBars shades each week's gap between the current and previous value.
type fillBars struct {
	xs, cur, prev []float64
	ahead, behind color.Color
}

var (
	_ plot.Plotter    = (*fillBars)(nil)
	_ plot.DataRanger = (*fillBars)(nil)
)

func (f *fillBars) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for _, r := range weekBars(f.xs, f.cur, f.prev) {
		poly := make([]vg.Point, len(r.points))
		for i, pt := range r.points {
			poly[i] = vg.Point{X: trX(pt.x), Y: trY(pt.y)}
		}
		clr := f.behind
		if r.ahead {
			clr = f.ahead
		}
		c.FillPolygon(clr, c.ClipPolygonXY(poly))
	}
}

// DataRange spans the defined values only, so weekly axes are not pinned to
// zero.
func (f *fillBars) DataRange() (xmin, xmax, ymin, ymax float64) {
	if len(f.xs) == 0 {
		return 0, 0, 0, 0
	}
	xmin, xmax = f.xs[0]-0.5, f.xs[len(f.xs)-1]+0.5
	ymin, ymax = math.Inf(1), math.Inf(-1)
	for _, s := range [][]float64{f.cur, f.prev} {
		for _, v := range s {
			if math.IsNaN(v) {
				continue
			}
			ymin = math.Min(ymin, v)
			ymax = math.Max(ymax, v)
		}
	}
	if ymin > ymax {
		ymin, ymax = 0, 0
	}
	return xmin, xmax, ymin, ymax
}
