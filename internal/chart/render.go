package chart

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"tradecharts/internal/contribution"
	apperrors "tradecharts/internal/errors"
)

// Style holds the colours and strokes shared by every panel.
type Style struct {
	Current  color.Color
	Previous color.Color
	Ahead    color.Color
	Behind   color.Color
	Grid     color.Color

	LineWidth    vg.Length
	MarkerRadius vg.Length
	TitleSize    vg.Length
}

// DefaultStyle is navy for the current year and red for the previous one,
// with translucent green and red fills.
func DefaultStyle() Style {
	return Style{
		Current:      color.NRGBA{R: 0x0D, G: 0x17, B: 0x3F, A: 0xFF},
		Previous:     color.NRGBA{R: 0xFF, A: 0xFF},
		Ahead:        color.NRGBA{G: 0x80, A: 77},
		Behind:       color.NRGBA{R: 0xFF, A: 77},
		Grid:         color.NRGBA{R: 0xB0, G: 0xB0, B: 0xB0, A: 77},
		LineWidth:    vg.Points(2),
		MarkerRadius: vg.Points(2),
		TitleSize:    vg.Points(16),
	}
}

// Figure is a rendered grid of panels under a common title.
type Figure struct {
	Title  string
	Width  vg.Length
	Height vg.Length
	Rows   int
	Cols   int
	Panels []FigurePanel
	style  Style
}

// FigurePanel places one plot in the grid.
type FigurePanel struct {
	Row   int
	Col   int
	Title string
	Plot  *plot.Plot
}

// Render builds the figure of a comparison. Each panel plots the current and
// previous series with the gap between them shaded: continuously for
// cumulative comparisons, one bar per week for weekly ones.
func Render(ctx context.Context, cmp *contribution.Comparison, style Style) (*Figure, error) {
	if cmp == nil || len(cmp.Panels) == 0 {
		return nil, apperrors.NewRenderError("nothing to render", apperrors.ErrEmptySelection)
	}

	fig := &Figure{
		Title:  cmp.Title,
		Width:  vg.Length(cmp.Width) * vg.Inch,
		Height: vg.Length(cmp.Height) * vg.Inch,
		Rows:   cmp.Rows,
		Cols:   cmp.Cols,
		style:  style,
	}

	xs := make([]float64, len(cmp.Weeks))
	for i, w := range cmp.Weeks {
		xs[i] = float64(w)
	}
	lastWeek := cmp.Params.CurrentWeek
	if n := len(cmp.Weeks); n > 0 {
		lastWeek = cmp.Weeks[n-1]
	}

	for _, panel := range cmp.Panels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := panelPlot(cmp, panel, xs, lastWeek, style)
		if err != nil {
			return nil, apperrors.NewRenderError(fmt.Sprintf("panel %q", panel.Title), err)
		}
		fig.Panels = append(fig.Panels, FigurePanel{
			Row:   panel.Row,
			Col:   panel.Col,
			Title: panel.Title,
			Plot:  p,
		})
	}
	return fig, nil
}

func panelPlot(cmp *contribution.Comparison, panel contribution.Panel, xs []float64, lastWeek int, style Style) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = panel.Title
	p.X.Label.Text = cmp.XLabel
	p.Y.Label.Text = cmp.YLabel
	p.X.Tick.Marker = weekTicker{Step: cmp.TickStep, Max: lastWeek}
	p.Y.Tick.Marker = thousandsTicker{}
	p.Legend.Top = true
	p.Legend.Left = true

	grid := plotter.NewGrid()
	grid.Vertical.Color = style.Grid
	grid.Horizontal.Color = style.Grid
	p.Add(grid)

	weekly := cmp.Mode == contribution.ModeWeekly
	if weekly {
		p.Add(&fillBars{
			xs:     xs,
			cur:    panel.Current.Values,
			prev:   panel.Previous.Values,
			ahead:  style.Ahead,
			behind: style.Behind,
		})
	} else {
		p.Add(&fillBetween{
			xs:     xs,
			cur:    panel.Current.Values,
			prev:   panel.Previous.Values,
			ahead:  style.Ahead,
			behind: style.Behind,
		})
	}

	for _, s := range []struct {
		series contribution.Series
		color  color.Color
	}{
		{panel.Current, style.Current},
		{panel.Previous, style.Previous},
	} {
		xys := seriesXYs(xs, s.series.Values)
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Color = s.color
		line.LineStyle.Width = style.LineWidth
		points.GlyphStyle.Shape = draw.CircleGlyph{}
		points.GlyphStyle.Radius = style.MarkerRadius
		points.GlyphStyle.Color = s.color
		if len(xys) > 0 {
			p.Add(line, points)
		}
		p.Legend.Add(strconv.Itoa(s.series.Year), line, points)
	}

	p.X.Min = 1
	p.X.Max = float64(lastWeek)
	if weekly {
		p.X.Min, p.X.Max = 0.5, float64(lastWeek)+0.5
	}
	return p, nil
}

// seriesXYs pairs weeks with values, dropping undefined weeks.
func seriesXYs(xs, values []float64) plotter.XYs {
	n := min(len(xs), len(values))
	xys := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(values[i]) {
			continue
		}
		xys = append(xys, plotter.XY{X: xs[i], Y: values[i]})
	}
	return xys
}

// Draw paints the title and every panel onto dc.
func (f *Figure) Draw(dc draw.Canvas) {
	dc.FillPolygon(color.White, []vg.Point{
		{X: dc.Min.X, Y: dc.Min.Y},
		{X: dc.Max.X, Y: dc.Min.Y},
		{X: dc.Max.X, Y: dc.Max.Y},
		{X: dc.Min.X, Y: dc.Max.Y},
	})

	pad := vg.Points(12)
	top := vg.Length(0)
	if f.Title != "" {
		sty := plot.New().Title.TextStyle
		sty.Font.Size = f.style.TitleSize
		sty.XAlign = draw.XCenter
		sty.YAlign = draw.YTop
		dc.FillText(sty, vg.Point{X: dc.Center().X, Y: dc.Max.Y - pad}, f.Title)
		top = sty.Height(f.Title) + 2*pad
	}

	body := draw.Crop(dc, 0, 0, 0, -top)
	tiles := draw.Tiles{
		Rows:      f.Rows,
		Cols:      f.Cols,
		PadX:      vg.Points(24),
		PadY:      vg.Points(24),
		PadTop:    vg.Points(4),
		PadBottom: pad,
		PadLeft:   pad,
		PadRight:  pad,
	}
	for _, panel := range f.Panels {
		panel.Plot.Draw(tiles.At(body, panel.Col, panel.Row))
	}
}
