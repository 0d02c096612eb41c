package contribution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"tradecharts/internal/dataset"
	apperrors "tradecharts/internal/errors"
	"tradecharts/internal/infrastructure"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func paramsValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the comparison parameters.
func (p Params) Validate() error {
	if err := paramsValidator().Struct(p); err != nil {
		return apperrors.NewValidationError("invalid comparison parameters", err).
			WithContext("params", p.String())
	}
	return nil
}

// Compare ranks the dimension's entities for the current year and builds the
// current and previous year cumulative series of every ranked entity.
func Compare(ctx context.Context, table *dataset.Table, dim Dimension, params Params) (*Comparison, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := infrastructure.WithComponent(nil, "contribution")

	f, err := newFrame(table, dim)
	if err != nil {
		return nil, fmt.Errorf("%s comparison: %w", dim.Kind, err)
	}

	n := params.TopN
	if n == 0 {
		n = dim.TopN
	}

	ranking := f.top(dim, params.CurrentYear, params.CurrentWeek, n)
	if len(ranking) == 0 {
		return nil, fmt.Errorf("%s comparison: %w: no %d rows up to week %d",
			dim.Kind, apperrors.ErrEmptySelection, params.CurrentYear, params.CurrentWeek)
	}

	keys := make([]string, len(ranking))
	for i, r := range ranking {
		keys[i] = r.Key
	}

	current := f.cumulative(keys, params.CurrentYear, params.CurrentWeek, nil)
	previous := f.cumulative(keys, params.PreviousYear, params.CurrentWeek, nil)

	rows, cols := gridFor(len(ranking), dim.Rows, dim.Cols)
	cmp := &Comparison{
		Kind:        dim.Kind,
		Mode:        ModeCumulative,
		Title:       dim.Title(n, params.CurrentYear, params.PreviousYear),
		XLabel:      "Week",
		YLabel:      dim.YLabel,
		Params:      params,
		Weeks:       weekRange(params.CurrentWeek),
		Rows:        rows,
		Cols:        cols,
		TickStep:    dim.TickStep,
		Width:       dim.Width,
		Height:      dim.Height * float64(rows) / float64(max(dim.Rows, 1)),
		Ranking:     ranking,
		RowsScanned: table.Len(),
	}

	for i, r := range ranking {
		cmp.Panels = append(cmp.Panels, Panel{
			Entity:   r,
			Title:    dim.PanelTitle(r.Rank, r.Label),
			Current:  current[r.Key],
			Previous: previous[r.Key],
			Row:      i / cols,
			Col:      i % cols,
		})
	}

	ahead, behind := cmp.Growth()
	logger.DebugContext(ctx, "comparison built",
		slog.String("kind", dim.Kind),
		slog.Int("entities", len(ranking)),
		slog.Int("ahead", ahead),
		slog.Int("behind", behind),
	)
	return cmp, nil
}

// gridFor keeps the declared column count and adds rows when n exceeds the
// declared grid.
func gridFor(n, rows, cols int) (int, int) {
	if cols < 1 {
		cols = 1
	}
	if need := (n + cols - 1) / cols; need > rows {
		rows = need
	}
	return rows, cols
}

func weekRange(week int) []int {
	out := make([]int, week)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
