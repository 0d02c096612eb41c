// Package contribution ranks trade entities by year-to-date weighted
// contribution and builds the cumulative or weekly series compared between
// two years.
package contribution

import (
	"fmt"
	"math"
	"strings"

	apperrors "tradecharts/internal/errors"
)

// Required time columns of every trade extract.
const (
	YearColumn  = "YEAR"
	WeekColumn  = "WEEK"
	TradeColumn = "TRADE"
)

// Dimension describes one way of grouping trade records into compared
// entities, together with its figure layout.
type Dimension struct {
	// Kind names the report, e.g. "commodities"; used in file names and metrics.
	Kind string
	// Noun is the plural shown in the figure title, e.g. "Commodities".
	Noun string

	EntityColumn string
	ValueColumn  string
	// VolumeColumn and RateColumn derive ValueColumn as their product when it
	// is absent. Both empty means ValueColumn is required.
	VolumeColumn string
	RateColumn   string

	Rows     int
	Cols     int
	TopN     int
	TickStep int
	// Figure size in inches.
	Width  float64
	Height float64

	YLabel string
	// Label formats an entity key for its panel title.
	Label func(key string) string
	// PanelTitle builds the panel title from the rank and formatted label.
	PanelTitle func(rank int, label string) string
	// Title builds the figure title.
	Title func(n, current, previous int) string
}

// Params selects the compared years and the cutoff week.
type Params struct {
	CurrentYear  int `validate:"required,gt=0"`
	PreviousYear int `validate:"required,gt=0,nefield=CurrentYear"`
	CurrentWeek  int `validate:"required,min=1,max=53"`
	// TopN overrides the dimension's ranking size; 0 keeps the default.
	TopN int `validate:"min=0"`
}

// RankedEntity is one entry of the ranking.
type RankedEntity struct {
	Rank  int
	Key   string
	Label string
	// Total is the year-to-date weighted contribution of the current year.
	Total float64
}

// Mode selects how weekly values become the plotted series.
type Mode string

const (
	// ModeCumulative plots running totals with the gap between years shaded.
	ModeCumulative Mode = "cumulative"
	// ModeWeekly plots each week's own value with one shaded bar per week.
	ModeWeekly Mode = "weekly"
)

// ParseMode accepts cumulative or weekly in any case. Empty means cumulative.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeCumulative, nil
	case ModeCumulative, ModeWeekly:
		return m, nil
	}
	return "", apperrors.NewValidationError(fmt.Sprintf("unknown mode %q", s), nil)
}

// Series is the value per week, Values[i] being week i+1. Weekly series hold
// NaN for weeks before the first observation.
type Series struct {
	Year   int
	Values []float64
}

// Last returns the value at the cutoff week, or the latest defined value
// before it. A series with no defined value returns 0.
func (s Series) Last() float64 {
	for i := len(s.Values) - 1; i >= 0; i-- {
		if !math.IsNaN(s.Values[i]) {
			return s.Values[i]
		}
	}
	return 0
}

// Panel is one small-multiple chart of the figure.
type Panel struct {
	Entity   RankedEntity
	Title    string
	Current  Series
	Previous Series
	Row      int
	Col      int
}

// Comparison is the full, render-ready result of one comparison call.
type Comparison struct {
	Kind     string
	Mode     Mode
	Title    string
	XLabel   string
	YLabel   string
	Params   Params
	Weeks    []int
	Rows     int
	Cols     int
	TickStep int
	Width    float64
	Height   float64
	Ranking  []RankedEntity
	Panels   []Panel
	// RowsScanned counts table rows read to build the comparison.
	RowsScanned int
}

// Growth returns how many panels end the period ahead of the previous year.
func (c *Comparison) Growth() (ahead, behind int) {
	for _, p := range c.Panels {
		if p.Current.Last() >= p.Previous.Last() {
			ahead++
		} else {
			behind++
		}
	}
	return ahead, behind
}

func (p Params) String() string {
	return fmt.Sprintf("%d vs %d up to week %d", p.CurrentYear, p.PreviousYear, p.CurrentWeek)
}
