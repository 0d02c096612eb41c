package contribution

import "fmt"

// Built-in dimension column names.
const (
	CommodityColumn       = "COMMODITY HS CHAPTER"
	ClientColumn          = "CLEAN BUSINESS PARTNER"
	DerivedWeightedColumn = "WEIGHTED_CONTRIB"
	ClientWeightedColumn  = "WEIGHTED CONTRIB"
	TEUColumn             = "TEU"
	TonsColumn            = "TONS"
	RateColumn            = "AVG CONTRIBUTION"
)

const (
	clientLabelLimit = 25
	clientLabelKeep  = 22
)

// Commodities ranks HS chapters on a 3x4 grid.
func Commodities() Dimension {
	return Dimension{
		Kind:         "commodities",
		Noun:         "Commodities",
		EntityColumn: CommodityColumn,
		ValueColumn:  DerivedWeightedColumn,
		VolumeColumn: TEUColumn,
		RateColumn:   RateColumn,
		Rows:         3,
		Cols:         4,
		TopN:         12,
		TickStep:     4,
		Width:        20,
		Height:       15,
		YLabel:       "Weighted Contribution",
		Label:        func(key string) string { return key },
		PanelTitle: func(rank int, label string) string {
			return fmt.Sprintf("#%d %s\nCumulative Weighted Contribution", rank, label)
		},
		Title: func(n, current, previous int) string {
			return fmt.Sprintf("Top %d Commodities: Cumulative Weighted Contribution\n%d vs %d", n, current, previous)
		},
	}
}

// Clients ranks business partners on a 3x7 grid. The weighted column must be
// present in the extract.
func Clients() Dimension {
	return Dimension{
		Kind:         "clients",
		Noun:         "Clients",
		EntityColumn: ClientColumn,
		ValueColumn:  ClientWeightedColumn,
		Rows:         3,
		Cols:         7,
		TopN:         21,
		TickStep:     4,
		// 20in for five columns, widened proportionally to seven
		Width:  28,
		Height: 15,
		YLabel: "Weighted Contribution",
		Label:  TruncateLabel,
		PanelTitle: func(rank int, label string) string {
			return fmt.Sprintf("#%d %s", rank, label)
		},
		Title: func(n, _, _ int) string {
			return fmt.Sprintf("Top %d Clients: Cumulative Weighted Contribution", n)
		},
	}
}

// TruncateLabel shortens names of 25 or more characters to their first 22
// characters followed by "...".
func TruncateLabel(name string) string {
	r := []rune(name)
	if len(r) < clientLabelLimit {
		return name
	}
	return string(r[:clientLabelKeep]) + "..."
}

// DimensionByKind returns a built-in dimension.
func DimensionByKind(kind string) (Dimension, bool) {
	switch kind {
	case "commodities":
		return Commodities(), true
	case "clients":
		return Clients(), true
	}
	return Dimension{}, false
}
