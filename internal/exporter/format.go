package exporter

import (
	"math"
	"strconv"
)

// formatFloat formats a float64 with the fewest digits that round-trip
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatValue leaves undefined weeks blank
func formatValue(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return formatFloat(f)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}
