package domain

import (
	"fmt"
	"strconv"
)

func formatProduction(v float64) string { return fmt.Sprintf("%.1f %s", v, UnitTonnesPerYear) }

func formatArea(v float64) string { return fmt.Sprintf("%.4f %s", v, UnitSquareKm) }

func formatDegrees(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return fmt.Sprintf("%.6f", v)
}

// formatMagnitude prints a scanned number in its shortest exact form.
func formatMagnitude(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// formatCanonical renders a canonical value for its category.
func formatCanonical(c Category, v float64) string {
	if c == CategoryArea {
		return formatArea(v)
	}
	return formatProduction(v)
}
