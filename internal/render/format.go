package render

import (
	"fmt"
	"strconv"
)

// Placeholder is shown wherever a value is absent.
const Placeholder = "—"

// formatNumber renders v in its shortest exact decimal form.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatOptional renders v, or [Placeholder] when v is nil.
func formatOptional(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return formatNumber(*v)
}

// formatOneDecimal renders v with exactly one decimal place.
func formatOneDecimal(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
