package utils

import (
	"fmt"
	"strconv"
)

// shortUnits are checked largest first
var shortUnits = []struct {
	threshold int64
	suffix    string
}{
	{1_000_000_000_000, "T"},
	{1_000_000_000, "B"},
	{1_000_000, "M"},
}

// FormatShortNotation renders bit amounts compactly for the round card: 1.0k, 250k, 1.50M
func FormatShortNotation(value int64) string {
	sign, abs := "", value
	if value < 0 {
		sign, abs = "-", -value
	}

	for _, u := range shortUnits {
		if abs >= u.threshold {
			return fmt.Sprintf("%s%.2f%s", sign, float64(abs)/float64(u.threshold), u.suffix)
		}
	}

	if abs >= 10_000 {
		return fmt.Sprintf("%s%dk", sign, abs/1_000)
	}
	if abs >= 1_000 {
		return fmt.Sprintf("%s%.1fk", sign, float64(abs)/1_000)
	}
	return sign + strconv.FormatInt(abs, 10)
}
