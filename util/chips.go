package util

import (
	"fmt"
	"strings"
)

// FormatChips renders a chip amount with comma grouping (125000 -> "125,000").
func FormatChips(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := fmt.Sprintf("%d", amount)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)
	return sign + strings.Join(groups, ",")
}

// FormatChipsShort renders a chip amount with a K/Mil suffix when it divides
// evenly (125000 -> "125K", 2500000 -> "2.5Mil").
func FormatChipsShort(amount int64) string {
	if amount != 0 && amount%1000000 == 0 {
		return fmt.Sprintf("%dMil", amount/1000000)
	}
	if amount%100000 == 0 && (amount >= 1000000 || amount <= -1000000) {
		return fmt.Sprintf("%.1fMil", float64(amount)/1000000.0)
	}
	if amount != 0 && amount%1000 == 0 {
		return fmt.Sprintf("%dK", amount/1000)
	}
	return FormatChips(amount)
}
