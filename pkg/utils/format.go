// Package utils provides common utility functions for cogiquant.
package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatUSD formats a number as US dollars with thousands separators
// ($1,234,567.89).
func FormatUSD(amount float64) string {
	if math.IsNaN(amount) {
		return "n/a"
	}
	negative := amount < 0
	amount = math.Abs(amount)

	s := strconv.FormatFloat(amount, 'f', 2, 64)
	intPart, decPart := s[:len(s)-3], s[len(s)-3:]
	formatted := groupThousands(intPart) + decPart

	if negative {
		return "-$" + formatted
	}
	return "$" + formatted
}

// FormatCompact formats a large number with a K/M/B/T suffix.
// e.g., 1927345 → "1.93M", 3.1e12 → "3.10T"
func FormatCompact(amount float64) string {
	if math.IsNaN(amount) {
		return "n/a"
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	switch {
	case amount >= 1e12:
		return fmt.Sprintf("%s%.2fT", sign, amount/1e12)
	case amount >= 1e9:
		return fmt.Sprintf("%s%.2fB", sign, amount/1e9)
	case amount >= 1e6:
		return fmt.Sprintf("%s%.2fM", sign, amount/1e6)
	case amount >= 1e3:
		return fmt.Sprintf("%s%.2fK", sign, amount/1e3)
	default:
		return fmt.Sprintf("%s%.2f", sign, amount)
	}
}

// FormatPct formats a percentage with sign, e.g. +1.25% or -0.40%.
func FormatPct(pct float64) string {
	if math.IsNaN(pct) {
		return "n/a"
	}
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatVolume formats a share count with thousands separators.
func FormatVolume(volume int64) string {
	if volume < 0 {
		return "-" + groupThousands(strconv.FormatInt(-volume, 10))
	}
	return groupThousands(strconv.FormatInt(volume, 10))
}

// FormatFloat formats a value for tabular output; NaN prints as "NaN".
func FormatFloat(v float64, decimals int) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// groupThousands inserts commas into a string of digits.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
