package placement

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Placeholder is shown for values that are absent or unreadable.
const Placeholder = "–"

var (
	nonNumeric    = regexp.MustCompile(`[^0-9.\-]`)
	leadingNumber = regexp.MustCompile(`-?(\d+\.?\d*|\.\d+)`)
)

// ParseNumber reads the first number out of a loosely formatted cell such
// as "12 months" or "8-10 LPA" (-> 8).
func ParseNumber(s string) (float64, bool) {
	cleaned := nonNumeric.ReplaceAllString(s, "")
	m := leadingNumber.FindString(cleaned)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatExperience renders a month count as years.
func FormatExperience(months string) string {
	n, ok := ParseNumber(months)
	if !ok {
		return Placeholder
	}
	years := n / 12
	if years == math.Trunc(years) {
		return formatFloat(years) + " years"
	}
	return fmt.Sprintf("%.1f years", years)
}

// FormatCTC appends the LPA unit.
func FormatCTC(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return Placeholder
	}
	if n, ok := ParseNumber(v); ok {
		return formatFloat(n) + " LPA"
	}
	return v + " LPA"
}

// FormatNoticePeriod renders a month count as days.
func FormatNoticePeriod(months string) string {
	n, ok := ParseNumber(months)
	if !ok {
		return Placeholder
	}
	return fmt.Sprintf("%d days", int(math.Round(n*30)))
}

// OrPlaceholder returns v, or the placeholder when v is blank.
func OrPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return Placeholder
	}
	return v
}
