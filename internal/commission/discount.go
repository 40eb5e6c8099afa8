package commission

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// agentShare is the portion of the commission the agent keeps.
	agentShare = 0.2
	// discountShare is the portion of the agent share passed on.
	discountShare = 0.25

	discountStep = 250
	minDiscount  = 500
	maxDiscount  = 10_000
)

var printer = message.NewPrinter(language.English)

// LowerRate parses the lower end of a rate range such as "1.65-1.85%".
func LowerRate(rate string) (float64, bool) {
	lower, _, _ := strings.Cut(rate, "-")
	lower = strings.TrimSpace(strings.ReplaceAll(lower, "%", ""))
	if lower == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(lower, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// DiscountAmount computes the dollar discount for a rate range and bracket:
// the bracket's lower bound times the lower rate, times the agent and
// discount shares, rounded to the nearest $250 and clamped to $500..$10,000.
func DiscountAmount(rate string, b Bracket) (int64, bool) {
	lowerRate, ok := LowerRate(rate)
	if !ok || !b.Valid() {
		return 0, false
	}
	raw := b.LowerBound() * (lowerRate / 100) * agentShare * discountShare
	rounded := math.Round(raw/discountStep) * discountStep
	rounded = math.Max(minDiscount, math.Min(maxDiscount, rounded))
	return int64(rounded), true
}

// Discount is DiscountAmount formatted as "$1,250", or "" when the rate or
// bracket is missing or unrecognized.
func Discount(rate, bracket string) string {
	b, ok := ParseBracket(bracket)
	if !ok {
		return ""
	}
	amount, ok := DiscountAmount(rate, b)
	if !ok {
		return ""
	}
	return FormatDollars(amount)
}

// FormatDollars renders a whole-dollar amount with comma grouping.
func FormatDollars(amount int64) string {
	return printer.Sprintf("$%d", amount)
}
