package pipeline

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// FormatPrice renders a dollar amount with k/m suffixes: always one decimal
// place for millions, whole thousands, whole dollars below that. Halves round away
// from zero. Negative amounts carry a leading "-".
func FormatPrice(amount float64) string {
	if amount < 0 {
		return "-" + FormatPrice(-amount)
	}
	switch {
	case amount >= 1_000_000:
		m := math.Round(amount/1_000_000*10) / 10
		return "$" + strconv.FormatFloat(m, 'f', 1, 64) + "m"
	case amount >= 1_000:
		k := math.Round(amount / 1_000)
		return "$" + strconv.FormatFloat(k, 'f', 0, 64) + "k"
	default:
		return "$" + strconv.FormatFloat(math.Round(amount), 'f', 0, 64)
	}
}

// Median returns the middle value of sorted prices, or the mean of the two
// middle values for an even count.
func Median(sorted []float64) (float64, bool) {
	n := len(sorted)
	if n == 0 {
		return 0, false
	}
	if n%2 == 1 {
		return sorted[n/2], true
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2, true
}

// CapitalizeName uppercases the first letter of every whitespace-separated
// token and joins tokens with single spaces. The rest of each token is kept.
func CapitalizeName(name string) string {
	fields := strings.Fields(name)
	for i, f := range fields {
		r, size := utf8.DecodeRuneInString(f)
		fields[i] = string(unicode.ToUpper(r)) + f[size:]
	}
	return strings.Join(fields, " ")
}

// nameKey is the case-folded form used to compare agent names.
func nameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
