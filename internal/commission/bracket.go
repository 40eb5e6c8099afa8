// Package commission resolves commission rates, marketing costs and
// discounts for a price bracket.
package commission

import "strings"

// Bracket is one of the fixed home owner price ranges.
type Bracket int

const (
	BracketUnknown Bracket = iota
	BracketUnder500k
	Bracket500kTo750k
	Bracket750kTo1m
	Bracket1mTo1_5m
	Bracket1_5mTo2m
	Bracket2mTo2_5m
	Bracket2_5mTo3m
	Bracket3mTo4m
	Bracket4mTo6m
	Bracket6mTo8m
	Bracket8mTo10m
	Bracket10mPlus
)

var bracketLabels = [...]string{
	BracketUnknown:    "",
	BracketUnder500k:  "Less than $500k",
	Bracket500kTo750k: "$500k-$750k",
	Bracket750kTo1m:   "$750k-$1m",
	Bracket1mTo1_5m:   "$1m-$1.5m",
	Bracket1_5mTo2m:   "$1.5m-$2m",
	Bracket2mTo2_5m:   "$2m-$2.5m",
	Bracket2_5mTo3m:   "$2.5m-$3m",
	Bracket3mTo4m:     "$3m-$4m",
	Bracket4mTo6m:     "$4m-$6m",
	Bracket6mTo8m:     "$6m-$8m",
	Bracket8mTo10m:    "$8m-$10m",
	Bracket10mPlus:    "$10m+",
}

var bracketLowerBounds = [...]float64{
	BracketUnknown:    0,
	BracketUnder500k:  500_000,
	Bracket500kTo750k: 500_000,
	Bracket750kTo1m:   750_000,
	Bracket1mTo1_5m:   1_000_000,
	Bracket1_5mTo2m:   1_500_000,
	Bracket2mTo2_5m:   2_000_000,
	Bracket2_5mTo3m:   2_500_000,
	Bracket3mTo4m:     3_000_000,
	Bracket4mTo6m:     4_000_000,
	Bracket6mTo8m:     6_000_000,
	Bracket8mTo10m:    8_000_000,
	Bracket10mPlus:    10_000_000,
}

// legacyLabels maps labels still sent by older intake forms.
var legacyLabels = map[string]Bracket{
	"$500k-$1m": Bracket500kTo750k,
}

// Brackets lists every known bracket in ascending order.
func Brackets() []Bracket {
	out := make([]Bracket, 0, len(bracketLabels)-1)
	for b := BracketUnder500k; b <= Bracket10mPlus; b++ {
		out = append(out, b)
	}
	return out
}

// ParseBracket maps a bracket label to its Bracket. Surrounding whitespace
// is ignored; anything else must match exactly.
func ParseBracket(label string) (Bracket, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return BracketUnknown, false
	}
	for b := BracketUnder500k; b <= Bracket10mPlus; b++ {
		if bracketLabels[b] == label {
			return b, true
		}
	}
	if b, ok := legacyLabels[label]; ok {
		return b, true
	}
	return BracketUnknown, false
}

func (b Bracket) String() string {
	if b < BracketUnknown || b > Bracket10mPlus {
		return ""
	}
	return bracketLabels[b]
}

// Valid reports whether b is a known bracket.
func (b Bracket) Valid() bool {
	return b >= BracketUnder500k && b <= Bracket10mPlus
}

// LowerBound is the dollar figure discounts are computed from.
func (b Bracket) LowerBound() float64 {
	if !b.Valid() {
		return 0
	}
	return bracketLowerBounds[b]
}
