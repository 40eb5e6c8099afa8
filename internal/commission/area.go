package commission

import "strings"

// AreaType selects which rate table applies to a location.
type AreaType int

const (
	AreaSuburb AreaType = iota
	AreaRural
	AreaInnerCity
)

func (a AreaType) String() string {
	switch a {
	case AreaRural:
		return "rural"
	case AreaInnerCity:
		return "inner_city"
	default:
		return "suburb"
	}
}

// ParseAreaType accepts the names produced by String.
func ParseAreaType(s string) (AreaType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "suburb", "suburbs":
		return AreaSuburb, true
	case "rural":
		return AreaRural, true
	case "inner_city", "inner city", "innercity":
		return AreaInnerCity, true
	default:
		return AreaSuburb, false
	}
}

// ParseCommissionSheet maps the area lookup's sheet number
// (1 inner city, 2 suburbs, 3 rural).
func ParseCommissionSheet(sheet string) (AreaType, bool) {
	switch strings.TrimSpace(sheet) {
	case "1":
		return AreaInnerCity, true
	case "2":
		return AreaSuburb, true
	case "3":
		return AreaRural, true
	default:
		return AreaInnerCity, false
	}
}
