package hooks

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Text is a string field that spreadsheet-backed webhooks sometimes send
// as a number, boolean or null.
type Text string

// UnmarshalJSON accepts any JSON scalar.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(b)
	return nil
}

// String returns the trimmed value.
func (t Text) String() string { return strings.TrimSpace(string(t)) }

// Int parses the value as an integer count, tolerating "12.0" and "1,204".
func (t Text) Int() (int, bool) {
	s := strings.ReplaceAll(t.String(), ",", "")
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

// ManualPullValue marks an override whose sales data is used verbatim.
const ManualPullValue = "Yes"

// FeaturedAgent is one row of the featured agents sheet. JSON keys match
// the sheet headers, including "Manully Pull Data".
type FeaturedAgent struct {
	Name             Text `json:"Name"`
	Agency           Text `json:"Agency"`
	SubscriptionType Text `json:"Subscription Type"`
	ManuallyPullData Text `json:"Manully Pull Data"`
	TotalSales       Text `json:"Total Sales"`
	MedianSoldPrice  Text `json:"Median Sold Price"`
	TotalSalesValue  Text `json:"Total Sales Value"`
	AgentPhoto       Text `json:"Agent Photo"`
	AgencyPhoto      Text `json:"Agency Photo"`
}

// Manual reports whether the row carries its own sales data.
func (f FeaturedAgent) Manual() bool {
	return f.ManuallyPullData.String() == ManualPullValue
}
