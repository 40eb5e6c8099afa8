package model

import "sort"

// NotDisclosed is shown wherever no sold price backs a figure.
const NotDisclosed = "Not disclosed"

// PropertySale is one listing attributed to an agent.
type PropertySale struct {
	SoldPrice *float64 `json:"sold_price"`
	SoldDate  string   `json:"sold_date"`
	IsPrimary bool     `json:"is_primary"`
}

// CommissionQuote is the fee guidance shown next to an agent.
type CommissionQuote struct {
	CommissionRate string `json:"commission_rate"`
	Discount       string `json:"discount"`
	Marketing      string `json:"marketing"`
}

// Empty reports whether neither rate nor marketing is known.
func (q CommissionQuote) Empty() bool {
	return q.CommissionRate == "" && q.Marketing == ""
}

// Agent is a per-agency agent record while aggregating and a canonical
// agent after deduplication.
type Agent struct {
	Name       string `json:"name"`
	PhotoURL   string `json:"photo_url"`
	Agency     string `json:"agency"`
	AgencyID   string `json:"agency_id,omitempty"`
	AgencyLogo string `json:"agency_logo"`

	// Properties is keyed by listing id.
	Properties map[string]PropertySale `json:"properties"`

	TotalSales      int     `json:"total_sales"`
	JointSales      int     `json:"joint_sales"`
	TotalValue      float64 `json:"total_value"`
	JointSalesValue float64 `json:"joint_sales_value"`
	MedianSoldPrice string  `json:"median_sold_price"`

	Branches []string `json:"branches,omitempty"`

	Featured             bool `json:"featured"`
	FeaturedPlus         bool `json:"featured_plus"`
	StandardSubscription bool `json:"standard_subscription"`

	// Manual marks a featured agent built from override data; ManualTotalValue
	// is then shown verbatim.
	Manual           bool   `json:"manual,omitempty"`
	ManualTotalValue string `json:"manual_total_value,omitempty"`

	Quote CommissionQuote `json:"quote"`
}

// NewAgent returns an agent with an initialized property map.
func NewAgent(name, photoURL, agency string) *Agent {
	return &Agent{
		Name:       name,
		PhotoURL:   photoURL,
		Agency:     agency,
		Properties: make(map[string]PropertySale),
	}
}

// HasSales reports whether the agent took part in any sale.
func (a *Agent) HasSales() bool {
	return a.TotalSales > 0 || a.JointSales > 0
}

// CombinedValue is total_value plus joint_sales_value.
func (a *Agent) CombinedValue() float64 {
	return a.TotalValue + a.JointSalesValue
}

// DisclosedPrices returns every known sold price, ascending.
func (a *Agent) DisclosedPrices() []float64 {
	prices := make([]float64, 0, len(a.Properties))
	for _, p := range a.Properties {
		if p.SoldPrice != nil {
			prices = append(prices, *p.SoldPrice)
		}
	}
	sort.Float64s(prices)
	return prices
}

// HasDisclosedPrice reports whether any property carries a sold price.
func (a *Agent) HasDisclosedPrice() bool {
	for _, p := range a.Properties {
		if p.SoldPrice != nil {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so merges never alias branch records.
func (a *Agent) Clone() *Agent {
	c := *a
	c.Properties = make(map[string]PropertySale, len(a.Properties))
	for k, v := range a.Properties {
		c.Properties[k] = v
	}
	c.Branches = append([]string(nil), a.Branches...)
	return &c
}

// AgencySales groups the agents seen under one advertiser.
type AgencySales struct {
	ID      string
	Name    string
	LogoURL string
	Agents  map[string]*Agent
	order   []string
}

// Agent returns the agent with the given display name, creating it on first sight.
func (g *AgencySales) Agent(name, photoURL string) *Agent {
	if a, ok := g.Agents[name]; ok {
		return a
	}
	a := NewAgent(name, photoURL, g.Name)
	a.AgencyID = g.ID
	a.AgencyLogo = g.LogoURL
	g.Agents[name] = a
	g.order = append(g.order, name)
	return a
}

// Remove drops an agent by display name.
func (g *AgencySales) Remove(name string) {
	delete(g.Agents, name)
	for i, n := range g.order {
		if n == name {
			g.order = append(g.order[:i], g.order[i+1:]...)
			return
		}
	}
}

// Ordered returns agents in first-seen order.
func (g *AgencySales) Ordered() []*Agent {
	out := make([]*Agent, 0, len(g.order))
	for _, n := range g.order {
		out = append(out, g.Agents[n])
	}
	return out
}

// Aggregation maps agency id to its agents, remembering insertion order.
type Aggregation struct {
	Agencies map[string]*AgencySales
	order    []string
}

// NewAggregation returns an empty aggregation.
func NewAggregation() *Aggregation {
	return &Aggregation{Agencies: make(map[string]*AgencySales)}
}

// Agency returns the agency with the given id, creating it on first sight.
func (ag *Aggregation) Agency(id, name, logoURL string) *AgencySales {
	if g, ok := ag.Agencies[id]; ok {
		return g
	}
	g := &AgencySales{ID: id, Name: name, LogoURL: logoURL, Agents: make(map[string]*Agent)}
	ag.Agencies[id] = g
	ag.order = append(ag.order, id)
	return g
}

// Ordered returns agencies in first-seen order.
func (ag *Aggregation) Ordered() []*AgencySales {
	out := make([]*AgencySales, 0, len(ag.order))
	for _, id := range ag.order {
		out = append(out, ag.Agencies[id])
	}
	return out
}

// Agents flattens the aggregation in first-seen order.
func (ag *Aggregation) Agents() []*Agent {
	var out []*Agent
	for _, g := range ag.Ordered() {
		out = append(out, g.Ordered()...)
	}
	return out
}

// Len returns the number of agencies.
func (ag *Aggregation) Len() int {
	return len(ag.order)
}
