package pipeline

import (
	"sort"

	"github.com/articflow/agentlink/internal/model"
)

// DefaultTopN is the number of agents a report shows.
const DefaultTopN = 5

// SelectTop picks the agents for a report. Featured agents always appear,
// Featured Plus first and otherwise in reconciliation order. Remaining slots
// up to n go to standard-subscription agents and then to everyone else,
// each by total sales descending.
func SelectTop(agents []*model.Agent, n int) []*model.Agent {
	var plus, featured, standard, regular []*model.Agent
	for _, a := range agents {
		switch {
		case a.Featured && a.FeaturedPlus:
			plus = append(plus, a)
		case a.Featured:
			featured = append(featured, a)
		case a.StandardSubscription:
			standard = append(standard, a)
		default:
			regular = append(regular, a)
		}
	}

	bySales := func(s []*model.Agent) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].TotalSales > s[j].TotalSales })
	}
	bySales(standard)
	bySales(regular)

	out := make([]*model.Agent, 0, max(n, len(plus)+len(featured)))
	out = append(out, plus...)
	out = append(out, featured...)
	for _, tier := range [][]*model.Agent{standard, regular} {
		free := n - len(out)
		if free <= 0 {
			break
		}
		out = append(out, tier[:min(free, len(tier))]...)
	}
	return out
}

// DisplayTotalValue is the total sales value shown for an agent.
func DisplayTotalValue(a *model.Agent) string {
	if a.Manual && len(a.Properties) == 0 && a.ManualTotalValue != "" {
		return a.ManualTotalValue
	}
	if !a.HasDisclosedPrice() {
		return model.NotDisclosed
	}
	return FormatPrice(a.CombinedValue())
}

// ToReportAgent converts a selected agent into a report row.
func ToReportAgent(a *model.Agent) model.ReportAgent {
	joint := "$0"
	if a.JointSalesValue > 0 {
		joint = FormatPrice(a.JointSalesValue)
	}
	median := a.MedianSoldPrice
	if median == "" {
		median = model.NotDisclosed
	}
	return model.ReportAgent{
		Name:            CapitalizeName(a.Name),
		Agency:          a.Agency,
		PhotoURL:        a.PhotoURL,
		AgencyLogoURL:   a.AgencyLogo,
		TotalSales:      a.TotalSales,
		JointSales:      a.JointSales,
		MedianSoldPrice: median,
		TotalSalesValue: DisplayTotalValue(a),
		JointSalesValue: joint,
		Featured:        a.Featured,
		FeaturedPlus:    a.FeaturedPlus,
		CommissionRate:  a.Quote.CommissionRate,
		Discount:        a.Quote.Discount,
		Marketing:       a.Quote.Marketing,
	}
}
