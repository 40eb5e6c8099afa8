package pipeline

import (
	"strconv"
	"strings"

	"github.com/articflow/agentlink/internal/model"
	"github.com/articflow/agentlink/pkg/domain"
)

// Aggregate groups sold listings by agency then agent. The first contact on
// a listing is credited with the sale, later contacts with a joint sale.
// Listings without an agency advertiser, an id or a named contact are
// skipped. Agents left without sales are dropped and every remaining agent
// gets its median sold price.
func Aggregate(results []domain.SearchResult) *model.Aggregation {
	agg := model.NewAggregation()

	for _, r := range results {
		l := r.Listing
		if l == nil || !l.Advertiser.IsAgency() || !hasNamedContact(l.Advertiser.Contacts) {
			continue
		}
		listingID := l.Key()
		if listingID == "" {
			continue
		}

		var price *float64
		var soldDate string
		if l.SoldData != nil {
			price = l.SoldData.SoldPrice
			soldDate = l.SoldData.SoldDate
		}

		adv := l.Advertiser
		agency := agg.Agency(strconv.FormatInt(adv.ID, 10), adv.Name, adv.LogoURL)

		for i, c := range adv.Contacts {
			name := strings.TrimSpace(c.Name)
			if name == "" {
				continue
			}
			a := agency.Agent(name, c.PhotoURL)
			if a.PhotoURL == "" {
				a.PhotoURL = c.PhotoURL
			}

			primary := i == 0
			a.Properties[listingID] = model.PropertySale{SoldPrice: price, SoldDate: soldDate, IsPrimary: primary}
			if primary {
				a.TotalSales++
				if price != nil {
					a.TotalValue += *price
				}
			} else {
				a.JointSales++
				if price != nil {
					a.JointSalesValue += *price
				}
			}
		}
	}

	for _, g := range agg.Ordered() {
		for _, a := range g.Ordered() {
			if !a.HasSales() {
				g.Remove(a.Name)
				continue
			}
			a.MedianSoldPrice = medianLabel(a)
		}
	}
	return agg
}

func hasNamedContact(contacts []domain.Contact) bool {
	for _, c := range contacts {
		if strings.TrimSpace(c.Name) != "" {
			return true
		}
	}
	return false
}

// medianLabel formats the median over every disclosed price, primary and joint.
func medianLabel(a *model.Agent) string {
	m, ok := Median(a.DisclosedPrices())
	if !ok {
		return model.NotDisclosed
	}
	return FormatPrice(m)
}
