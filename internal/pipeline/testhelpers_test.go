package pipeline

import (
	"github.com/articflow/agentlink/internal/model"
	"github.com/articflow/agentlink/pkg/domain"
)

func price(v float64) *float64 { return &v }

// sold builds a sold listing advertised by an agency with the given contacts.
func sold(id int64, agencyID int64, agency string, p *float64, contacts ...string) domain.SearchResult {
	cs := make([]domain.Contact, 0, len(contacts))
	for _, c := range contacts {
		cs = append(cs, domain.Contact{Name: c})
	}
	return domain.SearchResult{
		Type: "PropertyListing",
		Listing: &domain.Listing{
			ID:          id,
			ListingType: string(domain.ListingSold),
			Advertiser: &domain.Advertiser{
				Type:     "Agency",
				ID:       agencyID,
				Name:     agency,
				Contacts: cs,
			},
			SoldData: &domain.SoldData{SoldPrice: p, SoldDate: "2025-06-01"},
		},
	}
}

// rental builds a rental listing advertised by an agency.
func rental(id int64, agencyID int64, agency string) domain.SearchResult {
	return domain.SearchResult{
		Listing: &domain.Listing{
			ID:          id,
			ListingType: string(domain.ListingRent),
			Advertiser:  &domain.Advertiser{Type: "Agency", ID: agencyID, Name: agency},
		},
	}
}

// agentWith builds an agent with the given sales count and primary prices.
func agentWith(name, agency string, sales int, prices ...float64) *model.Agent {
	a := model.NewAgent(name, "", agency)
	a.TotalSales = sales
	for i, p := range prices {
		p := p
		a.Properties[agency+"-"+string(rune('a'+i))] = model.PropertySale{SoldPrice: &p, IsPrimary: true}
		a.TotalValue += p
	}
	return a
}

func names(agents []*model.Agent) []string {
	out := make([]string, 0, len(agents))
	for _, a := range agents {
		out = append(out, a.Name)
	}
	return out
}
