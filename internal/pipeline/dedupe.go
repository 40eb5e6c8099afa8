package pipeline

import (
	"github.com/articflow/agentlink/internal/model"
)

// Dedupe merges records of the same agent across offices of one agency.
// Records are grouped by name, then by the main agency of their office
// label; groups of more than one record are merged. Output keeps first-seen
// order.
func Dedupe(agents []*model.Agent, m FranchiseMatcher) []*model.Agent {
	byName := groupBy(agents, func(a *model.Agent) string { return nameKey(a.Name) })

	out := make([]*model.Agent, 0, len(agents))
	for _, sameName := range byName {
		if len(sameName) == 1 {
			out = append(out, sameName[0])
			continue
		}
		byAgency := groupBy(sameName, func(a *model.Agent) string { return m.MainAgency(a.Agency) })
		for _, sub := range byAgency {
			if len(sub) == 1 {
				out = append(out, sub[0])
				continue
			}
			out = append(out, merge(m.MainAgency(sub[0].Agency), sub))
		}
	}
	return out
}

// groupBy partitions agents by key, keeping first-seen order of keys and
// of members within each group.
func groupBy(agents []*model.Agent, key func(*model.Agent) string) [][]*model.Agent {
	idx := make(map[string]int)
	var groups [][]*model.Agent
	for _, a := range agents {
		k := key(a)
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], a)
	}
	return groups
}

// merge sums branch records into one agent shown under the main agency.
func merge(mainAgency string, recs []*model.Agent) *model.Agent {
	c := recs[0].Clone()
	c.Agency = mainAgency
	c.Branches = make([]string, 0, len(recs))

	for i, r := range recs {
		c.Branches = append(c.Branches, r.Agency)
		if c.PhotoURL == "" {
			c.PhotoURL = r.PhotoURL
		}
		if c.AgencyLogo == "" {
			c.AgencyLogo = r.AgencyLogo
		}
		if i == 0 {
			continue
		}
		c.TotalSales += r.TotalSales
		c.JointSales += r.JointSales
		c.TotalValue += r.TotalValue
		c.JointSalesValue += r.JointSalesValue
		for id, p := range r.Properties {
			c.Properties[id] = p
		}
	}
	c.MedianSoldPrice = medianLabel(c)
	return c
}

// DedupeByName collapses records sharing a name regardless of agency. A
// featured record beats a non-featured one; otherwise more sales win and
// ties keep the first-seen record. The winner takes the position of the
// name's first appearance.
func DedupeByName(agents []*model.Agent) []*model.Agent {
	idx := make(map[string]int, len(agents))
	out := make([]*model.Agent, 0, len(agents))
	for _, a := range agents {
		k := nameKey(a.Name)
		i, ok := idx[k]
		if !ok {
			idx[k] = len(out)
			out = append(out, a)
			continue
		}
		if beats(a, out[i]) {
			out[i] = a
		}
	}
	return out
}

func beats(challenger, holder *model.Agent) bool {
	if challenger.Featured != holder.Featured {
		return challenger.Featured
	}
	return challenger.TotalSales > holder.TotalSales
}
