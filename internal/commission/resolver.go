package commission

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/articflow/agentlink/internal/model"
)

// RateSource returns agent-specific rates keyed "<bracket> Commission" and
// "<bracket> Marketing".
type RateSource interface {
	FeaturedCommission(ctx context.Context, agentName, suburb, state string) (map[string]string, error)
}

// Resolver produces commission quotes from the featured-agent source with
// the standard table as fallback.
type Resolver struct {
	source RateSource
	table  *Table
}

// NewResolver creates a Resolver. A nil table uses DefaultTable.
func NewResolver(source RateSource, table *Table) *Resolver {
	if table == nil {
		table = DefaultTable()
	}
	return &Resolver{source: source, table: table}
}

// Standard returns the table rates for an area and bracket. Standard
// quotes never carry a discount.
func (r *Resolver) Standard(area AreaType, bracket string) model.CommissionQuote {
	b, ok := ParseBracket(bracket)
	if !ok {
		return model.CommissionQuote{}
	}
	rates, _ := r.table.Lookup(area, b)
	return model.CommissionQuote{CommissionRate: rates.Commission, Marketing: rates.Marketing}
}

// Featured looks up an agent's own rates, filling gaps from the suburb
// table, and derives the discount from the resulting rate.
func (r *Resolver) Featured(ctx context.Context, agentName, suburb, state, bracket string) model.CommissionQuote {
	log := zap.L().With(
		zap.String("agent", agentName),
		zap.String("suburb", suburb),
		zap.String("bracket", bracket),
	)

	var q model.CommissionQuote
	if r.source != nil && strings.TrimSpace(bracket) != "" {
		data, err := r.source.FeaturedCommission(ctx, agentName, suburb, state)
		if err != nil {
			log.Warn("commission: featured rates unavailable, using standard table", zap.Error(err))
		}
		q.CommissionRate, q.Marketing = pick(data, bracket)
	}

	if q.CommissionRate == "" || q.Marketing == "" {
		std := r.Standard(AreaSuburb, bracket)
		if q.CommissionRate == "" {
			q.CommissionRate = std.CommissionRate
		}
		if q.Marketing == "" {
			q.Marketing = std.Marketing
		}
	}

	if q.CommissionRate != "" {
		q.Discount = Discount(q.CommissionRate, bracket)
		if q.Discount == "" {
			log.Warn("commission: could not derive discount", zap.String("rate", q.CommissionRate))
		}
	}
	return q
}

// pick reads the rate and marketing entries for a bracket, trying the label
// as sent and then its canonical form.
func pick(data map[string]string, bracket string) (rate, marketing string) {
	if len(data) == 0 {
		return "", ""
	}
	labels := []string{strings.TrimSpace(bracket)}
	if b, ok := ParseBracket(bracket); ok && b.String() != labels[0] {
		labels = append(labels, b.String())
	}
	for _, l := range labels {
		if rate == "" {
			rate = strings.TrimSpace(data[l+" Commission"])
		}
		if marketing == "" {
			marketing = strings.TrimSpace(data[l+" Marketing"])
		}
	}
	return rate, marketing
}
