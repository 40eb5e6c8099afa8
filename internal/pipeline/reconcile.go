package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/articflow/agentlink/internal/commission"
	"github.com/articflow/agentlink/internal/model"
	"github.com/articflow/agentlink/pkg/domain"
	"github.com/articflow/agentlink/pkg/hooks"
)

// DefaultFeaturedPlusTier is the subscription label of the top tier.
const DefaultFeaturedPlusTier = "Featured Plus"

// ReconcileOptions tunes a Reconciler.
type ReconcileOptions struct {
	// FeaturedPlusTier must match a row's subscription type exactly.
	FeaturedPlusTier string
	// CheckSubscriptions probes the standard subscription of every
	// non-featured agent.
	CheckSubscriptions bool
}

// Reconciler merges featured-agent rows into computed agents and attaches
// commission quotes.
type Reconciler struct {
	hooks      hooks.Client
	lookup     domain.Client
	commission *commission.Resolver
	opts       ReconcileOptions
}

// NewReconciler creates a Reconciler. lookup may be nil, in which case
// manual rows without photos keep blank photos.
func NewReconciler(h hooks.Client, lookup domain.Client, res *commission.Resolver, opts ReconcileOptions) *Reconciler {
	if opts.FeaturedPlusTier == "" {
		opts.FeaturedPlusTier = DefaultFeaturedPlusTier
	}
	return &Reconciler{hooks: h, lookup: lookup, commission: res, opts: opts}
}

// Reconciliation is the outcome of Reconcile.
type Reconciliation struct {
	Agents []*model.Agent
	// HasOverrides is set when the suburb has featured rows.
	HasOverrides bool
	// Area and StandardQuote are set when no featured rows exist.
	Area          commission.AreaType
	AreaResolved  bool
	StandardQuote model.CommissionQuote
}

// Reconcile applies the suburb's featured rows to agents. Without rows every
// agent gets the standard quote for the suburb's area type. Standard
// subscriptions are then probed for non-featured agents through cache, and
// records are finally collapsed by name.
func (r *Reconciler) Reconcile(ctx context.Context, agents []*model.Agent, req model.ReportRequest, cache *SubscriptionCache) *Reconciliation {
	log := zap.L().With(zap.String("suburb", req.Suburb), zap.String("state", req.State))
	res := &Reconciliation{}

	rows := r.featuredRows(ctx, req)
	if rows == nil {
		res.Area = r.AreaType(ctx, req)
		res.AreaResolved = true
		res.StandardQuote = r.commission.Standard(res.Area, req.HomeOwnerPricing)
		for _, a := range agents {
			a.Quote = res.StandardQuote
		}
		log.Debug("reconcile: no featured agents, applied standard quote",
			zap.String("area_type", res.Area.String()),
			zap.Int("agents", len(agents)),
		)
	} else {
		res.HasOverrides = true
		agents = r.applyRows(ctx, agents, rows, req)
	}

	if r.opts.CheckSubscriptions {
		for _, a := range agents {
			if !a.Featured {
				a.StandardSubscription = r.subscription(ctx, a.Name, req, cache)
			}
		}
	}

	res.Agents = DedupeByName(agents)
	return res
}

func (r *Reconciler) featuredRows(ctx context.Context, req model.ReportRequest) []hooks.FeaturedAgent {
	if r.hooks == nil {
		return nil
	}
	rows, err := r.hooks.FeaturedAgents(ctx, req.Suburb, req.State)
	if err != nil {
		zap.L().Warn("reconcile: featured agents unavailable",
			zap.String("suburb", req.Suburb), zap.Error(err))
		return nil
	}
	if len(rows) == 0 {
		return nil
	}
	return rows
}

func (r *Reconciler) applyRows(ctx context.Context, agents []*model.Agent, rows []hooks.FeaturedAgent, req model.ReportRequest) []*model.Agent {
	byName := make(map[string]*model.Agent, len(agents))
	for _, a := range agents {
		k := nameKey(a.Name)
		if _, ok := byName[k]; !ok {
			byName[k] = a
		}
	}

	for _, row := range rows {
		name := row.Name.String()
		if name == "" {
			continue
		}
		plus := row.SubscriptionType.String() == r.opts.FeaturedPlusTier
		existing := byName[nameKey(name)]

		if row.Manual() {
			m := r.manualAgent(ctx, row, plus, req)
			if existing != nil {
				*existing = *m
				continue
			}
			agents = append(agents, m)
			byName[nameKey(name)] = m
			continue
		}

		if existing == nil {
			zap.L().Debug("reconcile: featured agent not among computed agents", zap.String("agent", name))
			continue
		}
		existing.Featured = true
		existing.FeaturedPlus = plus
		existing.Quote = r.commission.Featured(ctx, existing.Name, req.Suburb, req.State, req.HomeOwnerPricing)
	}
	return agents
}

// manualAgent builds an agent from a row's own sales figures.
func (r *Reconciler) manualAgent(ctx context.Context, row hooks.FeaturedAgent, plus bool, req model.ReportRequest) *model.Agent {
	name := row.Name.String()
	a := model.NewAgent(name, DirectDownloadURL(row.AgentPhoto.String()), row.Agency.String())
	a.AgencyLogo = DirectDownloadURL(row.AgencyPhoto.String())
	a.TotalSales, _ = row.TotalSales.Int()
	a.MedianSoldPrice = row.MedianSoldPrice.String()
	if a.MedianSoldPrice == "" {
		a.MedianSoldPrice = model.NotDisclosed
	}
	a.ManualTotalValue = row.TotalSalesValue.String()
	a.Manual = true
	a.Featured = true
	a.FeaturedPlus = plus

	if (a.PhotoURL == "" || a.AgencyLogo == "") && r.lookup != nil {
		p, err := r.lookup.LookupAgent(ctx, name, a.Agency)
		if err != nil {
			zap.L().Debug("reconcile: agent lookup failed", zap.String("agent", name), zap.Error(err))
		} else {
			if a.PhotoURL == "" {
				a.PhotoURL = p.PhotoURL
			}
			if a.AgencyLogo == "" {
				a.AgencyLogo = p.AgencyLogo
			}
			if a.Agency == "" {
				a.Agency = p.AgencyName
			}
		}
	}

	a.Quote = r.commission.Featured(ctx, name, req.Suburb, req.State, req.HomeOwnerPricing)
	return a
}

// AreaType resolves the suburb's rate table. Lookup failures fall back to
// the inner city table.
func (r *Reconciler) AreaType(ctx context.Context, req model.ReportRequest) commission.AreaType {
	if r.hooks == nil {
		return commission.AreaInnerCity
	}
	sheet, err := r.hooks.AreaType(ctx, req.Suburb, req.State, req.PostCode)
	if err != nil {
		zap.L().Warn("reconcile: area type unavailable, using inner city",
			zap.String("suburb", req.Suburb), zap.Error(err))
		return commission.AreaInnerCity
	}
	area, ok := commission.ParseCommissionSheet(sheet)
	if !ok {
		zap.L().Warn("reconcile: unknown commission sheet, using inner city", zap.String("sheet", sheet))
	}
	return area
}

func (r *Reconciler) subscription(ctx context.Context, name string, req model.ReportRequest, cache *SubscriptionCache) bool {
	if v, ok := cache.Get(name); ok {
		return v
	}
	var v bool
	if r.hooks != nil {
		var err error
		v, err = r.hooks.StandardSubscription(ctx, name, req.Suburb, req.State)
		if err != nil {
			zap.L().Debug("reconcile: subscription check failed", zap.String("agent", name), zap.Error(err))
			v = false
		}
	}
	cache.Set(name, v)
	return v
}

// DirectDownloadURL turns a shared-file "view" link (dl=0) into a direct
// download link (dl=1). Other URLs are returned unchanged.
func DirectDownloadURL(u string) string {
	for _, marker := range []string{"?dl=0", "&dl=0"} {
		i := strings.Index(u, marker)
		if i < 0 {
			continue
		}
		end := i + len(marker)
		if end == len(u) || u[end] == '&' || u[end] == '#' {
			return u[:end-1] + "1" + u[end:]
		}
	}
	return u
}
