package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/articflow/agentlink/internal/commission"
	"github.com/articflow/agentlink/internal/model"
	"github.com/articflow/agentlink/pkg/domain"
	"github.com/articflow/agentlink/pkg/hooks"
)

// DefaultLookbackDays bounds how far back sold listings are searched.
const DefaultLookbackDays = 365

// Options tunes a Pipeline.
type Options struct {
	TopN         int
	LookbackDays int
	// EnrichAgencies fetches missing agency logos before deduplication.
	EnrichAgencies     bool
	FeaturedPlusTier   string
	CheckSubscriptions bool
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// StatusFunc is told when a run enters a new stage.
type StatusFunc func(ctx context.Context, status model.JobStatus)

// Pipeline builds agent and agency reports for a suburb.
type Pipeline struct {
	domain     domain.Client
	reconciler *Reconciler
	commission *commission.Resolver
	franchises FranchiseMatcher
	opts       Options
}

// New creates a Pipeline. hooks may be nil, in which case no featured agents
// exist and the area type is always inner city.
func New(dc domain.Client, hc hooks.Client, res *commission.Resolver, franchises FranchiseMatcher, opts Options) *Pipeline {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = DefaultLookbackDays
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if res == nil {
		var src commission.RateSource
		if hc != nil {
			src = hc
		}
		res = commission.NewResolver(src, nil)
	}
	if franchises == nil {
		franchises = NewFranchiseTable(nil)
	}
	return &Pipeline{
		domain: dc,
		reconciler: NewReconciler(hc, dc, res, ReconcileOptions{
			FeaturedPlusTier:   opts.FeaturedPlusTier,
			CheckSubscriptions: opts.CheckSubscriptions,
		}),
		commission: res,
		franchises: franchises,
		opts:       opts,
	}
}

// RunAgents builds the top agents report for req.
func (p *Pipeline) RunAgents(ctx context.Context, req model.ReportRequest, status StatusFunc) (*model.AgentsReport, error) {
	req = Normalize(req)
	if req.Suburb == "" {
		return nil, eris.New("pipeline: suburb is required")
	}
	if status == nil {
		status = func(context.Context, model.JobStatus) {}
	}
	log := zap.L().With(zap.String("suburb", req.Suburb), zap.String("state", req.State))
	start := p.opts.Now()

	report := &model.AgentsReport{
		Suburb:    req.Suburb,
		State:     req.State,
		TopAgents: []model.ReportAgent{},
	}

	status(ctx, model.JobStatusFetchingAgents)
	since := p.opts.Now().AddDate(0, 0, -p.opts.LookbackDays)
	results, err := p.fetchListings(ctx, searchRequest(req, domain.ListingSold, since))
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch sold listings")
	}

	agg := Aggregate(results)
	log.Info("pipeline: aggregated sold listings",
		zap.Int("listings", len(results)),
		zap.Int("agencies", agg.Len()),
		zap.Int("agents", len(agg.Agents())),
	)
	if agg.Len() == 0 {
		return report, nil
	}

	status(ctx, model.JobStatusFetchingAgencies)
	if p.opts.EnrichAgencies {
		p.enrichAgencies(ctx, agg)
	}
	agents := Dedupe(agg.Agents(), p.franchises)

	status(ctx, model.JobStatusComputingCommission)
	rec := p.reconciler.Reconcile(ctx, agents, req, NewSubscriptionCache())
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: reconcile")
	}

	top := SelectTop(rec.Agents, p.opts.TopN)
	for _, a := range top {
		report.TopAgents = append(report.TopAgents, ToReportAgent(a))
	}

	summary := p.summaryQuote(ctx, top, rec, req)
	report.AgentCommission = summary.CommissionRate
	report.Discount = summary.Discount
	report.Marketing = summary.Marketing
	if rec.AreaResolved {
		report.AreaType = rec.Area.String()
	}

	log.Info("pipeline: agents report complete",
		zap.Int("candidates", len(rec.Agents)),
		zap.Int("selected", len(top)),
		zap.Bool("featured_overrides", rec.HasOverrides),
		zap.Duration("elapsed", p.opts.Now().Sub(start)),
	)
	return report, nil
}

// summaryQuote picks the quote shown above the table: the first featured
// agent's, else the top agent's, else the standard rate for the area.
func (p *Pipeline) summaryQuote(ctx context.Context, top []*model.Agent, rec *Reconciliation, req model.ReportRequest) model.CommissionQuote {
	for _, a := range top {
		if a.Featured && !a.Quote.Empty() {
			return a.Quote
		}
	}
	if len(top) > 0 && !top[0].Quote.Empty() {
		return top[0].Quote
	}
	if !rec.AreaResolved {
		rec.Area = p.reconciler.AreaType(ctx, req)
		rec.AreaResolved = true
	}
	return p.commission.Standard(rec.Area, req.HomeOwnerPricing)
}

// enrichAgencies fills missing agency logos from the agency endpoint, one
// agency at a time. Lookup failures leave the logo blank.
func (p *Pipeline) enrichAgencies(ctx context.Context, agg *model.Aggregation) {
	for _, agency := range agg.Ordered() {
		if ctx.Err() != nil {
			return
		}
		if agency.LogoURL != "" {
			continue
		}
		id, err := parseAgencyID(agency.ID)
		if err != nil {
			continue
		}
		info, err := p.domain.GetAgency(ctx, id)
		if err != nil {
			zap.L().Debug("pipeline: agency lookup failed", zap.String("agency_id", agency.ID), zap.Error(err))
			continue
		}
		logo := info.Profile.AgencyLogoStandard
		if logo == "" {
			logo = info.Profile.AgencyLogoSmall
		}
		agency.LogoURL = logo
		for _, a := range agency.Ordered() {
			if a.AgencyLogo == "" {
				a.AgencyLogo = logo
			}
		}
	}
}
