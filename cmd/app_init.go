package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/articflow/agentlink/internal/commission"
	"github.com/articflow/agentlink/internal/config"
	"github.com/articflow/agentlink/internal/pipeline"
	"github.com/articflow/agentlink/internal/resilience"
	"github.com/articflow/agentlink/internal/store"
	"github.com/articflow/agentlink/pkg/domain"
	"github.com/articflow/agentlink/pkg/hooks"
)

// initPipeline builds the API clients, rate tables and the report pipeline
// from c. The returned breakers guard the webhooks.
func initPipeline(c *config.Config) (*pipeline.Pipeline, *resilience.Breakers, error) {
	dc := domain.NewClient(c.Domain.APIKey,
		domain.WithBaseURL(c.Domain.BaseURL),
		domain.WithPaging(c.Domain.PageSize, c.Domain.MaxPages),
		domain.WithRateLimit(c.Domain.RequestsPerSecond, max(1, int(c.Domain.RequestsPerSecond))),
	)

	breakerCfg := resilience.CircuitConfigFrom(c.Webhooks.FailureThreshold, c.Webhooks.ResetTimeoutSecs)
	breakerCfg.ShouldTrip = resilience.IsTransient
	breakers := resilience.NewBreakers(breakerCfg)
	hc := hooks.NewClient(hooks.URLs{
		FeaturedAgents:       c.Webhooks.FeaturedAgentsURL,
		StandardSubscription: c.Webhooks.StandardSubscriptionURL,
		FeaturedCommission:   c.Webhooks.FeaturedCommissionURL,
		AreaType:             c.Webhooks.AreaTypeURL,
	},
		hooks.WithHTTPClient(&http.Client{Timeout: time.Duration(c.Webhooks.TimeoutSecs) * time.Second}),
		hooks.WithBreakers(breakers),
	)

	table := commission.DefaultTable()
	if c.Commission.RatesFile != "" {
		t, err := commission.LoadWorkbook(c.Commission.RatesFile)
		if err != nil {
			return nil, nil, eris.Wrap(err, "load commission rates")
		}
		table = t
		zap.L().Info("commission rates loaded", zap.String("file", c.Commission.RatesFile))
	}

	var franchises pipeline.FranchiseMatcher
	if c.Franchise.File != "" {
		ft, err := pipeline.LoadFranchiseTable(c.Franchise.File)
		if err != nil {
			return nil, nil, eris.Wrap(err, "load franchises")
		}
		franchises = ft
		zap.L().Info("franchise list loaded", zap.Int("franchises", len(ft.Fragments())))
	}

	p := pipeline.New(dc, hc, commission.NewResolver(hc, table), franchises, pipeline.Options{
		TopN:               c.Report.TopN,
		LookbackDays:       c.Domain.LookbackDays,
		EnrichAgencies:     c.Domain.EnrichAgencies,
		FeaturedPlusTier:   c.Report.FeaturedPlusTier,
		CheckSubscriptions: c.Webhooks.CheckStandardSubscription,
	})
	return p, breakers, nil
}

// initStore opens and migrates the configured job store. Callers close it.
func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch c.Store.Driver {
	case "sqlite":
		st, err = store.NewSQLite(c.Store.SQLitePath)
	case "postgres":
		st, err = store.NewPostgres(ctx, c.Store.DatabaseURL, c.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "open %s store", c.Store.Driver)
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}
