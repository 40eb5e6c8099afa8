package pipeline

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/articflow/agentlink/internal/model"
	"github.com/articflow/agentlink/pkg/domain"
)

// RunAgencies builds the top leasing agencies report for req from current
// rental listings.
func (p *Pipeline) RunAgencies(ctx context.Context, req model.ReportRequest, status StatusFunc) (*model.AgencyReport, error) {
	req = Normalize(req)
	if req.Suburb == "" {
		return nil, eris.New("pipeline: suburb is required")
	}
	if status == nil {
		status = func(context.Context, model.JobStatus) {}
	}

	status(ctx, model.JobStatusFetchingAgents)
	results, err := p.fetchListings(ctx, searchRequest(req, domain.ListingRent, p.opts.Now().AddDate(0, 0, -p.opts.LookbackDays)))
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch rental listings")
	}

	ranked := RankAgencies(results, req.Suburb, req.State)
	if len(ranked) > p.opts.TopN {
		ranked = ranked[:p.opts.TopN]
	}

	status(ctx, model.JobStatusFetchingAgencies)
	for i := range ranked {
		p.fillAgencyDetails(ctx, &ranked[i])
	}

	zap.L().Info("pipeline: agencies report complete",
		zap.String("suburb", req.Suburb),
		zap.Int("listings", len(results)),
		zap.Int("selected", len(ranked)),
	)
	return &model.AgencyReport{Suburb: req.Suburb, State: req.State, TopAgencies: ranked}, nil
}

// RankAgencies counts rental listings per advertising agency and orders
// agencies by count, busiest first. Ties keep first-seen order. Address
// defaults to "Name, Suburb, State".
func RankAgencies(results []domain.SearchResult, suburb, state string) []model.RentalAgency {
	idx := make(map[int64]int)
	out := []model.RentalAgency{}
	for _, r := range results {
		l := r.Listing
		if l == nil || !l.Advertiser.IsAgency() || l.Advertiser.ID == 0 {
			continue
		}
		adv := l.Advertiser
		i, ok := idx[adv.ID]
		if !ok {
			i = len(out)
			idx[adv.ID] = i
			name := strings.TrimSpace(adv.Name)
			out = append(out, model.RentalAgency{
				ID:      strconv.FormatInt(adv.ID, 10),
				Name:    name,
				LogoURL: adv.LogoURL,
				Address: strings.Join([]string{name, suburb, state}, ", "),
			})
		}
		out[i].ListingCount++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ListingCount > out[j].ListingCount })
	return out
}

func (p *Pipeline) fillAgencyDetails(ctx context.Context, ra *model.RentalAgency) {
	id, err := parseAgencyID(ra.ID)
	if err != nil {
		return
	}
	info, err := p.domain.GetAgency(ctx, id)
	if err != nil {
		zap.L().Debug("pipeline: agency details unavailable", zap.String("agency_id", ra.ID), zap.Error(err))
		return
	}
	if addr := info.Address(); addr != "" {
		ra.Address = addr
	}
	if ra.LogoURL == "" {
		ra.LogoURL = info.Profile.AgencyLogoStandard
	}
	if ra.Name == "" {
		ra.Name = info.Name
	}
}

func parseAgencyID(id string) (int64, error) {
	v, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "pipeline: agency id %q", id)
	}
	return v, nil
}
