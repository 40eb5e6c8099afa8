package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/articflow/agentlink/internal/model"
	"github.com/articflow/agentlink/pkg/domain"
)

// DefaultState is used when a request leaves the state blank.
const DefaultState = "NSW"

// Normalize trims the request and fills the default state.
func Normalize(req model.ReportRequest) model.ReportRequest {
	req.Suburb = strings.TrimSpace(req.Suburb)
	req.State = strings.ToUpper(strings.TrimSpace(req.State))
	if req.State == "" {
		req.State = DefaultState
	}
	req.PostCode = strings.TrimSpace(req.PostCode)
	req.HomeOwnerPricing = strings.TrimSpace(req.HomeOwnerPricing)
	return req
}

// searchRequest maps a report request onto a listing search.
func searchRequest(req model.ReportRequest, lt domain.ListingType, since time.Time) domain.SearchRequest {
	return domain.SearchRequest{
		ListingType:               lt,
		Suburb:                    req.Suburb,
		State:                     req.State,
		PostCode:                  req.PostCode,
		Region:                    req.Region,
		Area:                      req.Area,
		IncludeSurroundingSuburbs: req.IncludeSurroundingSuburbs,
		PropertyTypes:             req.PropertyTypes,
		MinBedrooms:               req.MinBedrooms,
		MaxBedrooms:               req.MaxBedrooms,
		MinBathrooms:              req.MinBathrooms,
		MaxBathrooms:              req.MaxBathrooms,
		MinCarspaces:              req.MinCarspaces,
		MaxCarspaces:              req.MaxCarspaces,
		MinLandArea:               req.MinLandArea,
		MaxLandArea:               req.MaxLandArea,
		ListedSince:               since,
	}
}

// fetchListings runs a search. Adapter failures are logged and produce an
// empty result; only cancellation of ctx is returned as an error.
func (p *Pipeline) fetchListings(ctx context.Context, sr domain.SearchRequest) ([]domain.SearchResult, error) {
	results, err := p.domain.SearchListings(ctx, sr)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		zap.L().Warn("pipeline: listing search failed, continuing with no listings",
			zap.String("suburb", sr.Suburb),
			zap.String("listing_type", string(sr.ListingType)),
			zap.Error(err),
		)
		return nil, nil
	}
	return results, nil
}
