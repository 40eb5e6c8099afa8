package domain

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SearchRequest describes a suburb search.
type SearchRequest struct {
	ListingType               ListingType
	Suburb                    string
	State                     string
	PostCode                  string
	Region                    string
	Area                      string
	IncludeSurroundingSuburbs bool
	// PropertyTypes filters results after the search; empty keeps everything.
	PropertyTypes []string
	MinBedrooms   *int
	MaxBedrooms   *int
	MinBathrooms  *int
	MaxBathrooms  *int
	MinCarspaces  *int
	MaxCarspaces  *int
	MinLandArea   *int
	MaxLandArea   *int
	ListedSince   time.Time
}

type searchLocation struct {
	State                     string `json:"state"`
	Suburb                    string `json:"suburb"`
	IncludeSurroundingSuburbs bool   `json:"includeSurroundingSuburbs"`
	PostCode                  string `json:"postCode,omitempty"`
	Region                    string `json:"region,omitempty"`
	Area                      string `json:"area,omitempty"`
}

type searchPayload struct {
	ListingType   ListingType      `json:"listingType"`
	PropertyTypes []string         `json:"propertyTypes"`
	Locations     []searchLocation `json:"locations"`
	MinBedrooms   *int             `json:"minBedrooms,omitempty"`
	MaxBedrooms   *int             `json:"maxBedrooms,omitempty"`
	MinBathrooms  *int             `json:"minBathrooms,omitempty"`
	MaxBathrooms  *int             `json:"maxBathrooms,omitempty"`
	MinCarspaces  *int             `json:"minCarspaces,omitempty"`
	MaxCarspaces  *int             `json:"maxCarspaces,omitempty"`
	MinLandArea   *int             `json:"minLandArea,omitempty"`
	MaxLandArea   *int             `json:"maxLandArea,omitempty"`
	ListedSince   string           `json:"listedSince,omitempty"`
	PageSize      int              `json:"pageSize"`
	PageNumber    int              `json:"pageNumber"`
}

func (r SearchRequest) payload(pageSize, page int) searchPayload {
	lt := r.ListingType
	if lt == "" {
		lt = ListingSold
	}
	p := searchPayload{
		ListingType:   lt,
		PropertyTypes: AllPropertyTypes,
		Locations: []searchLocation{{
			State:                     r.State,
			Suburb:                    r.Suburb,
			IncludeSurroundingSuburbs: r.IncludeSurroundingSuburbs,
			PostCode:                  r.PostCode,
			Region:                    r.Region,
			Area:                      r.Area,
		}},
		MinBedrooms:  r.MinBedrooms,
		MaxBedrooms:  r.MaxBedrooms,
		MinBathrooms: r.MinBathrooms,
		MaxBathrooms: r.MaxBathrooms,
		MinCarspaces: r.MinCarspaces,
		MaxCarspaces: r.MaxCarspaces,
		MinLandArea:  r.MinLandArea,
		MaxLandArea:  r.MaxLandArea,
		PageSize:     pageSize,
		PageNumber:   page,
	}
	if !r.ListedSince.IsZero() {
		p.ListedSince = r.ListedSince.UTC().Format("2006-01-02T00:00:00Z")
	}
	return p
}

// SearchListings walks up to maxPages pages. A failure on the first page is
// returned; a failure on a later page ends paging with what was collected.
func (c *httpClient) SearchListings(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	log := zap.L().With(
		zap.String("suburb", req.Suburb),
		zap.String("state", req.State),
		zap.String("listing_type", string(req.ListingType)),
	)

	var all []SearchResult
	for page := 1; page <= c.maxPages; page++ {
		var batch []SearchResult
		err := c.do(ctx, http.MethodPost, "/listings/residential/_search", nil, req.payload(c.pageSize, page), &batch)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			log.Warn("domain: stopping search paging", zap.Int("page", page), zap.Error(err))
			break
		}
		all = append(all, batch...)
		if len(batch) < c.pageSize {
			break
		}
	}

	filtered := FilterPropertyTypes(all, req.PropertyTypes)
	log.Debug("domain: search complete", zap.Int("results", len(all)), zap.Int("kept", len(filtered)))
	return filtered, nil
}

// FilterPropertyTypes keeps results whose property type is in types,
// ignoring case. An empty types list keeps everything.
func FilterPropertyTypes(results []SearchResult, types []string) []SearchResult {
	if len(types) == 0 {
		return results
	}
	want := make(map[string]struct{}, len(types))
	for _, t := range types {
		want[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		if _, ok := want[strings.ToLower(r.Listing.PropertyType())]; ok {
			out = append(out, r)
		}
	}
	return out
}
