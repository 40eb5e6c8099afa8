package domain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/articflow/agentlink/internal/resilience"
)

func intPtr(v int) *int { return &v }

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithBaseURL(srv.URL), WithRateLimit(0, 0)}, opts...)
	return NewClient("test-key", opts...)
}

func TestSearchListings_Payload(t *testing.T) {
	t.Parallel()

	since := time.Date(2025, 10, 15, 13, 0, 0, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/listings/residential/_search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Sold", body["listingType"])
		assert.Len(t, body["propertyTypes"], len(AllPropertyTypes))
		assert.Equal(t, "2025-10-15T00:00:00Z", body["listedSince"])
		assert.EqualValues(t, 2, body["minBedrooms"])
		assert.NotContains(t, body, "maxBedrooms")
		assert.EqualValues(t, 100, body["pageSize"])

		loc := body["locations"].([]any)[0].(map[string]any)
		assert.Equal(t, "Manly", loc["suburb"])
		assert.Equal(t, "NSW", loc["state"])
		assert.Equal(t, "2095", loc["postCode"])
		assert.Equal(t, true, loc["includeSurroundingSuburbs"])
		assert.NotContains(t, loc, "region")

		_, _ = w.Write([]byte(`[
			{"type":"PropertyListing","listing":{"id":1,"propertyDetails":{"propertyType":"House"},
			 "advertiser":{"type":"Agency","id":10,"name":"Ray White - Manly","contacts":[{"name":"Jane Smith"}]},
			 "soldData":{"soldPrice":1500000,"soldDate":"2025-06-01"}}},
			{"type":"PropertyListing","listing":{"id":2,"propertyDetails":{"propertyType":"ApartmentUnitFlat"},
			 "advertiser":{"type":"Agency","id":10,"name":"Ray White - Manly","contacts":[{"name":"Jane Smith"}]},
			 "soldData":{"soldPrice":null}}}
		]`))
	})

	results, err := c.SearchListings(context.Background(), SearchRequest{
		ListingType:               ListingSold,
		Suburb:                    "Manly",
		State:                     "NSW",
		PostCode:                  "2095",
		IncludeSurroundingSuburbs: true,
		PropertyTypes:             []string{"house"},
		MinBedrooms:               intPtr(2),
		ListedSince:               since,
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	l := results[0].Listing
	assert.Equal(t, "1", l.Key())
	assert.True(t, l.Advertiser.IsAgency())
	require.NotNil(t, l.SoldData.SoldPrice)
	assert.Equal(t, 1_500_000.0, *l.SoldData.SoldPrice)
}

func TestSearchListings_Paging(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body searchPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		calls.Add(1)
		switch body.PageNumber {
		case 1:
			_, _ = w.Write([]byte(`[{"listing":{"id":1}},{"listing":{"id":2}}]`))
		case 2:
			_, _ = w.Write([]byte(`[{"listing":{"id":3}}]`))
		default:
			t.Errorf("unexpected page %d", body.PageNumber)
		}
	}, WithPaging(2, 5))

	results, err := c.SearchListings(context.Background(), SearchRequest{Suburb: "Manly", State: "NSW"})

	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.EqualValues(t, 2, calls.Load())
}

func TestSearchListings_LaterPageFailureKeepsResults(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body searchPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.PageNumber == 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"listing":{"id":1}}]`))
	}, WithPaging(1, 3))

	results, err := c.SearchListings(context.Background(), SearchRequest{Suburb: "Manly"})

	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchListings_HTTPError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`down`))
	})

	results, err := c.SearchListings(context.Background(), SearchRequest{Suburb: "Manly"})

	require.Error(t, err)
	assert.Nil(t, results)
	assert.Contains(t, err.Error(), "503")
	assert.True(t, resilience.IsTransient(err))
}

func TestSearchListings_Unauthorized(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.SearchListings(context.Background(), SearchRequest{Suburb: "Manly"})

	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err))
}

func TestGetAgency(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/agencies/42", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":42,"name":"LJ Hooker Manly",
			"profile":{"agencyLogoStandard":"https://img/logo.png"},
			"details":{"streetAddress1":"1 The Corso","streetAddress2":"","suburb":"Manly","state":"NSW","postcode":"2095"}}`))
	})

	agency, err := c.GetAgency(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, "LJ Hooker Manly", agency.Name)
	assert.Equal(t, "https://img/logo.png", agency.Profile.AgencyLogoStandard)
	assert.Equal(t, "1 The Corso, Manly, NSW, 2095", agency.Address())
}

func TestLookupAgent(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/agents/search":
			assert.Equal(t, "Jane Smith", r.URL.Query().Get("query"))
			_, _ = w.Write([]byte(`[
				{"agentId":1,"thumbnail":"https://img/a.jpg","agencyName":"McGrath Manly"},
				{"agentId":2,"thumbnail":"https://img/b.jpg","agencyName":"Ray White Manly"}
			]`))
		case "/agencies/":
			assert.Equal(t, "Ray White Manly", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(`[{"id":77,"name":"Ray White Manly"}]`))
		case "/agencies/77":
			_, _ = w.Write([]byte(`{"id":77,"profile":{"agencyLogoStandard":"https://img/rw.png"}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	p, err := c.LookupAgent(context.Background(), "Jane Smith", "ray white manly")

	require.NoError(t, err)
	assert.Equal(t, &AgentProfile{
		AgentID:    2,
		PhotoURL:   "https://img/b.jpg",
		AgencyName: "Ray White Manly",
		AgencyLogo: "https://img/rw.png",
	}, p)
}

func TestLookupAgent_NoLogoStillReturnsProfile(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/agents/search" {
			_, _ = w.Write([]byte(`[{"agentId":5,"thumbnail":"t.jpg","agencyName":"Solo Realty"}]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	p, err := c.LookupAgent(context.Background(), "Sam", "")

	require.NoError(t, err)
	assert.Equal(t, "t.jpg", p.PhotoURL)
	assert.Empty(t, p.AgencyLogo)
}

func TestLookupAgent_NotFound(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.LookupAgent(context.Background(), "Nobody", "")
	assert.Error(t, err)
}

func TestFilterPropertyTypes(t *testing.T) {
	t.Parallel()

	results := []SearchResult{
		{Listing: &Listing{ID: 1, PropertyDetails: &PropertyDetails{PropertyType: "House"}}},
		{Listing: &Listing{ID: 2}},
		{Listing: nil},
		{Listing: &Listing{ID: 3, PropertyDetails: &PropertyDetails{PropertyType: "Townhouse"}}},
	}

	assert.Len(t, FilterPropertyTypes(results, nil), 4)

	got := FilterPropertyTypes(results, []string{" townhouse", "HOUSE"})
	require.Len(t, got, 2)
	assert.EqualValues(t, 1, got[0].Listing.ID)
	assert.EqualValues(t, 3, got[1].Listing.ID)
}

func TestRateLimiterWaitsOnCancelledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL), WithRateLimit(0.001, 1))
	_, err := c.SearchAgents(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.SearchAgents(ctx, "b")
	assert.Error(t, err)
}
