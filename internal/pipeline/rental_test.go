package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/articflow/agentlink/internal/model"
	"github.com/articflow/agentlink/pkg/domain"
)

func rentalListings() []domain.SearchResult {
	private := rental(9, 0, "")
	private.Listing.Advertiser.Type = "Private"
	return []domain.SearchResult{
		rental(1, 1, "A Realty"),
		rental(2, 2, "B Realty"),
		rental(3, 3, "C Realty"),
		rental(4, 2, "B Realty"),
		rental(5, 1, "A Realty"),
		rental(6, 1, "A Realty"),
		rental(7, 3, "C Realty"),
		private,
		{Listing: nil},
	}
}

func TestRankAgencies(t *testing.T) {
	t.Parallel()

	got := RankAgencies(rentalListings(), "Manly", "NSW")

	require.Len(t, got, 3)
	assert.Equal(t, model.RentalAgency{ID: "1", Name: "A Realty", ListingCount: 3, Address: "A Realty, Manly, NSW"}, got[0])
	assert.Equal(t, "B Realty", got[1].Name)
	assert.Equal(t, 2, got[1].ListingCount)
	assert.Equal(t, "C Realty", got[2].Name)
	assert.Equal(t, 2, got[2].ListingCount)

	assert.Empty(t, RankAgencies(nil, "Manly", "NSW"))
}

func TestRunAgencies(t *testing.T) {
	d := &mockDomainClient{}
	d.On("SearchListings", mock.Anything, mock.MatchedBy(func(sr domain.SearchRequest) bool {
		return sr.ListingType == domain.ListingRent && sr.Suburb == "Manly"
	})).Return(rentalListings(), nil)
	d.On("GetAgency", mock.Anything, int64(1)).Return(&domain.Agency{
		ID:      1,
		Name:    "A Realty",
		Profile: domain.AgencyProfile{AgencyLogoStandard: "https://img/a.png"},
		Details: domain.AgencyDetails{StreetAddress1: "1 The Corso", Suburb: "Manly", State: "NSW", Postcode: "2095"},
	}, nil)
	d.On("GetAgency", mock.Anything, int64(2)).Return(nil, errors.New("down"))

	var statuses []model.JobStatus
	report, err := New(d, nil, nil, nil, Options{Now: fixedClock, TopN: 2}).
		RunAgencies(context.Background(), model.ReportRequest{Suburb: "Manly"}, func(_ context.Context, s model.JobStatus) {
			statuses = append(statuses, s)
		})

	require.NoError(t, err)
	assert.Equal(t, "NSW", report.State)
	require.Len(t, report.TopAgencies, 2)
	assert.Equal(t, "1 The Corso, Manly, NSW, 2095", report.TopAgencies[0].Address)
	assert.Equal(t, "https://img/a.png", report.TopAgencies[0].LogoURL)
	assert.Equal(t, "B Realty, Manly, NSW", report.TopAgencies[1].Address)
	assert.Equal(t, []model.JobStatus{model.JobStatusFetchingAgents, model.JobStatusFetchingAgencies}, statuses)
	d.AssertNotCalled(t, "GetAgency", mock.Anything, int64(3))
}

func TestRunAgencies_SearchFailure(t *testing.T) {
	d := &mockDomainClient{}
	d.On("SearchListings", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	report, err := New(d, nil, nil, nil, Options{Now: fixedClock}).
		RunAgencies(context.Background(), model.ReportRequest{Suburb: "Manly"}, nil)

	require.NoError(t, err)
	require.NotNil(t, report.TopAgencies)
	assert.Empty(t, report.TopAgencies)
}
