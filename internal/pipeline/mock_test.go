package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/articflow/agentlink/pkg/domain"
	"github.com/articflow/agentlink/pkg/hooks"
)

// --- Domain Mock ---

type mockDomainClient struct {
	mock.Mock
}

func (m *mockDomainClient) SearchListings(ctx context.Context, req domain.SearchRequest) ([]domain.SearchResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}

func (m *mockDomainClient) GetAgency(ctx context.Context, id int64) (*domain.Agency, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agency), args.Error(1)
}

func (m *mockDomainClient) SearchAgents(ctx context.Context, query string) ([]domain.AgentSummary, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AgentSummary), args.Error(1)
}

func (m *mockDomainClient) SearchAgencies(ctx context.Context, query string) ([]domain.AgencySummary, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AgencySummary), args.Error(1)
}

func (m *mockDomainClient) LookupAgent(ctx context.Context, name, agency string) (*domain.AgentProfile, error) {
	args := m.Called(ctx, name, agency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgentProfile), args.Error(1)
}

// --- Hooks Mock ---

type mockHooksClient struct {
	mock.Mock
}

func (m *mockHooksClient) FeaturedAgents(ctx context.Context, suburb, state string) ([]hooks.FeaturedAgent, error) {
	args := m.Called(ctx, suburb, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]hooks.FeaturedAgent), args.Error(1)
}

func (m *mockHooksClient) StandardSubscription(ctx context.Context, agentName, suburb, state string) (bool, error) {
	args := m.Called(ctx, agentName, suburb, state)
	return args.Bool(0), args.Error(1)
}

func (m *mockHooksClient) FeaturedCommission(ctx context.Context, agentName, suburb, state string) (map[string]string, error) {
	args := m.Called(ctx, agentName, suburb, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *mockHooksClient) AreaType(ctx context.Context, suburb, state, postCode string) (string, error) {
	args := m.Called(ctx, suburb, state, postCode)
	return args.String(0), args.Error(1)
}
