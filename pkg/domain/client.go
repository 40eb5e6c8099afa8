// Package domain provides a client for the Domain.com.au listings API.
package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/articflow/agentlink/internal/resilience"
)

// Client defines the Domain API operations the pipeline uses.
type Client interface {
	// SearchListings runs a residential search and returns the results that
	// match the requested property types.
	SearchListings(ctx context.Context, req SearchRequest) ([]SearchResult, error)
	// GetAgency fetches an agency profile by id.
	GetAgency(ctx context.Context, id int64) (*Agency, error)
	// SearchAgents finds agents by name.
	SearchAgents(ctx context.Context, query string) ([]AgentSummary, error)
	// SearchAgencies finds agencies by name.
	SearchAgencies(ctx context.Context, query string) ([]AgencySummary, error)
	// LookupAgent resolves an agent's photo, agency and agency logo.
	LookupAgent(ctx context.Context, name, agency string) (*AgentProfile, error)
}

// Option configures the Domain client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps requests per second across all calls made by the client.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *httpClient) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithPaging sets the search page size and how many pages to walk.
func WithPaging(pageSize, maxPages int) Option {
	return func(c *httpClient) {
		if pageSize > 0 {
			c.pageSize = pageSize
		}
		if maxPages > 0 {
			c.maxPages = maxPages
		}
	}
}

type httpClient struct {
	apiKey   string
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
	pageSize int
	maxPages int
}

// NewClient creates a Domain API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.domain.com.au/v1",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter:  rate.NewLimiter(rate.Limit(5), 5),
		pageSize: 100,
		maxPages: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends one request and decodes a 200 response into out.
func (c *httpClient) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "domain: rate limit wait")
		}
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return eris.Wrap(err, "domain: marshal request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return eris.Wrap(err, "domain: create request")
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "domain: %s %s", method, path)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "domain: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("domain: %s %s: unexpected status %d: %s", method, path, resp.StatusCode, truncate(respBody, 200))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrapf(err, "domain: unmarshal %s response", path)
	}
	return nil
}

func (c *httpClient) GetAgency(ctx context.Context, id int64) (*Agency, error) {
	var agency Agency
	if err := c.do(ctx, http.MethodGet, "/agencies/"+strconv.FormatInt(id, 10), nil, nil, &agency); err != nil {
		return nil, err
	}
	return &agency, nil
}

func (c *httpClient) SearchAgents(ctx context.Context, query string) ([]AgentSummary, error) {
	var agents []AgentSummary
	if err := c.do(ctx, http.MethodGet, "/agents/search", url.Values{"query": {query}}, nil, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

func (c *httpClient) SearchAgencies(ctx context.Context, query string) ([]AgencySummary, error) {
	var agencies []AgencySummary
	if err := c.do(ctx, http.MethodGet, "/agencies/", url.Values{"q": {query}}, nil, &agencies); err != nil {
		return nil, err
	}
	return agencies, nil
}

// LookupAgent searches agents by name, prefers the hit whose agency matches,
// then resolves that agency's logo. A missing logo is not an error.
func (c *httpClient) LookupAgent(ctx context.Context, name, agency string) (*AgentProfile, error) {
	agents, err := c.SearchAgents(ctx, name)
	if err != nil {
		return nil, eris.Wrap(err, "domain: lookup agent")
	}
	if len(agents) == 0 {
		return nil, eris.Errorf("domain: no agent named %q", name)
	}

	hit := agents[0]
	if agency != "" {
		for _, a := range agents {
			if strings.EqualFold(a.AgencyName, agency) {
				hit = a
				break
			}
		}
	}

	profile := &AgentProfile{AgentID: hit.AgentID, PhotoURL: hit.Thumbnail, AgencyName: hit.AgencyName}
	if hit.AgencyName == "" {
		return profile, nil
	}

	log := zap.L().With(zap.String("agent", name), zap.String("agency", hit.AgencyName))
	agencies, err := c.SearchAgencies(ctx, hit.AgencyName)
	if err != nil || len(agencies) == 0 {
		log.Debug("domain: agency not found for logo", zap.Error(err))
		return profile, nil
	}
	details, err := c.GetAgency(ctx, agencies[0].ID)
	if err != nil {
		log.Debug("domain: agency details unavailable", zap.Error(err))
		return profile, nil
	}
	profile.AgencyLogo = details.Profile.AgencyLogoStandard
	return profile, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return fmt.Sprintf("%s...", b[:n])
}
