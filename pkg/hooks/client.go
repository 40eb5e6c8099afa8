// Package hooks calls the automation webhooks that back featured agents,
// subscriptions, agent commission rates and area types.
package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/articflow/agentlink/internal/resilience"
)

// Breaker names, one per webhook.
const (
	HookFeaturedAgents       = "featured_agents"
	HookStandardSubscription = "standard_subscription"
	HookFeaturedCommission   = "featured_commission"
	HookAreaType             = "area_type"
)

// ErrNotConfigured is returned when a webhook URL is empty.
var ErrNotConfigured = eris.New("hooks: webhook url not configured")

// Client defines the webhook lookups.
type Client interface {
	// FeaturedAgents returns the featured rows for a suburb, or nil when the
	// sheet has none.
	FeaturedAgents(ctx context.Context, suburb, state string) ([]FeaturedAgent, error)
	// StandardSubscription reports whether an agent holds a standard subscription.
	StandardSubscription(ctx context.Context, agentName, suburb, state string) (bool, error)
	// FeaturedCommission returns an agent's rate sheet keyed
	// "<bracket> Commission" and "<bracket> Marketing".
	FeaturedCommission(ctx context.Context, agentName, suburb, state string) (map[string]string, error)
	// AreaType returns the commission sheet number for a location.
	AreaType(ctx context.Context, suburb, state, postCode string) (string, error)
}

// URLs holds one endpoint per webhook.
type URLs struct {
	FeaturedAgents       string
	StandardSubscription string
	FeaturedCommission   string
	AreaType             string
}

// Option configures the webhook client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithBreakers shares a breaker registry with other clients.
func WithBreakers(b *resilience.Breakers) Option {
	return func(c *httpClient) {
		c.breakers = b
	}
}

type httpClient struct {
	urls     URLs
	http     *http.Client
	breakers *resilience.Breakers
}

// NewClient creates a webhook client.
func NewClient(urls URLs, opts ...Option) Client {
	cfg := resilience.CircuitConfigFrom(5, 30)
	cfg.ShouldTrip = resilience.IsTransient
	c := &httpClient{
		urls:     urls,
		http:     &http.Client{Timeout: 10 * time.Second},
		breakers: resilience.NewBreakers(cfg),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call sends a request through the named breaker and returns the body of a
// 200 response. Non-2xx statuses count against the breaker only when transient.
func (c *httpClient) call(ctx context.Context, hook, method, rawURL string, query url.Values, payload any) ([]byte, error) {
	if rawURL == "" {
		return nil, eris.Wrapf(ErrNotConfigured, "hooks: %s", hook)
	}
	return resilience.ExecuteVal(ctx, c.breakers.Get(hook), func(ctx context.Context) ([]byte, error) {
		target := rawURL
		if len(query) > 0 {
			sep := "?"
			if strings.Contains(target, "?") {
				sep = "&"
			}
			target += sep + query.Encode()
		}

		var body io.Reader
		if payload != nil {
			b, err := json.Marshal(payload)
			if err != nil {
				return nil, eris.Wrapf(err, "hooks: %s: marshal", hook)
			}
			body = bytes.NewReader(b)
		}

		req, err := http.NewRequestWithContext(ctx, method, target, body)
		if err != nil {
			return nil, eris.Wrapf(err, "hooks: %s: create request", hook)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, resilience.NewTransientError(eris.Wrapf(err, "hooks: %s: request", hook), 0)
		}
		defer resp.Body.Close() //nolint:errcheck

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrapf(err, "hooks: %s: read body", hook)
		}
		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("hooks: %s: unexpected status %d: %s", hook, resp.StatusCode, strings.TrimSpace(string(respBody)))
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}
			return nil, err
		}
		return respBody, nil
	})
}

func (c *httpClient) FeaturedAgents(ctx context.Context, suburb, state string) ([]FeaturedAgent, error) {
	body, err := c.call(ctx, HookFeaturedAgents, http.MethodPost, c.urls.FeaturedAgents, nil,
		map[string]string{"suburb": suburb, "state": state})
	if err != nil {
		return nil, err
	}

	var rows []FeaturedAgent
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, eris.Wrap(err, "hooks: featured_agents: unmarshal")
	}
	if len(rows) == 0 || rows[0].Name.String() == "" {
		zap.L().Debug("hooks: no featured agents", zap.String("suburb", suburb), zap.String("state", state))
		return nil, nil
	}
	return rows, nil
}

func (c *httpClient) StandardSubscription(ctx context.Context, agentName, suburb, state string) (bool, error) {
	body, err := c.call(ctx, HookStandardSubscription, http.MethodPost, c.urls.StandardSubscription, nil,
		map[string]string{"agent_name": agentName, "suburb": suburb, "state": state})
	if err != nil {
		return false, err
	}
	return parseSubscription(body), nil
}

// parseSubscription accepts a JSON bool, an object with
// "standard_subscription", or the plain text "true".
func parseSubscription(body []byte) bool {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return strings.EqualFold(strings.TrimSpace(string(body)), "true")
	}
	switch t := v.(type) {
	case bool:
		return t
	case map[string]any:
		return truthy(t["standard_subscription"])
	default:
		return truthy(t)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return false
	}
}

func (c *httpClient) FeaturedCommission(ctx context.Context, agentName, suburb, state string) (map[string]string, error) {
	body, err := c.call(ctx, HookFeaturedCommission, http.MethodGet, c.urls.FeaturedCommission,
		url.Values{"agent_name": {agentName}, "suburb": {suburb}, "state_code": {state}}, nil)
	if err != nil {
		return nil, err
	}

	var rows []map[string]Text
	if err := json.Unmarshal(body, &rows); err != nil {
		var single map[string]Text
		if err2 := json.Unmarshal(body, &single); err2 != nil {
			return nil, eris.Wrap(err, "hooks: featured_commission: unmarshal")
		}
		rows = []map[string]Text{single}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	out := make(map[string]string, len(rows[0]))
	for k, v := range rows[0] {
		out[k] = v.String()
	}
	return out, nil
}

func (c *httpClient) AreaType(ctx context.Context, suburb, state, postCode string) (string, error) {
	body, err := c.call(ctx, HookAreaType, http.MethodPost, c.urls.AreaType, nil,
		map[string]string{"suburb": suburb, "state": state, "post_code": postCode})
	if err != nil {
		return "", err
	}

	var resp struct {
		CommissionSheet Text `json:"Commission Sheet"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", eris.Wrap(err, "hooks: area_type: unmarshal")
	}
	sheet := resp.CommissionSheet.String()
	if sheet == "" || strings.EqualFold(sheet, "none") {
		return "", eris.New("hooks: area_type: no commission sheet in response")
	}
	return sheet, nil
}
