// Package bond provides the identity-broker client. It exchanges the
// caller's bearer token for provider-linked fence credentials and federated
// passports
package bond

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	perr "drsgate/internal/platform/errors"
	"drsgate/internal/platform/logger"
	"drsgate/internal/platform/metrics"
)

const (
	defaultTimeout = 20 * time.Second
	target         = "bond"
)

// Options configures the Client
type Options struct {
	// BaseURL of the identity broker, e.g. https://broker.dsde-prod.broadinstitute.org
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client is the identity-broker HTTP client. A linked credential that does
// not exist is an empty result, not an error; hard upstream failures map to
// the upstream error class
type Client struct {
	http    *http.Client
	opts    Options
	log     logger.Logger
	metrics *metrics.Metrics
}

// NewClient creates a Client with sane defaults
func NewClient(o Options, m *metrics.Metrics) *Client {
	if o.UserAgent == "" {
		o.UserAgent = "drsgate"
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: o.Timeout},
		opts:    o,
		log:     *logger.Named("bond"),
		metrics: m,
	}
}

// AccessToken returns the fence access token linked for broker, "" when the
// caller has no link
func (c *Client) AccessToken(ctx context.Context, callerToken, broker string) (string, error) {
	body, err := c.get(ctx, "/api/link/v1/"+broker+"/accesstoken", callerToken, "accesstoken")
	if err != nil || body == nil {
		return "", err
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", perr.Upstreamf("bond access token returned an undecodable body: %v", err)
	}
	return out.Token, nil
}

// ServiceAccountKey returns the linked service-account key JSON for broker,
// nil when the caller has no link
func (c *Client) ServiceAccountKey(ctx context.Context, callerToken, broker string) (json.RawMessage, error) {
	body, err := c.get(ctx, "/api/link/v1/"+broker+"/serviceaccount/key", callerToken, "sakey")
	if err != nil || body == nil {
		return nil, err
	}
	var out struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, perr.Upstreamf("bond service account key returned an undecodable body: %v", err)
	}
	return out.Data, nil
}

// Passport returns the caller's federated passport JWT, "" when none exists
func (c *Client) Passport(ctx context.Context, callerToken string) (string, error) {
	body, err := c.get(ctx, "/api/identity/v1/passport", callerToken, "passport")
	if err != nil || body == nil {
		return "", err
	}
	var out struct {
		Passport string `json:"passport"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", perr.Upstreamf("bond passport returned an undecodable body: %v", err)
	}
	return out.Passport, nil
}

// Ping reports broker reachability for readiness checks
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+"/api/status/v1/status", nil)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "bond new request failed")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Unavailablef("bond unreachable: %v", err)
	}
	defer drain(resp.Body)
	return perr.FromUpstreamStatus(resp.StatusCode, "bond status")
}

// get issues an authorized GET and returns the body bytes, nil on 404
func (c *Client) get(ctx context.Context, path, callerToken, call string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+path, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "bond new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+callerToken)

	start := time.Now()
	resp, err := c.http.Do(req)
	lat := time.Since(start)
	c.metrics.ObserveUpstream(target, call, lat)

	if err != nil {
		c.log.Warn().Err(err).Str("call", call).Msg("bond transport error")
		return nil, perr.Upstreamf("bond %s failed: %v", call, err)
	}
	defer drain(resp.Body)

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Msg("bond http response")

	// an unlinked account is a normal empty result
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err := perr.FromUpstreamStatus(resp.StatusCode, "bond "+call); err != nil {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

func drain(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 4096))
	_ = rc.Close()
}
