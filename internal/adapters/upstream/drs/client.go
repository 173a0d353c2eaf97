// Package drs provides a GA4GH DRS v1 client for provider object and
// access-URL endpoints
package drs

import (
	"bytes"
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
	objectBase     = "/ga4gh/drs/v1/objects/"
	defaultTimeout = 30 * time.Second
	defaultUA      = "drsgate"
)

// Options configures the Client
type Options struct {
	// Scheme defaults to https; tests point it at http servers
	Scheme    string
	UserAgent string
	Timeout   time.Duration
}

// Client talks to any configured provider host. It carries no per-provider
// state; callers pass the normalized host per request. There are no
// automatic retries: advancing to the next authorization candidate is the
// only fallback behavior in this system
type Client struct {
	http    *http.Client
	opts    Options
	log     logger.Logger
	metrics *metrics.Metrics
}

// NewClient creates a Client with sane defaults
func NewClient(o Options, m *metrics.Metrics) *Client {
	if o.Scheme == "" {
		o.Scheme = "https"
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: o.Timeout},
		opts:    o,
		log:     *logger.Named("drs"),
		metrics: m,
	}
}

// DiscoverAuthorizations asks the provider which authorization kinds it
// supports for the object. Any failure, or an empty document, means
// discovery is unavailable; the caller falls back to static configuration
func (c *Client) DiscoverAuthorizations(ctx context.Context, host, objectID string) ([]string, error) {
	resp, err := c.do(ctx, http.MethodOptions, host, objectBase+objectID, "", nil, "discovery")
	if err != nil {
		return nil, err
	}
	defer drain(resp.Body)

	if err := perr.FromUpstreamStatus(resp.StatusCode, host+" authorization discovery"); err != nil {
		return nil, err
	}
	var doc authorizations
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, perr.Upstreamf("%s discovery returned an undecodable body: %v", host, err)
	}
	return doc.SupportedTypes, nil
}

// GetObject fetches object metadata, optionally with the caller's bearer token
func (c *Client) GetObject(ctx context.Context, host, objectID, bearer string) (*Object, error) {
	resp, err := c.do(ctx, http.MethodGet, host, objectBase+objectID, bearer, nil, "object")
	if err != nil {
		return nil, err
	}
	return decodeObject(resp, host)
}

// PostObject fetches object metadata authorized by passports
func (c *Client) PostObject(ctx context.Context, host, objectID string, passports []string) (*Object, error) {
	resp, err := c.do(ctx, http.MethodPost, host, objectBase+objectID, "", passportBody{Passports: passports}, "object")
	if err != nil {
		return nil, err
	}
	return decodeObject(resp, host)
}

// GetAccessURL fetches a signed URL for one access method, optionally with a
// bearer token
func (c *Client) GetAccessURL(ctx context.Context, host, objectID, accessID, bearer string) (*AccessURL, error) {
	path := objectBase + objectID + "/access/" + accessID
	resp, err := c.do(ctx, http.MethodGet, host, path, bearer, nil, "access")
	if err != nil {
		return nil, err
	}
	return decodeAccessURL(resp, host)
}

// PostAccessURL fetches a signed URL for one access method, authorized by
// passports
func (c *Client) PostAccessURL(ctx context.Context, host, objectID, accessID string, passports []string) (*AccessURL, error) {
	path := objectBase + objectID + "/access/" + accessID
	resp, err := c.do(ctx, http.MethodPost, host, path, "", passportBody{Passports: passports}, "access")
	if err != nil {
		return nil, err
	}
	return decodeAccessURL(resp, host)
}

func (c *Client) do(
	ctx context.Context,
	method, host, path, bearer string,
	body any,
	call string,
) (*http.Response, error) {
	url := c.opts.Scheme + "://" + host + path

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "drs marshal request body")
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "drs new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	lat := time.Since(start)
	c.metrics.ObserveUpstream(host, call, lat)

	if err != nil {
		c.log.Warn().Err(err).Str("host", host).Str("call", call).Msg("drs transport error")
		return nil, perr.Upstreamf("%s %s failed: %v", host, call, err)
	}
	c.log.Debug().
		Str("method", method).
		Str("host", host).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Msg("drs http response")
	return resp, nil
}

func decodeObject(resp *http.Response, host string) (*Object, error) {
	defer drain(resp.Body)
	if err := perr.FromUpstreamStatus(resp.StatusCode, host+" object info"); err != nil {
		return nil, err
	}
	var obj Object
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return nil, perr.Upstreamf("%s object info returned an undecodable body: %v", host, err)
	}
	return &obj, nil
}

func decodeAccessURL(resp *http.Response, host string) (*AccessURL, error) {
	defer drain(resp.Body)
	if err := perr.FromUpstreamStatus(resp.StatusCode, host+" access url"); err != nil {
		return nil, err
	}
	var u AccessURL
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, perr.Upstreamf("%s access url returned an undecodable body: %v", host, err)
	}
	if u.URL == "" {
		return nil, nil
	}
	return &u, nil
}

func drain(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 4096))
	_ = rc.Close()
}
