// Package upstream provides a resilient HTTP client for domain service entity APIs
package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	perr "indexa/internal/platform/errors"
	"indexa/internal/platform/logger"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
	defaultUA        = "indexa"
)

// Options configures the Client
type Options struct {
	UserAgent string
	Timeout   time.Duration

	// MaxRetries is the total attempt budget for GETs on transient statuses
	MaxRetries int
	RetryBase  time.Duration

	// RatePerSec throttles outbound calls, 0 disables throttling
	RatePerSec float64
	Burst      int
}

// BatchQuery carries pagination and freshness filters for batch fetches
type BatchQuery struct {
	Page          int
	PerPage       int
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
}

// Client fetches entities from domain service HTTP APIs with retry and backoff
type Client struct {
	http    *http.Client
	opts    Options
	tokens  TokenSource
	limiter *rate.Limiter
	log     logger.Logger
	sleep   func(time.Duration)
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options, tokens TokenSource) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	var lim *rate.Limiter
	if o.RatePerSec > 0 {
		burst := o.Burst
		if burst <= 0 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(o.RatePerSec), burst)
	}
	return &Client{
		http:    &http.Client{Timeout: o.Timeout},
		opts:    o,
		tokens:  tokens,
		limiter: lim,
		log:     *logger.Named("upstream"),
		sleep:   time.Sleep,
	}
}

// GetEntity fetches one entity as base/[prefix/]entityType/entityID
func (c *Client) GetEntity(
	ctx context.Context,
	baseURL, pathPrefix, entityType, entityID string,
) (map[string]any, error) {
	u, err := entityURL(baseURL, pathPrefix, entityType, entityID)
	if err != nil {
		return nil, err
	}
	return c.getJSON(ctx, u)
}

// GetEntitiesBatch fetches a page of entities as base/[prefix/]entityType with
// page, per_page and optional updated_after / updated_before query params
func (c *Client) GetEntitiesBatch(
	ctx context.Context,
	baseURL, pathPrefix, entityType string,
	q BatchQuery,
) (map[string]any, error) {
	u, err := entityURL(baseURL, pathPrefix, entityType, "")
	if err != nil {
		return nil, err
	}
	vals := url.Values{}
	vals.Set("page", strconv.Itoa(q.Page))
	vals.Set("per_page", strconv.Itoa(q.PerPage))
	if q.UpdatedAfter != nil {
		vals.Set("updated_after", q.UpdatedAfter.UTC().Format(time.RFC3339))
	}
	if q.UpdatedBefore != nil {
		vals.Set("updated_before", q.UpdatedBefore.UTC().Format(time.RFC3339))
	}
	return c.getJSON(ctx, u+"?"+vals.Encode())
}

// entityURL joins base/[prefix/]entityType[/entityID] with single slashes
func entityURL(baseURL, pathPrefix, entityType, entityID string) (string, error) {
	if strings.TrimSpace(baseURL) == "" {
		return "", perr.InvalidArgf("base url is required")
	}
	if strings.TrimSpace(entityType) == "" {
		return "", perr.InvalidArgf("entity type is required")
	}
	parts := []string{strings.TrimRight(baseURL, "/")}
	if p := strings.Trim(pathPrefix, "/"); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, strings.Trim(entityType, "/"))
	if entityID != "" {
		parts = append(parts, entityID)
	}
	return strings.Join(parts, "/"), nil
}

// getJSON issues a GET with bearer auth, retrying transient statuses with backoff
func (c *Client) getJSON(ctx context.Context, url string) (map[string]any, error) {
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "upstream new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Content-Type", "application/json")
		if c.tokens != nil {
			tok, err := c.tokens.Token(ctx)
			if err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "upstream token source failed")
			}
			if tok != "" {
				req.Header.Set("Authorization", "Bearer "+tok)
			}
		}

		start := time.Now()
		resp, err := c.http.Do(req)
		lat := time.Since(start)

		if err != nil {
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "upstream do failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("upstream transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		c.log.Debug().
			Str("url", url).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("upstream http response")

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			defer func() { _ = resp.Body.Close() }()
			var out map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "upstream decode failed")
			}
			return out, nil
		}

		if retryableStatus(resp.StatusCode) {
			if !c.shouldRetry(attempts) {
				_ = drainAndClose(resp.Body)
				if resp.StatusCode == http.StatusTooManyRequests {
					return nil, perr.Newf(perr.ErrorCodeTooManyRequests, "upstream rate limited: %s", url)
				}
				return nil, perr.Upstreamf("upstream transient status %d: %s", resp.StatusCode, url)
			}
			back := c.backoff(attempts)
			c.log.Warn().
				Int("status", resp.StatusCode).
				Dur("retry_in", back).
				Int("attempt", attempts).
				Msg("upstream transient status retrying")
			_ = drainAndClose(resp.Body)
			c.sleep(back)
			attempts++
			continue
		}

		// non-retryable: read a small tail for diagnostics then return
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, perr.NotFoundf("upstream entity not found: %s", url)
		}
		return nil, perr.Upstreamf("upstream status %d body %s", resp.StatusCode, string(body))
	}
}

// retryableStatus reports transient statuses worth retrying for idempotent GETs
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase
	ms := int64(d / time.Millisecond)
	ms = ms << uint(attempt)
	cap := int64(30 * time.Second / time.Millisecond)
	if ms > cap {
		ms = cap
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool {
	// attempts are zero based, total tries = MaxRetries
	return attempt < c.opts.MaxRetries-1
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 4096))
	return rc.Close()
}
