package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	perr "indexa/internal/platform/errors"
)

// TokenSource supplies machine-to-machine bearer tokens for upstream calls
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource around a fixed token, empty disables auth
type StaticToken string

// Token implements TokenSource
func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

// M2MConfig configures the client-credentials token source
type M2MConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Audience     string

	// Leeway is subtracted from expiry so tokens refresh before the edge
	Leeway time.Duration
}

// M2MTokenSource fetches client-credentials tokens and caches them until expiry
type M2MTokenSource struct {
	cfg  M2MConfig
	http *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time

	now func() time.Time
}

// NewM2MTokenSource builds a caching token source
func NewM2MTokenSource(cfg M2MConfig) *M2MTokenSource {
	if cfg.Leeway <= 0 {
		cfg.Leeway = 30 * time.Second
	}
	return &M2MTokenSource{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
		now:  time.Now,
	}
}

// Token returns a cached token or fetches a fresh one when expired
func (m *M2MTokenSource) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && m.now().Before(m.expires) {
		return m.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", m.cfg.ClientID)
	form.Set("client_secret", m.cfg.ClientSecret)
	if m.cfg.Audience != "" {
		form.Set("audience", m.cfg.Audience)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, m.cfg.TokenURL, strings.NewReader(form.Encode()),
	)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "m2m token request failed")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.http.Do(req)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "m2m token fetch failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", perr.Upstreamf("m2m token endpoint status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeJSON, "m2m token decode failed")
	}
	if body.AccessToken == "" {
		return "", perr.Upstreamf("m2m token endpoint returned empty token")
	}

	ttl := time.Duration(body.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = time.Minute
	}
	m.token = body.AccessToken
	m.expires = m.now().Add(ttl - m.cfg.Leeway)
	return m.token, nil
}
