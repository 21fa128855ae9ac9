// Package algolia implements the search provider contract over the Algolia REST API
package algolia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"indexa/internal/adapters/search/indexname"
	"indexa/internal/core/docbuild"
	perr "indexa/internal/platform/errors"
	"indexa/internal/platform/logger"
)

// Config configures the Algolia client
type Config struct {
	AppID  string
	APIKey string

	// BaseURL overrides the derived https://{AppID}.algolia.net host, used in tests
	BaseURL string
	Timeout time.Duration
}

// Provider is the Algolia implementation of the search capability contract
type Provider struct {
	cfg  Config
	http *http.Client
	log  logger.Logger
}

// New constructs an Algolia provider
func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("https://%s.algolia.net", cfg.AppID)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Provider{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  *logger.Named("algolia"),
	}
}

// Name implements the provider contract
func (p *Provider) Name() string { return "algolia" }

// Upsert writes one document keyed by its objectID
func (p *Provider) Upsert(ctx context.Context, doc docbuild.Document) error {
	id, _ := doc["objectID"].(string)
	if id == "" {
		return perr.InvalidArgf("algolia upsert: document has no objectID")
	}
	index := indexname.For(doc)
	path := fmt.Sprintf("/1/indexes/%s/%s", url.PathEscape(index), url.PathEscape(id))
	return p.do(ctx, http.MethodPut, path, doc, nil)
}

// UpsertBatch writes documents grouped by index, one bulk call per group.
// A failing group is reported, remaining groups are still attempted
func (p *Provider) UpsertBatch(ctx context.Context, docs []docbuild.Document) error {
	var firstErr error
	for index, group := range indexname.Group(docs) {
		reqs := make([]map[string]any, 0, len(group))
		for _, d := range group {
			reqs = append(reqs, map[string]any{"action": "updateObject", "body": d})
		}
		path := fmt.Sprintf("/1/indexes/%s/batch", url.PathEscape(index))
		if err := p.do(ctx, http.MethodPost, path, map[string]any{"requests": reqs}, nil); err != nil {
			p.log.Error().Err(err).Str("index", index).Int("docs", len(group)).Msg("algolia batch failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Delete removes one document
func (p *Provider) Delete(ctx context.Context, indexName, documentID string) error {
	path := fmt.Sprintf("/1/indexes/%s/%s", url.PathEscape(indexName), url.PathEscape(documentID))
	return p.do(ctx, http.MethodDelete, path, nil, nil)
}

// DeleteBatch removes documents via one batch call
func (p *Provider) DeleteBatch(ctx context.Context, indexName string, documentIDs []string) error {
	if len(documentIDs) == 0 {
		return nil
	}
	reqs := make([]map[string]any, 0, len(documentIDs))
	for _, id := range documentIDs {
		reqs = append(reqs, map[string]any{
			"action": "deleteObject",
			"body":   map[string]any{"objectID": id},
		})
	}
	path := fmt.Sprintf("/1/indexes/%s/batch", url.PathEscape(indexName))
	return p.do(ctx, http.MethodPost, path, map[string]any{"requests": reqs}, nil)
}

// EnsureIndex touches index settings, which creates the index when missing
func (p *Provider) EnsureIndex(ctx context.Context, indexName string) error {
	path := fmt.Sprintf("/1/indexes/%s/settings", url.PathEscape(indexName))
	return p.do(ctx, http.MethodPut, path, map[string]any{}, nil)
}

// Healthcheck probes the indexes listing endpoint
func (p *Provider) Healthcheck(ctx context.Context) bool {
	err := p.do(ctx, http.MethodGet, "/1/indexes?page=0&hitsPerPage=1", nil, nil)
	if err != nil {
		p.log.Warn().Err(err).Msg("algolia healthcheck failed")
		return false
	}
	return true
}

// do issues one authed JSON request and decodes into out when given
func (p *Provider) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeJSON, "algolia encode failed")
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.cfg.BaseURL+path, rd)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "algolia new request failed")
	}
	req.Header.Set("X-Algolia-Application-Id", p.cfg.AppID)
	req.Header.Set("X-Algolia-API-Key", p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeProvider, "algolia request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return perr.Providerf("algolia status %d on %s %s: %s", resp.StatusCode, method, path, string(tail))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeJSON, "algolia decode failed")
		}
	}
	return nil
}
