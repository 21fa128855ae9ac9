// Package typesense implements the search provider contract over the Typesense REST API
package typesense

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"indexa/internal/adapters/search/indexname"
	"indexa/internal/core/docbuild"
	perr "indexa/internal/platform/errors"
	"indexa/internal/platform/logger"
)

// Config configures the Typesense client
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Provider is the Typesense implementation of the search capability contract
type Provider struct {
	cfg  Config
	http *http.Client
	log  logger.Logger
}

// New constructs a Typesense provider
func New(cfg Config) *Provider {
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Provider{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  *logger.Named("typesense"),
	}
}

// Name implements the provider contract
func (p *Provider) Name() string { return "typesense" }

// Upsert writes one document into its derived collection
func (p *Provider) Upsert(ctx context.Context, doc docbuild.Document) error {
	index := indexname.For(doc)
	if err := p.EnsureIndex(ctx, index); err != nil {
		return err
	}
	path := fmt.Sprintf("/collections/%s/documents?action=upsert", url.PathEscape(index))
	raw, err := json.Marshal(doc)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "typesense encode failed")
	}
	return p.do(ctx, http.MethodPost, path, raw, "application/json")
}

// UpsertBatch imports documents grouped by collection using the JSONL import endpoint.
// A failing group is reported, remaining groups are still attempted
func (p *Provider) UpsertBatch(ctx context.Context, docs []docbuild.Document) error {
	var firstErr error
	for index, group := range indexname.Group(docs) {
		if err := p.importGroup(ctx, index, group); err != nil {
			p.log.Error().Err(err).Str("collection", index).Int("docs", len(group)).Msg("typesense import failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (p *Provider) importGroup(ctx context.Context, index string, group []docbuild.Document) error {
	if err := p.EnsureIndex(ctx, index); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, d := range group {
		if err := enc.Encode(d); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeJSON, "typesense encode failed")
		}
	}
	path := fmt.Sprintf("/collections/%s/documents/import?action=upsert", url.PathEscape(index))
	return p.do(ctx, http.MethodPost, path, buf.Bytes(), "text/plain")
}

// Delete removes one document
func (p *Provider) Delete(ctx context.Context, indexName, documentID string) error {
	path := fmt.Sprintf("/collections/%s/documents/%s", url.PathEscape(indexName), url.PathEscape(documentID))
	return p.do(ctx, http.MethodDelete, path, nil, "")
}

// DeleteBatch removes documents by id filter
func (p *Provider) DeleteBatch(ctx context.Context, indexName string, documentIDs []string) error {
	if len(documentIDs) == 0 {
		return nil
	}
	filter := "id:[" + strings.Join(documentIDs, ",") + "]"
	path := fmt.Sprintf(
		"/collections/%s/documents?filter_by=%s",
		url.PathEscape(indexName), url.QueryEscape(filter),
	)
	return p.do(ctx, http.MethodDelete, path, nil, "")
}

// EnsureIndex creates the collection with an auto schema when it does not exist
func (p *Provider) EnsureIndex(ctx context.Context, indexName string) error {
	probe := "/collections/" + url.PathEscape(indexName)
	err := p.do(ctx, http.MethodGet, probe, nil, "")
	if err == nil {
		return nil
	}
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		return err
	}
	schema := map[string]any{
		"name": indexName,
		"fields": []map[string]any{
			{"name": ".*", "type": "auto"},
		},
	}
	raw, mErr := json.Marshal(schema)
	if mErr != nil {
		return perr.Wrapf(mErr, perr.ErrorCodeJSON, "typesense encode failed")
	}
	cErr := p.do(ctx, http.MethodPost, "/collections", raw, "application/json")
	// lost race with a concurrent creator is fine
	if cErr != nil && perr.IsCode(cErr, perr.ErrorCodeConflict) {
		return nil
	}
	return cErr
}

// Healthcheck probes /health
func (p *Provider) Healthcheck(ctx context.Context) bool {
	if err := p.do(ctx, http.MethodGet, "/health", nil, ""); err != nil {
		p.log.Warn().Err(err).Msg("typesense healthcheck failed")
		return false
	}
	return true
}

// do issues one authed request, mapping 404 and 409 to coded errors
func (p *Provider) do(ctx context.Context, method, path string, body []byte, contentType string) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.cfg.URL+path, rd)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "typesense new request failed")
	}
	req.Header.Set("X-TYPESENSE-API-KEY", p.cfg.APIKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeProvider, "typesense request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return perr.NotFoundf("typesense %s not found", path)
	case resp.StatusCode == http.StatusConflict:
		return perr.Conflictf("typesense %s conflict", path)
	default:
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return perr.Providerf("typesense status %d on %s %s: %s", resp.StatusCode, method, path, string(tail))
	}
}
