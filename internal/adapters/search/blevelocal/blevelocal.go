// Package blevelocal implements the search provider contract on an embedded bleve index
//
// Each derived index name maps to its own bleve index under the configured root
// directory. An empty Path keeps every index in memory, which tests rely on
package blevelocal

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"indexa/internal/adapters/search/indexname"
	"indexa/internal/core/docbuild"
	perr "indexa/internal/platform/errors"
	"indexa/internal/platform/logger"
)

// Config configures the embedded provider
type Config struct {
	// Path is the root directory for on-disk indexes, empty means in-memory
	Path string
}

// Provider is the embedded bleve implementation of the search capability contract
type Provider struct {
	cfg Config
	log logger.Logger

	mu      sync.Mutex
	indexes map[string]bleve.Index
}

// New constructs the provider, creating the root directory when configured
func New(cfg Config) (*Provider, error) {
	if cfg.Path != "" {
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeProvider, "bleve root dir create failed")
		}
	}
	return &Provider{
		cfg:     cfg,
		log:     *logger.Named("bleve"),
		indexes: make(map[string]bleve.Index),
	}, nil
}

// Name implements the provider contract
func (p *Provider) Name() string { return "bleve" }

// open returns the bleve index for name, opening or creating it on first use
func (p *Provider) open(name string) (bleve.Index, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx, ok := p.indexes[name]; ok {
		return idx, nil
	}

	var (
		idx bleve.Index
		err error
	)
	if p.cfg.Path == "" {
		idx, err = bleve.NewMemOnly(bleve.NewIndexMapping())
	} else {
		dir := filepath.Join(p.cfg.Path, name)
		idx, err = bleve.Open(dir)
		if err == bleve.ErrorIndexPathDoesNotExist {
			idx, err = bleve.New(dir, bleve.NewIndexMapping())
		}
	}
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeProvider, "bleve open %q failed", name)
	}
	p.indexes[name] = idx
	return idx, nil
}

// Upsert indexes one document keyed by its id
func (p *Provider) Upsert(_ context.Context, doc docbuild.Document) error {
	id, _ := doc["id"].(string)
	if id == "" {
		return perr.InvalidArgf("bleve upsert: document has no id")
	}
	idx, err := p.open(indexname.For(doc))
	if err != nil {
		return err
	}
	if err := idx.Index(id, map[string]any(doc)); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeProvider, "bleve index failed")
	}
	return nil
}

// UpsertBatch indexes documents grouped by index using one bleve batch per group.
// A failing group is reported, remaining groups are still attempted
func (p *Provider) UpsertBatch(_ context.Context, docs []docbuild.Document) error {
	var firstErr error
	for name, group := range indexname.Group(docs) {
		idx, err := p.open(name)
		if err != nil {
			p.log.Error().Err(err).Str("index", name).Msg("bleve batch open failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		batch := idx.NewBatch()
		var skip bool
		for _, d := range group {
			id, _ := d["id"].(string)
			if id == "" {
				if firstErr == nil {
					firstErr = perr.InvalidArgf("bleve batch: document has no id")
				}
				skip = true
				break
			}
			if err := batch.Index(id, map[string]any(d)); err != nil {
				if firstErr == nil {
					firstErr = perr.Wrapf(err, perr.ErrorCodeProvider, "bleve batch append failed")
				}
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		if err := idx.Batch(batch); err != nil {
			p.log.Error().Err(err).Str("index", name).Int("docs", len(group)).Msg("bleve batch failed")
			if firstErr == nil {
				firstErr = perr.Wrapf(err, perr.ErrorCodeProvider, "bleve batch failed")
			}
		}
	}
	return firstErr
}

// Delete removes one document
func (p *Provider) Delete(_ context.Context, indexName, documentID string) error {
	idx, err := p.open(indexName)
	if err != nil {
		return err
	}
	if err := idx.Delete(documentID); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeProvider, "bleve delete failed")
	}
	return nil
}

// DeleteBatch removes documents via one bleve batch
func (p *Provider) DeleteBatch(_ context.Context, indexName string, documentIDs []string) error {
	if len(documentIDs) == 0 {
		return nil
	}
	idx, err := p.open(indexName)
	if err != nil {
		return err
	}
	batch := idx.NewBatch()
	for _, id := range documentIDs {
		batch.Delete(id)
	}
	if err := idx.Batch(batch); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeProvider, "bleve delete batch failed")
	}
	return nil
}

// EnsureIndex opens or creates the index
func (p *Provider) EnsureIndex(_ context.Context, indexName string) error {
	_, err := p.open(indexName)
	return err
}

// Healthcheck verifies the root directory is usable
func (p *Provider) Healthcheck(context.Context) bool {
	if p.cfg.Path == "" {
		return true
	}
	info, err := os.Stat(p.cfg.Path)
	return err == nil && info.IsDir()
}

// DocCount reports the number of documents in an index, used by tests and status views
func (p *Provider) DocCount(indexName string) (uint64, error) {
	idx, err := p.open(indexName)
	if err != nil {
		return 0, err
	}
	return idx.DocCount()
}

// Close closes every open index
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for name, idx := range p.indexes {
		if err := idx.Close(); err != nil && firstErr == nil {
			firstErr = perr.Wrapf(err, perr.ErrorCodeProvider, "bleve close %q failed", name)
		}
		delete(p.indexes, name)
	}
	return firstErr
}
