// Package service contains settings workflows
package service

import (
	"context"
	"strconv"

	"indexa/internal/modkit/repokit"
	perr "indexa/internal/platform/errors"
	"indexa/internal/platform/logger"
	"indexa/internal/services/settings/domain"
	"indexa/internal/services/settings/repo"
)

// Service defines the service contract for settings
type Service interface {
	domain.ReaderPort
	domain.WriterPort
}

// Svc implements the Service interface
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	log    logger.Logger
}

// New creates a new settings service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) *Svc {
	if db == nil {
		panic("settings.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("settings.Service requires a non nil Repo binder")
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db, log: *logger.Named("settings")}
}

// Get returns one setting by key
func (s *Svc) Get(ctx context.Context, key string) (domain.Setting, error) {
	return s.Repo.Get(ctx, key)
}

// Bool resolves a boolean flag, returning def when the key is unset or unparsable
func (s *Svc) Bool(ctx context.Context, key string, def bool) bool {
	set, err := s.Repo.Get(ctx, key)
	if err != nil {
		if !perr.IsCode(err, perr.ErrorCodeNotFound) {
			s.log.Warn().Err(err).Str("key", key).Msg("setting lookup failed, using default")
		}
		return def
	}
	v, err := strconv.ParseBool(set.Value)
	if err != nil {
		s.log.Warn().Str("key", key).Str("value", set.Value).Msg("setting is not a bool, using default")
		return def
	}
	return v
}

// String resolves a string setting, returning def when the key is unset
func (s *Svc) String(ctx context.Context, key string, def string) string {
	set, err := s.Repo.Get(ctx, key)
	if err != nil {
		return def
	}
	return set.Value
}

// Set writes one setting
func (s *Svc) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return perr.InvalidArgf("setting key must not be empty")
	}
	return s.Repo.Upsert(ctx, key, value)
}

// Delete removes one setting, silently succeeding when it never existed
func (s *Svc) Delete(ctx context.Context, key string) error {
	return s.Repo.Delete(ctx, key)
}
