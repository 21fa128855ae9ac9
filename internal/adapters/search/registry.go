package search

import (
	"context"

	"indexa/internal/adapters/search/algolia"
	"indexa/internal/adapters/search/blevelocal"
	"indexa/internal/adapters/search/typesense"
	"indexa/internal/platform/config"
	"indexa/internal/platform/logger"
)

// SettingsReader looks up runtime feature flags for provider toggles
type SettingsReader interface {
	Bool(ctx context.Context, key string, def bool) bool
}

// Config carries per provider credentials, empty credentials disable a provider
type Config struct {
	AlgoliaAppID  string
	AlgoliaAPIKey string

	TypesenseURL    string
	TypesenseAPIKey string

	BlevePath string
}

// FromConfig reads provider credentials from the environment config
func FromConfig(cfg config.Conf) Config {
	pf := cfg.Prefix("PROVIDER_")
	return Config{
		AlgoliaAppID:    pf.MayString("ALGOLIA_APP_ID", ""),
		AlgoliaAPIKey:   pf.MayString("ALGOLIA_API_KEY", ""),
		TypesenseURL:    pf.MayString("TYPESENSE_URL", ""),
		TypesenseAPIKey: pf.MayString("TYPESENSE_API_KEY", ""),
		BlevePath:       pf.MayString("BLEVE_PATH", ""),
	}
}

// Registry holds the constructed providers and filters them through runtime toggles
type Registry struct {
	known    []Provider
	settings SettingsReader
	log      logger.Logger
}

// NewRegistry constructs every provider with credentials present.
// A provider that fails to initialize is logged and excluded, not fatal to the others
func NewRegistry(cfg Config, settings SettingsReader) *Registry {
	log := *logger.Named("search")
	r := &Registry{settings: settings, log: log}

	if cfg.AlgoliaAppID != "" && cfg.AlgoliaAPIKey != "" {
		r.known = append(r.known, algolia.New(algolia.Config{
			AppID:  cfg.AlgoliaAppID,
			APIKey: cfg.AlgoliaAPIKey,
		}))
	}
	if cfg.TypesenseURL != "" && cfg.TypesenseAPIKey != "" {
		r.known = append(r.known, typesense.New(typesense.Config{
			URL:    cfg.TypesenseURL,
			APIKey: cfg.TypesenseAPIKey,
		}))
	}
	if cfg.BlevePath != "" {
		p, err := blevelocal.New(blevelocal.Config{Path: cfg.BlevePath})
		if err != nil {
			log.Error().Err(err).Str("provider", "bleve").Msg("provider init failed, excluding")
		} else {
			r.known = append(r.known, p)
		}
	}
	return r
}

// NewRegistryWith wires pre-built providers, handy for tests and custom stacks
func NewRegistryWith(settings SettingsReader, providers ...Provider) *Registry {
	return &Registry{known: providers, settings: settings, log: *logger.Named("search")}
}

// Known returns every constructed provider regardless of runtime toggles
func (r *Registry) Known() []Provider {
	return append([]Provider(nil), r.known...)
}

// Enabled returns the providers whose runtime toggle is on.
// The flag key is provider.<name>.enabled and defaults to true when unset
func (r *Registry) Enabled(ctx context.Context) []Provider {
	out := make([]Provider, 0, len(r.known))
	for _, p := range r.known {
		if r.settings == nil || r.settings.Bool(ctx, "provider."+p.Name()+".enabled", true) {
			out = append(out, p)
		}
	}
	return out
}
