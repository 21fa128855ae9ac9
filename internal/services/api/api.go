// Package api composes every module into the HTTP API and the task runtime
package api

import (
	"context"
	nethttp "net/http"
	"time"

	"indexa/internal/platform/config"
	"indexa/internal/platform/logger"
	phttp "indexa/internal/platform/net/http"
	"indexa/internal/platform/store"

	"indexa/internal/modkit"
	"indexa/internal/modkit/httpkit"
	"indexa/internal/modkit/module"
	"indexa/internal/modkit/swaggerkit"

	"indexa/internal/adapters/search"
	"indexa/internal/adapters/upstream"

	metamod "indexa/internal/services/api/meta/module"
	providersmod "indexa/internal/services/api/providers/module"
	eventsmod "indexa/internal/services/events/module"
	indexingmod "indexa/internal/services/indexing/module"
	registrymod "indexa/internal/services/registry/module"
	reindexmod "indexa/internal/services/reindex/module"
	settingsmod "indexa/internal/services/settings/module"
	"indexa/internal/services/tasks"

	eventsdom "indexa/internal/services/events/domain"
	indexingdom "indexa/internal/services/indexing/domain"
	registrydom "indexa/internal/services/registry/domain"
	reindexdom "indexa/internal/services/reindex/domain"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Runtime bundles the composed modules and the shared task dispatcher so the
// API server and the worker binary use one wiring path
type Runtime struct {
	Dispatcher *tasks.Dispatcher
	Mods       []module.Module
	Providers  *search.Registry

	Events  eventsdom.ServicePort
	Indexer indexingdom.IndexerPort
	Reindex reindexdom.ServicePort
}

// Build constructs every module with its cross wiring and no HTTP mounting
func Build(opt Options) *Runtime {
	deps := modkit.Deps{
		Log: *opt.Logger,
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}

	settings := settingsmod.New(deps)
	settingsPorts := module.MustPortsOf[settingsmod.Ports](settings)

	providers := search.NewRegistry(search.FromConfig(opt.Config), settingsPorts.Reader)
	client := upstream.NewClient(upstreamOptions(opt.Config), tokenSource(opt.Config))

	// the dispatcher is built before the services it calls, the closures
	// capture the service variables assigned during module construction below
	var (
		eventsSvc  eventsdom.ServicePort
		indexer    indexingdom.IndexerPort
		reindexSvc reindexdom.EnginePort
	)
	disp := tasks.NewDispatcher(tasks.FromConfig(opt.Config), tasks.Handlers{
		IndexEvent: func(ctx context.Context, eventID string) error {
			ev, err := eventsSvc.Get(ctx, eventID)
			if err != nil {
				return err
			}
			return indexer.IndexEvent(ctx, ev)
		},
		Reindex: func(ctx context.Context, jobID string) error {
			return reindexSvc.Execute(ctx, jobID)
		},
	})

	events := eventsmod.New(deps, disp)
	eventsSvc = module.MustPortsOf[eventsdom.ServicePort](events)

	registry := registrymod.New(deps, module.MustPortsOf[registrydom.Publisher](events))
	indexing := indexingmod.New(
		deps,
		module.MustPortsOf[registrydom.ResolverPort](registry),
		client,
		providers,
	)
	indexer = module.MustPortsOf[indexingdom.IndexerPort](indexing)

	reindex := reindexmod.New(deps, registry.Service(), indexing.Service(), disp)
	reindexSvc = module.MustPortsOf[reindexdom.EnginePort](reindex)

	return &Runtime{
		Dispatcher: disp,
		Providers:  providers,
		Mods: []module.Module{
			metamod.New(deps),
			providersmod.New(deps, providers),
			settings,
			registry,
			events,
			indexing,
			reindex,
		},
		Events:  eventsSvc,
		Indexer: indexer,
		Reindex: module.MustPortsOf[reindexdom.ServicePort](reindex),
	}
}

// Mount builds the runtime and mounts every module onto the given router
func Mount(r phttp.Router, opt Options) *Runtime {
	rt := Build(opt)

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range rt.Mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})

	mountHealth(r, opt.Store, rt.Providers)

	return rt
}

// mountHealth exposes unversioned probes for load balancers and orchestration
func mountHealth(r phttp.Router, st *store.Store, providers *search.Registry) {
	r.Get("/healthz", func(w nethttp.ResponseWriter, req *nethttp.Request) {
		phttp.JSON(w, nethttp.StatusOK, map[string]any{"status": "ok"})
	})

	r.Get("/readyz", func(w nethttp.ResponseWriter, req *nethttp.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		ready := true
		checks := map[string]string{}

		if err := st.Guard(ctx); err != nil {
			checks["store"] = err.Error()
			ready = false
		} else {
			checks["store"] = "ok"
		}
		for _, p := range providers.Enabled(ctx) {
			name := "provider." + p.Name()
			if p.Healthcheck(ctx) {
				checks[name] = "ok"
			} else {
				checks[name] = "unhealthy"
				ready = false
			}
		}

		status, overall := nethttp.StatusOK, "ok"
		if !ready {
			status, overall = nethttp.StatusServiceUnavailable, "unavailable"
		}
		phttp.JSON(w, status, map[string]any{"status": overall, "checks": checks})
	})
}

func upstreamOptions(cfg config.Conf) upstream.Options {
	up := cfg.Prefix("UPSTREAM_")
	return upstream.Options{
		UserAgent:  up.MayString("USER_AGENT", "indexa"),
		Timeout:    up.MayDuration("TIMEOUT", 30*time.Second),
		MaxRetries: up.MayInt("MAX_RETRIES", 3),
		RetryBase:  up.MayDuration("RETRY_BASE", 500*time.Millisecond),
		RatePerSec: float64(up.MayInt("RPS", 0)),
		Burst:      up.MayInt("BURST", 0),
	}
}

func tokenSource(cfg config.Conf) upstream.TokenSource {
	up := cfg.Prefix("UPSTREAM_")
	if tokenURL := up.MayString("TOKEN_URL", ""); tokenURL != "" {
		return upstream.NewM2MTokenSource(upstream.M2MConfig{
			TokenURL:     tokenURL,
			ClientID:     up.MayString("CLIENT_ID", ""),
			ClientSecret: up.MayString("CLIENT_SECRET", ""),
			Audience:     up.MayString("AUDIENCE", ""),
		})
	}
	// empty static token disables the Authorization header entirely
	return upstream.StaticToken(up.MayString("TOKEN", ""))
}
