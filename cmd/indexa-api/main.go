// @title         Indexa API
// @version       0.1.0
// @description   Event driven search indexing across pluggable providers

package main

import (
	"context"

	"github.com/joho/godotenv"

	"indexa/internal/modkit/repokit"
	"indexa/internal/platform/config"
	"indexa/internal/platform/logger"
	phttp "indexa/internal/platform/net/http"
	"indexa/internal/platform/store"

	"indexa/internal/services/api"
)

func main() {
	_ = godotenv.Load()

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")      // pgCfg lives under SERVICE_PGSQL_*
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_") // chCfg lives under SERVICE_CLICKHOUSE_*

	// bring up logging early
	l := logger.Get()

	// open the platform store (postgres + optional clickhouse)
	st, err := store.Open(
		context.Background(),
		store.Config{
			AppName: "indexa-api",
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			},
			CH: store.CHConfig{
				Enabled:  chCfg.MayBool("ENABLED", false),
				Addr:     chCfg.MayString("ADDR", ""),
				Database: chCfg.MayString("DATABASE", "indexa"),
				Username: chCfg.MayString("USERNAME", ""),
				Password: chCfg.MayString("PASSWORD", ""),
			},
		},
		store.WithLogger(*l),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(context.Background(), st)

	// http server (reads API_PORT)
	srv := phttp.NewServer(root)

	// mount the API and keep the task runtime it built
	rt := api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  root.MayBool("API_SWAGGER", true),
			EnableProfiler: root.MayBool("API_PROFILER", false),
		},
	)

	// the in-process dispatcher drains index and reindex tasks
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := rt.Dispatcher.Run(ctx); err != nil && ctx.Err() == nil {
			l.Error().Err(err).Msg("task dispatcher stopped")
		}
	}()

	// run
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
