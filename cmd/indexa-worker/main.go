package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"indexa/internal/modkit/repokit"
	"indexa/internal/platform/config"
	"indexa/internal/platform/logger"
	"indexa/internal/platform/store"

	"indexa/internal/services/api"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	_ = godotenv.Load()

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		AppName: "indexa-worker",
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
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(context.Background(), st)

	var (
		fWorkers = flag.Int("workers", 4, "dispatcher worker concurrency")
		fQueue   = flag.Int("queue", 256, "dispatcher queue size")
		fJob     = flag.String("job", "", "run a single reindex job to completion and exit")
	)
	flag.Parse()

	// export as env so the runtime can also read via FromConfig
	mustSetEnv("TASKS_WORKERS", fmt.Sprintf("%d", *fWorkers))
	mustSetEnv("TASKS_QUEUE_SIZE", fmt.Sprintf("%d", *fQueue))

	rt := api.Build(api.Options{
		Config: root,
		Store:  st,
		Logger: l,
	})

	ctx := context.Background()

	if *fJob != "" {
		if err := rt.Reindex.Run(ctx, *fJob); err != nil {
			l.Fatal().Err(err).Str("job_id", *fJob).Msg("reindex job failed")
		}
		l.Info().Str("job_id", *fJob).Msg("reindex job completed")
		return
	}

	if err := rt.Dispatcher.Run(ctx); err != nil {
		l.Fatal().Err(err).Msg("task dispatcher failed")
	}
}
