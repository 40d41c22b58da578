package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"reviewsvisor/internal/adapters/observability"
	redisad "reviewsvisor/internal/adapters/redis"
	"reviewsvisor/internal/adapters/source"
	"reviewsvisor/internal/app"
	"reviewsvisor/internal/shared"
	mysqlrepo "reviewsvisor/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "importer")

	log.Info().
		Str("base", cfg.SourceBase).
		Int("workers", cfg.Workers).
		Int("reviews", cfg.ReviewCount).
		Int("places", len(cfg.PlaceIDs)).
		Msg("importer starting")

	if len(cfg.PlaceIDs) == 0 {
		log.Fatal().Msg("IMPORT_PLACE_IDS is empty; nothing to import")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := source.New(cfg.SourceBase, cfg.SourceKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize source client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	ing := app.NewIngestionService(client, repo, cache)
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, id := range cfg.PlaceIDs {
		id := id

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(placeID int64) {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := ing.IngestPlace(ctx, placeID, cfg.ReviewCount); err != nil {
				log.Warn().Int64("id", placeID).Err(err).Msg("ingest failed")
				return
			}
			log.Info().Int64("id", placeID).Msg("ingest ok")
		}(id)
	}

	wg.Wait()
	log.Info().Msg("import completed")
}
