package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sprockets/internal/config"
	"sprockets/internal/handler"
	"sprockets/internal/infra"
	"sprockets/internal/repository"
	"sprockets/internal/repository/mongodb"
	"sprockets/internal/router"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in prod
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	deps, closeStore := openStore(cfg)
	defer closeStore()

	// Redis only backs the part cache; the API runs without it.
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, part cache disabled")
	} else {
		defer rdb.Close()
		deps.Redis = rdb
		deps.Checks = append(deps.Checks, handler.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}

	r := router.New(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("store", cfg.StoreDriver).Msgf("inventory backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

// openStore connects the configured backend and returns its repositories plus
// a cleanup func.
func openStore(cfg *config.Config) (router.Deps, func()) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, db, err := infra.NewMongo(cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mongodb")
		}
		if err := mongodb.EnsureIndexes(context.Background(), db); err != nil {
			log.Fatal().Err(err).Msg("failed to create mongodb indexes")
		}
		var tx repository.Transactor = repository.NoTx{}
		if cfg.MongoTransactions {
			tx = mongodb.NewTransactor(client)
		} else {
			log.Warn().Msg("MONGO_TRANSACTIONS disabled: part delete and cascade are not atomic")
		}
		deps := router.Deps{
			Parts:    mongodb.NewPartRepository(db),
			Products: mongodb.NewProductRepository(db),
			Users:    mongodb.NewUserRepository(db),
			Tx:       tx,
			Checks: []handler.Check{{
				Name: "db",
				Ping: func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
			}},
		}
		return deps, func() { _ = client.Disconnect(context.Background()) }

	default:
		db, err := infra.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to get postgres pool")
		}
		deps := router.Deps{
			Parts:    repository.NewPartRepository(db),
			Products: repository.NewProductRepository(db),
			Users:    repository.NewUserRepository(db),
			Tx:       repository.NewGormTransactor(db),
			Checks:   []handler.Check{{Name: "db", Ping: sqlDB.PingContext}},
		}
		return deps, func() { _ = sqlDB.Close() }
	}
}
