// Command seeduser creates a user account from the command line.
// Usage: go run ./cmd/seeduser --email admin@example.com --password secret
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"sprockets/internal/config"
	"sprockets/internal/dto"
	"sprockets/internal/infra"
	"sprockets/internal/repository"
	"sprockets/internal/repository/mongodb"
	"sprockets/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.App{
		Name:  "seeduser",
		Usage: "register an inventory user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"SEED_PASSWORD"}},
			&cli.StringFlag{Name: "first-name", Value: "Admin"},
			&cli.StringFlag{Name: "last-name", Value: "User"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("seeduser failed")
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	users, closeFn, err := openUsers(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	svc := service.NewAuthService(users, cfg)
	resp, err := svc.Register(c.Context, dto.RegisterRequest{
		FirstName: c.String("first-name"),
		LastName:  c.String("last-name"),
		Email:     c.String("email"),
		Password:  c.String("password"),
	})
	if errors.Is(err, service.ErrUserExists) {
		log.Warn().Str("email", c.String("email")).Msg("user already exists, nothing to do")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("id", resp.ID).Str("email", resp.Email).Msg("user created")
	fmt.Println(resp.Token)
	return nil
}

func openUsers(cfg *config.Config) (repository.UserRepository, func(), error) {
	if cfg.StoreDriver == config.StoreMongo {
		client, db, err := infra.NewMongo(cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongodb: %w", err)
		}
		if err := mongodb.EnsureIndexes(context.Background(), db); err != nil {
			return nil, nil, fmt.Errorf("mongodb indexes: %w", err)
		}
		return mongodb.NewUserRepository(db), func() { _ = client.Disconnect(context.Background()) }, nil
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	return repository.NewUserRepository(db), func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}
