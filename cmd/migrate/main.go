package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pageza/recipehub/backend/config"
	"github.com/pageza/recipehub/backend/internal/database"
	"github.com/pageza/recipehub/backend/internal/logging"
	"github.com/pageza/recipehub/backend/internal/service"
)

func main() {
	purge := flag.Bool("purge-revoked", false, "Delete revocation records of tokens that have expired")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration:\n%v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.Environment.IsDevelopment())

	db, err := database.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	if *purge {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := service.NewGormRevocationStore(db).Purge(ctx, time.Now())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to purge revoked tokens")
		}
		log.Info().Int64("purged", n).Msg("purged expired revocation records")
	}
}
