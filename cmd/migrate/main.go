package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"library-api/internal/config"
	"library-api/internal/infrastructure/database/migrations"
	"library-api/pkg/logger"
)

func main() {
	command := flag.String("command", "up", "Migration command: up, down, status, reset")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	db, err := migrations.Open(cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch *command {
	case "up":
		err = migrations.Up(ctx, db)
	case "down":
		err = migrations.Down(ctx, db)
	case "status":
		err = migrations.Status(ctx, db)
	case "reset":
		err = migrations.Reset(ctx, db)
	default:
		log.Fatal().Str("command", *command).Msg("Unknown command. Use: up, down, status, reset")
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", *command).Msg("Migration failed")
	}
	log.Info().Str("command", *command).Msg("✅ Migration finished")
}
