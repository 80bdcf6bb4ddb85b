// Command reconcile chạy một lượt verify books_count cho mọi author (hoặc một author với -author)
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"library-api/internal/config"
	authorRepo "library-api/internal/domains/author/repository"
	"library-api/internal/domains/bookcount"
	infraCache "library-api/internal/infrastructure/cache"
	"library-api/internal/infrastructure/database"
	"library-api/pkg/logger"
)

func main() {
	authorFlag := flag.String("author", "", "Author ID to verify (empty = all authors)")
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall timeout")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))

	var authorID *uuid.UUID
	if *authorFlag != "" {
		id, err := uuid.Parse(*authorFlag)
		if err != nil {
			log.Fatal().Err(err).Str("author", *authorFlag).Msg("Invalid author ID")
		}
		authorID = &id
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load database config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Recalculate invalidate cache của author, API không đọc số cũ
	redis := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redis.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("⚠️  Redis connection failed, cache not invalidated")
	}
	defer redis.Close()

	maintainer := bookcount.NewMaintainer(authorRepo.NewPostgresRepository(db.Pool, redis))

	report, err := maintainer.Reconcile(ctx, authorID)
	if err != nil {
		log.Fatal().Err(err).Msg("Reconcile failed")
	}

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	_ = out.Encode(report)

	if len(report.Failures) > 0 {
		os.Exit(1)
	}
}
