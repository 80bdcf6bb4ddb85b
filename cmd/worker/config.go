package main

import (
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Config - các tham số riêng của worker process.
// Redis, DB, cron spec lấy từ internal/config qua container.
type Config struct {
	Concurrency int
	HealthPort  string
}

// loadConfig loads configuration from environment variables
func loadConfig() *Config {
	cfg := &Config{
		Concurrency: 10,
		HealthPort:  "9999",
	}

	if v, err := strconv.Atoi(os.Getenv("WORKER_CONCURRENCY")); err == nil && v > 0 {
		cfg.Concurrency = v
	}
	if v := os.Getenv("WORKER_HEALTH_PORT"); v != "" {
		cfg.HealthPort = v
	}

	log.Info().
		Int("concurrency", cfg.Concurrency).
		Str("health_port", cfg.HealthPort).
		Msg("[Config] Worker loaded")

	return cfg
}
