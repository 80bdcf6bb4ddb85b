package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
	"github.com/rs/zerolog/log"

	"library-api/internal/config"
	"library-api/internal/infrastructure/database"
)

// HealthChecker performs startup health checks
type HealthChecker struct {
	redisClient *redis.Client
	db          *database.PostgresDB
}

// startServices performs health checks and starts the health endpoint
func startServices(redisCfg config.RedisConfig, db *database.PostgresDB, cfg *Config) error {
	log.Info().Msg("============================================")
	log.Info().Msg("🚀 Library Worker Starting...")
	log.Info().Msg("============================================")

	checker := &HealthChecker{
		redisClient: redis.NewClient(&redis.Options{
			Addr:     redisCfg.Host,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
			MaintNotificationsConfig: &maintnotifications.Config{
				Mode: maintnotifications.ModeDisabled,
			},
		}),
		db: db,
	}

	if err := checker.checkAll(); err != nil {
		_ = checker.redisClient.Close()
		return err
	}

	go startHealthCheckServer(checker, cfg.HealthPort)

	return nil
}

// checkAll runs all health checks
func (h *HealthChecker) checkAll() error {
	checks := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"Redis Connection", h.checkRedis},
		{"Database Connection", h.checkDatabase},
	}

	for _, check := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := check.fn(ctx)
		cancel()

		if err != nil {
			log.Error().Err(err).Str("check", check.name).Msg("❌ Health check failed")
			return fmt.Errorf("%s failed: %w", check.name, err)
		}
		log.Info().Str("check", check.name).Msg("✓ OK")
	}

	return nil
}

func (h *HealthChecker) checkRedis(ctx context.Context) error {
	return h.redisClient.Ping(ctx).Err()
}

func (h *HealthChecker) checkDatabase(ctx context.Context) error {
	return h.db.Ping(ctx)
}

// startHealthCheckServer - /health (liveness) và /ready (readiness, ping Redis + DB)
func startHealthCheckServer(checker *HealthChecker, port string) {
	router := gin.New()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "service": "library-worker"})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := checker.checkRedis(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "NOT_READY", "redis": err.Error()})
			return
		}
		if err := checker.checkDatabase(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "NOT_READY", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "READY"})
	})

	log.Info().Str("port", port).Msg("[Health] Starting health check server")
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Error().Err(err).Msg("[Health] Failed to start")
	}
}
