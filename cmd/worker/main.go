// cmd/worker/main.go
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"library-api/pkg/container"
	"library-api/pkg/logger"
)

func main() {
	envErr := godotenv.Load()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)
	gin.SetMode(gin.ReleaseMode)

	if envErr != nil {
		log.Info().Msg("⚠️  No .env file found, using system environment variables")
	}

	c, err := container.NewContainer()
	if err != nil {
		log.Fatal().Err(err).Msg("[Container] Failed to initialize")
	}
	defer c.Cleanup()

	cfg := loadConfig()
	redisOpt := container.RedisOpt(c.Config.Redis)

	if err := startServices(c.Config.Redis, c.DB, cfg); err != nil {
		log.Fatal().Err(err).Msg("[Startup] Health check failed")
	}

	handlers := initializeHandlers(c)
	srv := setupAsynqServer(redisOpt, cfg, handlers)

	jobConfig := c.Config.Jobs
	if !handlers.ArchiveEnabled() {
		jobConfig.ExportArchiveCron = ""
	}
	scheduler := setupScheduler(redisOpt, jobConfig)

	waitForShutdown(srv, scheduler)
}

func waitForShutdown(srv *asynqServer, scheduler *asynqScheduler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("[Shutdown] Gracefully stopping...")
	scheduler.Shutdown()
	srv.Shutdown()
	log.Info().Msg("[Shutdown] ✓ Stopped")
}
