package main

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-api/internal/shared"
)

// asynqServer wraps asynq.Server with additional functionality
type asynqServer struct {
	*asynq.Server
}

// setupAsynqServer creates and configures the Asynq server
func setupAsynqServer(redis asynq.RedisClientOpt, cfg *Config, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		redis,
		asynq.Config{
			Queues: map[string]int{
				shared.QueueCritical:    6,
				shared.QueueDefault:     3,
				shared.QueueMaintenance: 1,
			},
			Concurrency:     cfg.Concurrency,
			ShutdownTimeout: 30 * time.Second,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				log.Error().
					Err(err).
					Str("task", task.Type()).
					Int("retried", retried).
					Msg("[Asynq] ❌ Task failed")
			}),
		},
	)

	go func() {
		log.Info().Msg("[Worker] Starting...")
		if err := srv.Run(mux); err != nil {
			log.Fatal().Err(err).Msg("[Worker] Failed")
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown chờ các task đang chạy tối đa ShutdownTimeout
func (s *asynqServer) Shutdown() {
	log.Info().Msg("[Worker] Shutting down (waiting max 30s)...")
	s.Server.Shutdown()
	log.Info().Msg("[Worker] ✓ Gracefully stopped")
}
