package main

import (
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	bookcountJob "library-api/internal/domains/bookcount/job"
	exportJob "library-api/internal/domains/export/job"
	"library-api/internal/shared"
	"library-api/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	reconcile *bookcountJob.ReconcileHandler
	archive   *exportJob.ArchiveHandler // nil khi MinIO không sẵn sàng
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	registry := &HandlerRegistry{
		reconcile: bookcountJob.NewReconcileHandler(c.Maintainer),
	}

	if c.Archiver != nil {
		registry.archive = exportJob.NewArchiveHandler(c.Archiver)
	}

	return registry
}

// ArchiveEnabled - scheduler chỉ đăng ký archive job khi có handler
func (h *HandlerRegistry) ArchiveEnabled() bool {
	return h.archive != nil
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeReconcileBookCounts, h.reconcile.ProcessTask)

	if h.archive != nil {
		mux.HandleFunc(shared.TypeArchiveExport, h.archive.ProcessTask)
	} else {
		log.Warn().Str("task", shared.TypeArchiveExport).Msg("[Worker] Handler skipped: object storage unavailable")
	}
}
