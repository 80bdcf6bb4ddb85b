package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-api/internal/domains/export"
	"library-api/internal/shared"
)

// ArchiveHandler upload bản export xlsx lên MinIO (nightly)
type ArchiveHandler struct {
	archiver *export.Archiver
}

func NewArchiveHandler(archiver *export.Archiver) *ArchiveHandler {
	return &ArchiveHandler{archiver: archiver}
}

func (h *ArchiveHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ArchiveExportPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			log.Error().Err(err).Msg("Failed to unmarshal ArchiveExport payload")
			return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
		}
	}

	key, err := h.archiver.Archive(ctx)
	if err != nil {
		log.Error().Err(err).Str("requested_by", payload.RequestedBy).Msg("Export archive failed")
		return fmt.Errorf("archive export: %w", err)
	}

	log.Info().
		Str("key", key).
		Str("requested_by", payload.RequestedBy).
		Msg("Export archived")
	return nil
}
