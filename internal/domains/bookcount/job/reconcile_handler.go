package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-api/internal/domains/bookcount"
	"library-api/internal/shared"
)

// NewReconcileTask - authorID nil = verify toàn bộ authors
func NewReconcileTask(authorID *uuid.UUID) (*asynq.Task, error) {
	var payload shared.ReconcilePayload
	if authorID != nil {
		payload.AuthorID = authorID.String()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal reconcile payload: %w", err)
	}

	return asynq.NewTask(shared.TypeReconcileBookCounts, data,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
	), nil
}

// ReconcileHandler chạy reconciliation pass cho books_count
type ReconcileHandler struct {
	maintainer *bookcount.Maintainer
}

func NewReconcileHandler(maintainer *bookcount.Maintainer) *ReconcileHandler {
	return &ReconcileHandler{maintainer: maintainer}
}

// ProcessTask - pass có failure thì trả error để asynq retry (verify idempotent)
func (h *ReconcileHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ReconcilePayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			log.Error().Err(err).Msg("Failed to unmarshal Reconcile payload")
			return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
		}
	}

	var authorID *uuid.UUID
	if payload.AuthorID != "" {
		id, err := uuid.Parse(payload.AuthorID)
		if err != nil {
			return fmt.Errorf("invalid author_id %q: %w", payload.AuthorID, asynq.SkipRetry)
		}
		authorID = &id
	}

	report, err := h.maintainer.Reconcile(ctx, authorID)
	if err != nil {
		return fmt.Errorf("reconcile books_count: %w", err)
	}

	log.Info().
		Str("author_id", payload.AuthorID).
		Int("checked", report.Checked).
		Int("corrected", len(report.Corrections)).
		Int("failed", len(report.Failures)).
		Msg("Reconcile task done")

	if len(report.Failures) > 0 {
		return fmt.Errorf("reconcile books_count: %d authors failed", len(report.Failures))
	}
	return nil
}
