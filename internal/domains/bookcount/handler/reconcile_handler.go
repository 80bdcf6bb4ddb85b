package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-api/internal/domains/bookcount"
	"library-api/internal/domains/bookcount/job"
	"library-api/internal/shared/response"
)

// TaskEnqueuer là phần của *asynq.Client mà handler dùng
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type ReconcileRequest struct {
	AuthorID string `json:"author_id"`
}

type ReconcileHandler struct {
	maintainer *bookcount.Maintainer
	queue      TaskEnqueuer
}

func NewReconcileHandler(maintainer *bookcount.Maintainer, queue TaskEnqueuer) *ReconcileHandler {
	return &ReconcileHandler{
		maintainer: maintainer,
		queue:      queue,
	}
}

// Reconcile - POST /v1/maintenance/book-counts/reconcile?async=true
// Body (optional): {"author_id": "..."}
func (h *ReconcileHandler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}
	if req.AuthorID == "" {
		req.AuthorID = c.Query("author_id")
	}

	var authorID *uuid.UUID
	if req.AuthorID != "" {
		id, err := uuid.Parse(req.AuthorID)
		if err != nil {
			response.BadRequest(c, "Invalid author_id")
			return
		}
		authorID = &id
	}

	if c.Query("async") == "true" {
		h.enqueue(c, authorID)
		return
	}

	report, err := h.maintainer.Reconcile(c.Request.Context(), authorID)
	if err != nil {
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("reconcile failed")
		response.InternalServerError(c, "Reconciliation failed")
		return
	}

	response.Success(c, http.StatusOK, "Reconciliation completed", report)
}

func (h *ReconcileHandler) enqueue(c *gin.Context, authorID *uuid.UUID) {
	if h.queue == nil {
		response.ErrorResponse(c, http.StatusServiceUnavailable, "QUEUE_UNAVAILABLE", "Job queue is not configured")
		return
	}

	task, err := job.NewReconcileTask(authorID)
	if err != nil {
		response.InternalServerError(c, "Could not build task")
		return
	}

	info, err := h.queue.EnqueueContext(c.Request.Context(), task)
	if err != nil {
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("enqueue reconcile failed")
		response.InternalServerError(c, "Could not enqueue reconciliation")
		return
	}

	response.Success(c, http.StatusAccepted, "Reconciliation queued", gin.H{
		"task_id": info.ID,
		"queue":   info.Queue,
	})
}
