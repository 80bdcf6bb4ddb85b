package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/internal/domains/bookcount"
	"library-api/internal/domains/bookcount/handler"
	"library-api/internal/shared"
	"library-api/internal/testutil"
)

type fakeQueue struct {
	tasks []*asynq.Task
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: shared.QueueMaintenance, Type: task.Type()}, nil
}

func setup(queue handler.TaskEnqueuer) (*gin.Engine, *testutil.MemoryLibrary) {
	gin.SetMode(gin.TestMode)
	lib := testutil.NewMemoryLibrary()
	h := handler.NewReconcileHandler(bookcount.NewMaintainer(lib.Authors()), queue)

	r := gin.New()
	r.POST("/reconcile", h.Reconcile)
	return r, lib
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReconcileAllInline(t *testing.T) {
	r, lib := setup(nil)
	a := lib.SeedAuthor("Drifted", 7)
	lib.SeedBook("Only", 2000, a.ID)
	lib.SeedAuthor("Fine", 0)

	w := post(r, "/reconcile", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data bookcount.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Data.Checked)
	require.Len(t, body.Data.Corrections, 1)
	assert.Equal(t, bookcount.Correction{AuthorID: a.ID, Stored: 7, Actual: 1}, body.Data.Corrections[0])
	assert.Equal(t, 1, lib.StoredCount(a.ID))
}

func TestReconcileSingleAuthor(t *testing.T) {
	r, lib := setup(nil)
	a := lib.SeedAuthor("Drifted", 3)
	other := lib.SeedAuthor("Other", 5)

	w := post(r, "/reconcile", `{"author_id":"`+a.ID.String()+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, 0, lib.StoredCount(a.ID))
	assert.Equal(t, 5, lib.StoredCount(other.ID))
}

func TestReconcileBadAuthorID(t *testing.T) {
	r, _ := setup(nil)

	w := post(r, "/reconcile", `{"author_id":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReconcileAsyncEnqueues(t *testing.T) {
	q := &fakeQueue{}
	r, lib := setup(q)
	a := lib.SeedAuthor("Drifted", 3)

	w := post(r, "/reconcile?async=true&author_id="+a.ID.String(), "")
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	require.Len(t, q.tasks, 1)
	assert.Equal(t, shared.TypeReconcileBookCounts, q.tasks[0].Type())

	var payload shared.ReconcilePayload
	require.NoError(t, json.Unmarshal(q.tasks[0].Payload(), &payload))
	assert.Equal(t, a.ID.String(), payload.AuthorID)

	// chưa chạy, counter giữ nguyên
	assert.Equal(t, 3, lib.StoredCount(a.ID))
}

func TestReconcileAsyncWithoutQueue(t *testing.T) {
	r, _ := setup(nil)

	w := post(r, "/reconcile?async=true", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
