package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/internal/domains/book/handler"
	"library-api/internal/domains/book/service"
	"library-api/internal/domains/bookcount"
	"library-api/internal/testutil"
)

type envelope struct {
	Success bool `json:"success"`
	Data    struct {
		ID     uuid.UUID `json:"id"`
		Title  string    `json:"title"`
		Author *struct {
			Name       string `json:"name"`
			BooksCount int    `json:"books_count"`
		} `json:"author"`
	} `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newRouter(t *testing.T) (*gin.Engine, *testutil.MemoryLibrary) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	lib := testutil.NewMemoryLibrary()
	authors := lib.Authors()
	h := handler.NewHandler(service.NewBookService(lib.Books(bookcount.NewMaintainer(authors)), authors))

	r := gin.New()
	g := r.Group("/api/v1/books")
	g.GET("", h.ListBooks)
	g.POST("", h.CreateBook)
	g.GET("/:id", h.GetBookDetail)
	g.PUT("/:id", h.UpdateBook)
	g.DELETE("/:id", h.DeleteBook)
	return r, lib
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestCreateBookEndpoint(t *testing.T) {
	r, lib := newRouter(t)
	tolkien := lib.SeedAuthor("Tolkien", 0)

	w, env := do(t, r, http.MethodPost, "/api/v1/books",
		`{"title":"The Hobbit","publication_year":1937,"author_id":"`+tolkien.ID.String()+`"}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "The Hobbit", env.Data.Title)
	require.NotNil(t, env.Data.Author)
	assert.Equal(t, "Tolkien", env.Data.Author.Name)
	assert.Equal(t, 1, env.Data.Author.BooksCount)
	assert.Equal(t, 1, lib.StoredCount(tolkien.ID))
}

func TestCreateBookValidationError(t *testing.T) {
	r, _ := newRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/v1/books", `{"title":"","publication_year":999,"author_id":"x"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "title")
	assert.Contains(t, env.Error.Details, "publication_year")
	assert.Contains(t, env.Error.Details, "author_id")
}

func TestCreateBookUnknownAuthorIs422(t *testing.T) {
	r, _ := newRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/v1/books",
		`{"title":"Orphan","publication_year":2000,"author_id":"`+uuid.NewString()+`"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "AUTHOR_NOT_FOUND", env.Error.Code)
}

func TestUpdateBookMovesCounter(t *testing.T) {
	r, lib := newRouter(t)
	a := lib.SeedAuthor("A", 0)
	b := lib.SeedAuthor("B", 0)

	_, created := do(t, r, http.MethodPost, "/api/v1/books",
		`{"title":"Moved","publication_year":2001,"author_id":"`+a.ID.String()+`"}`)

	w, env := do(t, r, http.MethodPut, "/api/v1/books/"+created.Data.ID.String(),
		`{"author_id":"`+b.ID.String()+`"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "B", env.Data.Author.Name)
	assert.Equal(t, 0, lib.StoredCount(a.ID))
	assert.Equal(t, 1, lib.StoredCount(b.ID))
}

func TestDeleteBookEndpoint(t *testing.T) {
	r, lib := newRouter(t)
	a := lib.SeedAuthor("A", 0)

	_, created := do(t, r, http.MethodPost, "/api/v1/books",
		`{"title":"Gone","publication_year":1999,"author_id":"`+a.ID.String()+`"}`)

	w, _ := do(t, r, http.MethodDelete, "/api/v1/books/"+created.Data.ID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, lib.StoredCount(a.ID))

	w, env := do(t, r, http.MethodDelete, "/api/v1/books/"+created.Data.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "BOOK_NOT_FOUND", env.Error.Code)
}

func TestListBooksRejectsBadAuthorFilter(t *testing.T) {
	r, _ := newRouter(t)

	w, _ := do(t, r, http.MethodGet, "/api/v1/books?author_id=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
