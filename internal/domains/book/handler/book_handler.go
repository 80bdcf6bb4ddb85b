package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"library-api/internal/domains/book"
	"library-api/internal/shared/response"
)

// Handler - HTTP handler cho books
type Handler struct {
	service book.Service
}

// NewHandler - Constructor with DI
func NewHandler(service book.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// ListBooks - GET /v1/books
// Query params: search, author_id, sort_by, order, page, limit
func (h *Handler) ListBooks(c *gin.Context) {
	page, limit := 1, 20
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	filter := book.BookFilter{
		Search: c.Query("search"),
		SortBy: c.DefaultQuery("sort_by", "created_at"),
		Order:  c.DefaultQuery("order", "desc"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if raw := c.Query("author_id"); raw != "" {
		authorID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "Invalid author_id")
			return
		}
		filter.AuthorID = &authorID
	}

	books, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	data := make([]book.BookResponse, 0, len(books))
	for i := range books {
		data = append(data, books[i].ToResponse())
	}

	response.SuccessWithMeta(c, http.StatusOK, "Books retrieved successfully", data, response.NewMeta(page, limit, total))
}

// GetBookDetail - GET /v1/books/:id
func (h *Handler) GetBookDetail(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	detail, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Book retrieved successfully", detail.ToResponse())
}

// CreateBook - POST /v1/books
func (h *Handler) CreateBook(c *gin.Context) {
	var req book.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	detail, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Book created successfully", detail.ToResponse())
}

// UpdateBook - PUT /v1/books/:id
func (h *Handler) UpdateBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	var req book.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	detail, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Book updated successfully", detail.ToResponse())
}

// DeleteBook - DELETE /v1/books/:id
func (h *Handler) DeleteBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Book deleted successfully", nil)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	if response.IsValidationError(err) {
		response.ValidationError(c, err)
		return
	}

	status := book.ToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("book request failed")
		response.InternalServerError(c, "Internal server error")
		return
	}
	response.ErrorResponse(c, status, book.ToErrorCode(err), err.Error())
}

func bookID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid book ID")
		return uuid.Nil, false
	}
	return id, true
}
