package author

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"library-api/internal/domains/book"
)

// ========================================
// REQUEST DTOs
// ========================================

type CreateAuthorRequest struct {
	Name string `json:"name"`
}

func (r CreateAuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.By(notBlank),
			validation.RuneLength(1, 255).Error("name must not exceed 255 characters"),
		),
	)
}

type UpdateAuthorRequest struct {
	Name string `json:"name"`
}

func (r UpdateAuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.By(notBlank),
			validation.RuneLength(1, 255).Error("name must not exceed 255 characters"),
		),
	)
}

func notBlank(value interface{}) error {
	v, _ := validation.Indirect(value)
	s, _ := v.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_blank", "name must not be blank")
	}
	return nil
}

// AuthorFilter - query params cho GET /authors
type AuthorFilter struct {
	Search string
	SortBy string // name, books_count, created_at
	Order  string // asc, desc
	Limit  int
	Offset int
}

// Normalize áp dụng default và giới hạn cho pagination
func (f *AuthorFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	switch f.SortBy {
	case "name", "books_count", "created_at":
	default:
		f.SortBy = "created_at"
	}
	if f.Order != "asc" {
		f.Order = "desc"
	}
}

// ========================================
// RESPONSE DTOs
// ========================================

type AuthorResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	BooksCount int       `json:"books_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AuthorDetail là author kèm danh sách sách (GET /authors/:id)
type AuthorDetail struct {
	AuthorResponse
	Books []book.BookResponse `json:"books"`
}
