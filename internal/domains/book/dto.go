package book

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

const MinPublicationYear = 1000

// nowFunc được override trong test
var nowFunc = time.Now

func yearRule() validation.Rule {
	return validation.Min(MinPublicationYear).Error("publication year must be at least 1000")
}

func maxYearRule() validation.Rule {
	return validation.Max(nowFunc().Year()).Error("publication year cannot be in the future")
}

func titleRules() []validation.Rule {
	return []validation.Rule{
		validation.By(func(value interface{}) error {
			v, isNil := validation.Indirect(value)
			s, _ := v.(string)
			if !isNil && strings.TrimSpace(s) == "" {
				return validation.NewError("validation_blank", "title must not be blank")
			}
			return nil
		}),
		validation.RuneLength(1, 255).Error("title must not exceed 255 characters"),
	}
}

// ========================================
// REQUEST DTOs
// ========================================

// CreateBookRequest - POST /books
type CreateBookRequest struct {
	Title           string `json:"title"`
	PublicationYear int    `json:"publication_year"`
	AuthorID        string `json:"author_id"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, append([]validation.Rule{validation.Required.Error("title is required")}, titleRules()...)...),
		validation.Field(&r.PublicationYear,
			validation.Required.Error("publication year is required"),
			yearRule(),
			maxYearRule(),
		),
		validation.Field(&r.AuthorID,
			validation.Required.Error("author_id is required"),
			is.UUID.Error("author_id must be a valid UUID"),
		),
	)
}

// ToBook chỉ gọi sau khi Validate() thành công
func (r CreateBookRequest) ToBook() *Book {
	return &Book{
		Title:           strings.TrimSpace(r.Title),
		PublicationYear: r.PublicationYear,
		AuthorID:        uuid.MustParse(r.AuthorID),
	}
}

// UpdateBookRequest - PUT /books/:id, chỉ field non-nil được cập nhật
type UpdateBookRequest struct {
	Title           *string `json:"title"`
	PublicationYear *int    `json:"publication_year"`
	AuthorID        *string `json:"author_id"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.When(r.Title != nil, titleRules()...)),
		validation.Field(&r.PublicationYear, validation.When(r.PublicationYear != nil, yearRule(), maxYearRule())),
		validation.Field(&r.AuthorID, validation.When(r.AuthorID != nil,
			validation.Required.Error("author_id must not be empty"),
			is.UUID.Error("author_id must be a valid UUID"),
		)),
	)
}

// ToFields chỉ gọi sau khi Validate() thành công
func (r UpdateBookRequest) ToFields() UpdateFields {
	var f UpdateFields
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		f.Title = &t
	}
	f.PublicationYear = r.PublicationYear
	if r.AuthorID != nil {
		id := uuid.MustParse(*r.AuthorID)
		f.AuthorID = &id
	}
	return f
}

// UpdateFields là partial update xuống repository
type UpdateFields struct {
	Title           *string
	PublicationYear *int
	AuthorID        *uuid.UUID
}

func (f UpdateFields) IsEmpty() bool {
	return f.Title == nil && f.PublicationYear == nil && f.AuthorID == nil
}

// BookFilter - query params cho GET /books
type BookFilter struct {
	Search   string
	AuthorID *uuid.UUID
	SortBy   string // title, publication_year, created_at
	Order    string // asc, desc
	Limit    int
	Offset   int
}

func (f *BookFilter) Normalize() {
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
	case "title", "publication_year", "created_at":
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

type BookResponse struct {
	ID              uuid.UUID      `json:"id"`
	Title           string         `json:"title"`
	PublicationYear int            `json:"publication_year"`
	AuthorID        uuid.UUID      `json:"author_id"`
	Author          *AuthorSummary `json:"author,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
