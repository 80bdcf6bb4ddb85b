package book

import (
	"time"

	"github.com/google/uuid"
)

type Book struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	PublicationYear int       `json:"publication_year"`
	AuthorID        uuid.UUID `json:"author_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AuthorSummary là thông tin author được join kèm book (tránh import author domain)
type AuthorSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	BooksCount int       `json:"books_count"`
}

// BookDetail = book + owning author
type BookDetail struct {
	Book
	Author AuthorSummary
}

func (b *Book) ToResponse() BookResponse {
	return BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		PublicationYear: b.PublicationYear,
		AuthorID:        b.AuthorID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (d *BookDetail) ToResponse() BookResponse {
	resp := d.Book.ToResponse()
	author := d.Author
	resp.Author = &author
	return resp
}
