package book

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the data access for books.
// Implementations emit a Notification to their Notifier after each committed
// create, author-changing update and delete.
type Repository interface {
	Create(ctx context.Context, b *Book) (*Book, error)

	// GetByID returns ErrBookNotFound if not exists
	GetByID(ctx context.Context, id uuid.UUID) (*Book, error)

	// GetDetail returns the book joined with its author
	GetDetail(ctx context.Context, id uuid.UUID) (*BookDetail, error)

	List(ctx context.Context, filter BookFilter) ([]BookDetail, int64, error)
	ListAll(ctx context.Context) ([]BookDetail, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]Book, error)

	// Update applies the non-nil fields. Returns ErrBookNotFound if not exists.
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Book, error)

	// Delete reports whether a row was removed
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
