package author

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines data access for authors.
// The books_count methods make it usable as the store behind bookcount.Maintainer.
type Repository interface {
	Create(ctx context.Context, name string) (*Author, error)

	// GetByID returns ErrAuthorNotFound if not exists
	GetByID(ctx context.Context, id uuid.UUID) (*Author, error)

	// List returns one page of authors plus the total count
	List(ctx context.Context, filter AuthorFilter) ([]Author, int64, error)

	// ListAll returns every author ordered by name (export)
	ListAll(ctx context.Context) ([]Author, error)

	// UpdateName returns ErrAuthorNotFound if not exists
	UpdateName(ctx context.Context, id uuid.UUID, name string) (*Author, error)

	// Delete returns ErrAuthorHasBooks when books still reference the author
	Delete(ctx context.Context, id uuid.UUID) error

	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)

	// ListIDs returns the id of every author
	ListIDs(ctx context.Context) ([]uuid.UUID, error)

	// CountBooks đếm số book rows thực tế tham chiếu tới author (ground truth)
	CountBooks(ctx context.Context, authorID uuid.UUID) (int, error)

	// GetBooksCount đọc giá trị books_count đang lưu
	GetBooksCount(ctx context.Context, authorID uuid.UUID) (int, error)

	IncrementBooksCount(ctx context.Context, authorID uuid.UUID) error
	DecrementBooksCount(ctx context.Context, authorID uuid.UUID) error

	// SetBooksCount ghi đè books_count
	SetBooksCount(ctx context.Context, authorID uuid.UUID, count int) error
}
