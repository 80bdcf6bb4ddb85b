package bookcount

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence the maintainer works against. The author
// repository satisfies it. Methods on a missing author return
// author.ErrAuthorNotFound.
type Store interface {
	ListIDs(ctx context.Context) ([]uuid.UUID, error)

	// CountBooks is the ground truth: number of book rows referencing the author
	CountBooks(ctx context.Context, authorID uuid.UUID) (int, error)

	// GetBooksCount reads the stored counter
	GetBooksCount(ctx context.Context, authorID uuid.UUID) (int, error)

	IncrementBooksCount(ctx context.Context, authorID uuid.UUID) error
	DecrementBooksCount(ctx context.Context, authorID uuid.UUID) error
	SetBooksCount(ctx context.Context, authorID uuid.UUID, count int) error
}
