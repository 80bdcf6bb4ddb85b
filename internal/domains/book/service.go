package book

import (
	"context"

	"github.com/google/uuid"
)

// AuthorChecker là phần của author repository mà book service cần
type AuthorChecker interface {
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service defines business logic for books.
// Create and Update reject a nonexistent author with ErrAuthorNotFound before
// touching the repository.
type Service interface {
	Create(ctx context.Context, req CreateBookRequest) (*BookDetail, error)
	GetByID(ctx context.Context, id uuid.UUID) (*BookDetail, error)
	List(ctx context.Context, filter BookFilter) ([]BookDetail, int64, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateBookRequest) (*BookDetail, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
