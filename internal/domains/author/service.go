package author

import (
	"context"

	"github.com/google/uuid"
)

// Service defines business logic operations for Author domain
type Service interface {
	Create(ctx context.Context, req CreateAuthorRequest) (*Author, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Author, error)

	// GetDetail returns the author together with its books
	GetDetail(ctx context.Context, id uuid.UUID) (*AuthorDetail, error)

	List(ctx context.Context, filter AuthorFilter) ([]Author, int64, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateAuthorRequest) (*Author, error)

	// Delete rejects with ErrAuthorHasBooks while any book references the author.
	// Never cascades.
	Delete(ctx context.Context, id uuid.UUID) error
}
