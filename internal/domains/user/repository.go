package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository định nghĩa contract cho data access layer
type Repository interface {
	// Create gán ID + timestamps vào u.
	// Returns: ErrEmailAlreadyExists nếu email đã tồn tại
	Create(ctx context.Context, u *User) error

	// FindByID returns ErrUserNotFound nếu không tìm thấy
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail dùng cho login, returns ErrUserNotFound nếu không tìm thấy
	FindByEmail(ctx context.Context, email string) (*User, error)

	List(ctx context.Context) ([]User, error)

	// Update ghi name, email, password_hash của u
	Update(ctx context.Context, u *User) error

	Delete(ctx context.Context, id uuid.UUID) error
}

// TokenStore giữ danh sách token id đã bị thu hồi (logout/refresh)
type TokenStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
