package user

import (
	"context"

	"github.com/google/uuid"

	"library-api/pkg/jwt"
)

// Service định nghĩa business logic layer contract
type Service interface {
	// Authentication
	Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*UserDTO, error)

	// Refresh thu hồi token hiện tại và cấp token mới
	Refresh(ctx context.Context, claims *jwt.Claims) (*TokenResponse, error)

	// Logout thu hồi token id tới khi token hết hạn
	Logout(ctx context.Context, claims *jwt.Claims) error

	// Users CRUD
	List(ctx context.Context) ([]UserDTO, error)
	Create(ctx context.Context, req CreateUserRequest) (*UserDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
