package user

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

const minPasswordLength = 6

// ========================================
// REQUEST DTOs
// ========================================

// RegisterRequest - POST /auth/register
type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, 255)),
		validation.Field(&r.Email, validation.Required, is.EmailFormat, validation.RuneLength(1, 255)),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(minPasswordLength, 0)),
		validation.Field(&r.PasswordConfirmation,
			validation.Required,
			validation.In(r.Password).Error("password confirmation does not match"),
		),
	)
}

// LoginRequest - POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required),
	)
}

// CreateUserRequest - POST /users
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, 255)),
		validation.Field(&r.Email, validation.Required, is.EmailFormat, validation.RuneLength(1, 255)),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(minPasswordLength, 0)),
	)
}

// UpdateUserRequest - PUT /users/:id, chỉ field non-nil được cập nhật
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.When(r.Name != nil, validation.Required, validation.RuneLength(1, 255))),
		validation.Field(&r.Email, validation.When(r.Email != nil, validation.Required, is.EmailFormat)),
		validation.Field(&r.Password, validation.When(r.Password != nil, validation.Required, validation.RuneLength(minPasswordLength, 0))),
	)
}

// NormalizeEmail - email lưu và so sánh ở dạng lowercase
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ========================================
// RESPONSE DTOs
// ========================================

type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenResponse trả về cho register/login/refresh
type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *UserDTO  `json:"user,omitempty"`
}
