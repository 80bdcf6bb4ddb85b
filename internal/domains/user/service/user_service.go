package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"library-api/internal/domains/user"
	"library-api/pkg/jwt"
)

// bcryptCost - tests hạ xuống bcrypt.MinCost
var bcryptCost = 12

// userService implement user.Service interface
type userService struct {
	repo   user.Repository
	tokens user.TokenStore
	jwt    *jwt.Manager
	now    func() time.Time
}

// NewUserService tạo service instance
func NewUserService(repo user.Repository, tokens user.TokenStore, jwtManager *jwt.Manager) user.Service {
	return &userService{
		repo:   repo,
		tokens: tokens,
		jwt:    jwtManager,
		now:    time.Now,
	}
}

// ========================================
// AUTHENTICATION
// ========================================

func (s *userService) Register(ctx context.Context, req user.RegisterRequest) (*user.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.createUser(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	return s.issueToken(u, true)
}

// Login không phân biệt "email không tồn tại" và "sai password"
func (s *userService) Login(ctx context.Context, req user.LoginRequest) (*user.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByEmail(ctx, user.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	return s.issueToken(u, true)
}

func (s *userService) Me(ctx context.Context, userID uuid.UUID) (*user.UserDTO, error) {
	return s.GetByID(ctx, userID)
}

func (s *userService) Refresh(ctx context.Context, claims *jwt.Claims) (*user.TokenResponse, error) {
	userID, err := claims.UserUUID()
	if err != nil {
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.revoke(ctx, claims); err != nil {
		return nil, err
	}

	return s.issueToken(u, false)
}

func (s *userService) Logout(ctx context.Context, claims *jwt.Claims) error {
	return s.revoke(ctx, claims)
}

// ========================================
// USERS CRUD
// ========================================

func (s *userService) List(ctx context.Context) ([]user.UserDTO, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]user.UserDTO, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToDTO())
	}
	return out, nil
}

func (s *userService) Create(ctx context.Context, req user.CreateUserRequest) (*user.UserDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.createUser(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	dto := u.ToDTO()
	return &dto, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*user.UserDTO, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := u.ToDTO()
	return &dto, nil
}

func (s *userService) Update(ctx context.Context, id uuid.UUID, req user.UpdateUserRequest) (*user.UserDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Name == nil && req.Email == nil && req.Password == nil {
		return nil, user.ErrNoFieldsToUpdate
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := user.NormalizeEmail(*req.Email)
		if email != u.Email {
			if err := s.ensureEmailFree(ctx, email); err != nil {
				return nil, err
			}
		}
		u.Email = email
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	dto := u.ToDTO()
	return &dto, nil
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ========================================
// HELPERS
// ========================================

func (s *userService) createUser(ctx context.Context, name, email, password string) (*user.User, error) {
	email = user.NormalizeEmail(email)
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
	}
	// unique constraint vẫn bắt race giữa check và insert
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return user.ErrEmailAlreadyExists
	case errors.Is(err, user.ErrUserNotFound):
		return nil
	default:
		return fmt.Errorf("check email exists: %w", err)
	}
}

func (s *userService) issueToken(u *user.User, withUser bool) (*user.TokenResponse, error) {
	token, claims, err := s.jwt.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	res := &user.TokenResponse{
		Token:     token,
		TokenType: "bearer",
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if withUser {
		dto := u.ToDTO()
		res.User = &dto
	}
	return res, nil
}

func (s *userService) revoke(ctx context.Context, claims *jwt.Claims) error {
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(s.now())
	}
	if err := s.tokens.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
