package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"library-api/internal/domains/user"
)

// MemoryUsers is an in-memory user.Repository with a unique email index
type MemoryUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User
}

var _ user.Repository = (*MemoryUsers)(nil)

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[uuid.UUID]user.User)}
}

func (r *MemoryUsers) emailTaken(email string, except uuid.UUID) bool {
	for id, u := range r.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (r *MemoryUsers) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(u.Email, uuid.Nil) {
		return user.ErrEmailAlreadyExists
	}
	now := time.Now()
	u.ID = uuid.New()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUsers) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryUsers) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *MemoryUsers) List(_ context.Context) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *MemoryUsers) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	if r.emailTaken(u.Email, u.ID) {
		return user.ErrEmailAlreadyExists
	}
	u.UpdatedAt = time.Now()
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUsers) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}
