package repository

import (
	"context"
	"time"

	"library-api/internal/domains/user"
	"library-api/pkg/cache"
)

const revokedKeyPrefix = "auth:revoked:"

// cacheTokenStore lưu token id bị thu hồi trong Redis, tự hết hạn cùng token
type cacheTokenStore struct {
	cache cache.Cache
}

func NewTokenStore(c cache.Cache) user.TokenStore {
	return &cacheTokenStore{cache: c}
}

func (s *cacheTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		// token đã hết hạn, không cần lưu
		return nil
	}
	return s.cache.Set(ctx, revokedKeyPrefix+tokenID, true, ttl)
}

func (s *cacheTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.cache.Exists(ctx, revokedKeyPrefix+tokenID)
}
