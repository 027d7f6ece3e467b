package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"workshop/internal/cache"
	"workshop/internal/model"
)

const (
	accessTokenKeyPrefix = "blacklist:access_token:"
	userKeyPrefix        = "user:"

	// UserCacheTTL bounds how long a role or status change can go unseen
	// when invalidation is missed.
	UserCacheTTL = time.Minute
)

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
	CacheUser(ctx context.Context, user *model.User) error
	CachedUser(ctx context.Context, id uint) (*model.User, error)
	ForgetUser(ctx context.Context, id uint) error
}

// TokenStore keeps revoked token IDs and a short-lived copy of user rows in
// Redis.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// BlacklistAccessToken adds an access token to the blacklist until it expires.
func (s *TokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, accessTokenKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsAccessTokenBlacklisted checks if an access token is blacklisted.
func (s *TokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	data, err := s.cache.Get(ctx, accessTokenKeyPrefix+tokenID)
	if err != nil {
		return false, nil
	}
	return data != nil, nil
}

// CacheUser stores the user row for UserCacheTTL.
func (s *TokenStore) CacheUser(ctx context.Context, user *model.User) error {
	payload, err := json.Marshal(cachedUser{
		ID:     user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Status: user.Status,
	})
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return s.cache.Set(ctx, userKey(user.ID), payload, UserCacheTTL)
}

// CachedUser returns the cached user or nil on a miss.
func (s *TokenStore) CachedUser(ctx context.Context, id uint) (*model.User, error) {
	data, err := s.cache.Get(ctx, userKey(id))
	if err != nil || data == nil {
		return nil, nil
	}
	var cached cachedUser
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, nil
	}
	return &model.User{ID: cached.ID, Email: cached.Email, Role: cached.Role, Status: cached.Status}, nil
}

// ForgetUser drops the cached copy so the next request reads the database.
func (s *TokenStore) ForgetUser(ctx context.Context, id uint) error {
	return s.cache.Delete(ctx, userKey(id))
}

// cachedUser holds only what authorization needs; the password hash never
// leaves the database.
type cachedUser struct {
	ID     uint             `json:"id"`
	Email  string           `json:"email"`
	Role   model.Role       `json:"role"`
	Status model.UserStatus `json:"status"`
}

func userKey(id uint) string {
	return fmt.Sprintf("%s%d", userKeyPrefix, id)
}
