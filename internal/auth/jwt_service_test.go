package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop/internal/model"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	user := &model.User{ID: 42, Email: "jan@x.pl", Role: model.RoleUser}

	token, issued, err := svc.GenerateToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "jan@x.pl", claims.Email)
	assert.Equal(t, model.RoleUser, claims.Role)
	assert.Equal(t, issued.ID, claims.ID)

	_, second, err := svc.GenerateToken(user)
	require.NoError(t, err)
	assert.NotEqual(t, issued.ID, second.ID, "every token gets its own id")
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	user := &model.User{ID: 7, Email: "a@b.c", Role: model.RoleAdmin}
	valid, _, err := svc.GenerateToken(user)
	require.NoError(t, err)

	expired := NewJWTService("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.GenerateToken(user)
	require.NoError(t, err)

	foreign, _, err := NewJWTService("other-secret", time.Hour).GenerateToken(user)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.jwt"},
		{name: "expired", token: old},
		{name: "wrong secret", token: foreign},
		{name: "tampered", token: valid[:len(valid)-2] + "xx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestClaims_TTL(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	_, claims, err := svc.GenerateToken(&model.User{ID: 1, Email: "a@b.c"})
	require.NoError(t, err)

	now := claims.IssuedAt.Time
	assert.Equal(t, time.Hour, claims.TTL(now))
	assert.Equal(t, time.Duration(0), claims.TTL(now.Add(2*time.Hour)))
}

func TestPasswordHelpers(t *testing.T) {
	hash, err := HashPassword("secret123", 4)
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "secret124"))

	token, tokenHash, err := NewResetToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.Equal(t, tokenHash, HashResetToken(token))
	assert.NotEqual(t, token, tokenHash)
}

func TestTokenStore_WithoutRedis(t *testing.T) {
	store := NewTokenStore(nil)
	ctx := context.Background()

	require.NoError(t, store.BlacklistAccessToken(ctx, "jti", time.Minute))
	revoked, err := store.IsAccessTokenBlacklisted(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.CacheUser(ctx, &model.User{ID: 3}))
	cached, err := store.CachedUser(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, cached)
}
