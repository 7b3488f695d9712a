package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devine-water/devine-water/internal/platform/httpx"
	"github.com/devine-water/devine-water/internal/shared"
)

func testUser() *User {
	return &User{ID: 42, Email: "admin@devinewater.local", Role: shared.RoleAdmin, IsActive: true}
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	raw, err := tokens.Issue(testUser())
	require.NoError(t, err)

	identity, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), identity.UserID)
	assert.Equal(t, "admin@devinewater.local", identity.Email)
	assert.Equal(t, shared.RoleAdmin, identity.Role)
}

func TestTokensExpired(t *testing.T) {
	tokens := NewTokens("test-secret", time.Minute)
	issued := time.Now()
	tokens.now = func() time.Time { return issued }

	raw, err := tokens.Issue(testUser())
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = tokens.Verify(raw)
	assert.True(t, errors.Is(err, httpx.ErrTokenExpired))
}

func TestTokensWrongSecret(t *testing.T) {
	raw, err := NewTokens("secret-a", time.Hour).Issue(testUser())
	require.NoError(t, err)

	_, err = NewTokens("secret-b", time.Hour).Verify(raw)
	assert.True(t, errors.Is(err, httpx.ErrTokenInvalid))
}

func TestTokensGarbage(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	_, err := tokens.Verify("not.a.token")
	assert.True(t, errors.Is(err, httpx.ErrTokenInvalid))
}

func TestTokensDefaultTTL(t *testing.T) {
	tokens := NewTokens("test-secret", 0)
	assert.Equal(t, 7*24*time.Hour, tokens.TTL())
}
