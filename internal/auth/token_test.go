package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elvificent/supportdesk/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)
	user := &domain.User{ID: "usr-1", Email: "alice@example.com", Role: domain.RoleCustomer}

	token, expiresAt, err := tm.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, expiresAt.After(time.Now()))

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "usr-1", claims.UserID)
	require.Equal(t, "alice@example.com", claims.Email)
	require.Equal(t, domain.RoleCustomer, claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	user := &domain.User{ID: "usr-1", Email: "alice@example.com", Role: domain.RoleEngineer}

	token, _, err := NewTokenManager("secret-a", 30).GenerateToken(user)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 30).ParseToken(token)
	require.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)
	_, err := tm.ParseToken("not-a-token")
	require.Error(t, err)
}

func TestParseTokenRejectsUnknownRole(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)
	user := &domain.User{ID: "usr-1", Email: "alice@example.com", Role: domain.Role("SUPERUSER")}

	token, _, err := tm.GenerateToken(user)
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	require.Error(t, err)
}
