package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/acquisitions/api/database"
	"github.com/acquisitions/api/database/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthService(t *testing.T) (*AuthService, *TokenService) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.InitDB(dbPath, false))
	t.Cleanup(func() {
		_ = database.CloseDB()
	})
	tokens := NewTokenService("test-secret", time.Hour)
	return NewAuthService(database.GetDB(), tokens), tokens
}

func TestRegisterIssuesVerifiableToken(t *testing.T) {
	auth, tokens := setupAuthService(t)

	user, token, err := auth.Register("Alice", "Alice@Example.COM", "hunter22")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	principal, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.Id, principal.Id)
	assert.Equal(t, model.RoleUser, principal.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth, _ := setupAuthService(t)

	_, _, err := auth.Register("Alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	_, _, err = auth.Register("Other Alice", "alice@example.com", "hunter23")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	auth, _ := setupAuthService(t)

	_, _, err := auth.Register("Alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	user, token, err := auth.Login("alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, token)

	_, _, err = auth.Login("alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = auth.Login("nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
