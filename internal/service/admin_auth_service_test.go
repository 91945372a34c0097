package service

import (
	"testing"
	"time"

	"appointments/internal/auth"
	apperrors "appointments/internal/errors"
	"appointments/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestAdminAuth(t *testing.T, secret string) AdminAuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := repository.NewConfigAdminRepository("Front Desk", "desk@example.com", string(hash))
	return NewAdminAuthService(repo, auth.NewTokenManager(secret, time.Hour), zap.NewNop())
}

func TestAdminLogin(t *testing.T) {
	svc := newTestAdminAuth(t, "test-secret")

	token, err := svc.Login("desk@example.com", "s3cret")
	require.NoError(t, err)

	principal, err := auth.NewTokenManager("test-secret", time.Hour).Parse(token)
	require.NoError(t, err)
	assert.True(t, principal.IsAdmin)
	assert.Equal(t, "Front Desk", principal.DisplayName)
	assert.Equal(t, "desk@example.com", principal.Email)
}

func TestAdminLoginRejects(t *testing.T) {
	svc := newTestAdminAuth(t, "test-secret")

	_, err := svc.Login("desk@example.com", "admin123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCreds)

	_, err = svc.Login("someone@example.com", "s3cret")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCreds)
}

func TestAdminLoginWithoutSecret(t *testing.T) {
	svc := newTestAdminAuth(t, "")

	_, err := svc.Login("desk@example.com", "s3cret")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCreds)
}
