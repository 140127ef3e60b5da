package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delego-hq/delego/internal/domain/apperr"
	"github.com/delego-hq/delego/internal/domain/entity"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newFixture()

	registered, err := f.authSvc.Register(context.Background(), "anna", "anna@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleEmployee, registered.Role)
	assert.True(t, registered.IsActive)
	assert.NotEqual(t, "secret123", registered.PasswordHash)

	result, err := f.authSvc.Login(context.Background(), "anna@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, registered.ID, result.Employee.ID)
}

func TestAuthService_Register_DuplicateConflict(t *testing.T) {
	f := newFixture()
	f.addEmployee("anna", entity.RoleEmployee, nil)

	_, err := f.authSvc.Register(context.Background(), "anna", "fresh@example.com", "secret123")

	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"missing username", "", "anna@example.com", "secret123"},
		{"missing password", "anna", "anna@example.com", ""},
		{"bad email", "anna", "nope", "secret123"},
		{"short password", "anna", "anna@example.com", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.authSvc.Register(context.Background(), tt.username, tt.email, tt.password)
			require.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	f := newFixture()
	_, err := f.authSvc.Register(context.Background(), "anna", "anna@example.com", "secret123")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.authSvc.Login(context.Background(), "anna@example.com", "wrong")
		require.ErrorIs(t, err, apperr.ErrUnauthorized)
	})
	t.Run("unknown email", func(t *testing.T) {
		_, err := f.authSvc.Login(context.Background(), "nobody@example.com", "secret123")
		require.ErrorIs(t, err, apperr.ErrUnauthorized)
	})
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	f := newFixture()
	registered, err := f.authSvc.Register(context.Background(), "anna", "anna@example.com", "secret123")
	require.NoError(t, err)
	require.NoError(t, f.employees.SetActive(context.Background(), registered.ID, false))

	_, err = f.authSvc.Login(context.Background(), "anna@example.com", "secret123")

	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	f := newFixture()
	registered, err := f.authSvc.Register(context.Background(), "anna", "anna@example.com", "secret123")
	require.NoError(t, err)

	result, err := f.authSvc.Login(context.Background(), "anna@example.com", "secret123")
	require.NoError(t, err)

	id, err := f.authSvc.VerifyToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, id)
}

func TestAuthService_VerifyToken_Garbage(t *testing.T) {
	f := newFixture()

	_, err := f.authSvc.VerifyToken("not.a.token")

	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAuthService_Me(t *testing.T) {
	f := newFixture()
	registered, err := f.authSvc.Register(context.Background(), "anna", "anna@example.com", "secret123")
	require.NoError(t, err)

	me, err := f.authSvc.Me(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "anna", me.Username)

	_, err = f.authSvc.Me(context.Background(), 999)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
