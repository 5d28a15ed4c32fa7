package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"netcode-backend/internal/database"
	"netcode-backend/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.Open(database.Config{Path: path}))
	t.Cleanup(func() { database.Close() })

	return NewService(database.NewUserRepo(), database.NewSessionRepo())
}

func register(t *testing.T, svc *Service, name, password string) *models.User {
	t.Helper()
	user, err := svc.Register(models.RegisterRequest{
		Username:      name,
		Password:      password,
		PasswordAgain: password,
	})
	require.NoError(t, err)
	return user
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)

	cases := []struct {
		name string
		req  models.RegisterRequest
	}{
		{"missing username", models.RegisterRequest{Password: "secret1", PasswordAgain: "secret1"}},
		{"missing password", models.RegisterRequest{Username: "alice01", PasswordAgain: "secret1"}},
		{"missing confirmation", models.RegisterRequest{Username: "alice01", Password: "secret1"}},
		{"username too short", models.RegisterRequest{Username: "ab", Password: "secret1", PasswordAgain: "secret1"}},
		{"username too long", models.RegisterRequest{Username: "abcdefghijklmnopq", Password: "secret1", PasswordAgain: "secret1"}},
		{"password too short", models.RegisterRequest{Username: "alice01", Password: "abc", PasswordAgain: "abc"}},
		{"password too long", models.RegisterRequest{Username: "alice01", Password: "abcdefghijklmnopq", PasswordAgain: "abcdefghijklmnopq"}},
		{"password mismatch", models.RegisterRequest{Username: "alice01", Password: "secret1", PasswordAgain: "secret2"}},
		{"username starts with digit", models.RegisterRequest{Username: "1alice", Password: "secret1", PasswordAgain: "secret1"}},
		{"username non alphanumeric", models.RegisterRequest{Username: "alice_01", Password: "secret1", PasswordAgain: "secret1"}},
		{"password non alphanumeric", models.RegisterRequest{Username: "alice01", Password: "secret!1", PasswordAgain: "secret!1"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(tc.req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr, "expected a validation error")
		})
	}

	// Nothing was written by any of the failed attempts
	count, err := database.NewUserRepo().Count()
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "alice01", "secret1")

	stored, err := database.NewUserRepo().GetByName("alice01")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", stored.PasswordHash)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "alice01", "secret1")

	_, err := svc.Register(models.RegisterRequest{
		Username:      "alice01",
		Password:      "other99",
		PasswordAgain: "other99",
	})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLoginAfterRegister(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice01", "secret1")

	result, err := svc.Login("alice01", "secret1")
	require.NoError(t, err)
	require.Equal(t, user.ID, result.Identity.ID)
	require.Equal(t, "alice01", result.Identity.Name)
	require.False(t, result.Identity.IsBanned)
	require.NotEmpty(t, result.Token)
	require.True(t, result.ExpiresAt.After(time.Now()))
}

func TestLoginWrongPasswordNeverIssuesToken(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice01", "secret1")

	_, err := svc.Login("alice01", "wrong99")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown user answers the same way
	_, err = svc.Login("nobody", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// No session row was created or touched
	count, err := database.NewSessionRepo().CountActiveByUserID(user.ID)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestLoginReusesLiveSession(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "alice01", "secret1")

	first, err := svc.Login("alice01", "secret1")
	require.NoError(t, err)
	second, err := svc.Login("alice01", "secret1")
	require.NoError(t, err)

	require.Equal(t, first.Token, second.Token)
}

func TestValidateSlidesWindow(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice01", "secret1")

	result, err := svc.Login("alice01", "secret1")
	require.NoError(t, err)

	identity, err := svc.Validate(result.Token)
	require.NoError(t, err)
	require.Equal(t, user.ID, identity.ID)

	// The deadline moved forward, never backward
	session, _, err := database.NewSessionRepo().GetValidByToken(result.Token)
	require.NoError(t, err)
	require.False(t, session.ExpiresAt.Before(result.ExpiresAt))
}

func TestValidateExpiredToken(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "alice01", "secret1")

	result, err := svc.Login("alice01", "secret1")
	require.NoError(t, err)

	// Kill the session behind the token
	_, err = database.DB.Exec("UPDATE sessions SET expires_at = ?",
		time.Now().UTC().Add(-time.Minute))
	require.NoError(t, err)

	_, err = svc.Validate(result.Token)
	require.Error(t, err)

	// The dead row was not extended
	var count int
	err = database.DB.QueryRow("SELECT COUNT(*) FROM sessions WHERE expires_at > ?",
		time.Now().UTC()).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestValidateUnknownToken(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Validate("deadbeef")
	require.Error(t, err)
}

func TestRevokeEndsSession(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice01", "secret1")

	result, err := svc.Login("alice01", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(user.ID))

	_, err = svc.Validate(result.Token)
	require.Error(t, err)

	// Idempotent
	require.NoError(t, svc.Revoke(user.ID))
}
