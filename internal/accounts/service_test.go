package accounts

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oduntan/giftregistry-backend/pkg/auth"
	"github.com/oduntan/giftregistry-backend/pkg/config"
	pkgerrors "github.com/oduntan/giftregistry-backend/pkg/errors"
	"github.com/oduntan/giftregistry-backend/pkg/logger"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "accounts-test-secret",
	Issuer:            "giftregistry-test",
	ExpirationMinutes: 30,
}

func newAccountsService(t *testing.T) (Service, Repository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone_number TEXT,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  is_admin INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  confirmed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)

	repo := NewRepository(db)
	logg := logger.New(logger.Options{ServiceName: "accounts-test", Output: io.Discard})
	svc, err := NewService(repo, testJWTConfig, logg)
	require.NoError(t, err)
	return svc, repo
}

func registerUser(t *testing.T, svc Service, email, password string) {
	t.Helper()
	_, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Tolu",
		LastName:  "Oduntan",
		Email:     email,
		Password:  password,
	})
	require.NoError(t, err)
}

func TestRegisterHashesPasswordAndNormalizesEmail(t *testing.T) {
	svc, repo := newAccountsService(t)

	user, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Tolu",
		LastName:  "Oduntan",
		Email:     "  Tolu@Example.COM ",
		Password:  "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "tolu@example.com", user.Email)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsAdmin)

	found, err := repo.FindByEmail(context.Background(), "tolu@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAccountsService(t)
	registerUser(t, svc, "tolu@example.com", "correct-horse")

	_, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Other",
		LastName:  "Person",
		Email:     "TOLU@example.com",
		Password:  "another-pass",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestRegisterValidatesInput(t *testing.T) {
	svc, _ := newAccountsService(t)

	cases := []RegisterInput{
		{LastName: "Oduntan", Email: "a@b.com", Password: "longenough"},
		{FirstName: "Tolu", LastName: "Oduntan", Email: "not-an-email", Password: "longenough"},
		{FirstName: "Tolu", LastName: "Oduntan", Email: "a@b.com", Password: "short"},
	}
	for _, input := range cases {
		_, err := svc.Register(context.Background(), input)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	}
}

func TestLoginIssuesParsableToken(t *testing.T) {
	svc, _ := newAccountsService(t)
	registerUser(t, svc, "tolu@example.com", "correct-horse")

	session, err := svc.Login(context.Background(), "Tolu@example.com", "correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken)

	claims, err := auth.ParseAccessToken(testJWTConfig, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
	assert.Equal(t, "tolu@example.com", claims.Email)
	assert.False(t, claims.IsAdmin)
}

func TestLoginRejectsBadCredentialsUniformly(t *testing.T) {
	svc, _ := newAccountsService(t)
	registerUser(t, svc, "tolu@example.com", "correct-horse")

	_, wrongPass := svc.Login(context.Background(), "tolu@example.com", "wrong-horse")
	_, unknown := svc.Login(context.Background(), "nobody@example.com", "correct-horse")

	require.Error(t, wrongPass)
	require.Error(t, unknown)
	assert.True(t, pkgerrors.IsCode(wrongPass, pkgerrors.CodeUnauthorized))
	assert.True(t, pkgerrors.IsCode(unknown, pkgerrors.CodeUnauthorized))
	assert.Equal(t, wrongPass.Error(), unknown.Error())
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	svc, repo := newAccountsService(t)
	registerUser(t, svc, "tolu@example.com", "correct-horse")

	user, err := repo.FindByEmail(context.Background(), "tolu@example.com")
	require.NoError(t, err)

	db := repo.(*repository).db
	require.NoError(t, db.Exec("UPDATE users SET is_active = 0 WHERE id = ?", user.ID).Error)

	_, err = svc.Login(context.Background(), "tolu@example.com", "correct-horse")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}
