package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/timetrack-api/internal/models"
	"github.com/yukikurage/timetrack-api/internal/repository"
)

func TestAuthService_Register(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db))

	user, err := svc.Register(RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
	assert.True(t, user.IsActive)
	assert.Equal(t, int64(1), countRows(t, db, &models.User{}))
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db))
	createUser(t, db, "alice")

	_, err := svc.Register(RegisterInput{
		Username: "someone-else",
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, int64(1), countRows(t, db, &models.User{}))
}

func TestAuthService_Register_Rejections(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db))
	createUser(t, db, "alice")

	tests := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"duplicate username", RegisterInput{Username: "alice", Email: "new@example.com", Password: "correct-horse"}, ErrUsernameTaken},
		{"blank username", RegisterInput{Username: "  ", Email: "new@example.com", Password: "correct-horse"}, ErrUsernameRequired},
		{"long username", RegisterInput{Username: strings.Repeat("u", 151), Email: "new@example.com", Password: "correct-horse"}, ErrUsernameTooLong},
		{"short password", RegisterInput{Username: "bob", Email: "bob@example.com", Password: "short"}, ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, int64(1), countRows(t, db, &models.User{}))
}

func TestAuthService_Login(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db))

	registered, err := svc.Register(RegisterInput{Username: "alice", Email: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	user, err := svc.Login(LoginInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = svc.Login(LoginInput{Username: "alice", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(LoginInput{Username: "nobody", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_GetUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db))
	alice := createUser(t, db, "alice")

	user, err := svc.GetUser(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.GetUser(alice.ID + 100)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
