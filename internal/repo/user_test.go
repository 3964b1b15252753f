package repo

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bsavchuk/contacts-api/internal/apperr"
	"github.com/bsavchuk/contacts-api/internal/models"
)

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Contact{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func TestCreateUserAndAuthenticate(t *testing.T) {
	r := New(InitTestDB(t))
	ctx := context.Background()

	user, err := r.CreateUser(ctx, "alice@example.com", "pw1")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.True(t, user.IsActive)
	require.False(t, user.IsVerified)
	require.NotEqual(t, "pw1", user.PasswordHash)

	got, err := r.Authenticate(ctx, "alice@example.com", "pw1")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestCreateUserDuplicateConflict(t *testing.T) {
	r := New(InitTestDB(t))
	ctx := context.Background()

	_, err := r.CreateUser(ctx, "alice@example.com", "pw1")
	require.NoError(t, err)

	_, err = r.CreateUser(ctx, "alice@example.com", "other")
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestAuthenticateFailures(t *testing.T) {
	r := New(InitTestDB(t))
	ctx := context.Background()

	_, err := r.CreateUser(ctx, "alice@example.com", "pw1")
	require.NoError(t, err)

	_, err = r.Authenticate(ctx, "alice@example.com", "wrong")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = r.Authenticate(ctx, "nobody@example.com", "pw1")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestMarkVerifiedIdempotent(t *testing.T) {
	r := New(InitTestDB(t))
	ctx := context.Background()

	user, err := r.CreateUser(ctx, "alice@example.com", "pw1")
	require.NoError(t, err)

	require.NoError(t, r.MarkVerified(ctx, user.ID))
	require.NoError(t, r.MarkVerified(ctx, user.ID))

	got, err := r.UserByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, got.IsVerified)

	require.ErrorIs(t, r.MarkVerified(ctx, 9999), apperr.ErrNotFound)
}

func TestSetAvatarURL(t *testing.T) {
	r := New(InitTestDB(t))
	ctx := context.Background()

	user, err := r.CreateUser(ctx, "alice@example.com", "pw1")
	require.NoError(t, err)

	require.NoError(t, r.SetAvatarURL(ctx, user.ID, "https://cdn.example.com/avatars/1.png"))

	got, err := r.UserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/avatars/1.png", got.AvatarURL)

	require.ErrorIs(t, r.SetAvatarURL(ctx, 9999, "x"), apperr.ErrNotFound)
}

func TestUserByIDNotFound(t *testing.T) {
	r := New(InitTestDB(t))

	_, err := r.UserByID(context.Background(), 123)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
