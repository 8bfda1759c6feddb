package services

import (
	"context"
	"testing"
	"time"

	"panda/internal/apperrors"
	"panda/internal/models"
	"panda/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Create(ctx, UserInput{Email: "  Alice@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "secret1", u.Password)
	assert.True(t, utils.CheckPasswordHash("secret1", u.Password))

	_, err = f.users.Create(ctx, UserInput{Email: "alice@example.com", Password: "another1"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = f.users.Create(ctx, UserInput{Email: "not-an-email", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = f.users.Create(ctx, UserInput{Email: "bob@example.com", Password: "123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestListAndGetUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")

	users, err := f.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, a.ID, users[0].ID)
	assert.Equal(t, b.ID, users[1].ID)

	got, err := f.users.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", got.Email)

	_, err = f.users.Get(ctx, b.ID+100)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a@example.com")

	got, err := f.users.Authenticate(ctx, "A@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = f.users.Authenticate(ctx, "a@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = f.users.Authenticate(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestResolve(t *testing.T) {
	conn := newTestDB(t)
	cache, err := utils.NewCache[uint, models.User](10, time.Minute)
	require.NoError(t, err)
	users := NewUserService(conn, cache, quiet)
	ctx := context.Background()

	u, err := users.Create(ctx, UserInput{Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)

	got, err := users.Resolve(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, 1, cache.Len())

	// served from the cache once resolved
	require.NoError(t, conn.Delete(&models.User{}, u.ID).Error)
	got, err = users.Resolve(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	cache.Delete(u.ID)
	_, err = users.Resolve(ctx, u.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
