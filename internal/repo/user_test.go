package repo

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Nekrasovv/web_store/internal/models"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}))

	return NewGormStore(db)
}

func seedUser(t *testing.T, store *GormStore, username, email string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: "x",
		Role:         "user",
	}
	require.NoError(t, store.Insert(context.Background(), user))
	return user
}

func TestGormStore_FindByUsernameOrEmail(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "alice", "a@x.com")

	byUsername, err := store.FindByUsernameOrEmail(ctx, "alice", "other@x.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", byUsername.Username)

	byEmail, err := store.FindByUsernameOrEmail(ctx, "someone-else", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byEmail.Email)

	_, err = store.FindByUsernameOrEmail(ctx, "nobody", "nobody@x.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_SetAndClearRefreshToken(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, store, "alice", "a@x.com")

	require.Nil(t, user.RefreshToken)

	require.NoError(t, store.SetRefreshToken(ctx, user.ID, "token-1"))
	got, err := store.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RefreshToken)
	assert.Equal(t, "token-1", *got.RefreshToken)

	// overwrite keeps a single live value per identity
	require.NoError(t, store.SetRefreshToken(ctx, user.ID, "token-2"))
	got, err = store.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RefreshToken)
	assert.Equal(t, "token-2", *got.RefreshToken)

	require.NoError(t, store.ClearRefreshToken(ctx, user.ID))
	got, err = store.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RefreshToken)

	// clearing an already-null value is a no-op
	require.NoError(t, store.ClearRefreshToken(ctx, user.ID))
}

func TestGormStore_UpdateRoleAndDelete(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	user := seedUser(t, store, "bob", "b@x.com")

	updated, err := store.UpdateRole(ctx, user.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", updated.Role)

	_, err = store.UpdateRole(ctx, user.ID+100, "admin")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.DeleteUser(ctx, user.ID))
	_, err = store.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.DeleteUser(ctx, user.ID), ErrNotFound)
}
