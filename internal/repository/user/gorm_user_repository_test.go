package user

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iyunix/go-darkbin/internal/domain"
	"github.com/iyunix/go-darkbin/internal/services"
)

func newTestRepository(t *testing.T) UserRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "users.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	return NewGormUserRepository(db, &services.NoOpLogger{})
}

func newUser(t *testing.T, username string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username}
	require.NoError(t, u.HashPassword("correct horse"))
	return u
}

func TestGormUserRepository_CreateAndFind(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, newUser(t, "alice"))
	req.NoError(err)
	req.NotZero(created.ID)
	req.Equal(domain.DefaultUsernameColor, created.UsernameColor)

	byName, err := repo.FindByUsername(ctx, "alice")
	req.NoError(err)
	req.Equal(created.ID, byName.ID)
	req.NoError(byName.ValidatePassword("correct horse"))

	byID, err := repo.FindByID(ctx, created.ID)
	req.NoError(err)
	req.Equal("alice", byID.Username)

	_, err = repo.FindByUsername(ctx, "nobody")
	req.ErrorIs(err, ErrUserNotFound)
}

func TestGormUserRepository_CreateRejectsDuplicateUsername(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, newUser(t, "alice"))
	req.NoError(err)

	_, err = repo.Create(ctx, newUser(t, "alice"))
	req.ErrorIs(err, ErrUsernameTaken)
}

func TestGormUserRepository_CreateRejectsBadUsername(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)

	for _, name := range []string{"", "ab", "has space", "tab\tname"} {
		_, err := repo.Create(context.Background(), newUser(t, name))
		req.Error(err, name)
	}
}

func TestGormUserRepository_ColorsFor(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	alice := newUser(t, "alice")
	alice.UsernameColor = "#112233"
	_, err := repo.Create(ctx, alice)
	req.NoError(err)
	_, err = repo.Create(ctx, newUser(t, "bob"))
	req.NoError(err)

	colors, err := repo.ColorsFor(ctx, []string{"alice", "bob", "alice", "ghost", ""})
	req.NoError(err)
	req.Equal(map[string]string{"alice": "#112233", "bob": domain.DefaultUsernameColor}, colors)

	empty, err := repo.ColorsFor(ctx, nil)
	req.NoError(err)
	req.Empty(empty)
}

func TestGormUserRepository_SetBanned(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, newUser(t, "mallory"))
	req.NoError(err)

	req.NoError(repo.SetBanned(ctx, created.ID, true))
	found, err := repo.FindByID(ctx, created.ID)
	req.NoError(err)
	req.True(found.IsBanned)

	req.ErrorIs(repo.SetBanned(ctx, 9999, true), ErrUserNotFound)
}
