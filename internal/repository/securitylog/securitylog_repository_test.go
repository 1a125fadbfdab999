package securitylog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iyunix/go-darkbin/internal/domain"
)

func newTestRepository(t *testing.T) *GormSecurityLogRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.SecurityLog{}))
	return NewGormSecurityLogRepository(db)
}

func TestSecurityLogRepository_RecordAndFind(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	req.NoError(repo.Record(ctx, &domain.SecurityLog{Action: domain.ActionLogin, UserID: "alice", Success: true}))
	req.NoError(repo.Record(ctx, &domain.SecurityLog{Action: domain.ActionChatConnect, UserID: "alice", Success: true}))
	req.NoError(repo.Record(ctx, &domain.SecurityLog{Action: domain.ActionLogin, UserID: "bob", Success: false}))

	entries, err := repo.FindByUser(ctx, "alice", 10)
	req.NoError(err)
	req.Len(entries, 2)
	req.Equal(domain.ActionChatConnect, entries[0].Action)
	req.False(entries[0].Timestamp.IsZero())

	req.Error(repo.Record(ctx, &domain.SecurityLog{}))
}

func TestSecurityLogRepository_DeleteOlderThan(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	old := time.Now().UTC().Add(-48 * time.Hour)
	req.NoError(repo.Record(ctx, &domain.SecurityLog{Action: domain.ActionLogin, UserID: "alice", Timestamp: old}))
	req.NoError(repo.Record(ctx, &domain.SecurityLog{Action: domain.ActionLogin, UserID: "alice"}))

	deleted, err := repo.DeleteOlderThan(ctx, time.Now().UTC().Add(-24*time.Hour))
	req.NoError(err)
	req.EqualValues(1, deleted)

	entries, err := repo.FindByUser(ctx, "alice", 10)
	req.NoError(err)
	req.Len(entries, 1)
}
