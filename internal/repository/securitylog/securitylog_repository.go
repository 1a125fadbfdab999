// File: internal/repository/securitylog/securitylog_repository.go
package securitylog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/go-darkbin/internal/domain"
)

// SecurityLogRepository stores authentication and connection events.
type SecurityLogRepository interface {
	Record(ctx context.Context, entry *domain.SecurityLog) error
	FindByUser(ctx context.Context, userID string, limit int) ([]domain.SecurityLog, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type GormSecurityLogRepository struct {
	db *gorm.DB
}

func NewGormSecurityLogRepository(db *gorm.DB) *GormSecurityLogRepository {
	return &GormSecurityLogRepository{db: db}
}

// Record inserts entry, stamping it with the current time when unset.
func (r *GormSecurityLogRepository) Record(ctx context.Context, entry *domain.SecurityLog) error {
	if entry == nil || entry.Action == "" {
		return errors.New("security log entry requires an action")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("record security log: %w", err)
	}
	return nil
}

// FindByUser returns the newest entries for userID first.
func (r *GormSecurityLogRepository) FindByUser(ctx context.Context, userID string, limit int) ([]domain.SecurityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []domain.SecurityLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("find security logs: %w", err)
	}
	return entries, nil
}

// DeleteOlderThan removes entries recorded before cutoff (retention job).
func (r *GormSecurityLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&domain.SecurityLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete security logs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
