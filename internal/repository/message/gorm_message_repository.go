// File: internal/repository/message/gorm_message_repository.go
package message

import (
	"context"
	"errors"
	"slices"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/go-darkbin/internal/domain"
)

type gormMessageStore struct {
	db     *gorm.DB
	clock  *roomClock
	logger Logger
}

// NewGormMessageStore returns a MessageStore over the chat_messages table.
func NewGormMessageStore(db *gorm.DB, logger Logger) MessageStore {
	return newGormMessageStore(db, logger, time.Now)
}

func newGormMessageStore(db *gorm.DB, logger Logger, now func() time.Time) *gormMessageStore {
	return &gormMessageStore{db: db, clock: newRoomClock(now), logger: logger}
}

func (s *gormMessageStore) Append(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	if room := roomOf(msg); !s.clock.seeded(room) {
		s.seedClock(ctx, room)
	}

	out, err := finalize(msg, s.clock)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(out).Error; err != nil {
		s.logger.Error("chat message insert failed",
			"room", out.Room,
			"message_id", out.ID,
			"error", err)
		return nil, &PersistenceError{Op: "append", Room: out.Room, Cause: err}
	}

	s.logger.Debug("chat message stored",
		"room", out.Room,
		"message_id", out.ID,
		"username", out.Username)
	return out, nil
}

func (s *gormMessageStore) Recent(ctx context.Context, room string, limit int) ([]domain.ChatMessage, error) {
	if err := validateRecent(room, limit); err != nil {
		return nil, err
	}

	var messages []domain.ChatMessage
	err := s.db.WithContext(ctx).
		Where("room = ?", room).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		s.logger.Error("recent chat messages query failed", "room", room, "error", err)
		return nil, &PersistenceError{Op: "recent", Room: room, Cause: err}
	}

	slices.Reverse(messages)
	for i := range messages {
		messages[i].CreatedAt = messages[i].CreatedAt.UTC()
	}
	return messages, nil
}

func (s *gormMessageStore) CountByRoom(ctx context.Context, room string) (int64, error) {
	if room == "" {
		return 0, ErrInvalidRoom
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.ChatMessage{}).Where("room = ?", room).Count(&count).Error; err != nil {
		return 0, &PersistenceError{Op: "count", Room: room, Cause: err}
	}
	return count, nil
}

// seedClock loads the newest stored timestamp of room so timestamps keep
// increasing across restarts.
func (s *gormMessageStore) seedClock(ctx context.Context, room string) {
	var latest domain.ChatMessage
	err := s.db.WithContext(ctx).
		Select("created_at").
		Where("room = ?", room).
		Order("created_at DESC").
		Limit(1).
		Take(&latest).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return
	case err != nil:
		s.logger.Warn("could not seed room clock", "room", room, "error", err)
		return
	}
	s.clock.seed(room, latest.CreatedAt.UTC())
}
