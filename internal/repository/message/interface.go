// File: internal/repository/message/interface.go
package message

import (
	"context"

	"github.com/iyunix/go-darkbin/internal/domain"
)

// MessageStore is the durable, append-only log of chat messages.
type MessageStore interface {
	// Append assigns ID and CreatedAt when absent, writes the message and
	// returns the finalized copy. Invalid input yields ErrInvalidMessage or
	// ErrInvalidRoom; storage failures are *PersistenceError.
	Append(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error)
	// Recent returns the newest limit messages of room, oldest first.
	Recent(ctx context.Context, room string, limit int) ([]domain.ChatMessage, error)
	// CountByRoom returns how many messages room holds.
	CountByRoom(ctx context.Context, room string) (int64, error)
}

// Logger is the logging contract used by the message stores.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
