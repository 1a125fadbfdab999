package user

import (
	"context"

	"github.com/iyunix/go-darkbin/internal/domain"
)

// UserRepository handles user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	SetBanned(ctx context.Context, userID uint, banned bool) error
	// ColorsFor maps each known username to its chat colour. Unknown
	// usernames are absent from the result.
	ColorsFor(ctx context.Context, usernames []string) (map[string]string, error)
}

// Logger interface for the user repository
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}
