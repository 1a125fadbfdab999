package chat_services

import (
	"context"

	"github.com/iyunix/go-darkbin/internal/domain"
)

// Logger interface for the chat services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Credentials is what a connecting client presented on the upgrade request.
type Credentials struct {
	Token     string
	IPAddress string
	UserAgent string
}

// Identity resolves credentials to a principal. A nil principal with a nil
// error means the caller is anonymous.
type Identity interface {
	Resolve(ctx context.Context, creds Credentials) (*domain.Principal, error)
}

// Directory looks up display colours for message authors.
type Directory interface {
	ColorsFor(ctx context.Context, usernames []string) (map[string]string, error)
}

// AuditLog records connection events. Failures are logged, never surfaced.
type AuditLog interface {
	Record(ctx context.Context, entry *domain.SecurityLog) error
}
