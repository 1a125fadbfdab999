package user_services

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/iyunix/go-darkbin/internal/domain"
)

var validate = validator.New()

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountBanned      = errors.New("account is banned")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidColor       = errors.New("color must be a #rrggbb hex value")
)

// ValidationError reports registration input that was refused. Reason is
// safe to show to the client.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// Logger interface for all user services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// AuditLog persists security events.
type AuditLog interface {
	Record(ctx context.Context, entry *domain.SecurityLog) error
}

// RequestMeta describes the client behind an authentication request.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// maskUsername keeps enough of a username to correlate log lines.
func maskUsername(username string) string {
	return username[:min(4, len(username))] + "****"
}
