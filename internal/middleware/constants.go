// File: internal/middleware/constants.go
package middleware

import "context"

// AuthCookieName carries the session token for both HTTP and websocket
// requests.
const AuthCookieName = "auth_token"

// Context keys for middleware communication
type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UsernameKey contextKey = "username"
)

func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(UserIDKey).(uint)
	return id, ok && id != 0
}

func UsernameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(UsernameKey).(string)
	return name, ok && name != ""
}
