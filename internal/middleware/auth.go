package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/iyunix/go-darkbin/internal/auth"
)

// TokenValidator checks a session token.
type TokenValidator interface {
	ValidateJWTToken(tokenString string) (*auth.Claims, error)
}

// Logger is the logging contract used by the middleware.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// NewJWTMiddleware validates the auth_token cookie and stores the caller's
// id and username in the request context. Requests without a valid token
// get a JSON 401.
func NewJWTMiddleware(validator TokenValidator, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AuthCookieName)
			if err != nil {
				logger.Debug("missing auth_token cookie", "path", r.URL.Path)
				unauthorized(w)
				return
			}

			claims, err := validator.ValidateJWTToken(cookie.Value)
			if err != nil {
				logger.Debug("invalid auth token", "path", r.URL.Path, "error", err)
				ClearAuthCookie(w)
				unauthorized(w)
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				ClearAuthCookie(w)
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, UsernameKey, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetAuthCookie stores token for the browser.
func SetAuthCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
}
