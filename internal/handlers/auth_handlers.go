// File: internal/handlers/auth_handlers.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/iyunix/go-darkbin/internal/auth"
	"github.com/iyunix/go-darkbin/internal/dtos"
	"github.com/iyunix/go-darkbin/internal/middleware"
	"github.com/iyunix/go-darkbin/internal/services/user_services"
)

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	userService   *user_services.UserService
	secureCookies bool
	logger        Logger
}

func NewAuthHandler(service *user_services.UserService, secureCookies bool, logger Logger) *AuthHandler {
	return &AuthHandler{userService: service, secureCookies: secureCookies, logger: logger}
}

func requestMeta(r *http.Request) user_services.RequestMeta {
	return user_services.RequestMeta{IPAddress: clientIP(r), UserAgent: r.UserAgent()}
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dtos.UserRegisterRequestDTO
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.userService.Register(r.Context(), strings.TrimSpace(req.Username), req.Password, requestMeta(r))
	if err != nil {
		if errors.Is(err, user_services.ErrUsernameTaken) {
			writeError(w, "Username already taken", http.StatusConflict)
			return
		}
		var invalid *user_services.ValidationError
		if errors.As(err, &invalid) {
			writeError(w, invalid.Reason, http.StatusBadRequest)
			return
		}
		h.logger.Error("registration error", "error", err)
		writeError(w, "Could not create account", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, dtos.ToUserResponse(created))
}

// Login handles POST /login and sets the auth_token cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.UserLoginRequestDTO
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	u, token, err := h.userService.Login(r.Context(), strings.TrimSpace(req.Username), req.Password, requestMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, user_services.ErrAccountBanned):
			writeError(w, "Account is banned", http.StatusForbidden)
		case errors.Is(err, user_services.ErrInvalidCredentials):
			writeError(w, "Invalid username or password", http.StatusUnauthorized)
		default:
			h.logger.Error("login error", "error", err)
			writeError(w, "Could not log in", http.StatusInternalServerError)
		}
		return
	}

	middleware.SetAuthCookie(w, token, auth.DefaultTTL, h.secureCookies)
	writeJSON(w, http.StatusOK, dtos.UserLoginResponseDTO{User: dtos.ToUserResponse(u), Token: token})
}

// Logout handles GET /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me handles GET /api/profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	u, err := h.userService.Profile(r.Context(), userID)
	if err != nil {
		if user_services.IsNotFound(err) {
			writeError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		writeError(w, "Could not load profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dtos.ToUserResponse(u))
}

// UpdateColor handles PUT /api/profile/color.
func (h *AuthHandler) UpdateColor(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req dtos.UserColorRequestDTO
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, "Color must be a #rrggbb hex value", http.StatusBadRequest)
		return
	}

	u, err := h.userService.UpdateColor(r.Context(), userID, req.Color)
	if err != nil {
		switch {
		case errors.Is(err, user_services.ErrInvalidColor):
			writeError(w, err.Error(), http.StatusBadRequest)
		case user_services.IsNotFound(err):
			writeError(w, "Unauthorized", http.StatusUnauthorized)
		default:
			h.logger.Error("color update error", "user_id", userID, "error", err)
			writeError(w, "Could not update color", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, dtos.ToUserResponse(u))
}
