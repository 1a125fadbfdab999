// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/iyunix/go-darkbin/internal/auth"
	"github.com/iyunix/go-darkbin/internal/domain"
	"github.com/iyunix/go-darkbin/internal/repository/user"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

type AuthService struct {
	userRepo     user.UserRepository
	audit        AuditLog
	jwtSecretKey []byte
	tokenTTL     time.Duration
	logger       Logger
}

func NewAuthService(userRepo user.UserRepository, audit AuditLog, jwtSecretKey string, logger Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		audit:        audit,
		jwtSecretKey: []byte(jwtSecretKey),
		tokenTTL:     auth.DefaultTTL,
		logger:       logger,
	}
}

// Login authenticates a user and returns a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string, meta RequestMeta) (*domain.User, string, error) {
	if username == "" || password == "" {
		s.logger.Warn("login attempt with empty credentials",
			"has_username", username != "",
			"has_password", password != "")
		return nil, "", ErrInvalidCredentials
	}

	u, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		s.logger.Warn("login failed - user not found", "username", maskUsername(username))
		s.record(ctx, domain.ActionLogin, username, false, meta)
		return nil, "", ErrInvalidCredentials
	}

	if err := u.ValidatePassword(password); err != nil {
		s.logger.Warn("login failed - invalid password", "username", maskUsername(username), "user_id", u.ID)
		s.record(ctx, domain.ActionLogin, username, false, meta)
		return nil, "", ErrInvalidCredentials
	}

	if u.IsBanned {
		s.logger.Warn("login attempt by banned user", "user_id", u.ID)
		s.record(ctx, domain.ActionLogin, username, false, meta)
		return nil, "", ErrAccountBanned
	}

	token, err := auth.GenerateJWT(u.ID, u.Username, s.jwtSecretKey, s.tokenTTL)
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", u.ID)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.record(ctx, domain.ActionLogin, username, true, meta)
	s.logger.Info("login successful", "username", maskUsername(username), "user_id", u.ID)
	return u, token, nil
}

// Register creates an account. Usernames are unique.
func (s *AuthService) Register(ctx context.Context, username, password string, meta RequestMeta) (*domain.User, error) {
	if err := s.validateRegistrationInput(username, password); err != nil {
		s.logger.Warn("registration validation failed", "username", maskUsername(username), "error", err.Error())
		return nil, err
	}

	newUser := &domain.User{Username: username, UsernameColor: domain.DefaultUsernameColor}
	if err := newUser.HashPassword(password); err != nil {
		s.logger.Error("password hashing failed", "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.userRepo.Create(ctx, newUser)
	if err != nil {
		s.record(ctx, domain.ActionRegister, username, false, meta)
		if errors.Is(err, user.ErrUsernameTaken) {
			s.logger.Warn("registration failed - username already exists", "username", maskUsername(username))
			return nil, ErrUsernameTaken
		}
		s.logger.Error("user creation failed", "error", err, "username", maskUsername(username))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.record(ctx, domain.ActionRegister, username, true, meta)
	s.logger.Info("user registered successfully", "username", maskUsername(username), "user_id", created.ID)
	return created, nil
}

func (s *AuthService) validateRegistrationInput(username, password string) error {
	if err := validate.Var(username, "required,min=3,max=50"); err != nil || !usernamePattern.MatchString(username) {
		return &ValidationError{Reason: "username must be 3-50 characters: letters, digits, '_', '.' or '-'"}
	}
	if len(password) < 8 {
		return &ValidationError{Reason: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateJWTToken validates a token and returns its claims.
func (s *AuthService) ValidateJWTToken(tokenString string) (*auth.Claims, error) {
	claims, err := auth.ValidateToken(tokenString, s.jwtSecretKey)
	if err != nil {
		s.logger.Debug("JWT token validation failed", "error", err)
		return nil, err
	}
	return claims, nil
}

func (s *AuthService) record(ctx context.Context, action, username string, success bool, meta RequestMeta) {
	if s.audit == nil {
		return
	}
	entry := &domain.SecurityLog{
		Action:    action,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		UserID:    username,
		Success:   success,
		Timestamp: time.Now().UTC(),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record security log", "action", action, "error", err)
	}
}
