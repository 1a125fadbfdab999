// File: internal/services/user_services/user_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iyunix/go-darkbin/internal/domain"
	"github.com/iyunix/go-darkbin/internal/repository/user"
)

// UserService composes the account-facing services.
type UserService struct {
	*AuthService
	*IdentityService

	userRepo user.UserRepository
	logger   Logger
}

func NewUserService(userRepo user.UserRepository, audit AuditLog, jwtSecret string, logger Logger) *UserService {
	authService := NewAuthService(userRepo, audit, jwtSecret, logger)
	return &UserService{
		AuthService:     authService,
		IdentityService: NewIdentityService(authService, userRepo, logger),
		userRepo:        userRepo,
		logger:          logger,
	}
}

func (s *UserService) Profile(ctx context.Context, userID uint) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// UpdateColor changes the colour the user's name is shown with in chat.
// Already stored messages pick it up the next time history is served.
func (s *UserService) UpdateColor(ctx context.Context, userID uint, color string) (*domain.User, error) {
	color = strings.ToLower(strings.TrimSpace(color))
	if err := validate.Var(color, "required,hexcolor,len=7"); err != nil {
		return nil, ErrInvalidColor
	}

	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.UsernameColor = color
	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update color: %w", err)
	}

	s.logger.Info("username color updated", "user_id", userID)
	return u, nil
}

// IsNotFound reports whether err means the account does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, user.ErrUserNotFound)
}
