package user_services

import (
	"context"
	"errors"

	"github.com/iyunix/go-darkbin/internal/domain"
	"github.com/iyunix/go-darkbin/internal/repository/user"
	"github.com/iyunix/go-darkbin/internal/services/chat_services"
)

// IdentityService resolves chat credentials to the account behind them.
// Missing, invalid or expired tokens, unknown accounts and banned accounts
// all resolve to anonymous.
type IdentityService struct {
	auth     *AuthService
	userRepo user.UserRepository
	logger   Logger
}

func NewIdentityService(authService *AuthService, userRepo user.UserRepository, logger Logger) *IdentityService {
	return &IdentityService{auth: authService, userRepo: userRepo, logger: logger}
}

func (s *IdentityService) Resolve(ctx context.Context, creds chat_services.Credentials) (*domain.Principal, error) {
	if creds.Token == "" {
		return nil, nil
	}

	claims, err := s.auth.ValidateJWTToken(creds.Token)
	if err != nil {
		return nil, nil
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, nil
	}

	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.logger.Debug("token refers to a missing user", "user_id", userID)
			return nil, nil
		}
		return nil, err
	}
	if u.IsBanned {
		s.logger.Info("banned user attempted to join chat", "user_id", u.ID)
		return nil, nil
	}
	return u.Principal(), nil
}
