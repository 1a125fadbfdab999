package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/iyunix/go-darkbin/internal/domain"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

type gormUserRepository struct {
	db     *gorm.DB
	logger Logger
}

func NewGormUserRepository(db *gorm.DB, logger Logger) UserRepository {
	return &gormUserRepository{db: db, logger: logger}
}

// Create inserts a new user. A duplicate username yields ErrUsernameTaken.
func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.validateUserInput(user); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	exists, err := r.ExistsByUsername(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	if user.UsernameColor == "" {
		user.UsernameColor = domain.DefaultUsernameColor
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		r.logger.Error("database error during user creation", "error", err)
		return nil, errors.New("database error creating user")
	}

	r.logger.Info("user created", "user_id", user.ID)
	return user, nil
}

func (r *gormUserRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == 0 {
		return errors.New("invalid user ID")
	}
	if err := r.validateUserInput(user); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		r.logger.Error("database error during user update", "user_id", user.ID, "error", err)
		return errors.New("database error updating user")
	}
	return nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if id == 0 {
		return nil, errors.New("invalid user ID")
	}

	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return r.handleFindError(err, &user)
}

func (r *gormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if err := r.validateUsername(username); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	return r.handleFindError(err, &user)
}

func (r *gormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", username).Count(&count).Error
	if err != nil {
		r.logger.Error("database error checking username existence", "error", err)
		return false, errors.New("database error checking username existence")
	}
	return count > 0, nil
}

func (r *gormUserRepository) SetBanned(ctx context.Context, userID uint, banned bool) error {
	if userID == 0 {
		return errors.New("invalid user ID")
	}

	result := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", userID).Update("is_banned", banned)
	if result.Error != nil {
		r.logger.Error("database error updating ban flag", "user_id", userID, "error", result.Error)
		return errors.New("database error updating user")
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *gormUserRepository) ColorsFor(ctx context.Context, usernames []string) (map[string]string, error) {
	names := lo.Uniq(lo.Compact(usernames))
	if len(names) == 0 {
		return map[string]string{}, nil
	}

	var rows []domain.User
	err := r.db.WithContext(ctx).
		Select("username", "username_color").
		Where("username IN ?", names).
		Find(&rows).Error
	if err != nil {
		r.logger.Error("database error loading username colours", "count", len(names), "error", err)
		return nil, errors.New("database error loading username colours")
	}

	return lo.SliceToMap(rows, func(u domain.User) (string, string) {
		return u.Username, u.Color()
	}), nil
}

func (r *gormUserRepository) validateUserInput(user *domain.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	if err := r.validateUsername(user.Username); err != nil {
		return fmt.Errorf("username validation: %w", err)
	}
	if user.Password == "" {
		return errors.New("password hash is required")
	}
	return nil
}

func (r *gormUserRepository) validateUsername(username string) error {
	if len(username) < 3 || len(username) > 50 {
		return errors.New("username must be between 3 and 50 characters")
	}
	if strings.TrimSpace(username) != username {
		return errors.New("username must not start or end with whitespace")
	}
	for _, c := range username {
		if c < 0x21 || c > 0x7e {
			return errors.New("username must be printable ASCII without spaces")
		}
	}
	return nil
}

func (r *gormUserRepository) handleFindError(err error, user *domain.User) (*domain.User, error) {
	if err == nil {
		return user, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	r.logger.Error("database query error", "error", err)
	return nil, errors.New("database query failed")
}
