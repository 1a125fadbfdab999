// File: internal/domain/user.go
package domain

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultUsernameColor is the colour a new account is shown with in chat.
const DefaultUsernameColor = "#ff69b4"

type User struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	Username      string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Password      string    `json:"-" gorm:"size:255;not null"`
	UsernameColor string    `json:"username_color" gorm:"size:7;default:'#ff69b4'"`
	IsBanned      bool      `json:"is_banned" gorm:"default:false"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HashPassword replaces the plain-text password with its bcrypt hash.
func (u *User) HashPassword(password string) error {
	if password == "" {
		return errors.New("password is required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// ValidatePassword compares a plain-text password with the user's hashed password.
func (u *User) ValidatePassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

func (u *User) IsValid() error {
	if len(u.Username) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	if len(u.Username) > 50 {
		return errors.New("username must be at most 50 characters")
	}
	return nil
}

// Color returns the chat colour, falling back to the default for legacy rows.
func (u *User) Color() string {
	if u.UsernameColor == "" {
		return DefaultUsernameColor
	}
	return u.UsernameColor
}

// Principal returns the identity this user is bound to on a chat connection.
func (u *User) Principal() *Principal {
	return &Principal{Username: u.Username, Color: u.Color()}
}
