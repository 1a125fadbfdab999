// File: internal/dtos/user.go
package dtos

import (
	"time"

	"github.com/iyunix/go-darkbin/internal/domain"
)

// UserResponseDTO defines what fields to expose in user API responses.
type UserResponseDTO struct {
	ID            uint   `json:"id"`
	Username      string `json:"username"`
	UsernameColor string `json:"username_color"`
	CreatedAt     string `json:"created_at"`
}

// UserRegisterRequestDTO is the payload of POST /register.
type UserRegisterRequestDTO struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// UserLoginRequestDTO is the payload of POST /login.
type UserLoginRequestDTO struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=128"`
}

// UserLoginResponseDTO is returned on a successful login. The token is also
// set as the auth_token cookie.
type UserLoginResponseDTO struct {
	User  UserResponseDTO `json:"user"`
	Token string          `json:"token"`
}

// UserColorRequestDTO is the payload of PUT /api/profile/color.
type UserColorRequestDTO struct {
	Color string `json:"color" validate:"required,hexcolor,len=7"`
}

func ToUserResponse(u *domain.User) UserResponseDTO {
	return UserResponseDTO{
		ID:            u.ID,
		Username:      u.Username,
		UsernameColor: u.Color(),
		CreatedAt:     u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
