package chat_services

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/iyunix/go-darkbin/internal/domain"
)

var validate = validator.New()

// ContentValidator is consulted before a message is stored. Returning an
// error vetoes the message; it is then neither stored nor broadcast.
type ContentValidator interface {
	Validate(ctx context.Context, msg *domain.ChatMessage) error
}

// ValidatorFunc adapts a function to ContentValidator.
type ValidatorFunc func(ctx context.Context, msg *domain.ChatMessage) error

func (f ValidatorFunc) Validate(ctx context.Context, msg *domain.ChatMessage) error {
	return f(ctx, msg)
}

// validRoom reports whether room is usable as a room name.
func validRoom(room string) bool {
	return validate.Var(room, "required,max=50,printascii") == nil
}
