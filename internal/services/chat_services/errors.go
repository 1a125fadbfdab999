package chat_services

import "fmt"

type ErrorType string

const (
	ErrTypeConfig      ErrorType = "CONFIG"
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeRejected    ErrorType = "REJECTED"
	ErrTypePersistence ErrorType = "PERSISTENCE"
	ErrTypeHistory     ErrorType = "HISTORY"
)

type ChatError struct {
	Type      ErrorType
	Operation string
	Message   string
	Room      string
	Username  string
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}

func NewValidationError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewRejectedError(room, username string, cause error) *ChatError {
	return &ChatError{
		Type:      ErrTypeRejected,
		Operation: "validate_content",
		Message:   "message rejected",
		Room:      room,
		Username:  username,
		Cause:     cause,
	}
}

func NewPersistenceError(room, username string, cause error) *ChatError {
	return &ChatError{
		Type:      ErrTypePersistence,
		Operation: "append",
		Message:   "message could not be saved",
		Room:      room,
		Username:  username,
		Cause:     cause,
	}
}
