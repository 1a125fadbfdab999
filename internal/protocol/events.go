// Package protocol defines the JSON frames exchanged over the chat websocket.
package protocol

import (
	"encoding/json"
	"time"

	"github.com/iyunix/go-darkbin/internal/domain"
)

// EventType names a frame on the wire.
type EventType string

const (
	// Client -> Server
	EventSendMessage EventType = "send_message"
	EventJoinRoom    EventType = "join_room"
	EventLeaveRoom   EventType = "leave_room"

	// Server -> Client
	EventNewMessage       EventType = "new_message"
	EventUserConnected    EventType = "user_connected"
	EventUserDisconnected EventType = "user_disconnected"
	EventHistory          EventType = "history"
	EventError            EventType = "error"
)

// Envelope wraps every frame with its event name.
type Envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// SendMessagePayload is the body of an inbound send_message frame.
type SendMessagePayload struct {
	Message string `json:"message"`
	Room    string `json:"room,omitempty" validate:"omitempty,max=50,printascii"`
}

// RoomPayload is the body of join_room and leave_room frames.
type RoomPayload struct {
	Room string `json:"room" validate:"required,max=50,printascii"`
}

// NewMessagePayload is broadcast for every stored chat message.
type NewMessagePayload struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	UserColor string `json:"user_color"`
}

// PresencePayload is the body of user_connected and user_disconnected.
type PresencePayload struct {
	Username string `json:"username"`
}

// HistoryPayload carries the initial backlog of a room, oldest first.
type HistoryPayload struct {
	Room     string              `json:"room"`
	Messages []NewMessagePayload `json:"messages"`
}

// ErrorPayload is sent only to the connection that caused it.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodePersistence     = "persistence_error"
	ErrCodeRejected        = "message_rejected"
	ErrCodeInvalidMessage  = "invalid_message"
	ErrCodeHistoryFailed   = "history_unavailable"
	ErrCodeUnsupportedType = "unsupported_event"
)

// NewEnvelope creates an envelope with the given event and data.
func NewEnvelope(event EventType, data interface{}) (*Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Envelope{Event: event, Data: raw}, nil
}

// ParseEnvelope parses a JSON frame into an envelope.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// Decode unmarshals the envelope data into v.
func (e *Envelope) Decode(v interface{}) error {
	if len(e.Data) == 0 {
		return json.Unmarshal([]byte("{}"), v)
	}
	return json.Unmarshal(e.Data, v)
}

// FormatTimestamp renders t as ISO-8601 in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// NewMessageFrom builds the wire form of a stored message.
func NewMessageFrom(msg domain.ChatMessage, color string) NewMessagePayload {
	return NewMessagePayload{
		ID:        msg.ID,
		Username:  msg.Username,
		Content:   msg.Content,
		Timestamp: FormatTimestamp(msg.CreatedAt),
		UserColor: color,
	}
}
