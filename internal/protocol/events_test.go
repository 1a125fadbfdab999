package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-darkbin/internal/domain"
)

func TestNewMessageFrom_KeepsWireFieldNames(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 3, 1, 12, 30, 0, 500000000, time.UTC)
	payload := NewMessageFrom(domain.ChatMessage{
		ID:        "7d1f",
		Username:  "alice",
		Content:   "hello",
		CreatedAt: at,
	}, "#ff69b4")

	env, err := NewEnvelope(EventNewMessage, payload)
	req.NoError(err)
	raw, err := json.Marshal(env)
	req.NoError(err)

	req.JSONEq(`{
		"event": "new_message",
		"data": {
			"id": "7d1f",
			"username": "alice",
			"content": "hello",
			"timestamp": "2024-03-01T12:30:00.5Z",
			"user_color": "#ff69b4"
		}
	}`, string(raw))
}

func TestParseEnvelope_SendMessageWithoutRoom(t *testing.T) {
	req := require.New(t)
	env, err := ParseEnvelope([]byte(`{"event":"send_message","data":{"message":"hi"}}`))
	req.NoError(err)
	req.Equal(EventSendMessage, env.Event)

	var payload SendMessagePayload
	req.NoError(env.Decode(&payload))
	req.Equal("hi", payload.Message)
	req.Empty(payload.Room)
}

func TestEnvelope_DecodeEmptyData(t *testing.T) {
	env := &Envelope{Event: EventJoinRoom}
	var payload RoomPayload
	require.NoError(t, env.Decode(&payload))
	require.Empty(t, payload.Room)
}
