package dtos

import "github.com/iyunix/go-darkbin/internal/protocol"

// ChatMessagesResponseDTO is returned by GET /api/chat/messages.
type ChatMessagesResponseDTO struct {
	Room     string                       `json:"room"`
	Messages []protocol.NewMessagePayload `json:"messages"`
}

// ChatPresenceResponseDTO is returned by GET /api/chat/presence.
type ChatPresenceResponseDTO struct {
	Room    string   `json:"room"`
	Members []string `json:"members"`
	Count   int      `json:"count"`
}

// ErrorResponseDTO is the body of every JSON error response.
type ErrorResponseDTO struct {
	Error string `json:"error"`
}
