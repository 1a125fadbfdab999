// File: internal/handlers/chat_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/iyunix/go-darkbin/internal/domain"
	"github.com/iyunix/go-darkbin/internal/dtos"
	"github.com/iyunix/go-darkbin/internal/repository/message"
	"github.com/iyunix/go-darkbin/internal/services/chat_services"
)

type ChatHandler struct {
	gateway *chat_services.Gateway
	logger  Logger
}

func NewChatHandler(gateway *chat_services.Gateway, logger Logger) *ChatHandler {
	return &ChatHandler{gateway: gateway, logger: logger}
}

// GetMessages handles GET /api/chat/messages?room=&limit=.
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	room := h.roomParam(r)
	limit := h.gateway.Config().HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > message.MaxRecentLimit {
			writeError(w, "limit must be between 1 and 1000", http.StatusBadRequest)
			return
		}
		limit = n
	}

	msgs, err := h.gateway.History(r.Context(), room, limit)
	if err != nil {
		var chatErr *chat_services.ChatError
		if errors.As(err, &chatErr) && chatErr.Type == chat_services.ErrTypeValidation {
			writeError(w, "Invalid room", http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to load chat history", "room", room, "error", err)
		writeError(w, "Could not retrieve messages", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dtos.ChatMessagesResponseDTO{Room: room, Messages: msgs})
}

// GetPresence handles GET /api/chat/presence?room=.
func (h *ChatHandler) GetPresence(w http.ResponseWriter, r *http.Request) {
	room := h.roomParam(r)
	if len(room) > domain.MaxRoomLength {
		writeError(w, "Invalid room", http.StatusBadRequest)
		return
	}
	members := h.gateway.Members(room)
	writeJSON(w, http.StatusOK, dtos.ChatPresenceResponseDTO{Room: room, Members: members, Count: len(members)})
}

func (h *ChatHandler) roomParam(r *http.Request) string {
	if room := r.URL.Query().Get("room"); room != "" {
		return room
	}
	return h.gateway.Config().DefaultRoom
}
