package handlers

import (
	"net/http"
)

// FrontendLogPayload is a log line reported by the chat client.
type FrontendLogPayload struct {
	Level   string `json:"level" validate:"required,oneof=debug info warn error"`
	Message string `json:"message" validate:"required,max=2000"`
	Context any    `json:"context,omitempty"`
}

type LogHandler struct {
	logger Logger
}

func NewLogHandler(logger Logger) *LogHandler {
	return &LogHandler{logger: logger}
}

// LogFrontendEvent handles POST /api/logs.
func (h *LogHandler) LogFrontendEvent(w http.ResponseWriter, r *http.Request) {
	var payload FrontendLogPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	kv := []interface{}{"client_message", payload.Message, "ip", clientIP(r), "context", payload.Context}
	switch payload.Level {
	case "error":
		h.logger.Error("CLIENT_LOG", kv...)
	case "warn":
		h.logger.Warn("CLIENT_LOG", kv...)
	case "debug":
		h.logger.Debug("CLIENT_LOG", kv...)
	default:
		h.logger.Info("CLIENT_LOG", kv...)
	}

	w.WriteHeader(http.StatusNoContent)
}
