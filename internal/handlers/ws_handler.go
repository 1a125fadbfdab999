package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/iyunix/go-darkbin/internal/middleware"
	"github.com/iyunix/go-darkbin/internal/protocol"
	"github.com/iyunix/go-darkbin/internal/services/chat_services"
)

// WebSocketHandler upgrades GET /ws and pumps frames between the socket and
// the chat gateway.
type WebSocketHandler struct {
	gateway  *chat_services.Gateway
	cfg      *chat_services.Config
	upgrader websocket.Upgrader
	logger   Logger
}

func NewWebSocketHandler(gateway *chat_services.Gateway, logger Logger) *WebSocketHandler {
	cfg := gateway.Config()
	return &WebSocketHandler{
		gateway: gateway,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
		logger: logger,
	}
}

// originChecker accepts same-host requests and the configured origins.
// An empty list or "*" accepts anything.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || lo.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		return lo.ContainsBy(allowed, func(o string) bool { return strings.EqualFold(o, origin) })
	}
}

// HandleConnection handles GET /ws.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	creds := chat_services.Credentials{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	}
	if cookie, err := r.Cookie(middleware.AuthCookieName); err == nil {
		creds.Token = cookie.Value
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", creds.IPAddress, "error", err)
		return
	}

	// The session outlives the HTTP request that started it.
	ctx := context.WithoutCancel(r.Context())
	conn := chat_services.NewConnection(h.cfg.SendBufferSize)

	go h.writePump(ws, conn)
	h.gateway.OnConnect(ctx, conn, creds)
	h.readPump(ctx, ws, conn)
}

func (h *WebSocketHandler) readPump(ctx context.Context, ws *websocket.Conn, conn *chat_services.Connection) {
	defer func() {
		h.gateway.OnDisconnect(ctx, conn)
		ws.Close()
	}()

	ws.SetReadLimit(h.cfg.MaxFrameBytes)
	_ = ws.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	for {
		kind, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				h.logger.Debug("websocket read error", "conn_id", conn.ID, "error", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		env, err := protocol.ParseEnvelope(data)
		if err != nil {
			h.logger.Debug("dropping malformed frame", "conn_id", conn.ID, "error", err)
			continue
		}
		if err := h.gateway.HandleEnvelope(ctx, conn, env); err != nil {
			h.logger.Debug("chat event not delivered", "conn_id", conn.ID, "event", env.Event, "error", err)
		}
	}
}

func (h *WebSocketHandler) writePump(ws *websocket.Conn, conn *chat_services.Connection) {
	ticker := time.NewTicker(h.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case env := <-conn.Outbound():
			_ = ws.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := ws.WriteJSON(env); err != nil {
				h.logger.Debug("websocket write failed", "conn_id", conn.ID, "error", err)
				conn.Close()
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		case <-conn.Done():
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(h.cfg.WriteWait))
			return
		}
	}
}
