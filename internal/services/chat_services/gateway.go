package chat_services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/iyunix/go-darkbin/internal/broadcast"
	"github.com/iyunix/go-darkbin/internal/domain"
	"github.com/iyunix/go-darkbin/internal/presence"
	"github.com/iyunix/go-darkbin/internal/protocol"
	"github.com/iyunix/go-darkbin/internal/repository/message"
)

// Gateway owns the chat session lifecycle: it binds identities to
// connections, moves them in and out of rooms and turns inbound sends into
// stored and broadcast messages.
//
// Handlers for one connection must be called from a single goroutine.
// Different connections may be handled concurrently.
type Gateway struct {
	cfg        *Config
	identity   Identity
	store      message.MessageStore
	presence   *presence.Tracker
	channel    *broadcast.Channel
	directory  Directory
	audit      AuditLog
	validators []ContentValidator
	logger     Logger

	locks roomLocks

	sessionsMu sync.Mutex
	sessions   map[string]map[string]int // room -> username -> open connections
}

type Option func(*Gateway)

// WithValidators appends content validators, run in order before a message
// is stored.
func WithValidators(validators ...ContentValidator) Option {
	return func(g *Gateway) {
		g.validators = append(g.validators, validators...)
	}
}

func WithDirectory(directory Directory) Option {
	return func(g *Gateway) { g.directory = directory }
}

func WithAuditLog(audit AuditLog) Option {
	return func(g *Gateway) { g.audit = audit }
}

func NewGateway(
	cfg *Config,
	identity Identity,
	store message.MessageStore,
	tracker *presence.Tracker,
	channel *broadcast.Channel,
	logger Logger,
	opts ...Option,
) (*Gateway, error) {
	if cfg == nil {
		return nil, &ChatError{Type: ErrTypeConfig, Operation: "new_gateway", Message: "config is required"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ChatError{Type: ErrTypeConfig, Operation: "new_gateway", Message: "invalid config", Cause: err}
	}
	if identity == nil || store == nil || tracker == nil || channel == nil || logger == nil {
		return nil, &ChatError{Type: ErrTypeConfig, Operation: "new_gateway", Message: "missing dependency"}
	}

	g := &Gateway{
		cfg:      cfg,
		identity: identity,
		store:    store,
		presence: tracker,
		channel:  channel,
		logger:   logger,
		locks:    roomLocks{locks: make(map[string]*sync.Mutex)},
		sessions: make(map[string]map[string]int),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Gateway) Config() *Config {
	return g.cfg
}

// OnConnect resolves the caller and, when authenticated, places the
// connection in the default room. It returns the bound principal, or nil
// when the connection stays anonymous.
func (g *Gateway) OnConnect(ctx context.Context, conn *Connection, creds Credentials) *domain.Principal {
	principal, err := g.identity.Resolve(ctx, creds)
	if err != nil {
		g.logger.Warn("identity resolution failed, treating connection as anonymous",
			"conn_id", conn.ID, "ip", creds.IPAddress, "error", err)
		principal = nil
	}

	g.record(ctx, domain.ActionChatConnect, creds, principal)

	if principal == nil {
		g.logger.Debug("anonymous chat connection", "conn_id", conn.ID, "ip", creds.IPAddress)
		return nil
	}

	conn.bind(principal, creds)
	g.logger.Info("chat connection established", "conn_id", conn.ID, "username", principal.Username)
	g.enterRoom(ctx, conn, g.cfg.DefaultRoom, false)
	return principal
}

// OnDisconnect removes the connection from every room it joined. It is safe
// to call more than once and for connections that never authenticated.
func (g *Gateway) OnDisconnect(ctx context.Context, conn *Connection) {
	if conn == nil || !conn.markDisconnected() {
		return
	}
	conn.Close()

	principal := conn.Principal()
	if principal == nil {
		return
	}

	for _, room := range conn.Rooms() {
		g.exitRoom(conn, room)
	}
	g.channel.UnsubscribeAll(conn)

	g.record(ctx, domain.ActionChatDisconnect, conn.client, principal)
	g.logger.Info("chat connection closed", "conn_id", conn.ID, "username", principal.Username)
}

// OnMessage stores and broadcasts a chat message from conn.
//
// Sends from anonymous connections, blank messages and malformed room names
// are dropped without a reply. A validator veto or a storage failure is
// reported to the sender only and nothing is broadcast.
func (g *Gateway) OnMessage(ctx context.Context, conn *Connection, payload protocol.SendMessagePayload) error {
	principal := conn.Principal()
	if principal == nil {
		g.logger.Debug("dropping message from anonymous connection", "conn_id", conn.ID)
		return nil
	}

	content := strings.TrimSpace(payload.Message)
	if content == "" {
		return nil
	}

	room := payload.Room
	if room == "" {
		room = g.cfg.DefaultRoom
	}
	if !validRoom(room) {
		g.logger.Debug("dropping message with malformed room", "conn_id", conn.ID, "username", principal.Username)
		return nil
	}

	msg := &domain.ChatMessage{
		UserID:   principal.Username,
		Username: principal.Username,
		Content:  content,
		Room:     room,
	}

	for _, v := range g.validators {
		if err := v.Validate(ctx, msg); err != nil {
			g.logger.Info("message rejected", "room", room, "username", principal.Username, "reason", err)
			g.sendError(conn, protocol.ErrCodeRejected, "message rejected")
			return NewRejectedError(room, principal.Username, err)
		}
	}

	lock := g.locks.get(room)
	lock.Lock()
	defer lock.Unlock()

	// The write is not tied to the sender's lifetime: once started it
	// completes, and a stored message is always published.
	appendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.cfg.PersistTimeout)
	defer cancel()

	saved, err := g.store.Append(appendCtx, msg)
	if err != nil {
		if errors.Is(err, message.ErrInvalidMessage) || errors.Is(err, message.ErrInvalidRoom) {
			g.sendError(conn, protocol.ErrCodeInvalidMessage, "message is not valid")
			return &ChatError{Type: ErrTypeValidation, Operation: "append", Message: "invalid message",
				Room: room, Username: principal.Username, Cause: err}
		}
		g.logger.Error("failed to persist chat message", "room", room, "username", principal.Username, "error", err)
		g.sendError(conn, protocol.ErrCodePersistence, "message could not be saved")
		return NewPersistenceError(room, principal.Username, err)
	}

	env, err := protocol.NewEnvelope(protocol.EventNewMessage, protocol.NewMessageFrom(*saved, principal.Color))
	if err != nil {
		g.logger.Error("failed to encode chat message", "id", saved.ID, "error", err)
		return err
	}
	g.channel.Publish(room, env)
	return nil
}

// JoinRoom subscribes conn to room and sends it the room's recent history.
func (g *Gateway) JoinRoom(ctx context.Context, conn *Connection, room string) {
	if !conn.Authenticated() || !validRoom(room) {
		return
	}
	g.enterRoom(ctx, conn, room, true)
}

// LeaveRoom unsubscribes conn from room. Leaving a room that was never
// joined does nothing.
func (g *Gateway) LeaveRoom(_ context.Context, conn *Connection, room string) {
	if !conn.Authenticated() || !validRoom(room) {
		return
	}
	g.exitRoom(conn, room)
}

// HandleEnvelope dispatches one inbound frame.
func (g *Gateway) HandleEnvelope(ctx context.Context, conn *Connection, env *protocol.Envelope) error {
	switch env.Event {
	case protocol.EventSendMessage:
		var payload protocol.SendMessagePayload
		if err := env.Decode(&payload); err != nil {
			return nil
		}
		if err := validate.Struct(payload); err != nil {
			g.logger.Debug("dropping malformed send_message", "conn_id", conn.ID, "error", err)
			return nil
		}
		return g.OnMessage(ctx, conn, payload)

	case protocol.EventJoinRoom, protocol.EventLeaveRoom:
		var payload protocol.RoomPayload
		if err := env.Decode(&payload); err != nil {
			return nil
		}
		if err := validate.Struct(payload); err != nil {
			g.logger.Debug("dropping malformed room event", "conn_id", conn.ID, "event", env.Event, "error", err)
			return nil
		}
		if env.Event == protocol.EventJoinRoom {
			g.JoinRoom(ctx, conn, payload.Room)
		} else {
			g.LeaveRoom(ctx, conn, payload.Room)
		}
		return nil

	default:
		if conn.Authenticated() {
			g.sendError(conn, protocol.ErrCodeUnsupportedType, "unsupported event: "+string(env.Event))
		}
		return nil
	}
}

// History returns up to limit recent messages of room, oldest first, with
// each author's current colour.
func (g *Gateway) History(ctx context.Context, room string, limit int) ([]protocol.NewMessagePayload, error) {
	if room == "" {
		room = g.cfg.DefaultRoom
	}
	if !validRoom(room) {
		return nil, NewValidationError("history", "invalid room")
	}
	if limit <= 0 || limit > message.MaxRecentLimit {
		limit = g.cfg.HistoryLimit
	}

	msgs, err := g.store.Recent(ctx, room, limit)
	if err != nil {
		return nil, &ChatError{Type: ErrTypeHistory, Operation: "history", Message: "failed to load messages", Room: room, Cause: err}
	}

	colors := map[string]string{}
	if g.directory != nil && len(msgs) > 0 {
		authors := lo.Uniq(lo.Map(msgs, func(m domain.ChatMessage, _ int) string { return m.Username }))
		found, err := g.directory.ColorsFor(ctx, authors)
		if err != nil {
			g.logger.Warn("failed to load author colours", "room", room, "error", err)
		} else {
			colors = found
		}
	}

	return lo.Map(msgs, func(m domain.ChatMessage, _ int) protocol.NewMessagePayload {
		color, ok := colors[m.Username]
		if !ok {
			color = domain.DefaultUsernameColor
		}
		return protocol.NewMessageFrom(m, color)
	}), nil
}

// Members returns who is present in room.
func (g *Gateway) Members(room string) []string {
	if room == "" {
		room = g.cfg.DefaultRoom
	}
	return g.presence.MembersOf(room)
}

func (g *Gateway) enterRoom(ctx context.Context, conn *Connection, room string, withHistory bool) {
	principal := conn.Principal()

	lock := g.locks.get(room)
	lock.Lock()
	defer lock.Unlock()

	if conn.InRoom(room) {
		return
	}

	// History is queued before the subscription under the room lock, so
	// the joiner sees every message exactly once.
	if withHistory {
		g.sendHistory(ctx, conn, room)
	}

	g.channel.Subscribe(room, conn)
	conn.addRoom(room)

	if g.addSession(room, principal.Username) {
		g.presence.Join(room, principal.Username)
		g.publishPresence(room, protocol.EventUserConnected, principal.Username)
	}
	g.logger.Debug("joined room", "conn_id", conn.ID, "room", room, "username", principal.Username)
}

func (g *Gateway) exitRoom(conn *Connection, room string) {
	principal := conn.Principal()

	lock := g.locks.get(room)
	lock.Lock()
	defer lock.Unlock()

	if !conn.InRoom(room) {
		return
	}

	g.channel.Unsubscribe(room, conn)
	conn.removeRoom(room)

	if g.removeSession(room, principal.Username) {
		g.presence.Leave(room, principal.Username)
		g.publishPresence(room, protocol.EventUserDisconnected, principal.Username)
	}
	g.logger.Debug("left room", "conn_id", conn.ID, "room", room, "username", principal.Username)
}

func (g *Gateway) sendHistory(ctx context.Context, conn *Connection, room string) {
	msgs, err := g.History(ctx, room, g.cfg.HistoryLimit)
	if err != nil {
		g.logger.Error("failed to load room history", "room", room, "error", err)
		g.sendError(conn, protocol.ErrCodeHistoryFailed, "history unavailable")
		return
	}
	if msgs == nil {
		msgs = []protocol.NewMessagePayload{}
	}
	env, err := protocol.NewEnvelope(protocol.EventHistory, protocol.HistoryPayload{Room: room, Messages: msgs})
	if err != nil {
		g.logger.Error("failed to encode history", "room", room, "error", err)
		return
	}
	conn.Deliver(env)
}

func (g *Gateway) publishPresence(room string, event protocol.EventType, username string) {
	env, err := protocol.NewEnvelope(event, protocol.PresencePayload{Username: username})
	if err != nil {
		g.logger.Error("failed to encode presence event", "event", event, "error", err)
		return
	}
	g.channel.Publish(room, env)
}

func (g *Gateway) sendError(conn *Connection, code, msg string) {
	env, err := protocol.NewEnvelope(protocol.EventError, protocol.ErrorPayload{Code: code, Message: msg})
	if err != nil {
		return
	}
	conn.Deliver(env)
}

// addSession counts a connection of username in room and reports whether it
// is the first one.
func (g *Gateway) addSession(room, username string) bool {
	g.sessionsMu.Lock()
	defer g.sessionsMu.Unlock()

	users, ok := g.sessions[room]
	if !ok {
		users = make(map[string]int)
		g.sessions[room] = users
	}
	users[username]++
	return users[username] == 1
}

// removeSession reports whether the last connection of username left room.
func (g *Gateway) removeSession(room, username string) bool {
	g.sessionsMu.Lock()
	defer g.sessionsMu.Unlock()

	users, ok := g.sessions[room]
	if !ok || users[username] == 0 {
		return false
	}
	users[username]--
	if users[username] > 0 {
		return false
	}
	delete(users, username)
	if len(users) == 0 {
		delete(g.sessions, room)
	}
	return true
}

func (g *Gateway) record(ctx context.Context, action string, creds Credentials, principal *domain.Principal) {
	if g.audit == nil {
		return
	}
	entry := &domain.SecurityLog{
		Action:    action,
		IPAddress: creds.IPAddress,
		UserAgent: creds.UserAgent,
		Success:   principal != nil,
		Timestamp: time.Now().UTC(),
	}
	if principal != nil {
		entry.UserID = principal.Username
	}
	if err := g.audit.Record(context.WithoutCancel(ctx), entry); err != nil {
		g.logger.Warn("failed to record security log", "action", action, "error", err)
	}
}

// roomLocks hands out one sequencing mutex per room.
type roomLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (r *roomLocks) get(room string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[room]
	if !ok {
		l = &sync.Mutex{}
		r.locks[room] = l
	}
	return l
}
