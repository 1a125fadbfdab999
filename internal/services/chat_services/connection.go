package chat_services

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/iyunix/go-darkbin/internal/domain"
	"github.com/iyunix/go-darkbin/internal/protocol"
)

// Connection is the gateway's record of one open client transport.
//
// The principal and joined rooms belong to the goroutine reading from the
// transport; the gateway only touches them from handler calls made on that
// goroutine. Deliver and Close may be called from anywhere.
type Connection struct {
	ID string

	principal    *domain.Principal
	client       Credentials
	rooms        map[string]struct{}
	disconnected bool

	send      chan *protocol.Envelope
	done      chan struct{}
	closeOnce sync.Once
}

// NewConnection creates an unbound connection with a bounded outbound queue.
func NewConnection(bufferSize int) *Connection {
	return &Connection{
		ID:    uuid.NewString(),
		rooms: make(map[string]struct{}),
		send:  make(chan *protocol.Envelope, bufferSize),
		done:  make(chan struct{}),
	}
}

// Principal returns the bound identity, or nil for an anonymous connection.
func (c *Connection) Principal() *domain.Principal {
	return c.principal
}

func (c *Connection) Authenticated() bool {
	return c.principal != nil
}

// Rooms returns the rooms this connection is joined to, sorted.
func (c *Connection) Rooms() []string {
	rooms := lo.Keys(c.rooms)
	sort.Strings(rooms)
	return rooms
}

func (c *Connection) InRoom(room string) bool {
	_, ok := c.rooms[room]
	return ok
}

// Deliver queues env without blocking. A connection whose queue is full is
// closed; the transport loop then runs the normal disconnect path.
func (c *Connection) Deliver(env *protocol.Envelope) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- env:
		return true
	case <-c.done:
		return false
	default:
		c.Close()
		return false
	}
}

// Outbound is drained by the transport writer.
func (c *Connection) Outbound() <-chan *protocol.Envelope {
	return c.send
}

// Done is closed once the connection is closed.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Close marks the connection closed. Safe to call more than once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Connection) bind(p *domain.Principal, creds Credentials) {
	c.principal = p
	creds.Token = ""
	c.client = creds
}

func (c *Connection) addRoom(room string) {
	c.rooms[room] = struct{}{}
}

func (c *Connection) removeRoom(room string) {
	delete(c.rooms, room)
}

// markDisconnected returns true the first time it is called.
func (c *Connection) markDisconnected() bool {
	if c.disconnected {
		return false
	}
	c.disconnected = true
	return true
}
