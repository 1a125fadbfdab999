// Package broadcast fans chat events out to the connections joined to a room.
//
// Delivery is at-most-once to the subscribers present when an event is
// published. Events published to one room reach every subscriber in the
// order they were published; nothing is promised across rooms.
package broadcast

import (
	"sync"

	"github.com/iyunix/go-darkbin/internal/protocol"
)

// Subscriber receives events for the rooms it is subscribed to.
//
// Deliver must not block. It returns false when the subscriber is gone or
// can no longer keep up, in which case it is dropped from the room.
type Subscriber interface {
	Deliver(env *protocol.Envelope) bool
}

// Logger is the logging contract used by the channel.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

type room struct {
	mu   sync.Mutex
	subs map[Subscriber]struct{}
}

// Channel is a per-room subscriber registry. Registry changes take the
// channel lock; publishing to a room takes only that room's lock.
type Channel struct {
	mu     sync.RWMutex
	rooms  map[string]*room
	logger Logger
}

func NewChannel(logger Logger) *Channel {
	return &Channel{rooms: make(map[string]*room), logger: logger}
}

// Subscribe adds sub to room. Subscribing twice is a no-op.
func (c *Channel) Subscribe(name string, sub Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[name]
	if !ok {
		r = &room{subs: make(map[Subscriber]struct{})}
		c.rooms[name] = r
	}
	r.mu.Lock()
	r.subs[sub] = struct{}{}
	r.mu.Unlock()
}

// Unsubscribe removes sub from room.
func (c *Channel) Unsubscribe(name string, sub Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unsubscribeLocked(name, sub)
}

// UnsubscribeAll removes sub from every room.
func (c *Channel) UnsubscribeAll(sub Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name := range c.rooms {
		c.unsubscribeLocked(name, sub)
	}
}

func (c *Channel) unsubscribeLocked(name string, sub Subscriber) {
	r, ok := c.rooms[name]
	if !ok {
		return
	}
	r.mu.Lock()
	delete(r.subs, sub)
	empty := len(r.subs) == 0
	r.mu.Unlock()
	if empty {
		delete(c.rooms, name)
	}
}

// Publish delivers env to every subscriber of room and returns how many
// accepted it. Concurrent publishes to the same room are serialized.
func (c *Channel) Publish(name string, env *protocol.Envelope) int {
	c.mu.RLock()
	r, ok := c.rooms[name]
	c.mu.RUnlock()
	if !ok {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delivered := 0
	for sub := range r.subs {
		if sub.Deliver(env) {
			delivered++
			continue
		}
		delete(r.subs, sub)
		c.logger.Warn("dropped unresponsive subscriber", "room", name, "event", env.Event)
	}
	c.logger.Debug("event published", "room", name, "event", env.Event, "recipients", delivered)
	return delivered
}

// SubscriberCount returns how many subscribers room has.
func (c *Channel) SubscriberCount(name string) int {
	c.mu.RLock()
	r, ok := c.rooms[name]
	c.mu.RUnlock()
	if !ok {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
