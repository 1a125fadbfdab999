package message

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iyunix/go-darkbin/internal/domain"
)

// roomClock hands out creation timestamps that strictly increase per room,
// at microsecond resolution so every backend round-trips them unchanged.
type roomClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last map[string]time.Time
}

func newRoomClock(now func() time.Time) *roomClock {
	if now == nil {
		now = time.Now
	}
	return &roomClock{now: now, last: make(map[string]time.Time)}
}

func (c *roomClock) next(room string) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	at := c.now().UTC().Truncate(time.Microsecond)
	if prev, ok := c.last[room]; ok && !at.After(prev) {
		at = prev.Add(time.Microsecond)
	}
	c.last[room] = at
	return at
}

// seed makes sure the clock never goes behind a timestamp already stored.
func (c *roomClock) seed(room string, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.last[room]; !ok || at.After(prev) {
		c.last[room] = at
	}
}

func (c *roomClock) seeded(room string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.last[room]
	return ok
}

// finalize validates msg and fills in the fields the store owns.
func finalize(msg *domain.ChatMessage, clock *roomClock) (*domain.ChatMessage, error) {
	if msg == nil {
		return nil, ErrInvalidMessage
	}
	out := *msg
	if strings.TrimSpace(out.Content) == "" || out.Username == "" {
		return nil, ErrInvalidMessage
	}
	if out.Room == "" {
		out.Room = domain.DefaultRoom
	}
	if len(out.Room) > domain.MaxRoomLength {
		return nil, ErrInvalidRoom
	}
	if out.UserID == "" {
		out.UserID = out.Username
	}
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = clock.next(out.Room)
	} else {
		out.CreatedAt = out.CreatedAt.UTC()
		clock.seed(out.Room, out.CreatedAt)
	}
	return &out, nil
}

func roomOf(msg *domain.ChatMessage) string {
	if msg == nil || msg.Room == "" {
		return domain.DefaultRoom
	}
	return msg.Room
}

func validateRecent(room string, limit int) error {
	if room == "" || len(room) > domain.MaxRoomLength {
		return ErrInvalidRoom
	}
	if limit <= 0 || limit > MaxRecentLimit {
		return ErrInvalidLimit
	}
	return nil
}
