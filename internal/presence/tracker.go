// Package presence keeps the live record of who is connected to which room.
// Nothing here is persisted; a restart starts from an empty tracker.
package presence

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

type set map[string]struct{}

// Tracker maps rooms to the principals currently joined to them.
// It is safe for concurrent use.
type Tracker struct {
	mu    sync.RWMutex
	rooms map[string]set
}

func NewTracker() *Tracker {
	return &Tracker{rooms: make(map[string]set)}
}

// Join adds principal to room. Joining twice is the same as joining once.
func (t *Tracker) Join(room, principal string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	members, ok := t.rooms[room]
	if !ok {
		members = make(set)
		t.rooms[room] = members
	}
	members[principal] = struct{}{}
}

// Leave removes principal from room. Leaving a room one is not in is a no-op.
func (t *Tracker) Leave(room, principal string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	members, ok := t.rooms[room]
	if !ok {
		return
	}
	delete(members, principal)
	if len(members) == 0 {
		delete(t.rooms, room)
	}
}

// MembersOf returns a sorted copy of the principals joined to room.
func (t *Tracker) MembersOf(room string) []string {
	t.mu.RLock()
	members := lo.Keys(t.rooms[room])
	t.mu.RUnlock()

	sort.Strings(members)
	return members
}

// IsMember reports whether principal is currently joined to room.
func (t *Tracker) IsMember(room, principal string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.rooms[room][principal]
	return ok
}

// RoomsOf returns a sorted copy of the rooms principal is joined to.
func (t *Tracker) RoomsOf(principal string) []string {
	t.mu.RLock()
	rooms := lo.Filter(lo.Keys(t.rooms), func(room string, _ int) bool {
		_, ok := t.rooms[room][principal]
		return ok
	})
	t.mu.RUnlock()

	sort.Strings(rooms)
	return rooms
}

// Rooms returns a sorted copy of every room with at least one member.
func (t *Tracker) Rooms() []string {
	t.mu.RLock()
	rooms := lo.Keys(t.rooms)
	t.mu.RUnlock()

	sort.Strings(rooms)
	return rooms
}
