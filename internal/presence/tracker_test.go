package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTracker_JoinAndLeave_CountsDistinctPrincipals(t *testing.T) {
	req := require.New(t)
	tracker := NewTracker()

	for i := 0; i < 10; i++ {
		tracker.Join("global", fmt.Sprintf("user-%02d", i))
	}
	for i := 0; i < 4; i++ {
		tracker.Leave("global", fmt.Sprintf("user-%02d", i))
	}

	req.Len(tracker.MembersOf("global"), 6)
}

func TestTracker_JoinIsIdempotent(t *testing.T) {
	req := require.New(t)
	tracker := NewTracker()

	// Given alice joined twice
	tracker.Join("global", "alice")
	tracker.Join("global", "alice")
	req.Equal([]string{"alice"}, tracker.MembersOf("global"))

	// When she leaves once
	tracker.Leave("global", "alice")

	// Then she is gone, not at a negative count
	req.Empty(tracker.MembersOf("global"))
	req.False(tracker.IsMember("global", "alice"))

	tracker.Leave("global", "alice")
	req.Empty(tracker.MembersOf("global"))
}

func TestTracker_LeaveUnknownPrincipalIsNoOp(t *testing.T) {
	req := require.New(t)
	tracker := NewTracker()
	tracker.Join("global", "bob")

	tracker.Leave("global", "mallory")
	tracker.Leave("nowhere", "mallory")

	req.Equal([]string{"bob"}, tracker.MembersOf("global"))
	req.Equal([]string{"global"}, tracker.Rooms())
}

func TestTracker_MembersOfReturnsSnapshot(t *testing.T) {
	req := require.New(t)
	tracker := NewTracker()
	tracker.Join("global", "bob")
	tracker.Join("global", "alice")

	snapshot := tracker.MembersOf("global")
	req.Equal([]string{"alice", "bob"}, snapshot)

	tracker.Leave("global", "alice")
	snapshot[0] = "changed"

	req.Equal([]string{"bob"}, tracker.MembersOf("global"))
}

func TestTracker_RoomsOf(t *testing.T) {
	req := require.New(t)
	tracker := NewTracker()
	tracker.Join("global", "alice")
	tracker.Join("random", "alice")
	tracker.Join("random", "bob")

	req.Equal([]string{"global", "random"}, tracker.RoomsOf("alice"))
	req.Equal([]string{"random"}, tracker.RoomsOf("bob"))
	req.Empty(tracker.RoomsOf("carol"))
}

func TestTracker_ConcurrentMutation(t *testing.T) {
	tracker := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("user-%d", i)
			tracker.Join("global", name)
			_ = tracker.MembersOf("global")
			if i%2 == 0 {
				tracker.Leave("global", name)
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, tracker.MembersOf("global"), 25)
}
