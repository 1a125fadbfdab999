package broadcast

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/iyunix/go-darkbin/internal/protocol"
	"github.com/iyunix/go-darkbin/internal/services"
)

type recorder struct {
	mu     sync.Mutex
	events []*protocol.Envelope
	closed bool
}

func (r *recorder) Deliver(env *protocol.Envelope) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.events = append(r.events, env)
	return true
}

func (r *recorder) contents(t *testing.T) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, env := range r.events {
		var payload protocol.NewMessagePayload
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		out = append(out, payload.Content)
	}
	return out
}

func message(t *testing.T, sender, content string) *protocol.Envelope {
	env, err := protocol.NewEnvelope(protocol.EventNewMessage, protocol.NewMessagePayload{Username: sender, Content: content})
	require.NoError(t, err)
	return env
}

func TestChannel_Publish_OnlyReachesRoomMembers(t *testing.T) {
	req := require.New(t)
	ch := NewChannel(&services.NoOpLogger{})
	inGlobal, inRandom := &recorder{}, &recorder{}
	ch.Subscribe("global", inGlobal)
	ch.Subscribe("random", inRandom)

	req.Equal(1, ch.Publish("global", message(t, "alice", "hello")))

	req.Equal([]string{"hello"}, inGlobal.contents(t))
	req.Empty(inRandom.contents(t))
}

func TestChannel_Publish_LateSubscriberMissesEarlierEvents(t *testing.T) {
	req := require.New(t)
	ch := NewChannel(&services.NoOpLogger{})
	early, late := &recorder{}, &recorder{}

	ch.Subscribe("global", early)
	ch.Publish("global", message(t, "alice", "first"))
	ch.Subscribe("global", late)
	ch.Publish("global", message(t, "alice", "second"))

	req.Equal([]string{"first", "second"}, early.contents(t))
	req.Equal([]string{"second"}, late.contents(t))
}

func TestChannel_Publish_DropsSubscribersThatRefuse(t *testing.T) {
	req := require.New(t)
	ch := NewChannel(&services.NoOpLogger{})
	gone, alive := &recorder{closed: true}, &recorder{}
	ch.Subscribe("global", gone)
	ch.Subscribe("global", alive)

	req.Equal(1, ch.Publish("global", message(t, "alice", "hi")))
	req.Equal(1, ch.SubscriberCount("global"))
}

func TestChannel_Unsubscribe(t *testing.T) {
	req := require.New(t)
	ch := NewChannel(&services.NoOpLogger{})
	sub := &recorder{}
	ch.Subscribe("global", sub)
	ch.Subscribe("random", sub)

	ch.Unsubscribe("global", sub)
	req.Equal(0, ch.Publish("global", message(t, "alice", "nobody hears")))
	req.Equal(1, ch.SubscriberCount("random"))

	ch.UnsubscribeAll(sub)
	req.Equal(0, ch.SubscriberCount("random"))

	// unknown rooms and subscribers are ignored
	ch.Unsubscribe("nowhere", sub)
	req.Equal(0, ch.Publish("nowhere", message(t, "alice", "void")))
}

func TestChannel_Publish_PreservesPerSenderOrder(t *testing.T) {
	req := require.New(t)
	ch := NewChannel(&services.NoOpLogger{})
	subs := []*recorder{{}, {}, {}}
	for _, s := range subs {
		ch.Subscribe("global", s)
	}

	const perSender = 50
	senders := []string{"alice", "bob", "carol"}
	var g errgroup.Group
	for _, sender := range senders {
		sender := sender
		g.Go(func() error {
			for i := 0; i < perSender; i++ {
				ch.Publish("global", message(t, sender, fmt.Sprintf("%s-%03d", sender, i)))
			}
			return nil
		})
	}
	req.NoError(g.Wait())

	for _, s := range subs {
		got := s.contents(t)
		req.Len(got, perSender*len(senders))
		for _, sender := range senders {
			next := 0
			for _, content := range got {
				var idx int
				if _, err := fmt.Sscanf(content, sender+"-%03d", &idx); err == nil {
					req.Equal(next, idx, "out of order for %s", sender)
					next++
				}
			}
			req.Equal(perSender, next)
		}
	}

	// every subscriber saw the same global interleaving
	req.Equal(subs[0].contents(t), subs[1].contents(t))
	req.Equal(subs[0].contents(t), subs[2].contents(t))
}
