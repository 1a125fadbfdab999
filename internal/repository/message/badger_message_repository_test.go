package message

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-darkbin/internal/domain"
	"github.com/iyunix/go-darkbin/internal/services"
)

func openTestBadger(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBadgerMessageStore_Recent_ReturnsNewestOldestFirst(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newBadgerMessageStore(openTestBadger(t), &services.NoOpLogger{}, frozenClock())

	for i := 0; i < 150; i++ {
		_, err := store.Append(ctx, &domain.ChatMessage{Username: "alice", Content: fmt.Sprintf("message %d", i)})
		req.NoError(err)
	}

	recent, err := store.Recent(ctx, domain.DefaultRoom, 100)
	req.NoError(err)
	req.Len(recent, 100)
	req.Equal("message 50", recent[0].Content)
	req.Equal("message 149", recent[99].Content)

	count, err := store.CountByRoom(ctx, domain.DefaultRoom)
	req.NoError(err)
	req.EqualValues(150, count)
}

func TestBadgerMessageStore_RoomsDoNotLeakIntoEachOther(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newBadgerMessageStore(openTestBadger(t), &services.NoOpLogger{}, time.Now)

	_, err := store.Append(ctx, &domain.ChatMessage{Username: "alice", Content: "in a", Room: "a"})
	req.NoError(err)
	_, err = store.Append(ctx, &domain.ChatMessage{Username: "bob", Content: "in a:b", Room: "a:b"})
	req.NoError(err)

	inA, err := store.Recent(ctx, "a", 10)
	req.NoError(err)
	req.Len(inA, 1)
	req.Equal("in a", inA[0].Content)
}

func TestBadgerMessageStore_RoundTripsMessage(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newBadgerMessageStore(openTestBadger(t), &services.NoOpLogger{}, time.Now)

	saved, err := store.Append(ctx, &domain.ChatMessage{Username: "alice", Content: "hello", Room: "lobby"})
	req.NoError(err)

	recent, err := store.Recent(ctx, "lobby", 1)
	req.NoError(err)
	req.Len(recent, 1)
	req.Equal(*saved, recent[0])
}
