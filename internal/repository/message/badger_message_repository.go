package message

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/iyunix/go-darkbin/internal/domain"
)

type badgerMessageStore struct {
	db     *badger.DB
	clock  *roomClock
	logger Logger
}

// NewBadgerMessageStore returns a MessageStore backed by BadgerDB.
//
// Keys are "msg:{hex(room)}:{unixnano, 19 digits}:{id}". The zero padding keeps
// lexicographic order equal to chronological order inside a room, and the id
// suffix keeps two messages with the same timestamp apart.
func NewBadgerMessageStore(db *badger.DB, logger Logger) MessageStore {
	return newBadgerMessageStore(db, logger, time.Now)
}

func newBadgerMessageStore(db *badger.DB, logger Logger, now func() time.Time) *badgerMessageStore {
	return &badgerMessageStore{db: db, clock: newRoomClock(now), logger: logger}
}

func roomPrefix(room string) []byte {
	return []byte("msg:" + hex.EncodeToString([]byte(room)) + ":")
}

func messageKey(msg *domain.ChatMessage) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", roomPrefix(msg.Room), msg.CreatedAt.UnixNano(), msg.ID))
}

func (s *badgerMessageStore) Append(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	if room := roomOf(msg); !s.clock.seeded(room) {
		if latest, ok := s.latest(room); ok {
			s.clock.seed(room, latest)
		}
	}

	out, err := finalize(msg, s.clock)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &PersistenceError{Op: "append", Room: out.Room, Cause: err}
	}

	value, err := json.Marshal(out)
	if err != nil {
		return nil, &PersistenceError{Op: "append", Room: out.Room, Cause: err}
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(out), value)
	})
	if err != nil {
		s.logger.Error("chat message write failed",
			"room", out.Room,
			"message_id", out.ID,
			"error", err)
		return nil, &PersistenceError{Op: "append", Room: out.Room, Cause: err}
	}
	return out, nil
}

func (s *badgerMessageStore) Recent(ctx context.Context, room string, limit int) ([]domain.ChatMessage, error) {
	if err := validateRecent(room, limit); err != nil {
		return nil, err
	}

	messages := make([]domain.ChatMessage, 0, limit)
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := roomPrefix(room)
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(append(slices.Clone(prefix), []byte("9999999999999999999")...)); it.ValidForPrefix(prefix); it.Next() {
			if len(messages) == limit {
				break
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			var msg domain.ChatMessage
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &msg)
			}); err != nil {
				return err
			}
			msg.CreatedAt = msg.CreatedAt.UTC()
			messages = append(messages, msg)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("recent chat messages scan failed", "room", room, "error", err)
		return nil, &PersistenceError{Op: "recent", Room: room, Cause: err}
	}

	slices.Reverse(messages)
	return messages, nil
}

func (s *badgerMessageStore) CountByRoom(ctx context.Context, room string) (int64, error) {
	if room == "" {
		return 0, ErrInvalidRoom
	}
	var count int64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = roomPrefix(room)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, &PersistenceError{Op: "count", Room: room, Cause: err}
	}
	return count, nil
}

// latest returns the newest stored timestamp of room.
func (s *badgerMessageStore) latest(room string) (time.Time, bool) {
	var (
		at    time.Time
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := roomPrefix(room)
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(append(slices.Clone(prefix), []byte("9999999999999999999")...))
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		var msg domain.ChatMessage
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &msg)
		}); err != nil {
			return err
		}
		at, found = msg.CreatedAt.UTC(), true
		return nil
	})
	if err != nil {
		s.logger.Warn("could not seed room clock", "room", room, "error", err)
		return time.Time{}, false
	}
	return at, found
}
