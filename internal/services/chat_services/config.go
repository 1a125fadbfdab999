package chat_services

import (
	"fmt"
	"time"

	"github.com/iyunix/go-darkbin/internal/domain"
)

type Config struct {
	// Rooms
	DefaultRoom  string // joined by every authenticated connection
	HistoryLimit int    // messages sent on join_room and served to the room page

	// Connection
	SendBufferSize int           // outbound frames queued per connection before it is dropped
	MaxFrameBytes  int64         // websocket read limit
	WriteWait      time.Duration // deadline for a single frame write
	PongWait       time.Duration // read deadline, extended by each pong
	PingPeriod     time.Duration // must be shorter than PongWait
	PersistTimeout time.Duration // upper bound on a single store append
	AllowedOrigins []string      // empty or "*" accepts any origin
}

func (c *Config) Validate() error {
	if c.DefaultRoom == "" || len(c.DefaultRoom) > domain.MaxRoomLength {
		return fmt.Errorf("default_room must be 1-%d characters", domain.MaxRoomLength)
	}
	if c.HistoryLimit <= 0 || c.HistoryLimit > 1000 {
		return fmt.Errorf("history_limit must be between 1 and 1000")
	}
	if c.SendBufferSize <= 0 {
		return fmt.Errorf("send_buffer_size must be positive")
	}
	if c.MaxFrameBytes <= 0 {
		return fmt.Errorf("max_frame_bytes must be positive")
	}
	if c.WriteWait <= 0 || c.PongWait <= 0 || c.PersistTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.PingPeriod <= 0 || c.PingPeriod >= c.PongWait {
		return fmt.Errorf("ping_period must be positive and shorter than pong_wait")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		DefaultRoom:    domain.DefaultRoom,
		HistoryLimit:   100,
		SendBufferSize: 256,
		MaxFrameBytes:  64 * 1024,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
		PersistTimeout: 5 * time.Second,
	}
}
