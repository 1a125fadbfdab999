// File: internal/domain/chat_message.go
package domain

import "time"

// DefaultRoom is the scope every authenticated connection joins on connect.
const DefaultRoom = "global"

// MaxRoomLength matches the width of the room column.
const MaxRoomLength = 50

// ChatMessage is a single line posted to a chat room. Rows are append-only.
type ChatMessage struct {
	ID        string    `json:"id" gorm:"primarykey;size:36"`
	UserID    string    `json:"user_id" gorm:"size:50;not null"`
	Username  string    `json:"username" gorm:"size:50;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Room      string    `json:"room" gorm:"size:50;default:'global';index:idx_chat_messages_room_created,priority:1"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_chat_messages_room_created,priority:2"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
