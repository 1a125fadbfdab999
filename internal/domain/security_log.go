package domain

import "time"

// Security log actions.
const (
	ActionLogin          = "login"
	ActionRegister       = "register"
	ActionChatConnect    = "chat_connect"
	ActionChatDisconnect = "chat_disconnect"
)

// SecurityLog records an authentication-relevant event.
type SecurityLog struct {
	ID        uint      `gorm:"primarykey"`
	Action    string    `gorm:"size:50;not null"`
	IPAddress string    `gorm:"size:45"`
	UserAgent string    `gorm:"type:text"`
	UserID    string    `gorm:"size:50"`
	Success   bool      `gorm:"default:true"`
	Timestamp time.Time `gorm:"index"`
}
