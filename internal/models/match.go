package models

import (
	"time"
)

// ChatSessionLog records a finished chat. Live sessions exist only in the
// matchmaking engine.
type ChatSessionLog struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	UserA     int64     `gorm:"not null;index"`
	UserB     int64     `gorm:"not null;index"`
	StartedAt time.Time `gorm:"not null"`
	EndedAt   time.Time `gorm:"not null;index"`
	EndReason string    `gorm:"type:varchar(20);index"`
	EndedBy   int64     `gorm:"not null"`
}

// End reasons, mirroring matchmaking.EndReason values.
const (
	EndReasonUserStopped = "user_stopped"
	EndReasonUserSkipped = "user_skipped"
	EndReasonReported    = "reported"
	EndReasonInactivity  = "inactivity"
)

func (ChatSessionLog) TableName() string {
	return "chat_session_logs"
}

// Duration is how long the chat lasted.
func (l ChatSessionLog) Duration() time.Duration {
	return l.EndedAt.Sub(l.StartedAt)
}
