package models

import (
	"time"
)

// Block is a one-directional "never match me with this user again" fact.
// Both columns hold Telegram IDs.
type Block struct {
	ID        uint      `gorm:"primaryKey"`
	BlockerID int64     `gorm:"not null;index:idx_block_pair,unique"`
	BlockedID int64     `gorm:"not null;index:idx_block_pair,unique;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Block) TableName() string {
	return "blocks"
}

// Report is the audit trail for /report.
type Report struct {
	ID         uint      `gorm:"primaryKey"`
	ReporterID int64     `gorm:"not null;index"`
	ReportedID int64     `gorm:"not null;index"`
	SessionID  string    `gorm:"type:varchar(36);index"`
	Reason     string    `gorm:"type:varchar(500)"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
}

func (Report) TableName() string {
	return "reports"
}
