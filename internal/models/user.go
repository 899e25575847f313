package models

import (
	"time"
	"unicode/utf8"

	"github.com/mroshb/anonchat_bot/internal/matchmaking"
	"gorm.io/gorm"
)

type User struct {
	ID            uint      `gorm:"primaryKey"`
	TelegramID    int64     `gorm:"uniqueIndex;not null"`
	FirstName     string    `gorm:"type:varchar(64)"`
	Gender        string    `gorm:"type:varchar(10);default:''"`
	ReferrerID    int64     `gorm:"default:0;index"` // Telegram ID of the inviting user
	ReferralCount int       `gorm:"default:0;not null"`
	Karma         int64     `gorm:"default:0;not null"`
	LastSeen      time.Time `gorm:"index"`
	IdleNotified  bool      `gorm:"default:false;not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

const (
	GenderUnset  = ""
	GenderMale   = "male"
	GenderFemale = "female"
)

const maxFirstNameRunes = 64

// BeforeSave hook for validation
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.TelegramID == 0 {
		return gorm.ErrInvalidData
	}

	// Validate gender
	switch u.Gender {
	case GenderUnset, GenderMale, GenderFemale:
	default:
		return gorm.ErrInvalidData
	}

	if u.ReferralCount < 0 {
		return gorm.ErrInvalidData
	}
	if u.ReferrerID == u.TelegramID {
		return gorm.ErrInvalidData
	}

	if utf8.RuneCountInString(u.FirstName) > maxFirstNameRunes {
		runes := []rune(u.FirstName)
		u.FirstName = string(runes[:maxFirstNameRunes])
	}

	return nil
}

// Category maps the stored gender onto a matching bucket. Users who have not
// picked a gender are only reachable through Any.
func (u *User) Category() matchmaking.Category {
	switch u.Gender {
	case GenderMale:
		return matchmaking.CategoryMale
	case GenderFemale:
		return matchmaking.CategoryFemale
	}
	return matchmaking.CategoryAny
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}
