package models

import (
	"strings"
	"testing"
	"time"

	"github.com/mroshb/anonchat_bot/internal/matchmaking"
)

func TestUser_BeforeSave_ValidGender(t *testing.T) {
	tests := []struct {
		name    string
		gender  string
		wantErr bool
	}{
		{
			name:    "Male gender",
			gender:  GenderMale,
			wantErr: false,
		},
		{
			name:    "Female gender",
			gender:  GenderFemale,
			wantErr: false,
		},
		{
			name:    "Unset gender",
			gender:  GenderUnset,
			wantErr: false,
		},
		{
			name:    "Invalid gender",
			gender:  "other",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{
				TelegramID: 123456789,
				FirstName:  "Test",
				Gender:     tt.gender,
			}

			err := user.BeforeSave(nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("BeforeSave() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUser_BeforeSave_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr bool
	}{
		{
			name:    "Missing telegram id",
			user:    User{FirstName: "Test"},
			wantErr: true,
		},
		{
			name:    "Negative referral count",
			user:    User{TelegramID: 1, ReferralCount: -1},
			wantErr: true,
		},
		{
			name:    "Self referral",
			user:    User{TelegramID: 7, ReferrerID: 7},
			wantErr: true,
		},
		{
			name:    "Referred by someone else",
			user:    User{TelegramID: 7, ReferrerID: 8},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.BeforeSave(nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("BeforeSave() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUser_BeforeSave_TruncatesLongName(t *testing.T) {
	user := &User{TelegramID: 1, FirstName: strings.Repeat("ж", 100)}

	if err := user.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave() unexpected error = %v", err)
	}
	if got := len([]rune(user.FirstName)); got != maxFirstNameRunes {
		t.Errorf("FirstName has %d runes, want %d", got, maxFirstNameRunes)
	}
}

func TestUser_Category(t *testing.T) {
	tests := []struct {
		gender string
		want   matchmaking.Category
	}{
		{GenderMale, matchmaking.CategoryMale},
		{GenderFemale, matchmaking.CategoryFemale},
		{GenderUnset, matchmaking.CategoryAny},
	}

	for _, tt := range tests {
		u := User{Gender: tt.gender}
		if got := u.Category(); got != tt.want {
			t.Errorf("Category() for %q = %q, want %q", tt.gender, got, tt.want)
		}
	}
}

func TestTableNames(t *testing.T) {
	if got := (User{}).TableName(); got != "users" {
		t.Errorf("User.TableName() = %q", got)
	}
	if got := (Block{}).TableName(); got != "blocks" {
		t.Errorf("Block.TableName() = %q", got)
	}
	if got := (Report{}).TableName(); got != "reports" {
		t.Errorf("Report.TableName() = %q", got)
	}
	if got := (ChatSessionLog{}).TableName(); got != "chat_session_logs" {
		t.Errorf("ChatSessionLog.TableName() = %q", got)
	}
}

func TestEndReasonsMatchEngine(t *testing.T) {
	pairs := map[string]matchmaking.EndReason{
		EndReasonUserStopped: matchmaking.ReasonUserStopped,
		EndReasonUserSkipped: matchmaking.ReasonUserSkipped,
		EndReasonReported:    matchmaking.ReasonReported,
		EndReasonInactivity:  matchmaking.ReasonInactivity,
	}
	for stored, engine := range pairs {
		if stored != string(engine) {
			t.Errorf("stored reason %q != engine reason %q", stored, engine)
		}
	}
}

func TestChatSessionLog_Duration(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	l := ChatSessionLog{StartedAt: start, EndedAt: start.Add(90 * time.Second)}
	if l.Duration() != 90*time.Second {
		t.Errorf("Duration() = %v, want 90s", l.Duration())
	}
}
