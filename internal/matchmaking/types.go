// Package matchmaking pairs searching users into exclusive 1:1 chat sessions.
//
// The Engine owns the waiting queues and the session table behind a single
// mutex, so pairing (remove from queues + create session) is one atomic step
// relative to every other search, stop, skip, report or reaper sweep. User
// attributes and block lists are read through a UserStore outside that lock
// and treated as point-in-time snapshots.
package matchmaking

import (
	"context"
	"time"

	apperrors "github.com/mroshb/anonchat_bot/pkg/errors"
)

// UserID is the stable identifier of a chat user (the Telegram chat id).
type UserID int64

// Category is a matching bucket. Any is the unconstrained bucket; the others
// are gender attributes.
type Category string

const (
	CategoryAny    Category = "any"
	CategoryMale   Category = "male"
	CategoryFemale Category = "female"
)

// Categories lists every bucket in a stable order.
var Categories = []Category{CategoryAny, CategoryMale, CategoryFemale}

// ParseCategory maps a stored or command value to a Category.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	return c, c.Valid()
}

func (c Category) Valid() bool {
	switch c {
	case CategoryAny, CategoryMale, CategoryFemale:
		return true
	}
	return false
}

// attribute normalises a user's own category: unknown values fall back to Any.
func (c Category) attribute() Category {
	if !c.Valid() {
		return CategoryAny
	}
	return c
}

// Attributes is a snapshot of the user profile fields the engine consumes.
type Attributes struct {
	Category     Category
	ReferralTier int
	BlockList    []UserID
	Karma        int64
}

func (a Attributes) blocks(target UserID) bool {
	for _, id := range a.BlockList {
		if id == target {
			return true
		}
	}
	return false
}

// UserStore is the external profile store. Implementations may do I/O; the
// engine never calls them while holding its lock.
type UserStore interface {
	GetAttributes(ctx context.Context, user UserID) (Attributes, error)
	AddBlock(ctx context.Context, user, target UserID) error
	IncrementKarma(ctx context.Context, user UserID, positive bool) error
}

// EndReason records why a session was dissolved.
type EndReason string

const (
	ReasonUserStopped EndReason = "user_stopped"
	ReasonUserSkipped EndReason = "user_skipped"
	ReasonReported    EndReason = "reported"
	ReasonInactivity  EndReason = "inactivity"
)

// State is the per-user position in the idle → searching → paired cycle.
type State string

const (
	StateIdle      State = "idle"
	StateSearching State = "searching"
	StatePaired    State = "paired"
)

// MatchStatus is the outcome of a search.
type MatchStatus int

const (
	StatusWaiting MatchStatus = iota
	StatusPaired
)

// MatchResult is returned by Search and Skip. Partner and Session are only
// set when Status is StatusPaired.
type MatchResult struct {
	Status  MatchStatus
	Partner UserID
	Session Session
}

func (r MatchResult) Paired() bool { return r.Status == StatusPaired }

// SkipResult carries the partner that was left (if any) and the outcome of
// the immediate re-search.
type SkipResult struct {
	PreviousPartner UserID
	HadPartner      bool
	Match           MatchResult
}

// ReportResult is handed back to the caller for notification and audit.
type ReportResult struct {
	Partner   UserID
	Reason    string
	SessionID string
}

// Pair is a session dissolved by the reaper.
type Pair struct {
	A         UserID
	B         UserID
	SessionID string
}

// Stats is a point-in-time view of engine occupancy.
type Stats struct {
	Waiting        int
	ActiveSessions int
}

var (
	ErrAlreadyPaired = apperrors.New(apperrors.ErrCodeAlreadyPaired, "user already has an active chat")
	ErrNotPaired     = apperrors.New(apperrors.ErrCodeNotPaired, "user has no active chat")
	ErrNotSearching  = apperrors.New(apperrors.ErrCodeNotSearching, "user is not searching")
	ErrNothingToRate = apperrors.New(apperrors.ErrCodeNothingToRate, "no recent partner to rate")
)

// EndedSession is delivered to the OnSessionEnded hook after a session is torn down.
type EndedSession struct {
	Session
	Reason  EndReason
	EndedBy UserID
	EndedAt time.Time
}
