package matchmaking

import (
	"time"

	"github.com/google/uuid"
)

// Session is an exclusive pairing. UserA is the user who was waiting, UserB
// the one whose search completed the pair.
type Session struct {
	ID            string
	UserA         UserID
	UserB         UserID
	StartedAt     time.Time
	LastActivityA time.Time
	LastActivityB time.Time
}

// Partner returns the other member of the session.
func (s Session) Partner(user UserID) UserID {
	if user == s.UserA {
		return s.UserB
	}
	return s.UserA
}

// IdleSince returns the older of the two activity stamps.
func (s Session) IdleSince() time.Time {
	if s.LastActivityA.Before(s.LastActivityB) {
		return s.LastActivityA
	}
	return s.LastActivityB
}

// SessionTable maps every paired user to their shared session. Both members
// point at the same record so partner lookups are always mutually consistent.
//
// SessionTable is not safe for concurrent use; the Engine serialises access.
type SessionTable struct {
	byUser map[UserID]*Session
}

func NewSessionTable() *SessionTable {
	return &SessionTable{byUser: make(map[UserID]*Session)}
}

// Create pairs a and b. Callers must ensure neither is already paired.
func (t *SessionTable) Create(a, b UserID, now time.Time) Session {
	s := &Session{
		ID:            uuid.NewString(),
		UserA:         a,
		UserB:         b,
		StartedAt:     now,
		LastActivityA: now,
		LastActivityB: now,
	}
	t.byUser[a] = s
	t.byUser[b] = s
	return *s
}

func (t *SessionTable) Get(user UserID) (Session, bool) {
	s, ok := t.byUser[user]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Touch stamps user's side of the session. Without a session it does nothing:
// a message may race with teardown.
func (t *SessionTable) Touch(user UserID, now time.Time) {
	s, ok := t.byUser[user]
	if !ok {
		return
	}
	if user == s.UserA {
		s.LastActivityA = now
	} else {
		s.LastActivityB = now
	}
}

// End removes the session for both members at once. Ending a user with no
// session reports false.
func (t *SessionTable) End(user UserID, reason EndReason, now time.Time) (EndedSession, bool) {
	s, ok := t.byUser[user]
	if !ok {
		return EndedSession{}, false
	}
	delete(t.byUser, s.UserA)
	delete(t.byUser, s.UserB)
	return EndedSession{
		Session: *s,
		Reason:  reason,
		EndedBy: user,
		EndedAt: now,
	}, true
}

// Snapshot returns a copy of every active session, each listed once.
func (t *SessionTable) Snapshot() []Session {
	out := make([]Session, 0, len(t.byUser)/2)
	for user, s := range t.byUser {
		if user == s.UserA {
			out = append(out, *s)
		}
	}
	return out
}

func (t *SessionTable) Len() int {
	return len(t.byUser) / 2
}
