package matchmaking

import (
	"context"
	"sync"
	"time"

	"github.com/mroshb/anonchat_bot/pkg/clock"
	"github.com/mroshb/anonchat_bot/pkg/errors"
	"github.com/mroshb/anonchat_bot/pkg/logger"
	"go.uber.org/zap"
)

const (
	DefaultInactivityThreshold = 10 * time.Minute
	DefaultRetention           = time.Hour

	// blockGrace covers a search that read its attributes before a block was
	// persisted and has not taken the engine lock yet.
	blockGrace = time.Minute
)

type Options struct {
	// InactivityThreshold is how long a session may go without a message from
	// either side before Tick dissolves it. Zero means DefaultInactivityThreshold.
	InactivityThreshold time.Duration
	Clock               clock.Clock
	// OnSessionEnded runs after the engine lock is released, once per
	// dissolved session.
	OnSessionEnded func(EndedSession)
	// Retention is how long an idle user's last search category and last
	// partner are kept for Skip and RatePartner. Zero means DefaultRetention.
	Retention time.Duration
	Logger    *zap.SugaredLogger
}

type blockKey struct {
	from UserID
	to   UserID
}

// pendingBlock is a reported pair. persistedAt is zero until the store has
// accepted the block.
type pendingBlock struct {
	persistedAt time.Time
}

type requestMemo struct {
	category Category
	at       time.Time
}

type partnerMemo struct {
	partner UserID
	at      time.Time
}

// Engine is the matchmaking core. All methods are safe for concurrent use.
type Engine struct {
	store     UserStore
	clock     clock.Clock
	threshold time.Duration
	retention time.Duration
	onEnded   func(EndedSession)
	log       *zap.SugaredLogger

	mu            sync.Mutex
	queues        *QueueSet
	sessions      *SessionTable
	blocks        map[blockKey]pendingBlock
	lastRequested map[UserID]requestMemo
	lastPartner   map[UserID]partnerMemo
}

func NewEngine(store UserStore, opts Options) *Engine {
	if opts.InactivityThreshold <= 0 {
		opts.InactivityThreshold = DefaultInactivityThreshold
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Named("matchmaking")
	}

	return &Engine{
		store:         store,
		clock:         opts.Clock,
		threshold:     opts.InactivityThreshold,
		retention:     opts.Retention,
		onEnded:       opts.OnSessionEnded,
		log:           opts.Logger,
		queues:        NewQueueSet(),
		sessions:      NewSessionTable(),
		blocks:        make(map[blockKey]pendingBlock),
		lastRequested: make(map[UserID]requestMemo),
		lastPartner:   make(map[UserID]partnerMemo),
	}
}

// Search pairs user with the oldest compatible waiting user in category, or
// queues user when there is none.
func (e *Engine) Search(ctx context.Context, user UserID, category Category) (MatchResult, error) {
	if !category.Valid() {
		return MatchResult{}, errors.New(errors.ErrCodeValidation, "unknown search category")
	}

	if e.State(user) == StatePaired {
		return MatchResult{}, ErrAlreadyPaired
	}

	attrs, err := e.store.GetAttributes(ctx, user)
	if err != nil {
		return MatchResult{}, errors.Wrap(err, errors.ErrCodeInternalError, "failed to load user attributes")
	}

	e.mu.Lock()
	res, err := e.findOrWait(user, category, attrs)
	e.mu.Unlock()

	if err != nil {
		return MatchResult{}, err
	}
	e.logMatch(user, category, res)
	return res, nil
}

// findOrWait must be called with e.mu held.
func (e *Engine) findOrWait(requester UserID, requested Category, attrs Attributes) (MatchResult, error) {
	if _, paired := e.sessions.Get(requester); paired {
		return MatchResult{}, ErrAlreadyPaired
	}

	now := e.clock.Now()
	e.lastRequested[requester] = requestMemo{category: requested, at: now}
	own := attrs.Category.attribute()

	var (
		partner WaitEntry
		found   bool
	)
	for c := range e.queues.CandidatesFor(requested) {
		if c.User == requester {
			continue
		}
		if _, paired := e.sessions.Get(c.User); paired {
			e.queues.Remove(c.User)
			continue
		}
		if e.blocked(requester, c.User, attrs) {
			continue
		}
		if c.Requested != CategoryAny && c.Requested != own {
			continue
		}
		partner, found = c, true
		break
	}

	if !found {
		e.queues.Enqueue(WaitEntry{
			User:       requester,
			EnqueuedAt: now,
			Requested:  requested,
			Own:        own,
		}, attrs.BlockList)
		return MatchResult{Status: StatusWaiting}, nil
	}

	e.queues.Remove(partner.User)
	e.queues.Remove(requester)
	session := e.sessions.Create(partner.User, requester, now)

	return MatchResult{
		Status:  StatusPaired,
		Partner: partner.User,
		Session: session,
	}, nil
}

// blocked checks the requester's snapshot, the candidate's snapshot taken at
// enqueue time and blocks recorded by Report that sweep has not yet dropped,
// in both directions.
func (e *Engine) blocked(requester, candidate UserID, attrs Attributes) bool {
	if attrs.blocks(candidate) || e.queues.Blocks(candidate, requester) {
		return true
	}
	if _, ok := e.blocks[blockKey{requester, candidate}]; ok {
		return true
	}
	_, ok := e.blocks[blockKey{candidate, requester}]
	return ok
}

// Stop ends user's session or cancels their search. It returns the partner
// that must be told the chat ended; stopping twice returns false the second time.
func (e *Engine) Stop(user UserID) (UserID, bool) {
	e.mu.Lock()
	e.queues.Remove(user)
	delete(e.lastRequested, user)
	ended, ok := e.sessions.End(user, ReasonUserStopped, e.clock.Now())
	if ok {
		e.rememberPartners(ended)
	}
	e.mu.Unlock()

	if !ok {
		return 0, false
	}
	e.sessionEnded(ended)
	return ended.Partner(user), true
}

// Cancel withdraws a pending search.
func (e *Engine) Cancel(user UserID) error {
	e.mu.Lock()
	removed := e.queues.Remove(user)
	if removed {
		delete(e.lastRequested, user)
	}
	e.mu.Unlock()

	if !removed {
		return ErrNotSearching
	}
	e.log.Debugw("Search cancelled", "user_id", user)
	return nil
}

// Skip ends the current session, if any, and immediately searches again with
// the category user last searched for. Both steps happen under one lock so no
// other search can observe user between them.
func (e *Engine) Skip(ctx context.Context, user UserID) (SkipResult, error) {
	attrs, err := e.store.GetAttributes(ctx, user)
	if err != nil {
		return SkipResult{}, errors.Wrap(err, errors.ErrCodeInternalError, "failed to load user attributes")
	}

	e.mu.Lock()
	ended, had := e.sessions.End(user, ReasonUserSkipped, e.clock.Now())
	if had {
		e.rememberPartners(ended)
	}
	category := CategoryAny
	if last, ok := e.lastRequested[user]; ok {
		category = last.category
	}
	res, err := e.findOrWait(user, category, attrs)
	e.mu.Unlock()

	if had {
		e.sessionEnded(ended)
	}
	if err != nil {
		return SkipResult{}, err
	}
	e.logMatch(user, category, res)

	out := SkipResult{HadPartner: had, Match: res}
	if had {
		out.PreviousPartner = ended.Partner(user)
	}
	return out, nil
}

// Report blocks the reporter's current partner and ends the session. The
// block is visible to matching before the session disappears, so the pair
// can never be re-matched by a search racing with the store write.
func (e *Engine) Report(ctx context.Context, reporter UserID, reason string) (ReportResult, error) {
	e.mu.Lock()
	session, ok := e.sessions.Get(reporter)
	if !ok {
		e.mu.Unlock()
		return ReportResult{}, ErrNotPaired
	}
	partner := session.Partner(reporter)
	key := blockKey{reporter, partner}
	e.blocks[key] = pendingBlock{}
	ended, _ := e.sessions.End(reporter, ReasonReported, e.clock.Now())
	delete(e.lastPartner, reporter)
	e.lastPartner[partner] = partnerMemo{partner: reporter, at: ended.EndedAt}
	e.mu.Unlock()

	e.sessionEnded(ended)

	result := ReportResult{
		Partner:   partner,
		Reason:    reason,
		SessionID: ended.ID,
	}

	if err := e.store.AddBlock(ctx, reporter, partner); err != nil {
		return result, errors.Wrap(err, errors.ErrCodeInternalError, "failed to persist block")
	}

	e.mu.Lock()
	if b, ok := e.blocks[key]; ok && b.persistedAt.IsZero() {
		e.blocks[key] = pendingBlock{persistedAt: e.clock.Now()}
	}
	e.mu.Unlock()

	e.log.Infow("User reported partner",
		"reporter_id", reporter,
		"reported_id", partner,
		"session_id", ended.ID,
	)
	return result, nil
}

// RouteMessage returns the partner a message from user should be relayed to
// and records the activity.
func (e *Engine) RouteMessage(user UserID) (UserID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, ok := e.sessions.Get(user)
	if !ok {
		return 0, ErrNotPaired
	}
	e.sessions.Touch(user, e.clock.Now())
	return session.Partner(user), nil
}

// Touch records activity for user's side of their session, if any.
func (e *Engine) Touch(user UserID) {
	e.mu.Lock()
	e.sessions.Touch(user, e.clock.Now())
	e.mu.Unlock()
}

// Tick dissolves every session idle for longer than the threshold and
// returns the pairs to notify. It also forgets per-user state that has
// outlived the retention window.
func (e *Engine) Tick() []Pair {
	now := e.clock.Now()

	e.mu.Lock()
	e.sweep(now)
	var ended []EndedSession
	for _, s := range e.sessions.Snapshot() {
		if now.Sub(s.IdleSince()) <= e.threshold {
			continue
		}
		es, ok := e.sessions.End(s.UserA, ReasonInactivity, now)
		if !ok {
			continue
		}
		e.rememberPartners(es)
		ended = append(ended, es)
	}
	e.mu.Unlock()

	pairs := make([]Pair, 0, len(ended))
	for _, es := range ended {
		e.sessionEnded(es)
		pairs = append(pairs, Pair{A: es.UserA, B: es.UserB, SessionID: es.ID})
	}

	if len(pairs) > 0 {
		e.log.Infow("Expired inactive sessions", "count", len(pairs))
	}
	return pairs
}

// RatePartner applies a one-shot karma vote to the last partner user chatted
// with. A second vote for the same session returns ErrNothingToRate.
func (e *Engine) RatePartner(ctx context.Context, user UserID, positive bool) (UserID, error) {
	e.mu.Lock()
	last, ok := e.lastPartner[user]
	delete(e.lastPartner, user)
	e.mu.Unlock()

	if !ok {
		return 0, ErrNothingToRate
	}
	partner := last.partner
	if err := e.store.IncrementKarma(ctx, partner, positive); err != nil {
		return partner, errors.Wrap(err, errors.ErrCodeInternalError, "failed to update karma")
	}
	return partner, nil
}

// State reports where user is in the idle/searching/paired cycle.
func (e *Engine) State(user UserID) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.sessions.Get(user); ok {
		return StatePaired
	}
	if e.queues.Contains(user) {
		return StateSearching
	}
	return StateIdle
}

// Partner returns user's current partner, if any.
func (e *Engine) Partner(user UserID) (UserID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions.Get(user)
	if !ok {
		return 0, false
	}
	return s.Partner(user), true
}

func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Waiting:        e.queues.Waiting(),
		ActiveSessions: e.sessions.Len(),
	}
}

// QueueLen returns the number of entries in one category queue.
func (e *Engine) QueueLen(c Category) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queues.Len(c)
}

// rememberPartners must be called with e.mu held. It also restarts the
// retention window of both users' last search category.
func (e *Engine) rememberPartners(es EndedSession) {
	e.lastPartner[es.UserA] = partnerMemo{partner: es.UserB, at: es.EndedAt}
	e.lastPartner[es.UserB] = partnerMemo{partner: es.UserA, at: es.EndedAt}
	for _, u := range []UserID{es.UserA, es.UserB} {
		if last, ok := e.lastRequested[u]; ok {
			last.at = es.EndedAt
			e.lastRequested[u] = last
		}
	}
}

// sweep must be called with e.mu held. A persisted block is dropped once
// neither user is queued, since every later search reads it from the store.
func (e *Engine) sweep(now time.Time) {
	for key, b := range e.blocks {
		if b.persistedAt.IsZero() || now.Sub(b.persistedAt) <= blockGrace {
			continue
		}
		if e.queues.Contains(key.from) || e.queues.Contains(key.to) {
			continue
		}
		delete(e.blocks, key)
	}
	for u, last := range e.lastRequested {
		if now.Sub(last.at) <= e.retention || e.queues.Contains(u) {
			continue
		}
		if _, paired := e.sessions.Get(u); paired {
			continue
		}
		delete(e.lastRequested, u)
	}
	for u, last := range e.lastPartner {
		if now.Sub(last.at) > e.retention {
			delete(e.lastPartner, u)
		}
	}
}

// Remembered returns how many users have a remembered search category and how
// many have a partner they can still rate.
func (e *Engine) Remembered() (requests, partners int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.lastRequested), len(e.lastPartner)
}

func (e *Engine) sessionEnded(es EndedSession) {
	e.log.Debugw("Session ended",
		"session_id", es.ID,
		"user_a", es.UserA,
		"user_b", es.UserB,
		"reason", es.Reason,
	)
	if e.onEnded != nil {
		e.onEnded(es)
	}
}

func (e *Engine) logMatch(user UserID, category Category, res MatchResult) {
	if res.Paired() {
		e.log.Infow("Users matched",
			"user_id", user,
			"partner_id", res.Partner,
			"category", category,
			"session_id", res.Session.ID,
		)
		return
	}
	e.log.Debugw("User waiting for partner", "user_id", user, "category", category)
}
