package matchmaking

import (
	"container/list"
	"iter"
	"time"
)

// WaitEntry is a user currently searching for a partner.
type WaitEntry struct {
	User       UserID
	EnqueuedAt time.Time
	Requested  Category
	Own        Category
}

// membership links one WaitEntry to its element in every queue it occupies.
type membership struct {
	entry  WaitEntry
	blocks map[UserID]struct{}
	elems  map[Category]*list.Element
}

// QueueSet keeps one FIFO per category. Every searcher sits in the Any queue;
// a searcher whose own attribute is a concrete category also sits in that
// category's queue, whatever they requested. That keeps both directions
// matchable: Any searchers see everyone, a Female searcher sees every
// searching female.
//
// QueueSet is not safe for concurrent use; the Engine serialises access.
type QueueSet struct {
	queues map[Category]*list.List
	index  map[UserID]*membership
}

func NewQueueSet() *QueueSet {
	queues := make(map[Category]*list.List, len(Categories))
	for _, c := range Categories {
		queues[c] = list.New()
	}
	return &QueueSet{
		queues: queues,
		index:  make(map[UserID]*membership),
	}
}

// Enqueue inserts entry at the tail of the Any queue and, for a concrete own
// attribute, of that category's queue. Re-enqueueing the same request is a
// no-op that keeps the original position; a changed request moves the user
// to the tail. Reports whether the set changed.
func (s *QueueSet) Enqueue(entry WaitEntry, blockList []UserID) bool {
	entry.Own = entry.Own.attribute()

	if m, ok := s.index[entry.User]; ok {
		if m.entry.Requested == entry.Requested && m.entry.Own == entry.Own {
			return false
		}
		s.Remove(entry.User)
	}

	m := &membership{
		entry:  entry,
		blocks: make(map[UserID]struct{}, len(blockList)),
		elems:  make(map[Category]*list.Element, 2),
	}
	for _, id := range blockList {
		m.blocks[id] = struct{}{}
	}

	m.elems[CategoryAny] = s.queues[CategoryAny].PushBack(m)
	if entry.Own != CategoryAny {
		m.elems[entry.Own] = s.queues[entry.Own].PushBack(m)
	}
	s.index[entry.User] = m
	return true
}

// Remove takes user out of every queue. Removing an absent user is a no-op.
func (s *QueueSet) Remove(user UserID) bool {
	m, ok := s.index[user]
	if !ok {
		return false
	}
	for c, el := range m.elems {
		s.queues[c].Remove(el)
	}
	delete(s.index, user)
	return true
}

// CandidatesFor yields the entries of one category queue oldest first. The
// sequence is lazy and can be ranged over again from the start.
func (s *QueueSet) CandidatesFor(c Category) iter.Seq[WaitEntry] {
	return func(yield func(WaitEntry) bool) {
		q, ok := s.queues[c]
		if !ok {
			return
		}
		for el := q.Front(); el != nil; {
			next := el.Next()
			if !yield(el.Value.(*membership).entry) {
				return
			}
			el = next
		}
	}
}

func (s *QueueSet) Contains(user UserID) bool {
	_, ok := s.index[user]
	return ok
}

func (s *QueueSet) Entry(user UserID) (WaitEntry, bool) {
	m, ok := s.index[user]
	if !ok {
		return WaitEntry{}, false
	}
	return m.entry, true
}

// Blocks reports whether the waiting user's block-list snapshot names target.
func (s *QueueSet) Blocks(user, target UserID) bool {
	m, ok := s.index[user]
	if !ok {
		return false
	}
	_, blocked := m.blocks[target]
	return blocked
}

// Len returns the number of entries in one category queue.
func (s *QueueSet) Len(c Category) int {
	q, ok := s.queues[c]
	if !ok {
		return 0
	}
	return q.Len()
}

// Waiting returns the number of distinct searching users.
func (s *QueueSet) Waiting() int {
	return len(s.index)
}
