package matchmaking

import (
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func users(seq iter.Seq[WaitEntry]) []UserID {
	var out []UserID
	for e := range seq {
		out = append(out, e.User)
	}
	return out
}

func TestQueueSet_EnqueueIsFIFO(t *testing.T) {
	q := NewQueueSet()
	now := time.Now()

	for i := UserID(1); i <= 3; i++ {
		require.True(t, q.Enqueue(WaitEntry{User: i, EnqueuedAt: now, Requested: CategoryAny, Own: CategoryAny}, nil))
	}

	assert.Equal(t, []UserID{1, 2, 3}, users(q.CandidatesFor(CategoryAny)))
	assert.Equal(t, 3, q.Waiting())
}

func TestQueueSet_OwnAttributeJoinsCategoryQueue(t *testing.T) {
	q := NewQueueSet()
	q.Enqueue(WaitEntry{User: 1, Requested: CategoryMale, Own: CategoryFemale}, nil)
	q.Enqueue(WaitEntry{User: 2, Requested: CategoryAny, Own: CategoryMale}, nil)
	q.Enqueue(WaitEntry{User: 3, Requested: CategoryAny, Own: Category("")}, nil)

	assert.Equal(t, []UserID{1, 2, 3}, users(q.CandidatesFor(CategoryAny)))
	assert.Equal(t, []UserID{1}, users(q.CandidatesFor(CategoryFemale)))
	assert.Equal(t, []UserID{2}, users(q.CandidatesFor(CategoryMale)))

	entry, ok := q.Entry(3)
	require.True(t, ok)
	assert.Equal(t, CategoryAny, entry.Own)
}

func TestQueueSet_ReenqueueSameRequestKeepsPosition(t *testing.T) {
	q := NewQueueSet()
	q.Enqueue(WaitEntry{User: 1, Requested: CategoryAny}, nil)
	q.Enqueue(WaitEntry{User: 2, Requested: CategoryAny}, nil)

	assert.False(t, q.Enqueue(WaitEntry{User: 1, Requested: CategoryAny}, nil))
	assert.Equal(t, []UserID{1, 2}, users(q.CandidatesFor(CategoryAny)))
}

func TestQueueSet_ChangedRequestMovesToTail(t *testing.T) {
	q := NewQueueSet()
	q.Enqueue(WaitEntry{User: 1, Requested: CategoryAny}, nil)
	q.Enqueue(WaitEntry{User: 2, Requested: CategoryAny}, nil)

	assert.True(t, q.Enqueue(WaitEntry{User: 1, Requested: CategoryFemale}, nil))
	assert.Equal(t, []UserID{2, 1}, users(q.CandidatesFor(CategoryAny)))
	assert.Equal(t, 2, q.Waiting())
}

func TestQueueSet_RemoveClearsEveryQueue(t *testing.T) {
	q := NewQueueSet()
	q.Enqueue(WaitEntry{User: 1, Requested: CategoryAny, Own: CategoryFemale}, nil)

	assert.True(t, q.Remove(1))
	assert.False(t, q.Remove(1))
	assert.False(t, q.Contains(1))
	for _, c := range Categories {
		assert.Zero(t, q.Len(c), c)
	}
}

func TestQueueSet_CandidatesForIsRestartable(t *testing.T) {
	q := NewQueueSet()
	q.Enqueue(WaitEntry{User: 1, Requested: CategoryAny}, nil)
	q.Enqueue(WaitEntry{User: 2, Requested: CategoryAny}, nil)

	seq := q.CandidatesFor(CategoryAny)
	for e := range seq {
		assert.Equal(t, UserID(1), e.User)
		break
	}
	assert.Equal(t, []UserID{1, 2}, users(seq))
}

func TestQueueSet_RemoveDuringIteration(t *testing.T) {
	q := NewQueueSet()
	for i := UserID(1); i <= 3; i++ {
		q.Enqueue(WaitEntry{User: i, Requested: CategoryAny}, nil)
	}

	var seen []UserID
	for e := range q.CandidatesFor(CategoryAny) {
		seen = append(seen, e.User)
		q.Remove(e.User)
	}
	assert.Equal(t, []UserID{1, 2, 3}, seen)
	assert.Zero(t, q.Waiting())
}

func TestQueueSet_BlocksUsesEnqueueSnapshot(t *testing.T) {
	q := NewQueueSet()
	q.Enqueue(WaitEntry{User: 1, Requested: CategoryAny}, []UserID{7})

	assert.True(t, q.Blocks(1, 7))
	assert.False(t, q.Blocks(1, 8))
	assert.False(t, q.Blocks(2, 7))
}
