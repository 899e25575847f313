package matchmaking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTable_PartnersAreMutual(t *testing.T) {
	table := NewSessionTable()
	now := time.Now()
	created := table.Create(1, 2, now)

	a, ok := table.Get(1)
	require.True(t, ok)
	b, ok := table.Get(2)
	require.True(t, ok)

	assert.Equal(t, created.ID, a.ID)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, UserID(2), a.Partner(1))
	assert.Equal(t, UserID(1), b.Partner(2))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, table.Len())
}

func TestSessionTable_TouchUpdatesOneSide(t *testing.T) {
	table := NewSessionTable()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	table.Create(1, 2, start)

	table.Touch(2, start.Add(time.Minute))
	table.Touch(3, start.Add(time.Hour))

	s, _ := table.Get(1)
	assert.Equal(t, start, s.LastActivityA)
	assert.Equal(t, start.Add(time.Minute), s.LastActivityB)
	assert.Equal(t, start, s.IdleSince())
}

func TestSessionTable_EndRemovesBothMembers(t *testing.T) {
	table := NewSessionTable()
	now := time.Now()
	table.Create(1, 2, now)

	ended, ok := table.End(2, ReasonUserStopped, now)
	require.True(t, ok)
	assert.Equal(t, UserID(2), ended.EndedBy)
	assert.Equal(t, ReasonUserStopped, ended.Reason)

	_, ok = table.Get(1)
	assert.False(t, ok)
	_, ok = table.Get(2)
	assert.False(t, ok)

	_, ok = table.End(1, ReasonUserStopped, now)
	assert.False(t, ok)
}

func TestSessionTable_SnapshotListsEachSessionOnce(t *testing.T) {
	table := NewSessionTable()
	now := time.Now()
	table.Create(1, 2, now)
	table.Create(3, 4, now)

	assert.Len(t, table.Snapshot(), 2)
	assert.Equal(t, 2, table.Len())
}
