// Package journaltest holds behaviour checks shared by the journal stores.
package journaltest

import (
	"codeberg.org/miketth/evremap/pkg/journal"
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

// Run exercises a fresh, empty store. reopen must return a store reading the
// same data as the one passed to it after that one was closed, or nil when
// the store does not persist.
func Run(t *testing.T, store journal.Store, reopen func() journal.Store) {
	ctx := context.Background()

	assert.ErrorIs(t, store.RecordToggle(true), journal.ErrNoSession)

	require.NoError(t, store.StartSession("/dev/input/event3", "dvorak"))
	require.NoError(t, store.RecordToggle(true))
	require.NoError(t, store.RecordToggle(false))
	require.NoError(t, store.RecordToggle(true))

	sessions, err := store.RecentSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "/dev/input/event3", sessions[0].Device)
	assert.Equal(t, "dvorak", sessions[0].Layout)
	assert.Equal(t, 3, sessions[0].Toggles)
	assert.Nil(t, sessions[0].EndedAt)

	toggles, err := store.Toggles(ctx, sessions[0].ID)
	require.NoError(t, err)
	require.Len(t, toggles, 3)
	assert.Equal(t, []bool{true, false, true}, []bool{toggles[0].Active, toggles[1].Active, toggles[2].Active})

	require.NoError(t, store.StartSession("/dev/input/event4", "colemak"))

	sessions, err = store.RecentSessions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "colemak", sessions[0].Layout)
	assert.Equal(t, 0, sessions[0].Toggles)

	require.NoError(t, store.Close())

	if reopen == nil {
		return
	}

	store = reopen()
	defer store.Close()

	sessions, err = store.RecentSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.NotNil(t, sessions[0].EndedAt)
	assert.Equal(t, 3, sessions[1].Toggles)
}
