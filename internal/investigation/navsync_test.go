package investigation_test

import (
	"testing"

	"github.com/myrjola/finsight/internal/investigation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncLocationOffRouteCompletesActiveSession(t *testing.T) {
	t.Parallel()
	store, nav := newTestStore(t)

	_, err := store.Start(investigation.Config{Kind: investigation.KindMonthly})
	require.NoError(t, err)

	_, ok, err := store.SyncLocation("/")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, store.Active())
	assert.False(t, store.Panel().Open)
	// The host is already at the new location, so no replace is requested.
	assert.Empty(t, nav.replaces)
}

func TestSyncLocationCurrentIsNoop(t *testing.T) {
	t.Parallel()
	store, nav := newTestStore(t)

	c, err := store.Start(investigation.Config{Kind: investigation.KindMonthly})
	require.NoError(t, err)
	pushesBefore := len(nav.pushes)

	synced, ok, err := store.SyncLocation(investigation.EncodeLocation(c))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, c.ID, synced.ID)
	assert.Len(t, nav.pushes, pushesBefore, "syncing the current location must not push")
}

func TestSyncLocationRestoresFromHistory(t *testing.T) {
	t.Parallel()
	store, nav := newTestStore(t)

	parent, err := store.Start(investigation.Config{
		Kind:  investigation.KindMonthly,
		Scope: investigation.Scope{Month: "2024-03"},
	})
	require.NoError(t, err)
	_, err = store.DrillDown(investigation.DrillDownOption{
		Kind:  investigation.KindCategory,
		Scope: investigation.Scope{Category: "Groceries"},
	})
	require.NoError(t, err)
	pushesBefore := len(nav.pushes)

	// The back button lands on the parent's location.
	synced, ok, err := store.SyncLocation(investigation.EncodeLocation(parent))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, parent.ID, synced.ID)
	assert.Len(t, nav.pushes, pushesBefore, "restoring from history must not push again")

	current, _ := store.Current()
	assert.Equal(t, parent.ID, current.ID)
}

func TestSyncLocationStartsDeepLink(t *testing.T) {
	t.Parallel()
	store, nav := newTestStore(t)

	synced, ok, err := store.SyncLocation("/investigation?kind=category&category=Travel")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, investigation.KindCategory, synced.Kind)
	assert.Equal(t, "Travel", synced.Scope.Category)
	assert.Equal(t, investigation.SourceDeepLink, synced.Meta.Source)
	assert.Empty(t, nav.pushes, "deep links arrive at the location, no push needed")
	assert.True(t, store.Active())
}

func TestSyncLocationOffRouteWhileIdle(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	_, ok, err := store.SyncLocation("/about")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, store.Active())
}
