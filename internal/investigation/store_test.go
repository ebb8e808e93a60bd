package investigation_test

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/myrjola/finsight/internal/investigation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// navRecorder captures the navigation side effects a store requests.
type navRecorder struct {
	pushes   []string
	replaces []string
}

func (n *navRecorder) Push(location string)    { n.pushes = append(n.pushes, location) }
func (n *navRecorder) Replace(location string) { n.replaces = append(n.replaces, location) }

func newTestStore(t *testing.T) (*investigation.Store, *navRecorder) {
	t.Helper()
	nav := &navRecorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return investigation.NewStore(nav, logger), nav
}

func TestStoreStart(t *testing.T) {
	t.Parallel()
	store, nav := newTestStore(t)

	c, err := store.Start(investigation.Config{
		Kind:  investigation.KindMonthly,
		Scope: investigation.Scope{Month: "2024-03"},
	})
	require.NoError(t, err)

	assert.True(t, store.Active())
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Monthly spending 2024-03", c.Title, "default title not derived from scope")
	assert.Equal(t, investigation.SourceManual, c.Meta.Source)
	assert.Zero(t, c.Meta.Depth)

	require.Len(t, c.Breadcrumbs, 2, "root trail is dashboard plus self")
	assert.True(t, c.Breadcrumbs[0].Clickable)
	assert.False(t, c.Breadcrumbs[0].Active)
	assert.True(t, c.Breadcrumbs[1].Active)
	assert.False(t, c.Breadcrumbs[1].Clickable)
	assert.Equal(t, c.ID, c.Breadcrumbs[1].ID)

	require.Len(t, nav.pushes, 1)
	assert.Equal(t, investigation.EncodeLocation(c), nav.pushes[0])
	assert.True(t, store.Panel().Open)
	assert.Len(t, store.History(), 1)
}

func TestStoreStartInvalidKind(t *testing.T) {
	t.Parallel()
	store, nav := newTestStore(t)

	_, err := store.Start(investigation.Config{Kind: "bogus"})
	require.ErrorIs(t, err, investigation.ErrInvalidConfig)

	assert.False(t, store.Active(), "failed start must not activate a session")
	assert.Empty(t, nav.pushes, "failed start must not navigate")
	assert.Empty(t, store.History())
}

func TestStoreStartDefaultsKind(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	c, err := store.Start(investigation.Config{})
	require.NoError(t, err)
	assert.Equal(t, investigation.KindMonthly, c.Kind)
}

func TestStoreDrillDown(t *testing.T) {
	t.Parallel()
	store, nav := newTestStore(t)

	parent, err := store.Start(investigation.Config{
		Kind:  investigation.KindMonthly,
		Scope: investigation.Scope{Month: "2024-03"},
	})
	require.NoError(t, err)

	child, err := store.DrillDown(investigation.DrillDownOption{
		Label: "Category Groceries",
		Kind:  investigation.KindCategory,
		Scope: investigation.Scope{Category: "Groceries", Month: "2024-03"},
	})
	require.NoError(t, err)

	assert.Equal(t, parent.ID, child.Meta.ParentID)
	assert.Equal(t, 1, child.Meta.Depth)
	require.Len(t, nav.pushes, 2, "drill-down pushes so back returns to the parent")

	// Trail: Dashboard > Monthly spending 2024-03 > Category Groceries.
	require.Len(t, child.Breadcrumbs, 3)
	assert.Equal(t, "Monthly spending 2024-03", child.Breadcrumbs[1].Label)
	assert.True(t, child.Breadcrumbs[1].Clickable, "parent crumb must be clickable")
	assert.False(t, child.Breadcrumbs[1].Active)
	assert.True(t, child.Breadcrumbs[2].Active)
	assert.False(t, child.Breadcrumbs[2].Clickable)

	// The parent's history entry records the child exactly once.
	var stored investigation.Context
	for _, h := range store.History() {
		if h.ID == parent.ID {
			stored = h
		}
	}
	require.Equal(t, []string{child.ID}, stored.Meta.ChildIDs)
}

func TestStoreDrillDownWithoutActive(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	_, err := store.DrillDown(investigation.DrillDownOption{Kind: investigation.KindCategory})
	require.ErrorIs(t, err, investigation.ErrNoActiveInvestigation)
}

func TestStoreUpdate(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	c, err := store.Start(investigation.Config{Kind: investigation.KindCategory})
	require.NoError(t, err)

	title := "Groceries deep dive"
	store.Update(investigation.Patch{
		Title: &title,
		Scope: &investigation.Scope{Category: "Groceries"},
	})

	current, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, title, current.Title)
	assert.Equal(t, "Groceries", current.Scope.Category)
	assert.False(t, current.LastUpdated.IsZero())

	// The history mirror follows the update.
	history := store.History()
	require.Len(t, history, 1)
	assert.Equal(t, title, history[0].Title)
	assert.Equal(t, c.ID, history[0].ID)
}

func TestStoreUpdateWithoutActiveIsNoop(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	title := "ignored"
	store.Update(investigation.Patch{Title: &title})
	_, ok := store.Current()
	assert.False(t, ok)
}

func TestStoreComplete(t *testing.T) {
	t.Parallel()
	store, nav := newTestStore(t)

	_, err := store.Start(investigation.Config{Kind: investigation.KindMonthly})
	require.NoError(t, err)

	store.Complete()

	assert.False(t, store.Active())
	_, ok := store.Current()
	assert.False(t, ok)
	assert.False(t, store.Panel().Open)
	require.Len(t, nav.replaces, 1)
	assert.Equal(t, "/", nav.replaces[0])
	assert.Len(t, store.History(), 1, "completion keeps the context in history")
}

func TestStoreFilters(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	require.ErrorIs(t,
		store.AddFilter(investigation.Filter{ID: "f1"}),
		investigation.ErrNoActiveInvestigation)

	_, err := store.Start(investigation.Config{Kind: investigation.KindCategory})
	require.NoError(t, err)

	require.NoError(t, store.AddFilter(investigation.Filter{ID: "f1", Field: "amount", Op: "gt", Value: "100"}))
	require.NoError(t, store.AddFilter(investigation.Filter{ID: "f1", Field: "amount", Op: "gt", Value: "250"}))

	current, _ := store.Current()
	require.Len(t, current.Scope.Filters, 1, "same ID replaces, not duplicates")
	assert.Equal(t, "250", current.Scope.Filters["f1"].Value)

	store.RemoveFilter("does-not-exist") // silent no-op
	store.RemoveFilter("f1")
	store.RemoveFilter("f1") // idempotent

	current, _ = store.Current()
	assert.Empty(t, current.Scope.Filters)
}

func TestStoreNavigateToBreadcrumb(t *testing.T) {
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

	c, ok := store.NavigateToBreadcrumb(parent.ID)
	require.True(t, ok)
	assert.Equal(t, parent.ID, c.ID)
	assert.Zero(t, c.Meta.Depth, "breadcrumb navigation must not change depth")
	require.Len(t, nav.replaces, 1, "breadcrumb navigation replaces instead of pushing")

	current, _ := store.Current()
	assert.Equal(t, parent.ID, current.ID)
}

func TestStoreNavigateToEvictedBreadcrumbIsNoop(t *testing.T) {
	t.Parallel()
	store, nav := newTestStore(t)

	c, err := store.Start(investigation.Config{Kind: investigation.KindMonthly})
	require.NoError(t, err)

	_, ok := store.NavigateToBreadcrumb("inv-gone")
	assert.False(t, ok)
	assert.Empty(t, nav.replaces)

	current, _ := store.Current()
	assert.Equal(t, c.ID, current.ID, "failed navigation must leave the current context untouched")
}

func TestStoreHistoryBounds(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	for i := 0; i < investigation.HistoryLimit+5; i++ {
		_, err := store.Start(investigation.Config{
			ID:   fmt.Sprintf("inv-%03d", i),
			Kind: investigation.KindMonthly,
		})
		require.NoError(t, err)
	}

	history := store.History()
	require.Len(t, history, investigation.HistoryLimit)
	assert.Equal(t, "inv-054", history[0].ID, "most recent first")
	assert.Equal(t, "inv-005", history[len(history)-1].ID, "oldest evicted first")
	assert.Len(t, store.Recent(), investigation.RecentLimit)
}

func TestStoreHistoryDeduplicates(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	for _, id := range []string{"inv-a", "inv-b", "inv-a"} {
		_, err := store.Start(investigation.Config{ID: id, Kind: investigation.KindMonthly})
		require.NoError(t, err)
	}

	history := store.History()
	require.Len(t, history, 2)
	assert.Equal(t, "inv-a", history[0].ID, "restarted context moves to the front")
	assert.Equal(t, "inv-b", history[1].ID)
}

func TestStoreBookmark(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	_, err := store.AddBookmark("notes", "", nil)
	require.ErrorIs(t, err, investigation.ErrNoActiveInvestigation)

	c, err := store.Start(investigation.Config{
		Kind:  investigation.KindCategory,
		Scope: investigation.Scope{Category: "Dining"},
	})
	require.NoError(t, err)

	b, err := store.AddBookmark("check later", "Dining spike", []string{"todo"})
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, c.ID, b.Investigation.ID)

	// Later mutations must not leak into the frozen snapshot.
	title := "renamed"
	store.Update(investigation.Patch{Title: &title})

	bookmarks := store.Bookmarks()
	require.Len(t, bookmarks, 1)
	assert.Equal(t, c.Title, bookmarks[0].Investigation.Title)
	assert.Equal(t, "check later", bookmarks[0].Notes)
}

func TestStoreShareLocation(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	_, err := store.ShareLocation()
	require.ErrorIs(t, err, investigation.ErrNoActiveInvestigation)

	c, err := store.Start(investigation.Config{
		Kind:  investigation.KindCategory,
		Scope: investigation.Scope{Category: "Travel", Month: "2024-07"},
	})
	require.NoError(t, err)

	location, err := store.ShareLocation()
	require.NoError(t, err)
	assert.Equal(t, investigation.EncodeLocation(c), location)
}

func TestStorePanelWidthClamp(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		px   int
		want int
	}{
		{name: "above maximum", px: 10000, want: investigation.MaxPanelWidth},
		{name: "below minimum", px: 10, want: investigation.MinPanelWidth},
		{name: "within range", px: 500, want: 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store, _ := newTestStore(t)
			store.SetPanelWidth(tt.px)
			assert.Equal(t, tt.want, store.Panel().Width)
		})
	}
}

func TestStoreClearHistory(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	c, err := store.Start(investigation.Config{Kind: investigation.KindMonthly})
	require.NoError(t, err)
	require.True(t, store.CommitResult(investigation.AggregatedResult{ContextID: c.ID}))

	store.ClearHistory()

	assert.Empty(t, store.History())
	assert.Empty(t, store.Recent())
	_, ok := store.Result(c.ID)
	assert.False(t, ok, "result cache cleared with history")

	current, ok := store.Current()
	require.True(t, ok, "current investigation survives a history clear")
	assert.Equal(t, c.ID, current.ID)
}

func TestStoreCommitResultIdentityCheck(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	first, err := store.Start(investigation.Config{Kind: investigation.KindMonthly})
	require.NoError(t, err)
	second, err := store.Start(investigation.Config{Kind: investigation.KindCategory})
	require.NoError(t, err)

	assert.False(t, store.CommitResult(investigation.AggregatedResult{ContextID: first.ID}),
		"result for a superseded context must be discarded")
	_, ok := store.Result(first.ID)
	assert.False(t, ok)

	assert.True(t, store.CommitResult(investigation.AggregatedResult{ContextID: second.ID}))
	res, ok := store.Result(second.ID)
	require.True(t, ok)
	assert.Equal(t, second.ID, res.ContextID)
}

func TestStoreGlobalFilterProjection(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	store.SetGlobalFilters(investigation.GlobalFilters{
		DateRange:          &investigation.DateRange{From: "2024-01-01", To: "2024-06-30"},
		ExcludedCategories: []string{"Investments"},
	})

	c, err := store.Start(investigation.Config{Kind: investigation.KindMonthly})
	require.NoError(t, err)
	require.Len(t, c.Scope.Filters, 2)
	assert.Equal(t, "2024-01-01..2024-06-30", c.Scope.Filters["global-date-range"].Value)
	assert.Equal(t, "Investments", c.Scope.Filters["global-exclude-categories"].Value)

	// Explicit filters win over the projection.
	explicit, err := store.Start(investigation.Config{
		Kind: investigation.KindCategory,
		Scope: investigation.Scope{Filters: map[string]investigation.Filter{
			"mine": {ID: "mine", Field: "amount", Op: "gt", Value: "50"},
		}},
	})
	require.NoError(t, err)
	require.Len(t, explicit.Scope.Filters, 1)
	assert.Contains(t, explicit.Scope.Filters, "mine")
}

func TestStoreReadsReturnCopies(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	_, err := store.Start(investigation.Config{
		Kind:  investigation.KindCategory,
		Scope: investigation.Scope{Category: "Dining"},
	})
	require.NoError(t, err)

	snapshot, _ := store.Current()
	snapshot.Scope.Category = "Hacked"
	snapshot.Breadcrumbs[0].Label = "Hacked"

	current, _ := store.Current()
	assert.Equal(t, "Dining", current.Scope.Category)
	assert.Equal(t, "Dashboard", current.Breadcrumbs[0].Label)
}
