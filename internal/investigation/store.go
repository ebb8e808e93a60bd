package investigation

import (
	"log/slog"
	"sync"
	"time"

	"github.com/myrjola/finsight/internal/errors"
)

// Bounds for the recency lists. Oldest entries are evicted first.
const (
	HistoryLimit = 50
	RecentLimit  = 10
)

// Store holds one user's investigation session: the active context, bounded
// history and recent lists, bookmarks, the panel UI state, and the result
// cache. Every operation is a single atomic transition under the store
// mutex; reads hand out deep copies so observers never see a half-updated
// context.
type Store struct {
	mu     sync.Mutex
	logger *slog.Logger
	nav    Navigator
	global GlobalFilters
	now    func() time.Time

	current   *Context
	active    bool
	panel     PanelState
	history   []Context // most-recent-first, unique by ID
	recent    []Context // most-recent-first, unique by ID
	bookmarks []Bookmark
	results   map[string]AggregatedResult // keyed by context ID
}

// NewStore creates a session store that reports navigation side effects to
// nav. A nil nav disables navigation side effects.
func NewStore(nav Navigator, logger *slog.Logger) *Store {
	if nav == nil {
		nav = NopNavigator{}
	}
	return &Store{
		logger:  logger.With("source", "investigation.Store"),
		nav:     nav,
		now:     time.Now,
		panel:   defaultPanel(),
		results: make(map[string]AggregatedResult),
	}
}

// SetGlobalFilters records the ambient dashboard filters that are projected
// into new investigation scopes. The projection is one-directional: nothing
// in the store ever writes back into the global filters.
func (s *Store) SetGlobalFilters(g GlobalFilters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global = g
}

// Start begins a new root investigation from a partial configuration,
// pushing its location to the navigator and committing it as the current
// context. Missing fields are defaulted; an unrecognized kind fails with
// ErrInvalidConfig and leaves the state untouched.
func (s *Store) Start(cfg Config) (Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked(cfg, true)
}

func (s *Store) startLocked(cfg Config, push bool) (Context, error) {
	c, err := s.buildContextLocked(cfg)
	if err != nil {
		return Context{}, err
	}
	c.Breadcrumbs = BuildTrail(c, s.lookupLocked)

	if push {
		s.nav.Push(EncodeLocation(c))
	}
	s.commitLocked(c)
	s.logger.Debug("started investigation", slog.String("id", c.ID), slog.String("kind", string(c.Kind)))
	return c.Clone(), nil
}

// DrillDown starts a child investigation one level narrower than the
// current one. The child records its parent, the parent's history entry
// gains the child ID, and the child's trail extends the parent's trail by
// one crumb. Fails with ErrNoActiveInvestigation when nothing is active.
func (s *Store) DrillDown(opt DrillDownOption) (Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Context{}, errors.Wrap(ErrNoActiveInvestigation, "drill down")
	}
	parent := *s.current

	child, err := s.buildContextLocked(Config{
		Kind:        opt.Kind,
		Scope:       opt.Scope,
		Title:       opt.Label,
		Description: opt.Description,
		Source:      SourceDrillDown,
	})
	if err != nil {
		return Context{}, err
	}
	child.Meta.ParentID = parent.ID
	child.Meta.Depth = parent.Meta.Depth + 1
	child.Breadcrumbs = extendTrail(parent, child)

	// Record the child on the parent before the child takes over as current.
	parent.Meta.ChildIDs = append(parent.Meta.ChildIDs, child.ID)
	parent.LastUpdated = s.now()
	s.replaceInHistoryLocked(parent)

	s.nav.Push(EncodeLocation(child))
	s.commitLocked(child)
	s.logger.Debug("drilled down", slog.String("id", child.ID), slog.String("parent_id", parent.ID))
	return child.Clone(), nil
}

// Patch is a partial update applied to the current context. Nil fields are
// left untouched.
type Patch struct {
	Title       *string
	Description *string
	Scope       *Scope
	Tags        []string
}

// Update shallow-merges the patch into the current context, refreshes its
// LastUpdated timestamp, and propagates the merge into the matching history
// entry. No-op when nothing is active.
func (s *Store) Update(patch Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	c := *s.current
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.Scope != nil {
		c.Scope = patch.Scope.Clone()
	}
	if patch.Tags != nil {
		c.Tags = append([]string(nil), patch.Tags...)
	}
	c.LastUpdated = s.now()
	s.current = &c
	s.replaceInHistoryLocked(c)
}

// Complete ends the current investigation: it clears the active context,
// closes the panel, and requests a location replace back to the dashboard
// root. The context stays in history for breadcrumb navigation.
func (s *Store) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completeLocked(true)
}

func (s *Store) completeLocked(navigate bool) {
	if s.current == nil && !s.active {
		return
	}
	s.current = nil
	s.active = false
	s.panel.Open = false
	if navigate {
		s.nav.Replace("/")
	}
}

// AddFilter attaches an ad hoc filter to the current scope. Adding a filter
// whose ID already exists replaces it.
func (s *Store) AddFilter(f Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return errors.Wrap(ErrNoActiveInvestigation, "add filter", slog.String("filter_id", f.ID))
	}
	c := *s.current
	c.Scope = c.Scope.Clone()
	if c.Scope.Filters == nil {
		c.Scope.Filters = make(map[string]Filter)
	}
	c.Scope.Filters[f.ID] = f
	c.LastUpdated = s.now()
	s.current = &c
	s.replaceInHistoryLocked(c)
	return nil
}

// RemoveFilter detaches a filter from the current scope. Removing a
// nonexistent filter, or removing while nothing is active, is a no-op.
func (s *Store) RemoveFilter(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	if _, ok := s.current.Scope.Filters[id]; !ok {
		return
	}
	c := *s.current
	c.Scope = c.Scope.Clone()
	delete(c.Scope.Filters, id)
	c.LastUpdated = s.now()
	s.current = &c
	s.replaceInHistoryLocked(c)
}

// NavigateToBreadcrumb makes an earlier investigation current again without
// creating a new context or changing its depth, and requests a location
// replace. Navigating to an ID that has been evicted from history is a
// silent no-op, not an error.
func (s *Store) NavigateToBreadcrumb(id string) (Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.lookupLocked(id)
	if !ok {
		return Context{}, false
	}
	s.nav.Replace(EncodeLocation(target))
	c := target.Clone()
	s.current = &c
	s.active = true
	s.panel.Open = true
	s.recent = prependContext(s.recent, c, RecentLimit)
	return c.Clone(), true
}

// AddBookmark deep-copies the current investigation into a new frozen
// bookmark. Fails with ErrNoActiveInvestigation when nothing is active.
func (s *Store) AddBookmark(notes, customTitle string, tags []string) (Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Bookmark{}, errors.Wrap(ErrNoActiveInvestigation, "bookmark")
	}
	now := s.now()
	id, err := newBookmarkID(now)
	if err != nil {
		return Bookmark{}, err
	}
	b := Bookmark{
		ID:            id,
		Investigation: s.current.Clone(),
		CreatedAt:     now,
		Notes:         notes,
		CustomTitle:   customTitle,
		Tags:          append([]string(nil), tags...),
	}
	s.bookmarks = append([]Bookmark{b}, s.bookmarks...)
	return cloneBookmark(b), nil
}

// ShareLocation returns the shareable location string for the current
// investigation without mutating any state.
func (s *Store) ShareLocation() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return "", errors.Wrap(ErrNoActiveInvestigation, "share")
	}
	return EncodeLocation(*s.current), nil
}

// SetPanelWidth stores a panel width clamped to the allowed range.
func (s *Store) SetPanelWidth(px int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel.Width = clampPanelWidth(px)
}

// SetPanelPosition docks the panel right or bottom. Unknown positions are ignored.
func (s *Store) SetPanelPosition(pos PanelPosition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pos == PanelRight || pos == PanelBottom {
		s.panel.Position = pos
	}
}

// SetPanelOpen opens or closes the panel.
func (s *Store) SetPanelOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel.Open = open
}

// ClearHistory empties the history and recent lists and the result cache.
// The current investigation, if any, is untouched.
func (s *Store) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.recent = nil
	s.results = make(map[string]AggregatedResult)
}

// ClearResults empties the result cache only.
func (s *Store) ClearResults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = make(map[string]AggregatedResult)
}

// CommitResult stores an aggregation result, but only when its originating
// context is still current at commit time. A result for a superseded
// context is silently discarded; the identity check substitutes for an
// explicit cancellation token.
func (s *Store) CommitResult(res AggregatedResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.ID != res.ContextID {
		s.logger.Debug("discarded stale aggregation result", slog.String("context_id", res.ContextID))
		return false
	}
	s.results[res.ContextID] = res
	return true
}

// Current returns a copy of the active investigation, if any.
func (s *Store) Current() (Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Context{}, false
	}
	return s.current.Clone(), true
}

// Active reports whether an investigation is in progress.
func (s *Store) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// History returns a copy of the bounded history, most recent first.
func (s *Store) History() []Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneContexts(s.history)
}

// Recent returns a copy of the recent list, most recent first.
func (s *Store) Recent() []Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneContexts(s.recent)
}

// Bookmarks returns a copy of the bookmark list, most recent first.
func (s *Store) Bookmarks() []Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Bookmark, len(s.bookmarks))
	for i, b := range s.bookmarks {
		out[i] = cloneBookmark(b)
	}
	return out
}

// Panel returns the panel UI state.
func (s *Store) Panel() PanelState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel
}

// Result returns the cached aggregation result for a context ID.
func (s *Store) Result(contextID string) (AggregatedResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.results[contextID]
	return res, ok
}

// buildContextLocked fills a partial configuration into a complete context.
func (s *Store) buildContextLocked(cfg Config) (Context, error) {
	kind := cfg.Kind
	if kind == "" {
		kind = KindMonthly
	}
	if !kind.Valid() {
		return Context{}, errors.Wrap(ErrInvalidConfig, "unrecognized kind", slog.String("kind", string(cfg.Kind)))
	}

	now := s.now()
	id := cfg.ID
	if id == "" {
		var err error
		if id, err = newID(now); err != nil {
			return Context{}, err
		}
	}
	scope := projectGlobalFilters(s.global, cfg.Scope.Clone())
	title := cfg.Title
	if title == "" {
		title = defaultTitle(kind, scope)
	}
	source := cfg.Source
	if source == "" {
		source = SourceManual
	}

	return Context{
		ID:          id,
		Kind:        kind,
		Scope:       scope,
		Title:       title,
		Description: cfg.Description,
		StartedAt:   now,
		Meta:        Metadata{Source: source},
		Tags:        append([]string(nil), cfg.Tags...),
	}, nil
}

// commitLocked installs c as the current investigation and records it in
// the recency lists.
func (s *Store) commitLocked(c Context) {
	clone := c.Clone()
	s.current = &clone
	s.active = true
	s.panel.Open = true
	s.history = prependContext(s.history, c, HistoryLimit)
	s.recent = prependContext(s.recent, c, RecentLimit)
}

// replaceInHistoryLocked keeps the history mirror of a context in sync with
// mutations to it.
func (s *Store) replaceInHistoryLocked(c Context) {
	for i := range s.history {
		if s.history[i].ID == c.ID {
			s.history[i] = c.Clone()
			break
		}
	}
	for i := range s.recent {
		if s.recent[i].ID == c.ID {
			s.recent[i] = c.Clone()
			break
		}
	}
	if s.current != nil && s.current.ID == c.ID {
		clone := c.Clone()
		s.current = &clone
	}
}

func (s *Store) lookupLocked(id string) (Context, bool) {
	for _, c := range s.history {
		if c.ID == id {
			return c.Clone(), true
		}
	}
	return Context{}, false
}

// prependContext puts c first in a most-recent-first list, removing any
// earlier entry with the same ID and evicting from the tail past the limit.
func prependContext(list []Context, c Context, limit int) []Context {
	out := make([]Context, 0, len(list)+1)
	out = append(out, c.Clone())
	for _, e := range list {
		if e.ID == c.ID {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, e)
	}
	return out
}

func cloneContexts(list []Context) []Context {
	out := make([]Context, len(list))
	for i, c := range list {
		out[i] = c.Clone()
	}
	return out
}

func cloneBookmark(b Bookmark) Bookmark {
	out := b
	out.Investigation = b.Investigation.Clone()
	out.Tags = append([]string(nil), b.Tags...)
	return out
}
