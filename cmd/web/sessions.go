package main

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/myrjola/finsight/internal/investigation"
	"github.com/myrjola/finsight/internal/random"
)

// sessionEntry is one browser session's investigation state: the store and
// the navigator that buffers its history side effects.
type sessionEntry struct {
	store *investigation.Store
	nav   *queueNavigator
}

// sessionRegistry hands out one investigation store per scs session. The
// stores live in memory; only bookmarks survive a restart.
type sessionRegistry struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
	logger  *slog.Logger
}

func newSessionRegistry(logger *slog.Logger) *sessionRegistry {
	return &sessionRegistry{
		entries: make(map[string]*sessionEntry),
		logger:  logger,
	}
}

func (reg *sessionRegistry) entry(id string) *sessionEntry {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if entry, ok := reg.entries[id]; ok {
		return entry
	}
	nav := &queueNavigator{}
	entry := &sessionEntry{
		store: investigation.NewStore(nav, reg.logger),
		nav:   nav,
	}
	reg.entries[id] = entry
	return entry
}

const sessionIDLength = 16

// investigationSession resolves the request's investigation session,
// creating the per-session ID on first touch.
func (app *application) investigationSession(r *http.Request) (*sessionEntry, error) {
	ctx := r.Context()
	sid := app.sessionManager.GetString(ctx, "investigationSessionID")
	if sid == "" {
		letters, err := random.Letters(sessionIDLength)
		if err != nil {
			return nil, err
		}
		sid = letters
		app.sessionManager.Put(ctx, "investigationSessionID", sid)
	}
	return app.sessions.entry(sid), nil
}
