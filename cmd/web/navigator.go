package main

import (
	"net/http"
	"sync"

	"github.com/myrjola/finsight/internal/investigation"
)

// queueNavigator buffers the navigation side effects of a store operation so
// the HTTP handler that triggered it can translate them into htmx response
// headers. The store calls Push and Replace synchronously under its own
// mutex, so at most the triggering request's locations are queued when the
// handler drains.
type queueNavigator struct {
	mu       sync.Mutex
	pushes   []string
	replaces []string
}

var _ investigation.Navigator = (*queueNavigator)(nil)

func (n *queueNavigator) Push(location string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pushes = append(n.pushes, location)
}

func (n *queueNavigator) Replace(location string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.replaces = append(n.replaces, location)
}

// drain returns and clears the queued navigation requests.
func (n *queueNavigator) drain() (pushes []string, replaces []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	pushes, replaces = n.pushes, n.replaces
	n.pushes, n.replaces = nil, nil
	return pushes, replaces
}

// applyNavigation drains the session's queued navigation and writes it as
// htmx history headers. Last write wins, matching how a browser would apply
// the requests in order.
func (app *application) applyNavigation(w http.ResponseWriter, r *http.Request, entry *sessionEntry) {
	pushes, replaces := entry.nav.drain()
	h := app.htmx.NewHandler(w, r)
	if len(pushes) > 0 {
		h.PushURL(pushes[len(pushes)-1])
	}
	if len(replaces) > 0 {
		h.ReplaceURL(replaces[len(replaces)-1])
	}
}
