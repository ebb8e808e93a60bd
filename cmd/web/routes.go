package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	fileServer := http.FileServer(http.Dir("./ui/static/"))
	mux.Handle("GET /static/", cacheForeverHeaders(http.StripPrefix("/static", fileServer)))

	mux.HandleFunc("GET /api/healthy", app.healthy)

	session := alice.New(app.sessionManager.LoadAndSave, noSurf, commonContext)

	mux.Handle("GET /{$}", session.ThenFunc(app.home))
	mux.Handle("GET /investigation", session.ThenFunc(app.investigationPage))

	mux.Handle("POST /api/investigation/start", session.ThenFunc(app.startInvestigation))
	mux.Handle("POST /api/investigation/drill-down", session.ThenFunc(app.drillDown))
	mux.Handle("POST /api/investigation/update", session.ThenFunc(app.updateInvestigation))
	mux.Handle("POST /api/investigation/complete", session.ThenFunc(app.completeInvestigation))
	mux.Handle("POST /api/investigation/breadcrumb/{id}", session.ThenFunc(app.navigateBreadcrumb))
	mux.Handle("POST /api/investigation/filters", session.ThenFunc(app.addFilter))
	mux.Handle("DELETE /api/investigation/filters/{id}", session.ThenFunc(app.removeFilter))
	mux.Handle("POST /api/investigation/bookmark", session.ThenFunc(app.bookmarkInvestigation))
	mux.Handle("GET /api/investigation/share", session.ThenFunc(app.shareInvestigation))
	mux.Handle("POST /api/investigation/panel", session.ThenFunc(app.updatePanel))
	mux.Handle("GET /api/investigation/history", session.ThenFunc(app.investigationHistory))
	mux.Handle("DELETE /api/investigation/history", session.ThenFunc(app.clearHistory))
	mux.Handle("GET /api/investigation/result", session.ThenFunc(app.investigationResult))
	mux.Handle("GET /api/investigation/narrative", session.ThenFunc(app.narrateInvestigation))
	mux.Handle("GET /api/bookmarks", session.ThenFunc(app.listBookmarks))

	// The SSE stream bypasses the timeout handler; it stays open until the
	// aggregation resolves.
	outer := http.NewServeMux()
	sse := alice.New(app.serverSentEventMiddleware)
	outer.Handle("GET /api/investigation/stream", sse.ThenFunc(app.streamResult))
	outer.Handle("/", timeoutHandler(mux, defaultTimeout))

	standard := alice.New(app.recoverPanic, app.logRequest, app.secureHeaders)
	return standard.Then(outer)
}
