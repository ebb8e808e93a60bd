package main

import (
	"fmt"
	"net/http"

	"github.com/myrjola/finsight/internal/errors"
	"github.com/myrjola/finsight/internal/investigation"
)

// investigationError maps the engine's error taxonomy onto HTTP statuses:
// a bad configuration is the client's fault, operating without an active
// investigation is a conflict with the session state.
func (app *application) investigationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, investigation.ErrInvalidConfig):
		app.clientError(w, r, http.StatusBadRequest)
	case errors.Is(err, investigation.ErrNoActiveInvestigation):
		app.clientError(w, r, http.StatusConflict)
	default:
		app.serverError(w, r, err)
	}
}

// toResultPayload shadows the result's error with its message so the
// payload serializes cleanly.
func toResultPayload(res investigation.AggregatedResult) any {
	errMsg := ""
	if res.Err != nil {
		errMsg = res.Err.Error()
	}
	return struct {
		investigation.AggregatedResult
		Err string `json:",omitempty"`
	}{res, errMsg}
}

func (app *application) startInvestigation(w http.ResponseWriter, r *http.Request) {
	entry, err := app.investigationSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	var cfg investigation.Config
	if !app.readJSON(w, r, &cfg) {
		return
	}
	c, err := entry.store.Start(cfg)
	if err != nil {
		app.investigationError(w, r, err)
		return
	}
	app.applyNavigation(w, r, entry)
	go app.runAggregation(entry, c.ID)
	app.writeJSON(w, r, http.StatusCreated, c)
}

func (app *application) drillDown(w http.ResponseWriter, r *http.Request) {
	entry, err := app.investigationSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	var opt investigation.DrillDownOption
	if !app.readJSON(w, r, &opt) {
		return
	}
	child, err := entry.store.DrillDown(opt)
	if err != nil {
		app.investigationError(w, r, err)
		return
	}
	app.applyNavigation(w, r, entry)
	go app.runAggregation(entry, child.ID)
	app.writeJSON(w, r, http.StatusCreated, child)
}

func (app *application) updateInvestigation(w http.ResponseWriter, r *http.Request) {
	entry, err := app.investigationSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	var patch investigation.Patch
	if !app.readJSON(w, r, &patch) {
		return
	}
	entry.store.Update(patch)
	c, ok := entry.store.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if patch.Scope != nil {
		// The scope selects the collaborators, so a scope change invalidates
		// the cached result.
		go app.runAggregation(entry, c.ID)
	}
	app.writeJSON(w, r, http.StatusOK, c)
}

func (app *application) completeInvestigation(w http.ResponseWriter, r *http.Request) {
	entry, err := app.investigationSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	entry.store.Complete()
	app.applyNavigation(w, r, entry)
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) navigateBreadcrumb(w http.ResponseWriter, r *http.Request) {
	entry, err := app.investigationSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	c, ok := entry.store.NavigateToBreadcrumb(r.PathValue("id"))
	if !ok {
		// Navigating to an evicted crumb is a silent no-op.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	app.applyNavigation(w, r, entry)
	if _, hasResult := entry.store.Result(c.ID); !hasResult {
		go app.runAggregation(entry, c.ID)
	}
	app.writeJSON(w, r, http.StatusOK, c)
}

func (app *application) addFilter(w http.ResponseWriter, r *http.Request) {
	entry, err := app.investigationSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	var filter investigation.Filter
	if !app.readJSON(w, r, &filter) {
		return
	}
	if err = entry.store.AddFilter(filter); err != nil {
		app.investigationError(w, r, err)
		return
	}
	c, _ := entry.store.Current()
	go app.runAggregation(entry, c.ID)
	app.writeJSON(w, r, http.StatusOK, c)
}

func (app *application) removeFilter(w http.ResponseWriter, r *http.Request) {
	entry, err := app.investigationSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	entry.store.RemoveFilter(r.PathValue("id"))
	if c, ok := entry.store.Current(); ok {
		go app.runAggregation(entry, c.ID)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) bookmarkInvestigation(w http.ResponseWriter, r *http.Request) {
	entry, err := app.investigationSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	var payload struct {
		Notes       string
		CustomTitle string
		Tags        []string
	}
	if !app.readJSON(w, r, &payload) {
		return
	}
	b, err := entry.store.AddBookmark(payload.Notes, payload.CustomTitle, payload.Tags)
	if err != nil {
		app.investigationError(w, r, err)
		return
	}
	if err = app.bookmarkRepo.Save(r.Context(), b); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, b)
}

func (app *application) shareInvestigation(w http.ResponseWriter, r *http.Request) {
	entry, err := app.investigationSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	location, err := entry.store.ShareLocation()
	if err != nil {
		app.investigationError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"location": location})
}

func (app *application) updatePanel(w http.ResponseWriter, r *http.Request) {
	entry, err := app.investigationSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	var payload struct {
		Width    *int
		Position *string
		Open     *bool
	}
	if !app.readJSON(w, r, &payload) {
		return
	}
	if payload.Width != nil {
		entry.store.SetPanelWidth(*payload.Width)
	}
	if payload.Position != nil {
		entry.store.SetPanelPosition(investigation.PanelPosition(*payload.Position))
	}
	if payload.Open != nil {
		entry.store.SetPanelOpen(*payload.Open)
	}
	app.writeJSON(w, r, http.StatusOK, entry.store.Panel())
}

func (app *application) investigationHistory(w http.ResponseWriter, r *http.Request) {
	entry, err := app.investigationSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{
		"history": entry.store.History(),
		"recent":  entry.store.Recent(),
	})
}

func (app *application) clearHistory(w http.ResponseWriter, r *http.Request) {
	entry, err := app.investigationSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	entry.store.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) investigationResult(w http.ResponseWriter, r *http.Request) {
	entry, err := app.investigationSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	c, ok := entry.store.Current()
	if !ok {
		app.clientError(w, r, http.StatusConflict)
		return
	}
	res, found := entry.store.Result(c.ID)
	if !found {
		res = investigation.AggregatedResult{ContextID: c.ID, Loading: true}
	}
	app.writeJSON(w, r, http.StatusOK, toResultPayload(res))
}

// narrateInvestigation summarizes the current result's insights in prose.
// Without an API key the narrator is disabled and the endpoint answers 204,
// the dashboard then renders the raw insights only.
func (app *application) narrateInvestigation(w http.ResponseWriter, r *http.Request) {
	entry, err := app.investigationSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	c, ok := entry.store.Current()
	if !ok {
		app.clientError(w, r, http.StatusConflict)
		return
	}
	if !app.aiClient.Enabled() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	res, found := entry.store.Result(c.ID)
	if !found || res.Loading {
		app.clientError(w, r, http.StatusConflict)
		return
	}
	findings := make([]string, 0, len(res.Insights))
	for _, insight := range res.Insights {
		findings = append(findings, fmt.Sprintf("%s: %s", insight.Title, insight.Description))
	}
	narrative, err := app.aiClient.Narrate(r.Context(), findings)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"narrative": narrative})
}

func (app *application) listBookmarks(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := app.bookmarkRepo.List(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, bookmarks)
}
