package main

import (
	"net/http"

	"github.com/myrjola/finsight/internal/errors"
	"github.com/myrjola/finsight/internal/investigation"
)

type investigationTemplateData struct {
	BaseTemplateData
	Investigation investigation.Context
	Panel         investigation.PanelState
	Result        investigation.AggregatedResult
	HasResult     bool
}

// investigationPage reconciles the store with the requested location and
// renders the investigation view. Deep links and back-button arrivals both
// land here; SyncLocation decides whether to restore or start fresh.
func (app *application) investigationPage(w http.ResponseWriter, r *http.Request) {
	entry, err := app.investigationSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	c, ok, err := entry.store.SyncLocation(r.URL.RequestURI())
	if err != nil {
		if errors.Is(err, investigation.ErrInvalidConfig) {
			app.clientError(w, r, http.StatusBadRequest)
			return
		}
		app.serverError(w, r, err)
		return
	}
	entry.nav.drain() // the browser is already at this location
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	res, hasResult := entry.store.Result(c.ID)
	if !hasResult {
		go app.runAggregation(entry, c.ID)
	}

	data := investigationTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Investigation:    c,
		Panel:            entry.store.Panel(),
		Result:           res,
		HasResult:        hasResult,
	}

	app.render(w, r, http.StatusOK, "investigation", data)
}
