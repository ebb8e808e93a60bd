package main

import (
	"net/http"

	"github.com/myrjola/finsight/internal/investigation"
	"github.com/myrjola/finsight/internal/models"
)

type homeTemplateData struct {
	BaseTemplateData
	Summaries []models.MonthlySummary
	Overview  models.FinancialOverview
	Recent    []investigation.Context
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	entry, err := app.investigationSession(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	// Landing on the dashboard root closes a stale investigation session,
	// e.g. after the back button leaves the investigation route.
	if _, _, err = entry.store.SyncLocation(r.URL.RequestURI()); err != nil {
		app.serverError(w, r, err)
		return
	}
	entry.nav.drain() // the browser is already here

	ctx := r.Context()
	summaries, err := app.summaries.List(ctx)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	overview, err := app.statistics.Overview(ctx)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := homeTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Summaries:        summaries,
		Overview:         overview,
		Recent:           entry.store.Recent(),
	}

	app.render(w, r, http.StatusOK, "home", data)
}
