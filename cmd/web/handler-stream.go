package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/myrjola/finsight/internal/investigation"
)

// runAggregation computes the aggregation for a freshly committed context
// and streams the result to any SSE subscriber. The store discards the
// commit when the context was superseded while the fan-out ran.
func (app *application) runAggregation(entry *sessionEntry, contextID string) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	channel := make(chan investigation.AggregatedResult, 1)
	app.resultBroker.Publish(contextID, channel)

	res, committed := app.aggregator.Refresh(ctx, entry.store)
	if committed && res.ContextID == contextID {
		channel <- res
	}
	close(channel)
	app.resultBroker.Unpublish(contextID)
}

// streamResult streams aggregation results over SSE. When the producer has
// already finished, the committed result is read from the store instead.
func (app *application) streamResult(w http.ResponseWriter, r *http.Request) {
	sid := app.sessionManager.GetString(r.Context(), "investigationSessionID")
	if sid == "" {
		app.notFound(w, r)
		return
	}
	entry := app.sessions.entry(sid)

	id := r.URL.Query().Get("id")
	if id == "" {
		if c, ok := entry.store.Current(); ok {
			id = c.ID
		}
	}
	if id == "" {
		app.notFound(w, r)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		app.serverError(w, r, fmt.Errorf("response writer does not support flushing"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeEvent := func(res investigation.AggregatedResult) {
		payload, err := json.Marshal(toResultPayload(res))
		if err != nil {
			app.logger.Error("marshal result event", "error", err)
			return
		}
		_, _ = fmt.Fprintf(w, "event: result\ndata: %s\n\n", payload)
		flusher.Flush()
	}

	if producer, open := <-app.resultBroker.Subscribe(id); open {
		for res := range producer {
			writeEvent(res)
		}
		return
	}

	// Producer already finished or never started; fall back to the store.
	if res, found := entry.store.Result(id); found {
		writeEvent(res)
		return
	}
	writeEvent(investigation.AggregatedResult{ContextID: id, Loading: true})
}
