// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/claimnavigator/cn-analytics/pkg/stor"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	log "github.com/sirupsen/logrus"
)

// ListEvents lists a page of stored analytics events, most recent first.
// The total number of stored events is returned in the X-Total-Count header.
func (a *APICtrl) ListEvents(w http.ResponseWriter, r *http.Request) {
	log.Debug("List Events")

	page, perPage := pagination(r)
	if page == 0 || perPage == 0 {
		page, perPage = DefaultPage, DefaultPerPage
	}
	events, err := a.Store.Event().List(page, perPage)
	if err != nil {
		render.Render(w, r, ErrServer(err))
		return
	}
	total, err := a.Store.Event().Count()
	if err != nil {
		render.Render(w, r, ErrServer(err))
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))

	if err := render.RenderList(w, r, NewEventListResponse(events)); err != nil {
		render.Render(w, r, ErrRender(err))
		return
	}
}

// SearchEvents searches events corresponding to a specific criteria.
func (a *APICtrl) SearchEvents(w http.ResponseWriter, r *http.Request) {
	var events *[]stor.AnalyticsEvent
	var err error

	// by event name
	if name := r.URL.Query().Get("name"); name != "" {
		events, err = a.Store.Event().FindByName(name)
		// by claim
	} else if claimID := r.URL.Query().Get("claim"); claimID != "" {
		events, err = a.Store.Event().FindByClaim(claimID)
		// by date or month
	} else if date := r.URL.Query().Get("date"); date != "" {
		events, err = a.Store.Event().FindByDate(date)
		if errors.Is(err, stor.ErrInvalidDate) {
			render.Render(w, r, ErrInvalidRequest(err))
			return
		}
	} else {
		render.Render(w, r, ErrNotFound)
		return
	}
	if err != nil {
		render.Render(w, r, ErrServer(err))
		return
	}
	if err := render.RenderList(w, r, NewEventListResponse(events)); err != nil {
		render.Render(w, r, ErrRender(err))
		return
	}
}

// GetEvent returns a specific event
func (a *APICtrl) GetEvent(w http.ResponseWriter, r *http.Request) {

	var event *stor.AnalyticsEvent
	var err error

	if eventID := chi.URLParam(r, "eventID"); eventID != "" {
		event, err = a.Store.Event().Get(eventID)
	} else {
		render.Render(w, r, ErrInvalidRequest(errors.New("missing required event identifier")))
		return
	}
	if err != nil {
		render.Render(w, r, ErrNotFound)
		return
	}
	if err := render.Render(w, r, NewEventResponse(event)); err != nil {
		render.Render(w, r, ErrRender(err))
		return
	}
}

// --
// Response payloads for the REST api.
// --

// EventResponse is the response event payload.
type EventResponse struct {
	*stor.AnalyticsEvent
}

// NewEventListResponse creates a rendered list of events
func NewEventListResponse(events *[]stor.AnalyticsEvent) []render.Renderer {
	list := []render.Renderer{}
	for i := 0; i < len(*events); i++ {
		list = append(list, NewEventResponse(&(*events)[i]))
	}
	return list
}

// NewEventResponse creates a rendered event.
func NewEventResponse(event *stor.AnalyticsEvent) *EventResponse {
	return &EventResponse{AnalyticsEvent: event}
}

// Render processes responses before marshalling.
func (e *EventResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
