// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/claimnavigator/cn-analytics/pkg/metrics"
	"github.com/claimnavigator/cn-analytics/pkg/stor"
	"github.com/go-chi/render"
	log "github.com/sirupsen/logrus"
)

// TrackEvent stores an analytics event sent by an emitter.
// Except for a wrong http method, the response status is always 200:
// analytics failures must never become client visible errors.
// The outcome is indicated by the success property of the response.
func (a *APICtrl) TrackEvent(w http.ResponseWriter, r *http.Request) {

	// only allow POST
	if r.Method != http.MethodPost {
		a.Metrics.IncrementReceived(metrics.OutcomeMethodNotAllowed)
		render.Status(r, http.StatusMethodNotAllowed)
		render.JSON(w, r, map[string]string{"error": "Method not allowed"})
		return
	}

	payload, err := readPayload(w, r, a.Config.Ingest.MaxBodyBytes)
	if err != nil {
		log.Errorf("Analytics tracking error: %v", err)
		a.Metrics.IncrementReceived(metrics.OutcomeParseError)
		render.Render(w, r, NewTrackResponse(err))
		return
	}

	// map the payload to a stored record
	event, err := stor.NewAnalyticsEvent(payload)
	if err != nil {
		log.Errorf("Error storing analytics event: %v", err)
		a.Metrics.IncrementReceived(metrics.OutcomeStoreError)
		render.Render(w, r, NewTrackResponse(err))
		return
	}

	// single insert, no retry
	start := time.Now()
	err = a.Store.Event().Create(event)
	a.Metrics.ObserveStore(start)
	if err != nil {
		log.Errorf("Error storing analytics event: %v", err)
		a.Metrics.IncrementReceived(metrics.OutcomeStoreError)
		render.Render(w, r, NewTrackResponse(err))
		return
	}

	log.Debugf("Analytics event stored: %s %s", event.EventName, event.UUID)
	a.Metrics.IncrementReceived(metrics.OutcomeStored)
	render.Render(w, r, NewTrackResponse(nil))
}

// readPayload decodes the request body as a json object.
func readPayload(w http.ResponseWriter, r *http.Request, maxBytes int64) (stor.Payload, error) {
	body := r.Body
	if maxBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	var payload stor.Payload
	if err = json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	// a literal null is valid json but not an event
	if payload == nil {
		return nil, errors.New("the payload is not a json object")
	}
	return payload, nil
}

// --
// Response payload of the tracking endpoint.
// --

// TrackResponse is the response payload of the tracking endpoint.
type TrackResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// NewTrackResponse creates a rendered tracking result; a nil error indicates a success.
func NewTrackResponse(err error) *TrackResponse {
	if err != nil {
		return &TrackResponse{Success: false, Error: err.Error()}
	}
	return &TrackResponse{Success: true}
}

// Render processes responses before marshalling.
func (t *TrackResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, http.StatusOK)
	return nil
}
