// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package ga4

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claimnavigator/cn-analytics/pkg/track"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{MeasurementID: "G-TEST"})
	assert.Error(t, err)
}

func TestEmit(t *testing.T) {
	var m measurement
	var query map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s, err := New(Config{MeasurementID: "G-TEST", APISecret: "secret", Endpoint: srv.URL + "/mp/collect"})
	require.NoError(t, err)

	e := &track.Event{
		Name:       "claim_submitted",
		Properties: track.Properties{"claim_id": "CLM-1", "submission_method": "portal"},
		Timestamp:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PageURL:    "https://claimnavigator.app/",
	}
	require.NoError(t, s.Emit(context.Background(), e))

	assert.Equal(t, []string{"G-TEST"}, query["measurement_id"])
	assert.Equal(t, []string{"secret"}, query["api_secret"])
	assert.NotEmpty(t, m.ClientID)
	require.Len(t, m.Events, 1)
	assert.Equal(t, "claim_submitted", m.Events[0].Name)
	// only the caller properties are forwarded
	assert.Equal(t, map[string]any{"claim_id": "CLM-1", "submission_method": "portal"}, m.Events[0].Params)
}

func TestEmitError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s, err := New(Config{MeasurementID: "G-TEST", APISecret: "secret", Endpoint: srv.URL})
	require.NoError(t, err)
	assert.Error(t, s.Emit(context.Background(), &track.Event{Name: "page_view"}))
}
