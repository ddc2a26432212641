// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package track

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() *Event {
	ts := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	return newEvent("step_completed", Properties{"claim_id": "CLM-778", "step_number": 3}, ts, 120, claimEnv)
}

func TestIngestSink(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	s := NewIngestSink(srv.URL + DefaultIngestPath)
	require.NoError(t, s.Emit(context.Background(), testEvent()))

	assert.Equal(t, "step_completed", received["event"])
	assert.Equal(t, "CLM-778", received["claim_id"])
	assert.Equal(t, float64(3), received["step_number"])
	assert.Equal(t, "2024-03-02T10:00:00.000Z", received["timestamp"])
	assert.Equal(t, float64(120), received["session_duration_seconds"])
	assert.Equal(t, claimEnv.URL, received["page_url"])
	assert.Equal(t, claimEnv.Agent, received["user_agent"])
}

func TestIngestSinkRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"database is unavailable"}`))
	}))
	defer srv.Close()

	err := NewIngestSink(srv.URL).Emit(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is unavailable")
}

func TestIngestSinkStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"error":"Method not allowed"}`))
	}))
	defer srv.Close()

	err := NewIngestSink(srv.URL).Emit(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "405")
}

func TestIngestThroughTracker(t *testing.T) {
	hits := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p map[string]any
		json.NewDecoder(r.Body).Decode(&p)
		hits <- p
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	tr := New(WithEnvironment(claimEnv), WithSink(NewIngestSink(srv.URL)))
	tr.ClaimSubmitted("CLM-5", "mail")
	flush(t, tr)

	select {
	case p := <-hits:
		assert.Equal(t, "claim_submitted", p["event"])
		assert.Equal(t, "mail", p["submission_method"])
	default:
		t.Fatal("The ingestion endpoint was not called")
	}
}
