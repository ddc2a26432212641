package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/claimnavigator/cn-analytics/pkg/metrics"
	"github.com/claimnavigator/cn-analytics/pkg/stor"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// ---
// Track utilities
// ---

// failingStore is a store whose inserts always fail.
type failingStore struct{}

func (failingStore) Event() stor.EventRepository         { return failingEvents{} }
func (failingStore) Dashboard() stor.DashboardRepository { return nil }

type failingEvents struct {
	stor.EventRepository
}

func (failingEvents) Create(e *stor.AnalyticsEvent) error {
	return errors.New("database is unavailable")
}

func (failingEvents) FindByDate(date string) (*[]stor.AnalyticsEvent, error) {
	if len(date) != 7 && len(date) != 10 {
		return &[]stor.AnalyticsEvent{}, stor.ErrInvalidDate
	}
	return &[]stor.AnalyticsEvent{}, errors.New("database is unavailable")
}

func postEvent(body string) *http.Request {
	req, _ := http.NewRequest("POST", "/track-analytics", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func countByName(t *testing.T, name string) int {
	events, err := s.Store.Event().FindByName(name)
	if err != nil {
		t.Fatalf("Failed to count stored events: %v", err)
	}
	return len(*events)
}

func decodeTrackResponse(t *testing.T, body []byte) TrackResponse {
	var tr TrackResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		t.Fatalf("Failed to decode the response %s: %v", string(body), err)
	}
	return tr
}

// ---
// Track Tests
// ---

func TestTrackEvent(t *testing.T) {

	before := countByName(t, "page_view")

	response := executeRequest(postEvent(`{"event":"page_view","timestamp":"2024-01-01T00:00:00Z"}`))

	if checkResponseCode(t, http.StatusOK, response) {
		if body := strings.TrimSpace(response.Body.String()); body != `{"success":true}` {
			t.Errorf("Expected a success. Got %s", body)
		}
	}
	if after := countByName(t, "page_view"); after != before+1 {
		t.Errorf("Expected exactly one stored record, got %d", after-before)
	}
}

func TestTrackEventFullPayload(t *testing.T) {

	body := `{"event":"step_completed","step_number":3,"step_title":"Gather documents","claim_id":"CLM-778",` +
		`"time_spent_seconds":42,"timestamp":"2024-03-02T10:00:00.000Z","session_duration_seconds":120,` +
		`"page_url":"https://claimnavigator.app/claim/CLM-778","user_agent":"Mozilla/5.0"}`
	response := executeRequest(postEvent(body))
	if !checkResponseCode(t, http.StatusOK, response) {
		return
	}
	if tr := decodeTrackResponse(t, response.Body.Bytes()); !tr.Success {
		t.Fatalf("Expected a success. Got %s", tr.Error)
	}

	events, err := s.Store.Event().FindByClaim("CLM-778")
	if err != nil || len(*events) != 1 {
		t.Fatalf("Expected one event for the claim, got %v (%v)", events, err)
	}
	e := (*events)[0]
	if e.EventName != "step_completed" {
		t.Errorf("Unexpected event name %s", e.EventName)
	}
	if e.UserID != nil {
		t.Errorf("Expected a null user id, got %s", *e.UserID)
	}
	if e.CreatedAt.Format("2006-01-02T15:04:05Z") != "2024-03-02T10:00:00Z" {
		t.Errorf("Expected created_at to be the emission timestamp, got %v", e.CreatedAt)
	}
	if e.EventProperties["step_title"] != "Gather documents" || e.EventProperties["time_spent_seconds"] != float64(42) {
		t.Errorf("The full payload should be stored, got %v", e.EventProperties)
	}
}

func TestTrackMalformedJSON(t *testing.T) {

	cnt, _ := s.Store.Event().Count()

	for _, body := range []string{`not json`, `"not json"`, `null`, `{"event":`, ``} {
		response := executeRequest(postEvent(body))
		if checkResponseCode(t, http.StatusOK, response) {
			tr := decodeTrackResponse(t, response.Body.Bytes())
			if tr.Success || tr.Error == "" {
				t.Errorf("Expected a failure with an error message for %q. Got %s", body, response.Body.String())
			}
		}
	}

	if after, _ := s.Store.Event().Count(); after != cnt {
		t.Errorf("Expected zero stored records, got %d", after-cnt)
	}
}

func TestTrackMissingEventName(t *testing.T) {

	response := executeRequest(postEvent(`{"timestamp":"2024-01-01T00:00:00Z","claim_id":"CLM-1"}`))
	if checkResponseCode(t, http.StatusOK, response) {
		if tr := decodeTrackResponse(t, response.Body.Bytes()); tr.Success {
			t.Error("Expected a failure for an event without name")
		}
	}
}

func TestTrackInvalidTimestamp(t *testing.T) {

	response := executeRequest(postEvent(`{"event":"page_view","timestamp":"not a date"}`))
	if checkResponseCode(t, http.StatusOK, response) {
		if tr := decodeTrackResponse(t, response.Body.Bytes()); tr.Success {
			t.Error("Expected a failure for an invalid timestamp")
		}
	}
}

func TestTrackBodyTooLarge(t *testing.T) {

	body := `{"event":"page_view","filler":"` + strings.Repeat("x", 8192) + `"}`
	response := executeRequest(postEvent(body))
	if checkResponseCode(t, http.StatusOK, response) {
		if tr := decodeTrackResponse(t, response.Body.Bytes()); tr.Success {
			t.Error("Expected a failure for a body over the limit")
		}
	}
}

func TestTrackMethodNotAllowed(t *testing.T) {

	for _, method := range []string{"GET", "PUT", "DELETE"} {
		req, _ := http.NewRequest(method, "/track-analytics", nil)
		response := executeRequest(req)

		if checkResponseCode(t, http.StatusMethodNotAllowed, response) {
			if body := strings.TrimSpace(response.Body.String()); body != `{"error":"Method not allowed"}` {
				t.Errorf("Unexpected body for %s: %s", method, body)
			}
		}
	}
}

func TestTrackStoreFailure(t *testing.T) {

	m := metrics.New()
	a := NewAPICtrl(setConfig(), failingStore{}, m)
	router := setRoutes(a)

	response := executeRequestOn(router, postEvent(`{"event":"page_view","timestamp":"2024-01-01T00:00:00Z"}`))

	if checkResponseCode(t, http.StatusOK, response) {
		tr := decodeTrackResponse(t, response.Body.Bytes())
		if tr.Success {
			t.Error("Expected a failure when the store fails")
		}
		if tr.Error != "database is unavailable" {
			t.Errorf("Expected the storage error message, got %q", tr.Error)
		}
	}
	if v := testutil.ToFloat64(m.EventsReceived.WithLabelValues(metrics.OutcomeStoreError)); v != 1 {
		t.Errorf("Expected one store error in the metrics, got %v", v)
	}
}
