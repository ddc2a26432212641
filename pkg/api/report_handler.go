// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package api

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/claimnavigator/cn-analytics/pkg/stor"
	"github.com/go-chi/render"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ReportEvents generates a CSV report of the events emitted during a specific month or date
func (a *APICtrl) ReportEvents(w http.ResponseWriter, r *http.Request) {
	log.Debug("Report Events, monthly or daily")

	var period string
	month := r.URL.Query().Get("month")
	date := r.URL.Query().Get("date")
	switch {
	case month != "" && date != "":
		render.Render(w, r, ErrInvalidRequest(errors.New("cannot specify both month and date parameters")))
		return
	case month != "":
		period = month
	case date != "":
		period = date
	default:
		render.Render(w, r, ErrInvalidRequest(errors.New("missing required parameter: either month (YYYY-MM) or date (YYYY-MM-DD)")))
		return
	}

	events, err := a.Store.Event().FindByDate(period)
	if errors.Is(err, stor.ErrInvalidDate) {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err != nil {
		render.Render(w, r, ErrServer(err))
		return
	}

	// Set CSV headers
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"events-report-%s.csv\"", url.QueryEscape(period)))

	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	header := []string{"CreatedAt", "Event", "Label", "ClaimID", "UserID", "SessionDurationSeconds", "PageURL", "Properties"}
	if err := csvWriter.Write(header); err != nil {
		log.Errorf("Error writing CSV header: %v", err)
		return
	}

	for _, event := range *events {
		props, _ := json.Marshal(event.EventProperties)
		record := []string{
			event.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			event.EventName,
			EventLabel(event.EventName),
			derefString(event.ClaimID),
			derefString(event.UserID),
			propertyString(event.EventProperties, "session_duration_seconds"),
			propertyString(event.EventProperties, "page_url"),
			string(props),
		}
		if err := csvWriter.Write(record); err != nil {
			log.Errorf("Error writing CSV record: %v", err)
			return
		}
	}
}

// EventLabel returns a human readable label for an event name, e.g. "Step Completed".
func EventLabel(eventName string) string {
	// a Caser is stateful, not shared between requests
	c := cases.Title(language.English)
	return c.String(strings.ReplaceAll(eventName, "_", " "))
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// propertyString formats a scalar property, empty if absent.
func propertyString(p stor.Payload, key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if f, isFloat := v.(float64); isFloat {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
