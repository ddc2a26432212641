// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package track

import (
	"encoding/json"
	"maps"
	"time"
)

// Properties is a flat bag of event properties.
// Values are expected to be strings, numbers or nil.
type Properties map[string]any

// Wire names of the event name and enrichment fields.
const (
	FieldEvent           = "event"
	FieldTimestamp       = "timestamp"
	FieldSessionDuration = "session_duration_seconds"
	FieldPageURL         = "page_url"
	FieldUserAgent       = "user_agent"
)

// TimestampFormat is ISO-8601 in UTC with milliseconds, e.g. 2024-01-01T00:00:00.000Z
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Event is an immutable analytics event, enriched with session and context metadata.
type Event struct {
	Name            string
	Properties      Properties // copy of the caller properties, never enriched
	Timestamp       time.Time
	SessionDuration int // whole seconds since the tracker creation
	PageURL         string
	UserAgent       string
}

// newEvent copies the caller properties, so that later changes on either side are not shared.
func newEvent(name string, props Properties, ts time.Time, session int, env Environment) *Event {
	own := maps.Clone(props)
	if own == nil {
		own = Properties{}
	}
	return &Event{
		Name:            name,
		Properties:      own,
		Timestamp:       ts.UTC(),
		SessionDuration: session,
		PageURL:         env.PageURL(),
		UserAgent:       env.UserAgent(),
	}
}

// Payload returns the flat wire representation of the event:
// the caller properties at the top level, plus the event name and the enrichment fields.
// The event name and enrichment fields win over caller properties with the same key,
// so a caller "event" property never replaces the tracked name and the payload
// always carries the name passed to Track. Sinks needing the caller value read Properties.
func (e *Event) Payload() map[string]any {
	p := make(map[string]any, len(e.Properties)+5)
	for k, v := range e.Properties {
		p[k] = v
	}
	p[FieldEvent] = e.Name
	p[FieldTimestamp] = e.Timestamp.Format(TimestampFormat)
	p[FieldSessionDuration] = e.SessionDuration
	p[FieldPageURL] = e.PageURL
	p[FieldUserAgent] = e.UserAgent
	return p
}

// MarshalJSON encodes the wire payload.
func (e *Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Payload())
}
