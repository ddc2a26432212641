// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package stor

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Payload is a decoded analytics event, as sent by an emitter.
type Payload map[string]any

// AnalyticsEvent data model
// events are never updated nor soft deleted, so the full gorm model is not included
type AnalyticsEvent struct {
	ID              uint      `json:"-" gorm:"primaryKey"`
	UUID            string    `json:"uuid" validate:"omitempty,uuid" gorm:"type:varchar(100);uniqueIndex"`
	EventName       string    `json:"event_name" validate:"required" gorm:"type:varchar(255);index"`
	EventProperties Payload   `json:"event_properties" gorm:"type:text;serializer:json"`
	UserID          *string   `json:"user_id" gorm:"type:varchar(255);index"`
	ClaimID         *string   `json:"claim_id" gorm:"type:varchar(255);index"`
	CreatedAt       time.Time `json:"created_at" gorm:"index"`
}

// NewAnalyticsEvent maps a received payload to a storable event.
// The full payload is kept as event properties; user_id and claim_id
// are extracted when present, created_at is the emission timestamp.
func NewAnalyticsEvent(p Payload) (*AnalyticsEvent, error) {
	e := &AnalyticsEvent{
		UUID:            uuid.New().String(),
		EventName:       stringValue(p["event"]),
		EventProperties: p,
		UserID:          optionalValue(p["user_id"]),
		ClaimID:         optionalValue(p["claim_id"]),
	}

	switch ts := p["timestamp"].(type) {
	case nil:
		e.CreatedAt = time.Now().UTC()
	case string:
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", ts, err)
		}
		e.CreatedAt = t.UTC()
	default:
		return nil, fmt.Errorf("invalid timestamp type %T", ts)
	}
	return e, nil
}

// Validate checks required fields and values
func (e *AnalyticsEvent) Validate() error {

	validate := validator.New()
	return validate.Struct(e)
}

// stringValue returns a string representation of a scalar json value.
func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// optionalValue returns nil for absent or falsy values (null, "", 0, false).
func optionalValue(v any) *string {
	switch val := v.(type) {
	case nil:
		return nil
	case bool:
		if !val {
			return nil
		}
	case float64:
		if val == 0 {
			return nil
		}
	case string:
		if val == "" {
			return nil
		}
	}
	s := stringValue(v)
	return &s
}

func (s eventStore) List(pageNum, pageSize int) (*[]AnalyticsEvent, error) {
	events := []AnalyticsEvent{}
	// pageNum starts at 1
	// result sorted to assure the same order for each request
	return &events, s.db.Offset((pageNum - 1) * pageSize).Limit(pageSize).Order("id DESC").Find(&events).Error
}

func (s eventStore) FindByName(eventName string) (*[]AnalyticsEvent, error) {
	events := []AnalyticsEvent{}
	return &events, s.db.Limit(1000).Order("id DESC").Find(&events, "event_name= ?", eventName).Error
}

func (s eventStore) FindByClaim(claimID string) (*[]AnalyticsEvent, error) {
	events := []AnalyticsEvent{}
	// chronological order, to follow the progression of a claim
	return &events, s.db.Limit(1000).Order("created_at ASC").Find(&events, "claim_id= ?", claimID).Error
}

// ErrInvalidDate is returned by FindByDate for a period which is neither a month nor a day.
var ErrInvalidDate = errors.New("invalid date format: use YYYY-MM for month or YYYY-MM-DD for specific date")

// FindByDate finds events by emission date or month
// dateStr can be:
// - a specific date: "2024-02-15" (YYYY-MM-DD)
// - a month: "2024-02" (YYYY-MM)
func (s eventStore) FindByDate(dateStr string) (*[]AnalyticsEvent, error) {
	events := []AnalyticsEvent{}

	var start, end time.Time
	var err error
	switch len(dateStr) {
	case 7: // YYYY-MM
		if start, err = time.Parse("2006-01", dateStr); err != nil {
			return &events, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		end = start.AddDate(0, 1, 0)
	case 10: // YYYY-MM-DD
		if start, err = time.Parse("2006-01-02", dateStr); err != nil {
			return &events, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		end = start.AddDate(0, 0, 1)
	default:
		return &events, ErrInvalidDate
	}

	return &events, s.db.Limit(10000).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").Find(&events).Error
}

func (s eventStore) Count() (int64, error) {
	var count int64
	return count, s.db.Model(AnalyticsEvent{}).Count(&count).Error
}

func (s eventStore) Get(uuid string) (*AnalyticsEvent, error) {
	var event AnalyticsEvent
	return &event, s.db.Where("uuid = ?", uuid).First(&event).Error
}

func (s eventStore) Create(newEvent *AnalyticsEvent) error {
	if err := newEvent.Validate(); err != nil {
		return err
	}
	return s.db.Create(newEvent).Error
}
