// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

// Package metapixel forwards analytics events to a Meta pixel,
// as custom events of the Conversions API.
package metapixel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/claimnavigator/cn-analytics/pkg/track"
	"github.com/google/uuid"
)

const DefaultEndpoint = "https://graph.facebook.com/v19.0"

type Config struct {
	PixelID     string `yaml:"pixel_id" envconfig:"pixel_id"`
	AccessToken string `yaml:"access_token" envconfig:"access_token"`
	Endpoint    string `yaml:"endpoint" envconfig:"endpoint"`
	TestCode    string `yaml:"test_event_code" envconfig:"test_event_code"`
}

// Sink sends the event name and the caller properties to the Conversions API.
type Sink struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) (*Sink, error) {
	if cfg.PixelID == "" || cfg.AccessToken == "" {
		return nil, fmt.Errorf("metapixel: pixel id and access token are required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &Sink{
		cfg: cfg,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

func (s *Sink) Name() string { return "metapixel" }

type serverEvent struct {
	EventName      string         `json:"event_name"`
	EventTime      int64          `json:"event_time"`
	EventID        string         `json:"event_id"`
	ActionSource   string         `json:"action_source"`
	EventSourceURL string         `json:"event_source_url,omitempty"`
	UserData       userData       `json:"user_data"`
	CustomData     map[string]any `json:"custom_data"`
}

type userData struct {
	ClientUserAgent string `json:"client_user_agent,omitempty"`
}

type eventsRequest struct {
	Data          []serverEvent `json:"data"`
	TestEventCode string        `json:"test_event_code,omitempty"`
}

type eventsResponse struct {
	EventsReceived int `json:"events_received"`
	Error          *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Emit posts one custom event.
func (s *Sink) Emit(ctx context.Context, e *track.Event) error {
	custom := map[string]any(e.Properties)
	if custom == nil {
		custom = map[string]any{}
	}
	r := eventsRequest{
		Data: []serverEvent{{
			EventName:      e.Name,
			EventTime:      e.Timestamp.Unix(),
			EventID:        uuid.New().String(),
			ActionSource:   "website",
			EventSourceURL: e.PageURL,
			UserData:       userData{ClientUserAgent: e.UserAgent},
			CustomData:     custom,
		}},
		TestEventCode: s.cfg.TestCode,
	}
	body, err := json.Marshal(r)
	if err != nil {
		return err
	}

	eventsURL, err := url.JoinPath(s.cfg.Endpoint, s.cfg.PixelID, "events")
	if err != nil {
		return err
	}
	eventsURL += "?access_token=" + url.QueryEscape(s.cfg.AccessToken)

	req, err := http.NewRequestWithContext(ctx, "POST", eventsURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var er eventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("metapixel: unable to decode the response (%s): %w", resp.Status, err)
	}
	if er.Error != nil {
		return fmt.Errorf("metapixel: %s", er.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("metapixel: unexpected status %s", resp.Status)
	}
	return nil
}
