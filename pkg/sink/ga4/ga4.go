// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

// Package ga4 forwards analytics events to Google Analytics 4,
// using the Measurement Protocol.
package ga4

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

const DefaultEndpoint = "https://www.google-analytics.com/mp/collect"

// Config identifies the GA4 data stream.
type Config struct {
	MeasurementID string `yaml:"measurement_id" envconfig:"measurement_id"`
	APISecret     string `yaml:"api_secret" envconfig:"api_secret"`
	Endpoint      string `yaml:"endpoint" envconfig:"endpoint"`
}

// Sink sends the event name and the caller properties to GA4.
type Sink struct {
	cfg      Config
	clientID string
	client   *http.Client
}

// New creates a GA4 sink. A random client id identifies the emitting session.
func New(cfg Config) (*Sink, error) {
	if cfg.MeasurementID == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("ga4: measurement id and api secret are required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &Sink{
		cfg:      cfg,
		clientID: uuid.New().String(),
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

func (s *Sink) Name() string { return "ga4" }

type measurement struct {
	ClientID        string  `json:"client_id"`
	TimestampMicros int64   `json:"timestamp_micros"`
	Events          []event `json:"events"`
}

type event struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

// Emit posts a measurement. The Measurement Protocol answers 2xx even on invalid events.
func (s *Sink) Emit(ctx context.Context, e *track.Event) error {
	params := map[string]any(e.Properties)
	if params == nil {
		params = map[string]any{}
	}
	m := measurement{
		ClientID:        s.clientID,
		TimestampMicros: e.Timestamp.UnixMicro(),
		Events:          []event{{Name: e.Name, Params: params}},
	}
	body, err := json.Marshal(m)
	if err != nil {
		return err
	}

	u, err := url.Parse(s.cfg.Endpoint)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("measurement_id", s.cfg.MeasurementID)
	q.Set("api_secret", s.cfg.APISecret)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "POST", u.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ga4: unexpected status %s", resp.Status)
	}
	return nil
}
