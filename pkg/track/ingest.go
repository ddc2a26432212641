// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package track

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultIngestPath is the path of the ingestion endpoint, relative to the site root.
const DefaultIngestPath = "/track-analytics"

// IngestSink posts the enriched event to the ingestion endpoint.
type IngestSink struct {
	URL    string
	Client *http.Client
}

// NewIngestSink creates a sink posting events to url.
func NewIngestSink(url string) *IngestSink {
	return &IngestSink{
		URL: url,
		Client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (s *IngestSink) Name() string { return "ingest" }

type ingestResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Emit posts the wire payload. A non-2xx status or a response with success false is an error.
func (s *IngestSink) Emit(ctx context.Context, e *Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", s.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ingestion endpoint returned %s", resp.Status)
	}
	var ir ingestResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return fmt.Errorf("unable to decode the ingestion response: %w", err)
	}
	if !ir.Success {
		if ir.Error == "" {
			return errors.New("event rejected by the ingestion endpoint")
		}
		return fmt.Errorf("event rejected by the ingestion endpoint: %s", ir.Error)
	}
	return nil
}
