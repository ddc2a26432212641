// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

// Package natsink publishes analytics events on NATS subjects.
package natsink

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/claimnavigator/cn-analytics/pkg/track"
	"github.com/nats-io/nats.go"
)

const DefaultPrefix = "analytics"

type Config struct {
	URL    string `yaml:"url" envconfig:"url"`
	Prefix string `yaml:"prefix" envconfig:"prefix"`
}

type publisher interface {
	Publish(subj string, data []byte) error
}

// Sink publishes the wire payload of each event to <prefix>.<event name>.
type Sink struct {
	conn   *nats.Conn
	pub    publisher
	prefix string
}

// Connect opens a NATS connection and creates a sink on it.
func Connect(cfg Config) (*Sink, error) {
	conn, err := nats.Connect(cfg.URL, nats.Name("cn-analytics"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	s := newSink(conn, cfg.Prefix)
	s.conn = conn
	return s, nil
}

func newSink(pub publisher, prefix string) *Sink {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Sink{pub: pub, prefix: prefix}
}

func (s *Sink) Name() string { return "nats" }

// Subject returns the subject of an event.
func (s *Sink) Subject(eventName string) string {
	token := strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, eventName)
	if token == "" {
		token = "_"
	}
	return s.prefix + "." + token
}

func (s *Sink) Emit(ctx context.Context, e *track.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := s.pub.Publish(s.Subject(e.Name), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close drains the connection, so that buffered messages are sent.
func (s *Sink) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Drain()
}
