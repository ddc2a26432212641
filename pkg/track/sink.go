// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package track

import (
	"context"
	"sync"
)

// Sink is a destination of analytics events.
// The ingestion sink transmits the enriched payload; third-party analytics sinks
// only forward the event name and the caller properties.
// Emit is called from a background goroutine and must honour the context deadline.
type Sink interface {
	Name() string
	Emit(ctx context.Context, e *Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc struct {
	SinkName string
	Fn       func(ctx context.Context, e *Event) error
}

func (s SinkFunc) Name() string { return s.SinkName }

func (s SinkFunc) Emit(ctx context.Context, e *Event) error { return s.Fn(ctx, e) }

// MemorySink keeps emitted events in memory, for tests and local development.
type MemorySink struct {
	mu     sync.Mutex
	events []*Event
}

func (m *MemorySink) Name() string { return "memory" }

func (m *MemorySink) Emit(ctx context.Context, e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

// Events returns the events emitted so far.
func (m *MemorySink) Events() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Event(nil), m.events...)
}
