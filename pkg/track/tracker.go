// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package track

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultTimeout     = 15 * time.Second
	DefaultMaxInFlight = 4
)

// Tracker emits analytics events to a set of sinks.
// Emission never blocks the caller and never reports transport failures.
type Tracker struct {
	mu         sync.Mutex
	enabled    bool
	env        Environment
	stepStarts map[int]time.Time

	sinks        []Sink
	logger       log.FieldLogger
	now          func() time.Time
	sessionStart time.Time
	timeout      time.Duration

	sem chan struct{}

	// dispatches in progress; idle is closed each time pending drops to zero
	flushMu sync.Mutex
	pending int
	idle    chan struct{}
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithEnvironment sets the runtime context read on each emission.
func WithEnvironment(env Environment) Option {
	return func(t *Tracker) { t.env = env }
}

// WithSink registers a sink. Sinks are called in registration order, each one independently.
func WithSink(s Sink) Option {
	return func(t *Tracker) {
		if s != nil {
			t.sinks = append(t.sinks, s)
		}
	}
}

// WithLogger sets the logger used for development echo and transport failures.
func WithLogger(l log.FieldLogger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithTimeout sets the deadline of a single sink dispatch.
func WithTimeout(d time.Duration) Option {
	return func(t *Tracker) { t.timeout = d }
}

// WithMaxInFlight limits the number of concurrent sink dispatches.
func WithMaxInFlight(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.sem = make(chan struct{}, n)
		}
	}
}

// WithDisabled creates a tracker which starts disabled.
func WithDisabled() Option {
	return func(t *Tracker) { t.enabled = false }
}

// New creates a tracker. The session starts now.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		enabled:    true,
		env:        StaticEnvironment{},
		stepStarts: make(map[int]time.Time),
		logger:     log.StandardLogger(),
		now:        time.Now,
		timeout:    DefaultTimeout,
		sem:        make(chan struct{}, DefaultMaxInFlight),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.sessionStart = t.now()
	return t
}

func (t *Tracker) Enable() {
	t.mu.Lock()
	t.enabled = true
	t.mu.Unlock()
}

func (t *Tracker) Disable() {
	t.mu.Lock()
	t.enabled = false
	t.mu.Unlock()
}

func (t *Tracker) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// SetEnvironment replaces the runtime context, e.g. after a navigation.
func (t *Tracker) SetEnvironment(env Environment) {
	t.mu.Lock()
	t.env = env
	t.mu.Unlock()
}

func (t *Tracker) environment() Environment {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.env
}

// Track emits an event. The properties map is copied, never modified.
func (t *Tracker) Track(name string, props Properties) {
	if !t.Enabled() {
		return
	}
	now := t.now()
	env := t.environment()
	session := int(now.Sub(t.sessionStart) / time.Second)
	e := newEvent(name, props, now, session, env)

	if isDevelopmentHost(e.PageURL) {
		t.logger.WithField("event", e.Name).Debugf("Analytics event: %v", e.Payload())
	}

	for _, s := range t.sinks {
		t.dispatch(s, e)
	}
}

// dispatch emits the event to a sink in the background.
func (t *Tracker) dispatch(s Sink, e *Event) {
	t.begin()
	go func() {
		defer t.end()
		t.sem <- struct{}{}
		defer func() { <-t.sem }()

		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		if err := s.Emit(ctx, e); err != nil {
			t.logger.WithFields(log.Fields{"event": e.Name, "sink": s.Name()}).Errorf("Analytics tracking error: %v", err)
		}
	}()
}

func (t *Tracker) begin() {
	t.flushMu.Lock()
	if t.pending == 0 {
		t.idle = make(chan struct{})
	}
	t.pending++
	t.flushMu.Unlock()
}

func (t *Tracker) end() {
	t.flushMu.Lock()
	t.pending--
	if t.pending == 0 {
		close(t.idle)
	}
	t.flushMu.Unlock()
}

// Flush waits until no dispatch is in progress, or for the context to be done.
// It may be called while other goroutines keep tracking; it then returns
// the first time all dispatches have completed.
func (t *Tracker) Flush(ctx context.Context) error {
	t.flushMu.Lock()
	if t.pending == 0 {
		t.flushMu.Unlock()
		return nil
	}
	idle := t.idle
	t.flushMu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tracker) startStep(step int) {
	t.mu.Lock()
	t.stepStarts[step] = t.now()
	t.mu.Unlock()
}

// stepElapsed returns the whole seconds since the start of a step, 0 if the step never started.
func (t *Tracker) stepElapsed(step int) int {
	t.mu.Lock()
	start, ok := t.stepStarts[step]
	t.mu.Unlock()
	if !ok {
		return 0
	}
	return int(t.now().Sub(start) / time.Second)
}
