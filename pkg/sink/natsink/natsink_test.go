// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package natsink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/claimnavigator/cn-analytics/pkg/track"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	messages []message
	err      error
}

func (f *fakePublisher) Publish(subj string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message{subj, data})
	return nil
}

func TestSubject(t *testing.T) {
	s := newSink(&fakePublisher{}, "")
	assert.Equal(t, "analytics.page_view", s.Subject("page_view"))
	assert.Equal(t, "analytics.a_b_c", s.Subject("a.b c"))
	assert.Equal(t, "analytics._", s.Subject(""))

	s = newSink(&fakePublisher{}, "cn.events")
	assert.Equal(t, "cn.events.claim_closed", s.Subject("claim_closed"))
}

func TestEmit(t *testing.T) {
	pub := &fakePublisher{}
	s := newSink(pub, "cn")

	e := &track.Event{
		Name:       "tool_launched",
		Properties: track.Properties{"tool_id": "t1"},
		Timestamp:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Emit(context.Background(), e))
	require.Len(t, pub.messages, 1)
	assert.Equal(t, "cn.tool_launched", pub.messages[0].subject)

	var p map[string]any
	require.NoError(t, json.Unmarshal(pub.messages[0].data, &p))
	assert.Equal(t, "tool_launched", p["event"])
	assert.Equal(t, "t1", p["tool_id"])
	assert.Equal(t, "2024-01-01T00:00:00.000Z", p["timestamp"])
}

func TestEmitError(t *testing.T) {
	s := newSink(&fakePublisher{err: errors.New("nats: connection closed")}, "")
	assert.Error(t, s.Emit(context.Background(), &track.Event{Name: "page_view"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Emit(ctx, &track.Event{Name: "page_view"}), context.Canceled)
	assert.NoError(t, s.Close())
}
