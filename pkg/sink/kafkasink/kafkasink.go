// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

// Package kafkasink produces analytics events to a Kafka topic.
package kafkasink

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/claimnavigator/cn-analytics/pkg/track"
	"github.com/twmb/franz-go/pkg/kgo"
)

const DefaultTopic = "cn-analytics-events"

type Config struct {
	Brokers string `yaml:"brokers" envconfig:"brokers"` // comma separated
	Topic   string `yaml:"topic" envconfig:"topic"`
}

type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Sink produces the wire payload of each event, keyed by event name.
type Sink struct {
	client producer
	topic  string
}

// New creates a Kafka client on the configured brokers.
func New(cfg Config) (*Sink, error) {
	brokers := strings.Split(cfg.Brokers, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}
	if len(brokers) == 0 || brokers[0] == "" {
		return nil, fmt.Errorf("kafka: at least one broker is required")
	}
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(10*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: failed to create the client: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

func (s *Sink) Name() string { return "kafka" }

func (s *Sink) Emit(ctx context.Context, e *track.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	r := &kgo.Record{
		Topic:     s.topic,
		Key:       []byte(e.Name),
		Value:     data,
		Timestamp: e.Timestamp,
	}
	if err := s.client.ProduceSync(ctx, r).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce event: %w", err)
	}
	return nil
}

func (s *Sink) Close() {
	s.client.Close()
}
