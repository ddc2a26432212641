// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package main

import (
	"github.com/claimnavigator/cn-analytics/pkg/sink/ga4"
	"github.com/claimnavigator/cn-analytics/pkg/sink/kafkasink"
	"github.com/claimnavigator/cn-analytics/pkg/sink/metapixel"
	"github.com/claimnavigator/cn-analytics/pkg/sink/natsink"
	"github.com/claimnavigator/cn-analytics/pkg/track"
	log "github.com/sirupsen/logrus"
)

// buildSinks creates a sink for each configured destination.
// The returned function releases broker connections.
func buildSinks(c Config) ([]track.Sink, func(), error) {
	var sinks []track.Sink
	var closers []func()
	closeAll := func() {
		for _, fn := range closers {
			fn()
		}
	}

	if c.IngestURL != "" {
		sinks = append(sinks, track.NewIngestSink(c.IngestURL))
	}
	if c.GA4.MeasurementID != "" {
		s, err := ga4.New(c.GA4)
		if err != nil {
			return nil, closeAll, err
		}
		sinks = append(sinks, s)
	}
	if c.Meta.PixelID != "" {
		s, err := metapixel.New(c.Meta)
		if err != nil {
			return nil, closeAll, err
		}
		sinks = append(sinks, s)
	}
	if c.NATS.URL != "" {
		s, err := natsink.Connect(c.NATS)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		sinks = append(sinks, s)
		closers = append(closers, func() {
			if err := s.Close(); err != nil {
				log.Errorf("NATS drain failed: %v", err)
			}
		})
	}
	if c.Kafka.Brokers != "" {
		s, err := kafkasink.New(c.Kafka)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		sinks = append(sinks, s)
		closers = append(closers, s.Close)
	}
	return sinks, closeAll, nil
}
