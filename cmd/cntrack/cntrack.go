// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

// cntrack emits an analytics event from the command line

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"

	"github.com/claimnavigator/cn-analytics/pkg/sink/ga4"
	"github.com/claimnavigator/cn-analytics/pkg/sink/kafkasink"
	"github.com/claimnavigator/cn-analytics/pkg/sink/metapixel"
	"github.com/claimnavigator/cn-analytics/pkg/sink/natsink"
	"github.com/claimnavigator/cn-analytics/pkg/track"
)

// Tracker configuration
type Config struct {
	IngestURL string           `envconfig:"ingest_url"`
	PageURL   string           `envconfig:"page_url"`
	PageTitle string           `split_words:"true"`
	UserAgent string           `split_words:"true"`
	Timeout   time.Duration    `default:"15s"`
	Verbose   bool             `default:"false"`
	GA4       ga4.Config       `envconfig:"ga4"`
	Meta      metapixel.Config `envconfig:"meta"`
	NATS      natsink.Config   `envconfig:"nats"`
	Kafka     kafkasink.Config `envconfig:"kafka"`
}

func init() {
	// Output to stdout instead of the default stderr
	log.SetOutput(os.Stdout)

	log.SetFormatter(&log.TextFormatter{
		DisableTimestamp: true,
	})
}

func usage() {
	fmt.Println("Usage: cntrack -event name [-props json] [-page url] [-title title] [-verbose]")
	flag.PrintDefaults()
}

func main() {

	// parse the command line
	event := flag.String("event", "", "event name, e.g. page_view or claim_submitted")
	props := flag.String("props", "", "event properties, as a flat json object")
	page := flag.String("page", "", "url of the emitting page")
	title := flag.String("title", "", "title of the emitting page")
	verbose := flag.Bool("verbose", false, "if set, display info messages; if not set, display only warnings and errors.")
	help := flag.Bool("help", false, "shows information")

	flag.Parse()

	if *help || *event == "" {
		usage()
		os.Exit(1)
	}

	// process environment variables
	// CNTRACK_INGEST_URL
	// CNTRACK_PAGE_URL, CNTRACK_PAGE_TITLE, CNTRACK_USER_AGENT
	// CNTRACK_TIMEOUT
	// CNTRACK_GA4_MEASUREMENT_ID, CNTRACK_GA4_API_SECRET
	// CNTRACK_META_PIXEL_ID, CNTRACK_META_ACCESS_TOKEN
	// CNTRACK_NATS_URL, CNTRACK_NATS_PREFIX
	// CNTRACK_KAFKA_BROKERS, CNTRACK_KAFKA_TOPIC
	var c Config
	err := envconfig.Process("cntrack", &c)
	if err != nil {
		log.Errorln("Configuration failed: " + err.Error())
		os.Exit(1)
	}

	// command line flags win over environment variables
	if *page != "" {
		c.PageURL = *page
	}
	if *title != "" {
		c.PageTitle = *title
	}
	if *verbose {
		c.Verbose = true
	}

	// the verbose flag acts on the info level
	if !c.Verbose {
		log.SetLevel(log.WarnLevel)
	} else {
		log.SetLevel(log.DebugLevel)
	}

	properties, err := parseProperties(*props)
	if err != nil {
		log.Errorf("Invalid properties: %v", err)
		os.Exit(1)
	}

	sinks, closeSinks, err := buildSinks(c)
	if err != nil {
		log.Errorf("Sink setup failed: %v", err)
		os.Exit(1)
	}
	defer closeSinks()
	if len(sinks) == 0 {
		log.Warnln("No sink configured, the event is only logged")
	}

	opts := []track.Option{
		track.WithEnvironment(track.StaticEnvironment{URL: c.PageURL, Title: c.PageTitle, Agent: c.UserAgent}),
		track.WithTimeout(c.Timeout),
	}
	for _, s := range sinks {
		opts = append(opts, track.WithSink(s))
		log.Infof("Sink enabled: %s", s.Name())
	}
	tracker := track.New(opts...)

	emit(tracker, *event, properties)

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout+time.Second)
	defer cancel()
	if err := tracker.Flush(ctx); err != nil {
		log.Errorf("Pending dispatches abandoned: %v", err)
	}
	log.Infof("Event %s emitted", *event)
}

// emit uses the page view helper when no property is given, a generic event otherwise.
func emit(t *track.Tracker, event string, props track.Properties) {
	if event == track.EventPageView && len(props) == 0 {
		t.PageView()
		return
	}
	t.Track(event, props)
}

// parseProperties decodes a flat json object, empty when s is empty.
func parseProperties(s string) (track.Properties, error) {
	props := track.Properties{}
	if s == "" {
		return props, nil
	}
	if err := json.Unmarshal([]byte(s), &props); err != nil {
		return nil, err
	}
	if props == nil {
		return nil, fmt.Errorf("the properties must be a json object")
	}
	return props, nil
}
