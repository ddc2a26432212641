// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

// The analytics server stores the events emitted by Claim Navigator pages.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/go-chi/chi/v5"

	"github.com/claimnavigator/cn-analytics/pkg/conf"
	"github.com/claimnavigator/cn-analytics/pkg/metrics"
	"github.com/claimnavigator/cn-analytics/pkg/stor"
)

// Server context
type Server struct {
	*conf.Config
	stor.Store
	Metrics *metrics.Metrics
	Router  *chi.Mux
}

func main() {

	s := Server{}

	// Initialize the configuration from a config file or/and environment variables
	configFile := os.Getenv("CNSERVER_CONFIG")
	c, err := conf.Init(configFile)
	if err != nil {
		log.Println("Configuration failed: " + err.Error())
		os.Exit(1)
	}
	s.Config = c

	log.SetFormatter(&log.TextFormatter{})
	setLogLevel(c.LogLevel)

	s.initialize()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Apply log level changes without restart
	go func() {
		err := conf.Watch(ctx, configFile, func(nc *conf.Config) {
			setLogLevel(nc.LogLevel)
		})
		if err != nil {
			log.Errorf("Config watch stopped: %v", err)
		}
	}()

	// Graceful shutdown
	server := &http.Server{
		Addr:              ":" + strconv.Itoa(c.Port),
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// System signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Println("Server starting on port " + strconv.Itoa(c.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutdown requested, initiating graceful shutdown...")
	cancel()
	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()
	if err := server.Shutdown(sctx); err != nil {
		log.Fatalf("Error during shutdown: %v", err)
	}
	log.Println("Server halted.")
}

// initialize sets the database, metrics and routes
func (s *Server) initialize() {
	var err error

	// Init database
	s.Store, err = stor.Init(s.Config.Dsn)
	if err != nil {
		log.Println("Database setup failed: " + err.Error())
		os.Exit(1)
	}

	s.Metrics = metrics.New()

	// Init routes
	s.Router = s.setRoutes()
}

func setLogLevel(l string) {
	level, err := log.ParseLevel(l)
	if err != nil {
		log.Println("Invalid log level specified, defaulting to info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
