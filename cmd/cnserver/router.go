// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/claimnavigator/cn-analytics/pkg/api"
)

func (s *Server) setRoutes() *chi.Mux {

	// Set api controller dependencies
	a := api.NewAPICtrl(s.Config, s.Store, s.Metrics)

	// Define the router
	r := chi.NewRouter()

	// Recovery middleware
	r.Use(middleware.Recoverer)

	// Heartbeat (excluded from logs)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("The analytics server is running!"))
	})

	// Prometheus scraping (excluded from logs)
	r.Handle("/metrics", s.Metrics.Handler())

	// Group for all other routes
	r.Group(func(r chi.Router) {
		// Logger middleware
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger)

		r.NotFound(notFoundProblemDetail)

		// CORS Configuration, pages of other origins post events
		origins := s.Config.Cors.AllowedOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300, // Maximum value not ignored by any of major browsers
		}))

		// Event ingestion, every method reaches the handler which answers 405 itself
		r.Group(func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.HandleFunc(s.Config.Ingest.Path, a.TrackEvent) // POST /track-analytics
		})

		// Private Routes
		// Require Authentication
		r.Group(func(r chi.Router) {
			r.Use(BasicAuthMiddleware(s.Config))

			// Stored events
			r.Route("/events", func(r chi.Router) {
				r.Use(render.SetContentType(render.ContentTypeJSON))
				r.With(api.Paginate).Get("/", a.ListEvents) // GET /events{?page,per_page}
				r.Get("/search", a.SearchEvents)            // GET /events/search{?name,claim,date}
				r.Get("/{eventID}", a.GetEvent)             // GET /events/123
			})

			// CSV reports
			r.Get("/reports/events", a.ReportEvents) // GET /reports/events{?month,date}
		})

		// Dashboard data
		r.Post("/dashdata/login", Login(s.Config)) // POST /dashdata/login
		// Require JWT Authentication
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(s.Config))
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Route("/dashdata", func(r chi.Router) {
				r.Get("/data", a.GetDashboardData)                // GET /dashdata/data
				r.With(api.Paginate).Get("/events", a.ListEvents) // GET /dashdata/events
			})
		})
	})

	return r
}

// notFoundProblemDetail formats not found errors as problem details, for the sake of consistency.
func notFoundProblemDetail(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{"type": "about:blank", "title": "Endpoint not found."}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)

	json.NewEncoder(w).Encode(response)
}
