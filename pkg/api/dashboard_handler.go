// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package api

import (
	"net/http"

	"github.com/claimnavigator/cn-analytics/pkg/stor"
	"github.com/go-chi/render"
	log "github.com/sirupsen/logrus"
)

// GetDashboardData provides a summary of the analytics events.
func (a *APICtrl) GetDashboardData(w http.ResponseWriter, r *http.Request) {

	data, err := a.Store.Dashboard().GetDashboard(a.Config.Dashboard.WindowDays)
	if err != nil {
		log.Errorf("Get Dashboard Data: failed to get data: %v", err)
		render.Render(w, r, ErrServer(err))
		return
	}

	if err := render.Render(w, r, NewDashboardResponse(data)); err != nil {
		render.Render(w, r, ErrRender(err))
	}
}

// DashboardResponse is the response payload for the dashboard.
type DashboardResponse struct {
	*stor.DashboardData
}

// NewDashboardResponse creates a rendered dashboard
func NewDashboardResponse(dashboard *stor.DashboardData) *DashboardResponse {
	return &DashboardResponse{DashboardData: dashboard}
}

// Render processes responses before marshalling.
func (s *DashboardResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
