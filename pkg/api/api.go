// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

// Package api manages the api controllers
package api

import (
	"github.com/claimnavigator/cn-analytics/pkg/conf"
	"github.com/claimnavigator/cn-analytics/pkg/metrics"
	"github.com/claimnavigator/cn-analytics/pkg/stor"
)

// APICtrl contains the context required by http handlers.
type APICtrl struct {
	*conf.Config
	stor.Store
	Metrics *metrics.Metrics
}

// NewAPICtrl returns a new API controller
func NewAPICtrl(cf *conf.Config, st stor.Store, m *metrics.Metrics) *APICtrl {
	if m == nil {
		m = metrics.New()
	}
	return &APICtrl{
		Config:  cf,
		Store:   st,
		Metrics: m,
	}
}
