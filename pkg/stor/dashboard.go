// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package stor

import (
	"time"
)

// EventCount is the number of occurrences of a given event.
type EventCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DashboardData data model
type DashboardData struct {
	TotalEvents     int          `json:"totalEvents"`
	EventsInWindow  int          `json:"eventsInWindow"`
	WindowDays      int          `json:"windowDays"`
	TotalClaims     int          `json:"totalClaims"`
	TotalUsers      int          `json:"totalUsers"`
	ClaimsSubmitted int          `json:"claimsSubmitted"`
	ClaimsClosed    int          `json:"claimsClosed"`
	OldestEventDate string       `json:"oldestEventDate"`
	LatestEventDate string       `json:"latestEventDate"`
	EventCounts     []EventCount `json:"eventCounts"`
}

// GetDashboard provides a summary of the stored analytics events.
// windowDays is the number of days taken into account for the recent activity.
func (s dashboardStore) GetDashboard(windowDays int) (*DashboardData, error) {
	var data DashboardData
	data.WindowDays = windowDays

	// Temporary variables for counts (GORM uses int64)
	var totalEvents, eventsInWindow, totalClaims, totalUsers, submitted, closed int64

	if err := s.db.Model(&AnalyticsEvent{}).Count(&totalEvents).Error; err != nil {
		return nil, err
	}
	data.TotalEvents = int(totalEvents)

	since := time.Now().UTC().AddDate(0, 0, -windowDays)
	if err := s.db.Model(&AnalyticsEvent{}).Where("created_at >= ?", since).Count(&eventsInWindow).Error; err != nil {
		return nil, err
	}
	data.EventsInWindow = int(eventsInWindow)

	// Count distinct claims and users, null values excluded
	if err := s.db.Model(&AnalyticsEvent{}).Where("claim_id IS NOT NULL").Distinct("claim_id").Count(&totalClaims).Error; err != nil {
		return nil, err
	}
	data.TotalClaims = int(totalClaims)

	if err := s.db.Model(&AnalyticsEvent{}).Where("user_id IS NOT NULL").Distinct("user_id").Count(&totalUsers).Error; err != nil {
		return nil, err
	}
	data.TotalUsers = int(totalUsers)

	// Claim outcomes
	if err := s.db.Model(&AnalyticsEvent{}).Where("event_name = ?", "claim_submitted").Count(&submitted).Error; err != nil {
		return nil, err
	}
	data.ClaimsSubmitted = int(submitted)

	if err := s.db.Model(&AnalyticsEvent{}).Where("event_name = ?", "claim_closed").Count(&closed).Error; err != nil {
		return nil, err
	}
	data.ClaimsClosed = int(closed)

	// Date of the oldest event
	var oldest AnalyticsEvent
	if err := s.db.Model(&AnalyticsEvent{}).Order("created_at ASC").First(&oldest).Error; err == nil {
		data.OldestEventDate = oldest.CreatedAt.Format("2006-01-02")
	}

	// Date of the most recent event
	var latest AnalyticsEvent
	if err := s.db.Model(&AnalyticsEvent{}).Order("created_at DESC").First(&latest).Error; err == nil {
		data.LatestEventDate = latest.CreatedAt.Format("2006-01-02")
	}

	// Occurrences per event name, most frequent first
	var counts []EventCount
	if err := s.db.Model(&AnalyticsEvent{}).
		Select("event_name as name, count(*) as count").
		Group("event_name").
		Order("count DESC, name ASC").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []EventCount{}
	}
	data.EventCounts = counts

	return &data, nil
}
