// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimnavigator/cn-analytics/pkg/conf"
	"github.com/claimnavigator/cn-analytics/pkg/metrics"
	"github.com/claimnavigator/cn-analytics/pkg/stor"
)

const secret = "test-secret"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newTestServerWith(t, nil)
}

// newTestServerWith lets a test alter the configuration before the routes are set.
func newTestServerWith(t *testing.T, alter func(c *conf.Config)) *Server {
	t.Helper()
	c := &conf.Config{
		Dsn:    "sqlite3://file:router_test?mode=memory&cache=shared",
		Access: conf.Access{Username: "reader", Password: "pass"},
		JWT:    conf.JWT{SecretKey: secret, Admin: map[string]string{"admin": "admin-pass"}},
		Ingest: conf.Ingest{Path: "/track-analytics", MaxBodyBytes: 4096},
		Dashboard: conf.Dashboard{
			WindowDays: 30,
		},
	}
	if alter != nil {
		alter(c)
	}
	st, err := stor.Init(c.Dsn)
	require.NoError(t, err)
	s := &Server{Config: c, Store: st, Metrics: metrics.New()}
	s.Router = s.setRoutes()
	return s
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	req, _ := http.NewRequest("GET", "/health", nil)
	assert.Equal(t, http.StatusOK, do(s, req).Code)
}

func TestIngestRoute(t *testing.T) {
	s := newTestServer(t)

	req, _ := http.NewRequest("POST", "/track-analytics", strings.NewReader(`{"event":"page_view","timestamp":"2024-01-01T00:00:00.000Z"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://claimnavigator.app")
	rr := do(s, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	req, _ = http.NewRequest("GET", "/track-analytics", nil)
	rr = do(s, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, rr.Body.String())

	// ingestion is visible in the metrics
	req, _ = http.NewRequest("GET", "/metrics", nil)
	rr = do(s, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `cnanalytics_events_received_total{outcome="stored"} 1`)
}

func TestBasicAuth(t *testing.T) {
	s := newTestServer(t)

	req, _ := http.NewRequest("GET", "/events", nil)
	assert.Equal(t, http.StatusUnauthorized, do(s, req).Code)

	req, _ = http.NewRequest("GET", "/events", nil)
	req.SetBasicAuth("reader", "pass")
	assert.Equal(t, http.StatusOK, do(s, req).Code)
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t)
	req, _ := http.NewRequest("GET", "/unknown", nil)
	rr := do(s, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Endpoint not found.")
}

func TestDashboardLogin(t *testing.T) {
	s := newTestServer(t)

	// no token
	req, _ := http.NewRequest("GET", "/dashdata/data", nil)
	assert.Equal(t, http.StatusUnauthorized, do(s, req).Code)

	// bad credentials
	req, _ = http.NewRequest("POST", "/dashdata/login", strings.NewReader(`{"username":"admin","password":"wrong"}`))
	assert.Equal(t, http.StatusUnauthorized, do(s, req).Code)

	req, _ = http.NewRequest("POST", "/dashdata/login", strings.NewReader(`{"username":"admin","password":"admin-pass"}`))
	rr := do(s, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	req, _ = http.NewRequest("GET", "/dashdata/data", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rr = do(s, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"windowDays":30`)
}

func TestExpiredToken(t *testing.T) {
	s := newTestServer(t)

	claims := &Claims{
		Username: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	req, _ := http.NewRequest("GET", "/dashdata/data", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rr := do(s, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "token has expired")
}

func TestEmptySecretKey(t *testing.T) {
	s := newTestServerWith(t, func(c *conf.Config) { c.JWT.SecretKey = "" })

	claims := &Claims{
		Username: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(""))
	require.NoError(t, err)

	for _, path := range []string{"/dashdata/data", "/dashdata/events"} {
		req, _ := http.NewRequest("GET", path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := do(s, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
		assert.Contains(t, rr.Body.String(), "not configured", path)
	}
}

func TestEmptyAccessCredentials(t *testing.T) {
	s := newTestServerWith(t, func(c *conf.Config) { c.Access = conf.Access{} })

	for _, path := range []string{"/events", "/reports/events"} {
		req, _ := http.NewRequest("GET", path, nil)
		req.SetBasicAuth("", "")
		rr := do(s, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)

		req, _ = http.NewRequest("GET", path, nil)
		rr = do(s, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}

	// a password alone is not enough either
	s = newTestServerWith(t, func(c *conf.Config) { c.Access = conf.Access{Password: "pass"} })
	req, _ := http.NewRequest("GET", "/events", nil)
	req.SetBasicAuth("", "pass")
	assert.Equal(t, http.StatusUnauthorized, do(s, req).Code)
}
