// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestNew(t *testing.T) {
	s := New(
		WithName("test-server"),
		WithVersion("1.2.3"),
		WithPort(9191),
		WithRateLimit(rate.Limit(10), 20),
	)

	if s.config.Name != "test-server" {
		t.Errorf("expected name test-server, got %s", s.config.Name)
	}
	if s.config.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", s.config.Version)
	}
	if s.config.Port != 9191 {
		t.Errorf("expected port 9191, got %d", s.config.Port)
	}
	if s.httpServer.Addr != ":9191" {
		t.Errorf("expected addr :9191, got %s", s.httpServer.Addr)
	}
}

func TestWithHandler(t *testing.T) {
	called := false
	s := New(WithHandler(map[string]http.HandlerFunc{
		"/v1/test": func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		},
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/test", nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	if !called {
		t.Error("expected registered handler to be invoked")
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected registered handler to run behind middleware")
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := New()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected status healthy, got %s", resp.Status)
	}
}

func TestReadyEndpoint(t *testing.T) {
	s := New()

	// Not ready until started
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before ready, got %d", rec.Code)
	}

	s.SetReady(true)

	rec = httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 when ready, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := New()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected metrics output")
	}
}

func TestDefaultRootHandler(t *testing.T) {
	s := New(
		WithName("kube2helmd"),
		WithVersion("0.9.0"),
		WithHandler(map[string]http.HandlerFunc{
			"/v1/convert": func(w http.ResponseWriter, r *http.Request) {},
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Name    string   `json:"name"`
		Version string   `json:"version"`
		Routes  []string `json:"routes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Name != "kube2helmd" {
		t.Errorf("expected name kube2helmd, got %s", resp.Name)
	}
	if resp.Version != "0.9.0" {
		t.Errorf("expected version 0.9.0, got %s", resp.Version)
	}

	found := false
	for _, route := range resp.Routes {
		if route == "/v1/convert" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected /v1/convert in routes, got %v", resp.Routes)
	}
}

func TestRateLimiting(t *testing.T) {
	s := New(
		WithRateLimit(rate.Limit(1), 1),
		WithHandler(map[string]http.HandlerFunc{
			"/v1/test": func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
		}),
	)

	// First request uses the single burst token
	req := httptest.NewRequest(http.MethodGet, "/v1/test", nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}

	// Second immediate request should be rejected
	rec = httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
}

func TestGracefulShutdown(t *testing.T) {
	s := New(WithPort(0))

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	// Give the listener a moment, then cancel
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}
