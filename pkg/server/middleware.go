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
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type middleware func(http.HandlerFunc) http.HandlerFunc

// withMiddleware layers the standard chain around a route handler. Listed
// innermost first; recovery sits inside request-ID assignment so panic logs
// carry the ID, and metrics wrap everything including rejected requests.
func (s *Server) withMiddleware(h http.HandlerFunc) http.HandlerFunc {
	for _, m := range []middleware{
		s.loggingMiddleware,
		s.rateLimitMiddleware,
		s.panicRecoveryMiddleware,
		s.requestIDMiddleware,
		s.versionMiddleware,
		s.metricsMiddleware,
	} {
		h = m(h)
	}
	return h
}

// versionMiddleware negotiates the API version, advertises it on the
// response, and stores it on the request context.
func (s *Server) versionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := negotiateAPIVersion(r)
		SetAPIVersionHeader(w, version)
		ctx := context.WithValue(r.Context(), contextKeyAPIVersion, version)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// requestIDMiddleware adopts a well-formed X-Request-Id from the caller and
// mints one otherwise. The ID is echoed on the response and kept on the
// context for log correlation.
func (s *Server) requestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if _, err := uuid.Parse(id); id == "" || err != nil {
			id = uuid.New().String()
		}

		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), contextKeyRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimiter.Allow() {
			rateLimitRejects.Inc()
			w.Header().Set("Retry-After", "1")
			WriteError(w, r, http.StatusTooManyRequests, ErrCodeRateLimitExceeded,
				"Rate limit exceeded", true, map[string]any{
					"limit": s.config.RateLimit,
					"burst": s.config.RateLimitBurst,
				})
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(int(s.config.RateLimit)))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(s.rateLimiter.Tokens())))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Second).Unix(), 10))
		next.ServeHTTP(w, r)
	}
}

// panicRecoveryMiddleware turns handler panics into 500 responses so one
// bad conversion cannot take the daemon down.
func (s *Server) panicRecoveryMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			panicRecoveries.Inc()
			slog.Error("panic recovered",
				"error", fmt.Sprintf("%v", rec),
				"requestID", RequestIDFrom(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
			)
			WriteError(w, r, http.StatusInternalServerError, ErrCodeInternalError,
				"Internal server error", true, nil)
		}()
		next.ServeHTTP(w, r)
	}
}

// loggingMiddleware emits a debug line on entry and exit, with the final
// status captured through the response writer wrapper.
func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := RequestIDFrom(r.Context())

		slog.Debug("request started",
			"requestID", id,
			"method", r.Method,
			"path", r.URL.Path,
		)

		wrapped := newResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		slog.Debug("request completed",
			"requestID", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
