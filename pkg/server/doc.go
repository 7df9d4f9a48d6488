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

// Package server provides the reusable HTTP server underneath the kube2helm
// conversion API.
//
// The server itself is application-agnostic: callers register their handlers
// by path and the server wraps them with a common middleware chain.
//
// # Architecture
//
// The server implements a stateless HTTP surface with the following key
// components:
//
//   - Rate limiting using token bucket algorithm (golang.org/x/time/rate)
//   - Request ID tracking for distributed tracing
//   - API version negotiation via vendor media types
//   - Panic recovery for resilience
//   - Graceful shutdown handling
//   - Health and readiness probes for Kubernetes
//
// # Usage
//
// Basic server startup:
//
//	s := server.New(
//	    server.WithName("kube2helmd"),
//	    server.WithVersion("1.0.0"),
//	    server.WithHandler(map[string]http.HandlerFunc{
//	        "/v1/convert": convertHandler,
//	    }),
//	)
//	if err := s.Run(ctx); err != nil {
//	    panic(err)
//	}
//
// Custom configuration:
//
//	cfg := server.NewConfig()
//	cfg.Port = 9090
//	cfg.RateLimit = 200 // 200 requests/sec
//	cfg.RateLimitBurst = 400
//
//	s := server.NewServer(cfg)
//
// # System Endpoints
//
// GET /health - Health check (for liveness probe)
//
//	Always returns 200 OK with {"status": "healthy", "timestamp": "..."}
//
// GET /ready - Readiness check (for readiness probe)
//
//	Returns 200 OK when ready, 503 when not ready
//
// GET /metrics - Prometheus metrics
//
// # Observability
//
// Request ID Tracking:
//
//	All requests accept an optional X-Request-Id header (UUID format).
//	If not provided, the server generates one automatically.
//	The request ID is returned in the X-Request-Id response header
//	and included in all error responses for tracing.
//
// Rate Limiting:
//
//	Response headers indicate rate limit status:
//	  X-RateLimit-Limit: Total requests allowed per window
//	  X-RateLimit-Remaining: Requests remaining in current window
//	  X-RateLimit-Reset: Unix timestamp when window resets
//
//	When rate limited, returns 429 with Retry-After header.
//
// API Version Negotiation:
//
//	Clients may pin an API version through the Accept header:
//	  Accept: application/vnd.nvidia.kube2helm.v1+json
//	The negotiated version is echoed in the X-API-Version response header.
//
// # Error Handling
//
// All errors return a consistent JSON structure:
//
//	{
//	  "code": "INVALID_REQUEST",
//	  "message": "at least one manifest is required",
//	  "details": {"manifests": 0},
//	  "requestId": "550e8400-e29b-41d4-a716-446655440000",
//	  "timestamp": "2026-08-31T12:00:00Z",
//	  "retryable": false
//	}
//
// Error codes:
//   - INVALID_REQUEST: Malformed request or parameters (400)
//   - METHOD_NOT_ALLOWED: Unsupported HTTP method (405)
//   - PAYLOAD_TOO_LARGE: Request body over the configured cap (413)
//   - RATE_LIMIT_EXCEEDED: Too many requests (429)
//   - INTERNAL_ERROR: Server error (500)
//
// # Configuration
//
// Environment variables:
//   - PORT: HTTP server port (default: 8080)
//   - SHUTDOWN_TIMEOUT_SECONDS: Graceful shutdown window, useful for
//     matching the pod eviction grace period
//
// # References
//
//   - Rate limiting: https://pkg.go.dev/golang.org/x/time/rate
//   - UUID generation: https://pkg.go.dev/github.com/google/uuid
//   - Error groups: https://pkg.go.dev/golang.org/x/sync/errgroup
//   - Kubernetes probes: https://kubernetes.io/docs/tasks/configure-pod-container/configure-liveness-readiness-startup-probes/
package server
