// Package api provides the HTTP API layer for the kube2helm conversion
// service.
//
// This package acts as a thin wrapper around the reusable pkg/server package,
// configuring it with application-specific routes and handlers. It exposes
// manifest-to-chart conversion via REST API. Note: the API server always runs
// conversions in preview mode and returns the staged chart in the response
// body; use the CLI to write charts to disk or push them to an OCI registry.
//
// # Usage
//
// To start the API server:
//
//	package main
//
//	import (
//	    "log"
//	    "github.com/NVIDIA/kube2helm/pkg/api"
//	)
//
//	func main() {
//	    if err := api.Serve(); err != nil {
//	        log.Fatalf("server error: %v", err)
//	    }
//	}
//
// # Architecture
//
// The API layer is responsible for:
//   - Configuring structured logging with application name and version
//   - Setting up route handlers (e.g., /v1/convert)
//   - Delegating server lifecycle management to pkg/server
//
// The pkg/server package handles:
//   - HTTP server setup and graceful shutdown
//   - Middleware (rate limiting, logging, metrics, panic recovery)
//   - Health and readiness endpoints
//   - Prometheus metrics
//
// # Endpoints
//
// Application Endpoints (with rate limiting):
//   - POST /v1/convert - Convert Kubernetes manifests into a Helm chart
//
// System Endpoints (no rate limiting):
//   - GET /health  - Health check (liveness probe)
//   - GET /ready   - Readiness check
//   - GET /metrics - Prometheus metrics
//
// # Request Body (POST /v1/convert)
//
// Requests carry raw manifest text plus optional chart metadata:
//
//	{
//	  "manifests": [
//	    {"name": "deployment.yaml", "content": "apiVersion: apps/v1\n..."}
//	  ],
//	  "chartName": "web",
//	  "chartVersion": "0.1.0",
//	  "description": "web stack"
//	}
//
// The response reports the converted resources, any skipped documents, and
// every chart file with its full content:
//
//	curl -X POST http://localhost:8080/v1/convert \
//	  -H "Content-Type: application/json" \
//	  -d @request.json
//
// # Configuration
//
// The server is configured via environment variables:
//   - PORT: HTTP server port (default: 8080)
//   - SHUTDOWN_TIMEOUT_SECONDS: Graceful shutdown window
//
// Version information is set at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/kube2helm/pkg/api.version=1.0.0'"
package api
