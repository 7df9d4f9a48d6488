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

package defaults

import "time"

// AI assist timeouts and limits.
const (
	// AIAssistTimeout bounds a single AI transform call, including the
	// one permitted retry.
	AIAssistTimeout = 30 * time.Second

	// AIAssistRetries is the maximum number of retries for a failed AI
	// transform call within the timeout budget.
	AIAssistRetries = 1

	// AIAssistWorkers caps concurrent AI transform calls. Results are
	// reassembled in resource order regardless of completion order.
	AIAssistWorkers = 4

	// AIAssistRequestsPerSecond limits the outbound AI request rate.
	AIAssistRequestsPerSecond = 2
)

// HTTP client timeouts for outbound requests (manifest URLs, AI API).
const (
	// HTTPClientTimeout is the total timeout for an HTTP request.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout is the TCP connection timeout.
	HTTPConnectTimeout = 10 * time.Second

	// HTTPTLSHandshakeTimeout is the TLS handshake timeout.
	HTTPTLSHandshakeTimeout = 10 * time.Second
)

// Kubernetes API timeouts used by the ConfigMap manifest source.
const (
	// K8sAPITimeout is the timeout for Kubernetes API calls.
	K8sAPITimeout = 30 * time.Second
)

// File IO limits.
const (
	// MaxManifestSize is the maximum size of a single manifest source file.
	MaxManifestSize = 10 << 20 // 10MB
)

// Conversion API server timeouts.
const (
	// ServerReadTimeout is the maximum duration for reading a request.
	ServerReadTimeout = 10 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the keep-alive idle timeout.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout bounds graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)
