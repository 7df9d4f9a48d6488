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

// Package cli implements the command-line interface for the kube2helm tool.
//
// # Overview
//
// kube2helm converts plain Kubernetes manifests into a Helm chart: it splits
// multi-document YAML, extracts tunable fields (images, replica counts,
// resources, ports, environment values) into values.yaml, and rewrites the
// manifests as chart templates referencing those values.
//
// # Commands
//
// convert - Convert manifests into a chart:
//
//	kube2helm convert --input ./manifests --output ./my-chart
//
// Reads manifests from files, directories, HTTP/HTTPS URLs, or ConfigMaps
// (cm://namespace/name) and writes the chart into the output directory.
//
// version - Print version information.
//
// # Global Flags
//
//	--log-level    Log level: debug, info, warn, error (default: info)
//	--help, -h     Show command help
//
// # Environment Variables
//
//	LOG_LEVEL           Set logging verbosity (debug, info, warn, error)
//	KUBE2HELM_AI_TOKEN  API token for the AI assist endpoint
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, conversion failure)
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/kube2helm/pkg/cli.version=1.0.0'"
package cli
