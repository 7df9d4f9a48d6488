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

// Package values selects the configurable fields of a Kubernetes resource
// and accumulates them into the chart's values mapping.
//
// Extraction is purely structural: a fixed allowlist of field shapes
// (replica counts, container images, resource requests and limits,
// container ports, env values, Service type, metadata.namespace) is walked
// in pre-order over the resource tree, so repeated runs on identical input
// select the same fields in the same order. Label keys referenced by a
// workload's spec.selector.matchLabels are frozen and never extracted,
// keeping selector/template label matching intact.
//
// The Registry assigns each extracted field a dotted key scoped by resource
// kind and sanitized name (for example deployment.web.replicas). Keys are
// unique within a run; a colliding key is retried with a numeric suffix in
// document order. After Finalize the registry rejects further registration.
package values
