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

// Package converter runs the manifest-to-chart pipeline: load sources,
// split documents, build resources, extract values, rewrite templates,
// optionally pass each template through the AI assist transformer, and
// assemble the chart plan.
//
// The pipeline is sequential over the ordered resource list; only the AI
// assist phase fans out, bounded by a small worker limit, and its results
// are reassembled in resource order so output stays deterministic.
// Per-document failures (parse errors, missing identity fields, rewrite
// failures) are collected into the result's skip report instead of
// aborting the run; the run fails only when no resource converts at all.
package converter
