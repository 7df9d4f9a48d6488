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

// Package chart assembles rewritten resource templates and the values
// mapping into the canonical Helm chart layout:
//
//   - Chart.yaml: chart metadata
//   - values.yaml: the externalized values mapping
//   - templates/<kind>-<name>.yaml: one template per resource
//   - README.md: resource inventory and install instructions
//   - checksums.txt: SHA256 checksums of the above
//
// Assemble stages the whole chart in memory as a Plan; Write then commits
// it to disk, or the caller reports the Plan verbatim in preview mode. Both
// paths see byte-identical content for the same input.
package chart
