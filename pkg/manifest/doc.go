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

// Package manifest parses raw Kubernetes manifest sources into typed
// resource records.
//
// A source blob may contain multiple YAML documents separated by "---"
// markers. Split produces the documents in source order, skipping empty
// documents and collecting per-document parse errors without aborting the
// remaining documents. BuildResource then validates each document's
// Kubernetes identity fields (kind, apiVersion, metadata.name) and wraps
// the untyped node tree in a Resource.
//
// The field tree is kept as *yaml.Node rather than decoded into
// map[string]any so that key order, scalar formatting, and type tags
// survive the round trip into template output.
package manifest
