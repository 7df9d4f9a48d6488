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

package values

import (
	"strings"
)

// SanitizeSegment converts an arbitrary resource or item name into a key
// segment that Helm's dot notation can address: lowercase, with every
// character outside [a-z0-9_] replaced by an underscore.
func SanitizeSegment(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// keyPrefix builds the kind/name scope segments for a resource's keys.
func keyPrefix(kind, name string) []string {
	return []string{SanitizeSegment(kind), SanitizeSegment(name)}
}

// friendlySuffix maps a raw field path to the key segments published in
// values.yaml. Boilerplate path steps (spec, template.spec, metadata) are
// dropped so keys read as deployment.web.replicas rather than
// deployment.web.spec.replicas. Sequence items are addressed by their name
// field when itemName is non-empty, by index otherwise; the substitution is
// performed by the extractor before calling here.
func friendlySuffix(path []string) []string {
	out := make([]string, 0, len(path))
	for i := 0; i < len(path); i++ {
		step := path[i]
		switch {
		case i == 0 && (step == "spec" || step == "metadata"):
			// dropped scope step
		case step == "template" && i+1 < len(path) && path[i+1] == "spec":
			i++ // drop "template.spec" between spec and containers
		default:
			out = append(out, step)
		}
	}
	return out
}
