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

package converter

import (
	"fmt"
	"strings"
	"time"

	"github.com/NVIDIA/kube2helm/pkg/chart"
)

// ResourceRef identifies a converted resource in the run report.
type ResourceRef struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Filename string `json:"filename"`
}

// SkippedDocument records a source document that did not make it into the
// chart, along with the reason it was dropped.
type SkippedDocument struct {
	Source  string `json:"source"`
	Ordinal int    `json:"ordinal"`
	Kind    string `json:"kind,omitempty"`
	Name    string `json:"name,omitempty"`
	Reason  string `json:"reason"`
}

// Result is the outcome of a single conversion run.
type Result struct {
	RunID     string            `json:"runId"`
	ChartName string            `json:"chartName"`
	OutputDir string            `json:"outputDir,omitempty"`
	DryRun    bool              `json:"dryRun"`
	Converted []ResourceRef     `json:"converted"`
	Skipped   []SkippedDocument `json:"skipped,omitempty"`
	Values    int               `json:"values"`
	Plan      *chart.Plan       `json:"-"`
	Duration  time.Duration     `json:"duration"`
}

// Summary renders a short human-readable report of the run.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "chart %q: %d resource(s) converted, %d value(s) extracted",
		r.ChartName, len(r.Converted), r.Values)
	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, ", %d document(s) skipped", len(r.Skipped))
	}
	fmt.Fprintf(&b, " in %s\n", r.Duration.Round(time.Millisecond))
	for _, ref := range r.Converted {
		fmt.Fprintf(&b, "  + %s/%s -> templates/%s\n", ref.Kind, ref.Name, ref.Filename)
	}
	for _, s := range r.Skipped {
		id := s.Source
		if s.Kind != "" {
			id = fmt.Sprintf("%s (%s/%s)", id, s.Kind, s.Name)
		}
		fmt.Fprintf(&b, "  - skipped %s document %d: %s\n", id, s.Ordinal, s.Reason)
	}
	return b.String()
}
