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

package chart

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/NVIDIA/kube2helm/pkg/errors"
)

// Write commits a staged Plan to dir. When dir already contains a chart
// (a Chart.yaml is present) the write fails with a chart-exists error
// unless overwrite is set. The Plan is fully in memory before the first
// file is touched, so cancellation before Write leaves nothing behind.
func Write(plan *Plan, dir string, overwrite bool) error {
	chartFile := filepath.Join(dir, "Chart.yaml")
	if _, err := os.Stat(chartFile); err == nil && !overwrite {
		return errors.NewWithContext(errors.ErrCodeChartExists,
			"destination already contains a chart (use overwrite to replace)",
			map[string]any{"dir": dir})
	}

	for _, f := range plan.Files {
		target := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "failed to create chart directory", err)
		}
		if err := os.WriteFile(target, f.Data, 0644); err != nil {
			return errors.WrapWithContext(errors.ErrCodeInternal,
				"failed to write chart file", err,
				map[string]any{"path": target})
		}
	}

	slog.Debug("chart written", "dir", dir, "files", len(plan.Files))
	return nil
}
