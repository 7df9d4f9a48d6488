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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	conversionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kube2helm_conversion_duration_seconds",
		Help:    "Wall-clock duration of conversion runs.",
		Buckets: prometheus.DefBuckets,
	})

	resourcesConverted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kube2helm_resources_converted_total",
		Help: "Resources successfully rewritten into chart templates.",
	})

	resourcesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kube2helm_resources_skipped_total",
		Help: "Source documents dropped from the chart, by reason.",
	}, []string{"reason"})

	aiFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kube2helm_ai_fallbacks_total",
		Help: "AI assist calls that fell back to the deterministic template.",
	})
)
