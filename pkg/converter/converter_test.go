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
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/kube2helm/pkg/errors"
	"github.com/NVIDIA/kube2helm/pkg/manifest"
	"github.com/NVIDIA/kube2helm/pkg/template"
)

const testManifests = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
  namespace: prod
spec:
  replicas: 3
  selector:
    matchLabels:
      app: web
  template:
    metadata:
      labels:
        app: web
    spec:
      containers:
        - name: app
          image: nginx:1.21
---
apiVersion: v1
kind: Service
metadata:
  name: web
spec:
  type: ClusterIP
  selector:
    app: web
  ports:
    - port: 80
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "manifests.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConvert(t *testing.T) {
	input := writeManifest(t, testManifests)
	out := filepath.Join(t.TempDir(), "my-chart")

	conv, err := New(
		WithInputs(input),
		WithOutputDir(out),
		WithChartVersion("2.0.0"),
	)
	require.NoError(t, err)

	result, err := conv.Convert(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "my-chart", result.ChartName)
	assert.NotEmpty(t, result.RunID)
	assert.Len(t, result.Converted, 2)
	assert.Empty(t, result.Skipped)
	assert.Positive(t, result.Values)

	// Chart files land on disk.
	chartYAML, err := os.ReadFile(filepath.Join(out, "Chart.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(chartYAML), "name: my-chart")
	assert.Contains(t, string(chartYAML), "version: 2.0.0")

	deployment, err := os.ReadFile(filepath.Join(out, "templates", "deployment-web.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(deployment), "{{ .Values.deployment.web.replicas }}")

	valuesYAML, err := os.ReadFile(filepath.Join(out, "values.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(valuesYAML), "repository: nginx")

	summary := result.Summary()
	assert.Contains(t, summary, "2 resource(s) converted")
	assert.Contains(t, summary, "Deployment/web")
}

func TestConvertDryRunWritesNothing(t *testing.T) {
	input := writeManifest(t, testManifests)
	out := filepath.Join(t.TempDir(), "preview-chart")

	conv, err := New(
		WithInputs(input),
		WithOutputDir(out),
		WithDryRun(true),
	)
	require.NoError(t, err)

	result, err := conv.Convert(context.Background())
	require.NoError(t, err)

	require.NotNil(t, result.Plan)
	assert.True(t, result.DryRun)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "dry run must not create the output directory")
}

func TestConvertDryRunMatchesWrite(t *testing.T) {
	input := writeManifest(t, testManifests)
	out := filepath.Join(t.TempDir(), "same-chart")

	plan1 := func() map[string][]byte {
		conv, err := New(WithInputs(input), WithOutputDir(out), WithDryRun(true))
		require.NoError(t, err)
		result, err := conv.Convert(context.Background())
		require.NoError(t, err)
		files := make(map[string][]byte)
		for _, f := range result.Plan.Files {
			files[f.Path] = f.Data
		}
		return files
	}()

	conv, err := New(WithInputs(input), WithOutputDir(out))
	require.NoError(t, err)
	_, err = conv.Convert(context.Background())
	require.NoError(t, err)

	// Every planned file is byte-identical to the written one.
	for path, planned := range plan1 {
		written, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(path)))
		require.NoError(t, err, path)
		assert.Equal(t, planned, written, path)
	}
}

func TestConvertPartialFailure(t *testing.T) {
	input := writeManifest(t, `apiVersion: v1
kind: ConfigMap
metadata:
  name: good
---
kind: NoAPIVersion
metadata:
  name: bad
---
not: [valid
`)
	out := filepath.Join(t.TempDir(), "partial-chart")

	conv, err := New(WithInputs(input), WithOutputDir(out))
	require.NoError(t, err)

	result, err := conv.Convert(context.Background())
	require.NoError(t, err, "run must succeed while any resource converts")

	assert.Len(t, result.Converted, 1)
	assert.Equal(t, "ConfigMap", result.Converted[0].Kind)
	require.Len(t, result.Skipped, 2)

	reasons := map[string]int{}
	for _, s := range result.Skipped {
		reasons[s.Reason]++
	}
	assert.Equal(t, 1, reasons[skipReasonInvalid])
	assert.Equal(t, 1, reasons[skipReasonParse])
}

func TestConvertDuplicateFilenamesReported(t *testing.T) {
	input := writeManifest(t, `apiVersion: v1
kind: ConfigMap
metadata:
  name: app
  namespace: prod
---
apiVersion: v1
kind: ConfigMap
metadata:
  name: app
  namespace: staging
`)

	conv, err := New(WithInputs(input), WithDryRun(true))
	require.NoError(t, err)

	result, err := conv.Convert(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Converted, 2)

	// The report carries the disambiguated names the chart actually stages.
	assert.Equal(t, "configmap-app.yaml", result.Converted[0].Filename)
	assert.Equal(t, "configmap-app-1.yaml", result.Converted[1].Filename)

	planned := make(map[string]bool)
	for _, f := range result.Plan.Files {
		planned[f.Path] = true
	}
	for _, ref := range result.Converted {
		assert.True(t, planned["templates/"+ref.Filename], "reported file %q missing from plan", ref.Filename)
	}
}

func TestConvertNoConvertibleResources(t *testing.T) {
	input := writeManifest(t, "just: data\n")
	out := filepath.Join(t.TempDir(), "empty-chart")

	conv, err := New(WithInputs(input), WithOutputDir(out))
	require.NoError(t, err)

	_, err = conv.Convert(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidResource, errors.CodeOf(err))
}

func TestConvertRefusesExistingChart(t *testing.T) {
	input := writeManifest(t, testManifests)
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "Chart.yaml"), []byte("apiVersion: v2\n"), 0644))

	conv, err := New(WithInputs(input), WithOutputDir(out), WithChartName("existing"))
	require.NoError(t, err)

	_, err = conv.Convert(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeChartExists, errors.CodeOf(err))
}

func TestNewValidation(t *testing.T) {
	_, err := New()
	require.Error(t, err, "inputs are required")

	_, err = New(WithInputs("a.yaml"))
	require.Error(t, err, "output dir is required outside dry run")

	_, err = New(WithInputs("a.yaml"), WithOutputDir("./out"), WithChartName("Bad_Name"))
	require.Error(t, err, "chart names must be DNS-1123 subdomains")
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))

	_, err = New(WithInputs("a.yaml"), WithOutputDir("./out"), WithChartVersion("latest"))
	require.Error(t, err, "chart versions must be semver")
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
}

func TestDeriveChartName(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"./my-chart", "my-chart"},
		{"/tmp/charts/Web App", "web-app"},
		{"UPPER", "upper"},
		{".", "generated-chart"},
		{"", "generated-chart"},
	}
	for _, tt := range tests {
		if got := deriveChartName(tt.dir); got != tt.want {
			t.Errorf("deriveChartName(%q) = %q, want %q", tt.dir, got, tt.want)
		}
	}
}

// stubTransformer rewrites every template with a fixed payload.
type stubTransformer struct {
	output string
	ok     bool
	calls  int
}

func (s *stubTransformer) Transform(_ context.Context, _ string, _ string) (string, bool) {
	s.calls++
	return s.output, s.ok
}

func TestConvertAIRefinementAccepted(t *testing.T) {
	input := writeManifest(t, testManifests)
	out := filepath.Join(t.TempDir(), "ai-chart")

	stub := &stubTransformer{
		output: "# refined\nkind: Deployment\nkind: Service\napp: literal\n",
		ok:     true,
	}
	conv, err := New(WithInputs(input), WithOutputDir(out), WithTransformer(stub))
	require.NoError(t, err)

	result, err := conv.Convert(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
	assert.Len(t, result.Converted, 2)

	deployment, err := os.ReadFile(filepath.Join(out, "templates", "deployment-web.yaml"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(deployment), "# refined"))
}

func TestConvertAIRefinementRejectedKeepsDefault(t *testing.T) {
	input := writeManifest(t, testManifests)
	out := filepath.Join(t.TempDir(), "ai-reject-chart")

	// Output drops the frozen selector label key, so it must be rejected
	// for the Deployment (and lacks "Service" for the Service).
	stub := &stubTransformer{output: "kind: Deployment\n", ok: true}
	conv, err := New(WithInputs(input), WithOutputDir(out), WithTransformer(stub))
	require.NoError(t, err)

	_, err = conv.Convert(context.Background())
	require.NoError(t, err)

	deployment, err := os.ReadFile(filepath.Join(out, "templates", "deployment-web.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(deployment), "matchLabels")
	assert.Contains(t, string(deployment), "{{ .Values.deployment.web.replicas }}")
}

func TestAcceptRefinement(t *testing.T) {
	docs, errs := manifest.Split("test.yaml", []byte(testManifests))
	require.Empty(t, errs)
	require.Len(t, docs, 2)
	res, err := manifest.BuildResource(docs[0])
	require.NoError(t, err)
	rendered, err := template.Rewrite(res, nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"keeps kind and selector key", "kind: Deployment\napp: web\n", true},
		{"blank output", "   \n", false},
		{"kind dropped", "metadata:\n  app: web\n", false},
		{"selector key dropped", "kind: Deployment\nlabels: {}\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, acceptRefinement(rendered, tt.text))
		})
	}
}
