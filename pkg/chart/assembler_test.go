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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/kube2helm/pkg/manifest"
	"github.com/NVIDIA/kube2helm/pkg/template"
	"github.com/NVIDIA/kube2helm/pkg/values"
)

func testRendered(t *testing.T, kind, name string) *template.Rendered {
	t.Helper()
	data := fmt.Sprintf("apiVersion: v1\nkind: %s\nmetadata:\n  name: %s\n", kind, name)
	docs, errs := manifest.Split("test.yaml", []byte(data))
	require.Empty(t, errs)
	require.Len(t, docs, 1)
	res, err := manifest.BuildResource(docs[0])
	require.NoError(t, err)
	rendered, err := template.Rewrite(res, nil)
	require.NoError(t, err)
	return rendered
}

func planFile(t *testing.T, plan *Plan, path string) []byte {
	t.Helper()
	for _, f := range plan.Files {
		if f.Path == path {
			return f.Data
		}
	}
	t.Fatalf("plan is missing file %q", path)
	return nil
}

func TestAssemble(t *testing.T) {
	reg := values.NewRegistry()
	_, err := reg.Register([]string{"service", "web", "type"},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "ClusterIP"})
	require.NoError(t, err)

	a := NewAssembler(WithName("my-chart"), WithVersion("1.2.3"))
	plan, err := a.Assemble([]*template.Rendered{
		testRendered(t, "Service", "web"),
		testRendered(t, "ConfigMap", "settings"),
	}, reg)
	require.NoError(t, err)

	assert.Equal(t, "my-chart", plan.Name)
	assert.Equal(t, "1.2.3", plan.Version)

	chartYAML := string(planFile(t, plan, "Chart.yaml"))
	assert.Contains(t, chartYAML, "apiVersion: v2")
	assert.Contains(t, chartYAML, "name: my-chart")
	assert.Contains(t, chartYAML, "version: 1.2.3")
	assert.Contains(t, chartYAML, `appVersion: "1.0.0"`)

	valuesYAML := string(planFile(t, plan, "values.yaml"))
	assert.Contains(t, valuesYAML, "service:")
	assert.Contains(t, valuesYAML, "type: ClusterIP")

	assert.Contains(t, string(planFile(t, plan, "templates/service-web.yaml")), "kind: Service")
	assert.Contains(t, string(planFile(t, plan, "templates/configmap-settings.yaml")), "kind: ConfigMap")

	readme := string(planFile(t, plan, "README.md"))
	assert.Contains(t, readme, "# my-chart")
	assert.Contains(t, readme, "templates/service-web.yaml")
}

func TestAssembleEmptyValues(t *testing.T) {
	a := NewAssembler()
	plan, err := a.Assemble([]*template.Rendered{testRendered(t, "ConfigMap", "settings")},
		values.NewRegistry())
	require.NoError(t, err)

	assert.Equal(t, "{}\n", string(planFile(t, plan, "values.yaml")))
}

func TestAssembleDuplicateFilenames(t *testing.T) {
	a := NewAssembler(WithName("dup"))
	renders := []*template.Rendered{
		testRendered(t, "ConfigMap", "same"),
		testRendered(t, "ConfigMap", "same"),
		testRendered(t, "ConfigMap", "same"),
	}
	plan, err := a.Assemble(renders, values.NewRegistry())
	require.NoError(t, err)

	var paths []string
	for _, f := range plan.Files {
		if strings.HasPrefix(f.Path, "templates/") {
			paths = append(paths, f.Path)
		}
	}
	assert.Equal(t, []string{
		"templates/configmap-same.yaml",
		"templates/configmap-same-1.yaml",
		"templates/configmap-same-2.yaml",
	}, paths)

	// Renders report the staged name, not the pre-collision one.
	for i, r := range renders {
		assert.Equal(t, paths[i], "templates/"+r.Filename)
	}
}

func TestAssembleChecksums(t *testing.T) {
	a := NewAssembler(WithName("sums"))
	plan, err := a.Assemble([]*template.Rendered{testRendered(t, "Service", "web")},
		values.NewRegistry())
	require.NoError(t, err)

	sums := string(planFile(t, plan, ChecksumFileName))
	lines := strings.Split(strings.TrimSpace(sums), "\n")
	// One line per staged file except checksums.txt itself.
	require.Len(t, lines, len(plan.Files)-1)

	for _, line := range lines {
		parts := strings.SplitN(line, "  ", 2)
		require.Len(t, parts, 2)
		data := planFile(t, plan, parts[1])
		sum := sha256.Sum256(data)
		assert.Equal(t, hex.EncodeToString(sum[:]), parts[0], "checksum mismatch for %s", parts[1])
	}
}
