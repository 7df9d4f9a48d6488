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
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	texttemplate "text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/kube2helm/pkg/errors"
	"github.com/NVIDIA/kube2helm/pkg/template"
	"github.com/NVIDIA/kube2helm/pkg/values"
)

//go:embed templates/Chart.yaml.tmpl
var chartTemplate string

//go:embed templates/README.md.tmpl
var readmeTemplate string

// ChecksumFileName is the standard name for the chart checksum file.
const ChecksumFileName = "checksums.txt"

const (
	defaultVersion     = "0.1.0"
	defaultAppVersion  = "1.0.0"
	defaultDescription = "Helm chart auto-generated from Kubernetes manifests by kube2helm"
)

// File is one planned chart file.
type File struct {
	// Path is relative to the chart root (e.g. "templates/deployment-web.yaml").
	Path string

	// Data is the exact file content.
	Data []byte
}

// Plan is the fully staged chart: either written to disk or reported
// verbatim in preview mode.
type Plan struct {
	Name    string
	Version string
	Files   []File
}

// Metadata is the Chart.yaml content model.
type Metadata struct {
	Name        string
	Description string
	Version     string
	AppVersion  string
}

// Assembler combines rendered templates and the values registry into a
// chart Plan.
type Assembler struct {
	meta Metadata
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithName sets the chart name.
func WithName(name string) Option {
	return func(a *Assembler) {
		if name != "" {
			a.meta.Name = name
		}
	}
}

// WithVersion sets the chart version.
func WithVersion(version string) Option {
	return func(a *Assembler) {
		if version != "" {
			a.meta.Version = version
		}
	}
}

// WithDescription sets the chart description.
func WithDescription(desc string) Option {
	return func(a *Assembler) {
		if desc != "" {
			a.meta.Description = desc
		}
	}
}

// NewAssembler creates an Assembler for the named chart.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		meta: Metadata{
			Name:        "generated-chart",
			Description: defaultDescription,
			Version:     defaultVersion,
			AppVersion:  defaultAppVersion,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type readmeResource struct {
	Kind string
	Name string
	File string
}

// Assemble stages Chart.yaml, values.yaml, templates, README, and
// checksums into a Plan. Duplicate template filenames are disambiguated
// with a numeric suffix in resource order, and each render's Filename is
// updated to the name the chart actually carries.
func (a *Assembler) Assemble(renders []*template.Rendered, reg *values.Registry) (*Plan, error) {
	plan := &Plan{
		Name:    a.meta.Name,
		Version: a.meta.Version,
	}

	chartYAML, err := renderText("Chart.yaml", chartTemplate, a.meta)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to render Chart.yaml", err)
	}
	plan.Files = append(plan.Files, File{Path: "Chart.yaml", Data: chartYAML})

	valuesYAML, err := encodeValues(reg)
	if err != nil {
		return nil, err
	}
	plan.Files = append(plan.Files, File{Path: "values.yaml", Data: valuesYAML})

	titler := cases.Title(language.English, cases.NoLower)
	taken := make(map[string]int)
	resources := make([]readmeResource, 0, len(renders))

	for _, r := range renders {
		name := uniqueFilename(r.Filename, taken)
		r.Filename = name
		plan.Files = append(plan.Files, File{
			Path: path.Join("templates", name),
			Data: []byte(r.Text),
		})
		resources = append(resources, readmeResource{
			Kind: titler.String(r.Resource.Kind),
			Name: r.Resource.Name,
			File: path.Join("templates", name),
		})
	}

	readme, err := renderText("README.md", readmeTemplate, struct {
		Name        string
		Description string
		Resources   []readmeResource
	}{a.meta.Name, a.meta.Description, resources})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to render README.md", err)
	}
	plan.Files = append(plan.Files, File{Path: "README.md", Data: readme})

	plan.Files = append(plan.Files, File{
		Path: ChecksumFileName,
		Data: checksums(plan.Files),
	})

	return plan, nil
}

func renderText(name, tmpl string, data any) ([]byte, error) {
	t, err := texttemplate.New(name).Parse(tmpl)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValues(reg *values.Registry) ([]byte, error) {
	node, err := reg.Encode()
	if err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return []byte("{}\n"), nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to encode values.yaml", err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to encode values.yaml", err)
	}
	return buf.Bytes(), nil
}

// uniqueFilename appends -<n> before the extension for repeated names.
func uniqueFilename(name string, taken map[string]int) string {
	n, seen := taken[name]
	taken[name] = n + 1
	if !seen {
		return name
	}
	ext := path.Ext(name)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
}

// checksums builds the checksums.txt content over the staged files.
func checksums(files []File) []byte {
	lines := make([]string, 0, len(files))
	for _, f := range files {
		sum := sha256.Sum256(f.Data)
		lines = append(lines, fmt.Sprintf("%s  %s", hex.EncodeToString(sum[:]), f.Path))
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}
