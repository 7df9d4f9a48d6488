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

// Package template rewrites a resource's YAML serialization with Helm
// placeholder expressions at its externalized field paths.
//
// The rewrite operates on a rendering-only copy of the resource tree: each
// candidate scalar is replaced by a sentinel token, the copy is encoded,
// and the sentinels are then swapped for {{ .Values.<key> }} expressions in
// the encoded text. Going through sentinels sidesteps the YAML encoder's
// quoting of strings that open with "{{": numeric and boolean fields end up
// unquoted so the template engine preserves their native type, string
// fields end up quoted.
package template

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/kube2helm/pkg/errors"
	"github.com/NVIDIA/kube2helm/pkg/manifest"
	"github.com/NVIDIA/kube2helm/pkg/values"
)

// yamlIndent matches helm create output.
const yamlIndent = 2

// Rendered is a resource's template file content, ready for chart assembly.
type Rendered struct {
	Resource *manifest.Resource

	// Filename is the template file name derived from kind and name.
	// The chart assembler rewrites it to the disambiguated name it
	// stages, so after assembly it matches the plan.
	Filename string

	// Text is the YAML serialization with placeholder expressions.
	Text string
}

// Rewrite serializes res's field tree with each candidate field replaced by
// a placeholder referencing its assigned values key. All other structure
// and key order remain unchanged. Fails with a rewrite error when a
// candidate path no longer resolves in the tree; that indicates an internal
// invariant violation and is fatal to this resource's conversion only.
func Rewrite(res *manifest.Resource, candidates []*values.Candidate) (*Rendered, error) {
	work := copyNode(res.Node)

	for i, c := range candidates {
		target := manifest.Lookup(work, c.Path)
		if target == nil || target.Kind != yaml.ScalarNode {
			return nil, errors.NewWithContext(errors.ErrCodeRewrite,
				"candidate field path no longer resolves",
				map[string]any{
					"resource": res.Name,
					"kind":     res.Kind,
					"path":     strings.Join(c.Path, "."),
				})
		}
		target.Value = sentinel(i)
		target.Tag = "!!str"
		target.Style = 0
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(work); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRewrite, "template serialization failed", err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRewrite, "template serialization failed", err)
	}

	text := buf.String()
	for i, c := range candidates {
		text = replaceSentinel(text, sentinel(i), placeholder(c))
	}

	return &Rendered{
		Resource: res,
		Filename: Filename(res.Kind, res.Name),
		Text:     text,
	}, nil
}

// Filename derives the template file name for a resource.
func Filename(kind, name string) string {
	return fmt.Sprintf("%s-%s.yaml", sanitizeFile(kind), sanitizeFile(name))
}

func sanitizeFile(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}

// placeholder builds the template expression for a candidate. Image fields
// combine the repository and tag keys so rendering reproduces the original
// repository:tag literal.
func placeholder(c *values.Candidate) string {
	if c.IsImage {
		return fmt.Sprintf("%q", fmt.Sprintf("{{ .Values.%s }}:{{ .Values.%s }}", c.RepoKey, c.TagKey))
	}
	expr := fmt.Sprintf("{{ .Values.%s }}", c.Key)
	if c.Unquoted {
		return expr
	}
	return fmt.Sprintf("%q", expr)
}

// replaceSentinel swaps a sentinel token for its placeholder, consuming
// quotes the encoder may have put around the sentinel itself.
func replaceSentinel(text, sent, repl string) string {
	for _, quoted := range []string{"'" + sent + "'", `"` + sent + `"`, sent} {
		if strings.Contains(text, quoted) {
			return strings.Replace(text, quoted, repl, 1)
		}
	}
	return text
}

func sentinel(i int) string {
	return fmt.Sprintf("__kube2helm_placeholder_%d__", i)
}

// copyNode deep-copies a yaml.Node tree so substitutions never touch the
// canonical resource tree.
func copyNode(node *yaml.Node) *yaml.Node {
	if node == nil {
		return nil
	}
	out := *node
	if len(node.Content) > 0 {
		out.Content = make([]*yaml.Node, len(node.Content))
		for i, child := range node.Content {
			out.Content[i] = copyNode(child)
		}
	}
	return &out
}
