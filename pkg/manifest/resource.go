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

package manifest

import (
	"strconv"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/NVIDIA/kube2helm/pkg/errors"
)

// Resource is one Kubernetes object decoded from a manifest document.
// Kind, APIVersion, and Name are guaranteed non-empty after successful
// construction. The node tree is never mutated after creation; the
// template rewriter substitutes fields on a rendering-only copy.
type Resource struct {
	Kind       string
	APIVersion string
	Name       string
	Namespace  string
	GVK        schema.GroupVersionKind

	// Node is the resource's root mapping node.
	Node *yaml.Node

	// Doc is the originating document, retained for skip reporting.
	Doc *Document
}

// BuildResource validates a document's Kubernetes identity fields and wraps
// its node tree in a Resource. The document root must be a mapping with
// non-empty kind, apiVersion, and metadata.name; any absence fails with an
// invalid-resource error naming the missing field and the document's
// ordinal position.
func BuildResource(doc *Document) (*Resource, error) {
	root := doc.Root()
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, invalidResource(doc, "document root is not a mapping", "")
	}

	kind := scalarValue(MappingValue(root, "kind"))
	if kind == "" {
		return nil, invalidResource(doc, "missing required field", "kind")
	}
	apiVersion := scalarValue(MappingValue(root, "apiVersion"))
	if apiVersion == "" {
		return nil, invalidResource(doc, "missing required field", "apiVersion")
	}

	meta := MappingValue(root, "metadata")
	name := scalarValue(MappingValue(meta, "name"))
	if name == "" {
		return nil, invalidResource(doc, "missing required field", "metadata.name")
	}

	gv, err := schema.ParseGroupVersion(apiVersion)
	if err != nil {
		return nil, invalidResource(doc, "malformed apiVersion", "apiVersion")
	}

	return &Resource{
		Kind:       kind,
		APIVersion: apiVersion,
		Name:       name,
		Namespace:  scalarValue(MappingValue(meta, "namespace")),
		GVK:        gv.WithKind(kind),
		Node:       root,
		Doc:        doc,
	}, nil
}

func invalidResource(doc *Document, msg, field string) error {
	ctx := map[string]any{
		"source":   doc.Source,
		"document": doc.Ordinal,
	}
	if field != "" {
		ctx["field"] = field
	}
	return errors.NewWithContext(errors.ErrCodeInvalidResource, msg, ctx)
}

// MappingValue returns the value node for key within a mapping node, or nil
// when node is not a mapping or the key is absent.
func MappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// Lookup resolves an ordered field path (mapping keys and decimal sequence
// indices) from node. Returns nil when any step fails to resolve.
func Lookup(node *yaml.Node, path []string) *yaml.Node {
	current := node
	for _, step := range path {
		if current == nil {
			return nil
		}
		switch current.Kind {
		case yaml.MappingNode:
			current = MappingValue(current, step)
		case yaml.SequenceNode:
			idx, err := strconv.Atoi(step)
			if err != nil || idx < 0 || idx >= len(current.Content) {
				return nil
			}
			current = current.Content[idx]
		default:
			return nil
		}
	}
	return current
}

func scalarValue(node *yaml.Node) string {
	if node == nil || node.Kind != yaml.ScalarNode {
		return ""
	}
	return node.Value
}
