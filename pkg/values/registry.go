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
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/kube2helm/pkg/errors"
)

// Key uniquely identifies one entry in the merged values mapping, as a
// dotted path (e.g. "deployment.web.replicas").
type Key string

// Segments returns the dotted key split into its path segments.
func (k Key) Segments() []string {
	return strings.Split(string(k), ".")
}

type entry struct {
	key   Key
	value *yaml.Node
}

// Registry accumulates extracted (key, value) pairs across all resources of
// one conversion run. Insertion order is preserved for deterministic
// serialization. Single-writer: all registration happens during one
// sequential extraction pass before templating begins.
type Registry struct {
	entries []entry
	index   map[Key]int
	closed  bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[Key]int),
	}
}

// Register stores value under the dotted key built from segments. On
// collision with an existing key the final segment is retried with a
// zero-based numeric suffix until a free key is found, guaranteeing
// injectivity. Returns the key actually assigned.
//
// Registration after Finalize fails with a registry-closed error; that is a
// programming error, fatal to the whole run.
func (r *Registry) Register(segments []string, value *yaml.Node) (Key, error) {
	if r.closed {
		return "", errors.New(errors.ErrCodeRegistryClosed,
			"value registration after registry finalization")
	}
	if len(segments) == 0 {
		return "", errors.New(errors.ErrCodeInvalidRequest, "empty key segments")
	}

	base := Key(strings.Join(segments, "."))
	key := base
	for n := 0; ; n++ {
		if _, taken := r.index[key]; !taken {
			break
		}
		key = base + Key(strconv.Itoa(n))
	}

	r.index[key] = len(r.entries)
	r.entries = append(r.entries, entry{key: key, value: value})
	return key, nil
}

// Finalize closes the registry for registration. Idempotent.
func (r *Registry) Finalize() {
	r.closed = true
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Keys returns all assigned keys in insertion order.
func (r *Registry) Keys() []Key {
	keys := make([]Key, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.key
	}
	return keys
}

// Lookup returns the value node stored under key, or nil.
func (r *Registry) Lookup(key Key) *yaml.Node {
	i, ok := r.index[key]
	if !ok {
		return nil
	}
	return r.entries[i].value
}

// Encode nests the dotted keys into a mapping node suitable for values.yaml
// serialization, preserving insertion order at every level.
func (r *Registry) Encode() (*yaml.Node, error) {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, e := range r.entries {
		if err := insertNested(root, e.key.Segments(), e.value); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// insertNested walks/creates intermediate mappings for all but the last
// segment, then attaches the value. A path that crosses an existing scalar
// leaf indicates conflicting keys, which the key derivation rules should
// never produce.
func insertNested(root *yaml.Node, segments []string, value *yaml.Node) error {
	current := root
	for _, seg := range segments[:len(segments)-1] {
		next := childValue(current, seg)
		if next == nil {
			next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			current.Content = append(current.Content,
				scalarKey(seg), next)
		}
		if next.Kind != yaml.MappingNode {
			return errors.NewWithContext(errors.ErrCodeInternal,
				"values key nests under a scalar entry",
				map[string]any{"segment": seg, "key": strings.Join(segments, ".")})
		}
		current = next
	}

	leaf := segments[len(segments)-1]
	if childValue(current, leaf) != nil {
		return errors.NewWithContext(errors.ErrCodeInternal,
			"duplicate values key after nesting",
			map[string]any{"key": strings.Join(segments, ".")})
	}
	current.Content = append(current.Content, scalarKey(leaf), value)
	return nil
}

func childValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func scalarKey(key string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
}
