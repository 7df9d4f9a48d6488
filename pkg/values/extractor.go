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

	"github.com/distribution/reference"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/kube2helm/pkg/manifest"
)

// defaultImageTag is assumed when an image reference carries no tag.
const defaultImageTag = "latest"

// Candidate is one field selected for externalization, holding the keys the
// registry assigned to it. Image fields are split into a repository and a
// tag value sharing the same field path.
type Candidate struct {
	// Path is the raw field path from the resource root, with sequence
	// indices as decimal strings.
	Path []string

	// Node is the scalar leaf in the resource's canonical tree.
	Node *yaml.Node

	// Key is the assigned values key for plain scalar candidates.
	Key Key

	// RepoKey and TagKey are set instead of Key for image candidates.
	RepoKey Key
	TagKey  Key

	// IsImage marks a container image split into repository and tag.
	IsImage bool

	// Unquoted marks numeric and boolean fields whose placeholder must be
	// emitted without quotes so the template engine preserves their type.
	Unquoted bool
}

// Extract walks res's field tree in pre-order (mapping keys in parse order,
// sequences by index) and registers every configurable field with reg.
// Returns the resource's candidates in traversal order.
//
// The allowlist: metadata.namespace, spec.replicas, Service spec.type,
// ConfigMap data entries, container image (split into repository/tag),
// container resource requests/limits (cpu/memory), container
// ports[].containerPort, and container env[].value. Fields under
// spec.selector are never extracted, and label keys listed in
// spec.selector.matchLabels stay literal. Secret data stays inline.
func Extract(res *manifest.Resource, reg *Registry) ([]*Candidate, error) {
	w := &walker{
		res:    res,
		reg:    reg,
		prefix: keyPrefix(res.Kind, res.Name),
	}
	if err := w.walk(res.Node, nil, nil); err != nil {
		return nil, err
	}
	return w.candidates, nil
}

// SelectorKeys returns the label keys under spec.selector.matchLabels,
// which are frozen for template rewriting. Nil when the resource carries no
// match-label selector.
func SelectorKeys(res *manifest.Resource) []string {
	matchLabels := manifest.Lookup(res.Node, []string{"spec", "selector", "matchLabels"})
	if matchLabels == nil || matchLabels.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(matchLabels.Content)/2)
	for i := 0; i+1 < len(matchLabels.Content); i += 2 {
		keys = append(keys, matchLabels.Content[i].Value)
	}
	return keys
}

type walker struct {
	res        *manifest.Resource
	reg        *Registry
	prefix     []string
	candidates []*Candidate
}

// walk visits node pre-order. path holds raw steps; friendly holds the
// values-key steps with sequence indices replaced by item names where
// available.
func (w *walker) walk(node *yaml.Node, path, friendly []string) error {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			value := node.Content[i+1]
			if err := w.visit(value, append(path, key), append(friendly, key)); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			idx := strconv.Itoa(i)
			step := idx
			if name := itemName(item); name != "" {
				step = SanitizeSegment(name)
			}
			if err := w.visit(item, append(path, idx), append(friendly, step)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) visit(node *yaml.Node, path, friendly []string) error {
	if node.Kind == yaml.ScalarNode {
		return w.visitScalar(node, path, friendly)
	}
	// Identity-matching structure is never descended into.
	if isSelectorPath(path) {
		return nil
	}
	return w.walk(node, path, friendly)
}

func (w *walker) visitScalar(node *yaml.Node, path, friendly []string) error {
	switch {
	case isImagePath(path):
		return w.addImage(node, path, friendly)
	case matchesAllowlist(w.res.Kind, path):
		if isDataEntry(w.res.Kind, path) {
			// Data keys are file names; dots in them would split the
			// values key, so the segment is sanitized.
			friendly = append(append([]string(nil), friendly[:len(friendly)-1]...),
				SanitizeSegment(friendly[len(friendly)-1]))
		}
		return w.addScalar(node, path, friendly)
	default:
		return nil
	}
}

func (w *walker) addScalar(node *yaml.Node, path, friendly []string) error {
	segments := append(w.prefix, friendlySuffix(friendly)...)
	key, err := w.reg.Register(segments, node)
	if err != nil {
		return err
	}
	w.candidates = append(w.candidates, &Candidate{
		Path:     append([]string(nil), path...),
		Node:     node,
		Key:      key,
		Unquoted: isUnquotedScalar(node),
	})
	return nil
}

func (w *walker) addImage(node *yaml.Node, path, friendly []string) error {
	repo, tag, ok := splitImage(node.Value)
	if !ok {
		// Digest pins and unparseable references stay inline.
		return nil
	}

	base := append(w.prefix, friendlySuffix(friendly)...)
	repoKey, err := w.reg.Register(append(base, "repository"), strScalar(repo))
	if err != nil {
		return err
	}
	tagKey, err := w.reg.Register(append(append([]string(nil), base...), "tag"), strScalar(tag))
	if err != nil {
		return err
	}

	w.candidates = append(w.candidates, &Candidate{
		Path:    append([]string(nil), path...),
		Node:    node,
		RepoKey: repoKey,
		TagKey:  tagKey,
		IsImage: true,
	})
	return nil
}

// splitImage separates an image reference into its repository text and tag,
// defaulting the tag to "latest" when absent. Returns ok=false for digest
// pins and references the docker reference grammar rejects.
func splitImage(image string) (repo, tag string, ok bool) {
	named, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		return "", "", false
	}
	if _, digested := named.(reference.Digested); digested {
		return "", "", false
	}

	tag = defaultImageTag
	if tagged, isTagged := named.(reference.Tagged); isTagged {
		tag = tagged.Tag()
	}

	// Keep the repository exactly as written rather than the normalized
	// form, so round-tripping repository:tag reproduces the original.
	repo = strings.TrimSuffix(image, ":"+tag)
	return repo, tag, true
}

// matchesAllowlist reports whether a raw scalar path is part of the fixed
// extraction policy (images are matched separately).
func matchesAllowlist(kind string, path []string) bool {
	switch {
	case pathEquals(path, "metadata", "namespace"):
		return true
	case pathEquals(path, "spec", "replicas"):
		return true
	case kind == "Service" && pathEquals(path, "spec", "type"):
		return true
	case isDataEntry(kind, path):
		return true
	}

	rest, inContainer := containerField(path)
	if !inContainer {
		return false
	}
	switch {
	case len(rest) == 3 && rest[0] == "resources" &&
		(rest[1] == "requests" || rest[1] == "limits") &&
		(rest[2] == "cpu" || rest[2] == "memory"):
		return true
	case len(rest) == 3 && rest[0] == "ports" && rest[2] == "containerPort":
		return true
	case len(rest) == 3 && rest[0] == "env" && rest[2] == "value":
		return true
	}
	return false
}

// isDataEntry reports whether path addresses a ConfigMap data entry.
// Secret data is excluded: its values are credentials and do not belong
// in values.yaml.
func isDataEntry(kind string, path []string) bool {
	return kind == "ConfigMap" && len(path) == 2 && path[0] == "data"
}

func isImagePath(path []string) bool {
	rest, inContainer := containerField(path)
	return inContainer && len(rest) == 1 && rest[0] == "image"
}

// containerField strips the leading steps up to and including a container
// sequence index, returning the remaining path. The containers sequence
// must live under spec (covers spec.containers and
// spec.template.spec.containers alike).
func containerField(path []string) ([]string, bool) {
	if len(path) == 0 || path[0] != "spec" {
		return nil, false
	}
	for i, step := range path {
		if step == "containers" && i+1 < len(path) {
			if _, err := strconv.Atoi(path[i+1]); err == nil {
				return path[i+2:], true
			}
		}
	}
	return nil, false
}

func isSelectorPath(path []string) bool {
	return len(path) == 2 && path[0] == "spec" && path[1] == "selector"
}

func pathEquals(path []string, want ...string) bool {
	if len(path) != len(want) {
		return false
	}
	for i := range want {
		if path[i] != want[i] {
			return false
		}
	}
	return true
}

func isUnquotedScalar(node *yaml.Node) bool {
	switch node.Tag {
	case "!!int", "!!bool", "!!float":
		return true
	default:
		return false
	}
}

func itemName(item *yaml.Node) string {
	if item.Kind != yaml.MappingNode {
		return ""
	}
	name := manifest.MappingValue(item, "name")
	if name == nil || name.Kind != yaml.ScalarNode {
		return ""
	}
	return name.Value
}

func strScalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}
