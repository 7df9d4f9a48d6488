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
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	k2herrors "github.com/NVIDIA/kube2helm/pkg/errors"
)

// Document is one YAML unit parsed from a manifest source. The node tree is
// immutable once produced; consumers that need to mutate it must operate on
// a copy.
type Document struct {
	// Node is the document root (yaml.DocumentNode).
	Node *yaml.Node

	// Source identifies the originating file, URL, or ConfigMap key.
	Source string

	// Ordinal is the 1-based position of this document within the source,
	// counting skipped and failed documents.
	Ordinal int
}

// Root returns the document's content node, or nil for an empty document.
func (d *Document) Root() *yaml.Node {
	if d.Node == nil || len(d.Node.Content) == 0 {
		return nil
	}
	return d.Node.Content[0]
}

// Split parses a raw manifest blob into its YAML documents in source order.
// Empty documents are skipped. A malformed document is reported as a parse
// error without preventing the remaining documents from being returned:
// when the stream decoder fails mid-stream, Split falls back to splitting
// on document separators and decoding each unit independently.
func Split(source string, data []byte) ([]*Document, []error) {
	docs, errs, clean := decodeStream(source, data)
	if clean {
		return docs, errs
	}

	slog.Debug("stream decode failed, splitting on document separators", "source", source)
	return decodeUnits(source, data)
}

// decodeStream decodes the whole blob with a single yaml.Decoder. The clean
// return is false when the decoder aborted before reaching EOF, in which
// case the caller should retry unit-by-unit so later documents survive.
func decodeStream(source string, data []byte) (docs []*Document, errs []error, clean bool) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	ordinal := 0

	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			return docs, errs, true
		}
		ordinal++
		if err != nil {
			// The decoder is unusable after an error; signal fallback.
			return nil, nil, false
		}
		if doc := newDocument(source, ordinal, &node); doc != nil {
			docs = append(docs, doc)
		}
	}
}

// decodeUnits splits on "---" separators and decodes each unit on its own,
// collecting per-unit parse errors.
func decodeUnits(source string, data []byte) ([]*Document, []error) {
	var (
		docs []*Document
		errs []error
	)

	for i, unit := range splitUnits(data) {
		ordinal := i + 1
		if len(bytes.TrimSpace(unit)) == 0 {
			continue
		}
		var node yaml.Node
		if err := yaml.Unmarshal(unit, &node); err != nil {
			errs = append(errs, k2herrors.WrapWithContext(
				k2herrors.ErrCodeParse,
				"malformed YAML document",
				err,
				map[string]any{"source": source, "document": ordinal},
			))
			continue
		}
		if doc := newDocument(source, ordinal, &node); doc != nil {
			docs = append(docs, doc)
		}
	}
	return docs, errs
}

// splitUnits splits raw bytes on line-leading document separators. Every
// unit keeps its slot, including empty ones, so ordinals line up with the
// separators in the source.
func splitUnits(data []byte) [][]byte {
	lines := strings.Split(string(data), "\n")
	var (
		units   [][]byte
		current []string
	)
	flush := func() {
		units = append(units, []byte(strings.Join(current, "\n")))
		current = current[:0]
	}
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "---" || strings.HasPrefix(trimmed, "--- ") {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return units
}

// newDocument wraps a decoded node, returning nil for empty or null
// documents.
func newDocument(source string, ordinal int, node *yaml.Node) *Document {
	if node.Kind == 0 || len(node.Content) == 0 {
		return nil
	}
	root := node.Content[0]
	if root == nil || root.Tag == "!!null" {
		return nil
	}
	return &Document{
		Node:    node,
		Source:  source,
		Ordinal: ordinal,
	}
}
