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
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/NVIDIA/kube2helm/pkg/ai"
	"github.com/NVIDIA/kube2helm/pkg/errors"
	"github.com/NVIDIA/kube2helm/pkg/server"
	"github.com/NVIDIA/kube2helm/pkg/source"
)

// Handler serves conversion requests over HTTP. Conversions run in dry-run
// mode: the staged chart is returned in the response body and nothing is
// written to the server's filesystem.
type Handler struct {
	// MaxRequestBytes caps the request body size. Zero means no cap.
	MaxRequestBytes int64

	// Transformer, when set, enables AI refinement of rendered templates.
	Transformer ai.Transformer
}

// ManifestInput is one named manifest blob in a conversion request.
type ManifestInput struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ConvertRequest is the POST /v1/convert request body.
type ConvertRequest struct {
	Manifests    []ManifestInput `json:"manifests"`
	ChartName    string          `json:"chartName,omitempty"`
	ChartVersion string          `json:"chartVersion,omitempty"`
	Description  string          `json:"description,omitempty"`
}

// ChartFile is one rendered chart file in a conversion response.
type ChartFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ConvertResponse is the POST /v1/convert response body.
type ConvertResponse struct {
	RunID     string            `json:"runId"`
	ChartName string            `json:"chartName"`
	Converted []ResourceRef     `json:"converted"`
	Skipped   []SkippedDocument `json:"skipped,omitempty"`
	Values    int               `json:"values"`
	Files     []ChartFile       `json:"files"`
	Duration  string            `json:"duration"`
}

// HandleConvert handles POST /v1/convert.
func (h *Handler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		server.WriteError(w, r, http.StatusMethodNotAllowed, server.ErrCodeMethodNotAllowed,
			"Method not allowed", false, map[string]interface{}{
				"method": r.Method,
			})
		return
	}

	body := r.Body
	if h.MaxRequestBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.MaxRequestBytes)
	}

	var req ConvertRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		status, code := http.StatusBadRequest, server.ErrCodeInvalidRequest
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			status, code = http.StatusRequestEntityTooLarge, server.ErrCodePayloadTooLarge
		}
		server.WriteError(w, r, status, code,
			"Invalid conversion request", false, map[string]interface{}{
				"error": err.Error(),
			})
		return
	}
	if len(req.Manifests) == 0 {
		server.WriteError(w, r, http.StatusBadRequest, server.ErrCodeInvalidRequest,
			"at least one manifest is required", false, nil)
		return
	}

	files := make([]source.File, 0, len(req.Manifests))
	for i, m := range req.Manifests {
		name := m.Name
		if name == "" {
			name = fmt.Sprintf("manifest-%d", i+1)
		}
		files = append(files, source.File{Path: name, Data: []byte(m.Content)})
	}

	opts := []Option{
		WithSourceFiles(files...),
		WithDryRun(true),
		WithChartName(req.ChartName),
		WithDescription(req.Description),
	}
	if req.ChartVersion != "" {
		opts = append(opts, WithChartVersion(req.ChartVersion))
	}
	if h.Transformer != nil {
		opts = append(opts, WithTransformer(h.Transformer))
	}

	c, err := New(opts...)
	if err != nil {
		writeConversionError(w, r, err)
		return
	}

	result, err := c.Convert(r.Context())
	if err != nil {
		writeConversionError(w, r, err)
		return
	}

	resp := ConvertResponse{
		RunID:     result.RunID,
		ChartName: result.ChartName,
		Converted: result.Converted,
		Skipped:   result.Skipped,
		Values:    result.Values,
		Files:     make([]ChartFile, 0, len(result.Plan.Files)),
		Duration:  result.Duration.Round(time.Millisecond).String(),
	}
	for _, f := range result.Plan.Files {
		resp.Files = append(resp.Files, ChartFile{Path: f.Path, Content: string(f.Data)})
	}

	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, http.StatusOK, resp)
}

// writeConversionError maps pipeline error codes onto HTTP statuses.
func writeConversionError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := server.ErrCodeInternalError
	retryable := true

	switch errors.CodeOf(err) {
	case errors.ErrCodeInvalidRequest, errors.ErrCodeInvalidResource, errors.ErrCodeParse:
		status, code, retryable = http.StatusBadRequest, server.ErrCodeInvalidRequest, false
	case errors.ErrCodeRewrite:
		status, code, retryable = http.StatusUnprocessableEntity, server.ErrCodeInvalidRequest, false
	case errors.ErrCodeTimeout:
		status, code = http.StatusGatewayTimeout, server.ErrCodeInternalError
	}

	server.WriteError(w, r, status, code, err.Error(), retryable, nil)
}

func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
