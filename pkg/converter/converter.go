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
	stderrors "errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/NVIDIA/kube2helm/pkg/ai"
	"github.com/NVIDIA/kube2helm/pkg/chart"
	"github.com/NVIDIA/kube2helm/pkg/defaults"
	"github.com/NVIDIA/kube2helm/pkg/errors"
	"github.com/NVIDIA/kube2helm/pkg/manifest"
	"github.com/NVIDIA/kube2helm/pkg/source"
	"github.com/NVIDIA/kube2helm/pkg/template"
	"github.com/NVIDIA/kube2helm/pkg/values"
	"github.com/NVIDIA/kube2helm/pkg/version"
)

// Skip reasons reported in Result.Skipped and on the skip counter.
const (
	skipReasonParse   = "parse"
	skipReasonInvalid = "invalid"
	skipReasonRewrite = "rewrite"
)

// Converter turns Kubernetes manifests into a Helm chart.
type Converter struct {
	inputs       []string
	outputDir    string
	chartName    string
	chartVersion string
	description  string
	kubeconfig   string
	useAI        bool
	dryRun       bool
	overwrite    bool
	aiWorkers    int

	loader      *source.Loader
	files       []source.File
	transformer ai.Transformer
}

// Option configures a Converter.
type Option func(*Converter)

// WithInputs sets the manifest sources (paths, http(s) URLs, cm:// URIs).
func WithInputs(inputs ...string) Option {
	return func(c *Converter) {
		c.inputs = append(c.inputs, inputs...)
	}
}

// WithOutputDir sets the directory the chart is written into. The directory
// itself becomes the chart root.
func WithOutputDir(dir string) Option {
	return func(c *Converter) {
		c.outputDir = dir
	}
}

// WithChartName overrides the chart name derived from the output directory.
func WithChartName(name string) Option {
	return func(c *Converter) {
		c.chartName = name
	}
}

// WithChartVersion sets the chart version written to Chart.yaml.
func WithChartVersion(v string) Option {
	return func(c *Converter) {
		c.chartVersion = v
	}
}

// WithDescription sets the chart description written to Chart.yaml.
func WithDescription(desc string) Option {
	return func(c *Converter) {
		c.description = desc
	}
}

// WithKubeconfig sets the kubeconfig path used for cm:// sources.
func WithKubeconfig(path string) Option {
	return func(c *Converter) {
		c.kubeconfig = path
	}
}

// WithTransformer enables AI assist using the given transformer.
func WithTransformer(t ai.Transformer) Option {
	return func(c *Converter) {
		c.transformer = t
		c.useAI = t != nil
	}
}

// WithDryRun plans the chart without writing any files.
func WithDryRun(dryRun bool) Option {
	return func(c *Converter) {
		c.dryRun = dryRun
	}
}

// WithOverwrite allows writing into a directory that already holds a chart.
func WithOverwrite(overwrite bool) Option {
	return func(c *Converter) {
		c.overwrite = overwrite
	}
}

// WithSourceFiles supplies manifest blobs directly, bypassing the source
// loader. Used by the conversion API where manifests arrive in the request
// body.
func WithSourceFiles(files ...source.File) Option {
	return func(c *Converter) {
		c.files = append(c.files, files...)
	}
}

// WithLoader overrides the source loader. Used in tests.
func WithLoader(l *source.Loader) Option {
	return func(c *Converter) {
		c.loader = l
	}
}

// New creates a Converter and validates its configuration.
func New(opts ...Option) (*Converter, error) {
	c := &Converter{
		chartVersion: "0.1.0",
		aiWorkers:    defaults.AIAssistWorkers,
	}
	for _, opt := range opts {
		opt(c)
	}

	if len(c.inputs) == 0 && len(c.files) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "at least one input source is required")
	}
	if c.outputDir == "" && !c.dryRun {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "output directory is required")
	}
	if c.chartName == "" {
		c.chartName = deriveChartName(c.outputDir)
	}
	if errs := validation.IsDNS1123Subdomain(c.chartName); len(errs) > 0 {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid chart name: %s", strings.Join(errs, "; ")),
			map[string]any{"name": c.chartName})
	}
	if !version.IsValid(c.chartVersion) {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"chart version must be valid semver",
			map[string]any{"version": c.chartVersion})
	}
	if c.loader == nil {
		c.loader = source.NewLoader(source.WithKubeconfig(c.kubeconfig))
	}
	return c, nil
}

// deriveChartName builds a chart name from the output directory base name,
// lowercased with invalid runes replaced so it passes DNS-1123 validation.
func deriveChartName(dir string) string {
	base := strings.ToLower(filepath.Base(filepath.Clean(dir)))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "generated-chart"
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	name := strings.Trim(b.String(), "-.")
	if name == "" {
		return "generated-chart"
	}
	return name
}

// Convert runs the full pipeline. Per-document failures are reported in the
// result's skip list; the run errors only when nothing converts or a chart
// cannot be assembled or written.
func (c *Converter) Convert(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:     uuid.NewString(),
		ChartName: c.chartName,
		OutputDir: c.outputDir,
		DryRun:    c.dryRun,
	}
	log := slog.With("run", result.RunID, "chart", c.chartName)

	files := c.files
	if len(c.inputs) > 0 {
		loaded, err := c.loader.Load(ctx, c.inputs)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to load manifest sources", err)
		}
		files = append(files, loaded...)
	}

	resources := c.collect(log, files, result)
	if len(resources) == 0 {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidResource,
			"no convertible resources found in input",
			map[string]any{"sources": len(files), "skipped": len(result.Skipped)})
	}

	registry := values.NewRegistry()
	candidates := make([][]*values.Candidate, len(resources))
	for i, res := range resources {
		cands, err := values.Extract(res, registry)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "value extraction failed", err)
		}
		candidates[i] = cands
	}
	registry.Finalize()
	result.Values = registry.Len()

	renders := make([]*template.Rendered, 0, len(resources))
	for i, res := range resources {
		rendered, err := template.Rewrite(res, candidates[i])
		if err != nil {
			log.Warn("skipping resource: template rewrite failed",
				"kind", res.Kind, "name", res.Name, "error", err)
			c.skip(result, SkippedDocument{
				Source:  res.Doc.Source,
				Ordinal: res.Doc.Ordinal,
				Kind:    res.Kind,
				Name:    res.Name,
				Reason:  skipReasonRewrite,
			})
			continue
		}
		renders = append(renders, rendered)
	}
	if len(renders) == 0 {
		return nil, errors.New(errors.ErrCodeRewrite, "no resources survived template rewriting")
	}

	if c.useAI && c.transformer != nil {
		if err := c.applyAI(ctx, log, renders); err != nil {
			return nil, err
		}
	}

	assembler := chart.NewAssembler(
		chart.WithName(c.chartName),
		chart.WithVersion(c.chartVersion),
		chart.WithDescription(c.description),
	)
	plan, err := assembler.Assemble(renders, registry)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "chart assembly failed", err)
	}
	result.Plan = plan

	for _, r := range renders {
		result.Converted = append(result.Converted, ResourceRef{
			Kind:     r.Resource.Kind,
			Name:     r.Resource.Name,
			Filename: r.Filename,
		})
		resourcesConverted.Inc()
	}

	if !c.dryRun {
		if err := chart.Write(plan, c.outputDir, c.overwrite); err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(start)
	conversionDuration.Observe(result.Duration.Seconds())
	log.Info("conversion complete",
		"converted", len(result.Converted),
		"skipped", len(result.Skipped),
		"values", result.Values,
		"dryRun", c.dryRun,
		"duration", result.Duration)
	return result, nil
}

// collect splits every loaded file and builds resources in source order,
// recording unparseable or invalid documents in the skip report.
func (c *Converter) collect(log *slog.Logger, files []source.File, result *Result) []*manifest.Resource {
	var resources []*manifest.Resource
	for _, f := range files {
		docs, splitErrs := manifest.Split(f.Path, f.Data)
		for _, err := range splitErrs {
			log.Warn("skipping document: parse failed", "source", f.Path, "error", err)
			c.skip(result, SkippedDocument{
				Source:  f.Path,
				Ordinal: ordinalOf(err),
				Reason:  skipReasonParse,
			})
		}
		for _, doc := range docs {
			res, err := manifest.BuildResource(doc)
			if err != nil {
				log.Warn("skipping document: not a convertible resource",
					"source", f.Path, "document", doc.Ordinal, "error", err)
				c.skip(result, SkippedDocument{
					Source:  f.Path,
					Ordinal: doc.Ordinal,
					Reason:  skipReasonInvalid,
				})
				continue
			}
			resources = append(resources, res)
		}
	}
	return resources
}

func (c *Converter) skip(result *Result, s SkippedDocument) {
	result.Skipped = append(result.Skipped, s)
	resourcesSkipped.WithLabelValues(s.Reason).Inc()
}

// ordinalOf pulls the document ordinal out of a split error's context, or
// returns -1 when the error does not carry one.
func ordinalOf(err error) int {
	var serr *errors.StructuredError
	if stderrors.As(err, &serr) {
		if n, ok := serr.Context["document"].(int); ok {
			return n
		}
	}
	return -1
}

// applyAI fans the rendered templates out to the transformer with a bounded
// worker pool and writes accepted refinements back by index, keeping the
// original resource order. A rejected or failed call leaves the deterministic
// template in place.
func (c *Converter) applyAI(ctx context.Context, log *slog.Logger, renders []*template.Rendered) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.aiWorkers)
	for i, r := range renders {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, ok := c.transformer.Transform(ctx, r.Resource.Kind, r.Text)
			if !ok {
				aiFallbacks.Inc()
				return nil
			}
			if !acceptRefinement(r, text) {
				log.Warn("rejecting AI refinement: frozen selector labels altered",
					"kind", r.Resource.Kind, "name", r.Resource.Name)
				aiFallbacks.Inc()
				return nil
			}
			renders[i].Text = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(errors.ErrCodeTimeout, "ai assist interrupted", err)
	}
	return nil
}

// acceptRefinement checks that an AI-produced template still carries the
// resource's identity and its frozen selector label keys as literals.
func acceptRefinement(r *template.Rendered, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if !strings.Contains(text, r.Resource.Kind) {
		return false
	}
	for _, key := range values.SelectorKeys(r.Resource) {
		if !strings.Contains(text, key+":") {
			return false
		}
	}
	return true
}
