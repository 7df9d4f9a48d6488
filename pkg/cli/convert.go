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

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/kube2helm/pkg/ai"
	"github.com/NVIDIA/kube2helm/pkg/converter"
	"github.com/NVIDIA/kube2helm/pkg/defaults"
	"github.com/NVIDIA/kube2helm/pkg/oci"
)

// Output format constants.
const (
	outputFormatDir = "dir"
	outputFormatOCI = "oci"
	defaultOCITag   = "latest"
)

// convertCmdOptions holds parsed options for the convert command.
type convertCmdOptions struct {
	inputs       []string
	outputDir    string
	chartName    string
	chartVersion string
	description  string
	kubeconfig   string
	dryRun       bool
	overwrite    bool
	useAI        bool
	aiURL        string
	aiToken      string
	aiTimeout    time.Duration
	outputFormat string
	registryHost string
	repository   string
	tag          string
	push         bool
	plainHTTP    bool
	insecureTLS  bool
}

// parseConvertCmdOptions parses and validates command options.
func parseConvertCmdOptions(cmd *cli.Command) (*convertCmdOptions, error) {
	opts := &convertCmdOptions{
		inputs:       cmd.StringSlice("input"),
		outputDir:    cmd.String("output"),
		chartName:    cmd.String("chart-name"),
		chartVersion: cmd.String("chart-version"),
		description:  cmd.String("description"),
		kubeconfig:   cmd.String("kubeconfig"),
		dryRun:       cmd.Bool("dry-run"),
		overwrite:    cmd.Bool("overwrite"),
		useAI:        cmd.Bool("use-ai"),
		aiURL:        cmd.String("ai-url"),
		aiToken:      cmd.String("ai-token"),
		aiTimeout:    cmd.Duration("ai-timeout"),
		outputFormat: cmd.String("output-format"),
		registryHost: cmd.String("registry"),
		repository:   cmd.String("repository"),
		tag:          cmd.String("tag"),
		push:         cmd.Bool("push"),
		plainHTTP:    cmd.Bool("plain-http"),
		insecureTLS:  cmd.Bool("insecure-tls"),
	}

	// Validate output-format
	if opts.outputFormat != outputFormatDir && opts.outputFormat != outputFormatOCI {
		return nil, fmt.Errorf("--output-format must be '%s' or '%s', got '%s'",
			outputFormatDir, outputFormatOCI, opts.outputFormat)
	}

	// Validate --push requires --output-format=oci
	if opts.push && opts.outputFormat != outputFormatOCI {
		return nil, fmt.Errorf("--push requires --output-format=oci")
	}

	if opts.outputFormat == outputFormatOCI {
		if opts.dryRun {
			return nil, fmt.Errorf("--output-format=oci cannot be combined with --dry-run")
		}
		if opts.registryHost == "" {
			return nil, fmt.Errorf("--registry is required when --output-format is 'oci'")
		}
		if opts.repository == "" {
			return nil, fmt.Errorf("--repository is required when --output-format is 'oci'")
		}
		if err := oci.ValidateRegistryReference(opts.registryHost, opts.repository); err != nil {
			return nil, fmt.Errorf("invalid OCI reference: %w", err)
		}
		if opts.tag == "" {
			opts.tag = defaultOCITag
		}
	}

	if opts.useAI && opts.aiToken == "" {
		return nil, fmt.Errorf("--use-ai requires an API token (--ai-token or KUBE2HELM_AI_TOKEN)")
	}

	return opts, nil
}

func convertCmd() *cli.Command {
	return &cli.Command{
		Name:                  "convert",
		EnableShellCompletion: true,
		Usage:                 "Convert Kubernetes manifests into a Helm chart",
		Description: `Convert plain Kubernetes manifests into a deployable Helm chart.

The converter splits multi-document YAML into individual resources, extracts
tunable fields into values.yaml, and rewrites each manifest as a chart
template referencing those values.

# Extracted Values

  - Container images, split into repository and tag keys
  - spec.replicas on workload kinds
  - Service spec.type
  - metadata.namespace
  - Container resource requests and limits (cpu, memory)
  - Container ports (containerPort) and environment variable values

Selector labels and their matching template labels are never extracted, so
generated charts keep workload/service wiring intact. Images pinned by digest
are left inline.

# Input Sources

  - A YAML file or a directory (walked for *.yaml / *.yml)
  - An HTTP or HTTPS URL
  - A ConfigMap URI: cm://namespace/name (each data key is one manifest file)

# Examples

Convert a manifest directory into a chart:
  kube2helm convert --input ./manifests --output ./my-chart

Convert multiple sources with an explicit chart name and version:
  kube2helm convert -i deploy.yaml -i svc.yaml -o ./chart \
    --chart-name web --chart-version 1.2.0

Preview without writing files:
  kube2helm convert --input ./manifests --output ./my-chart --dry-run

Refine templates with AI assist (falls back to deterministic output on error):
  kube2helm convert --input ./manifests --output ./my-chart --use-ai

Package the chart as an OCI artifact and push it:
  kube2helm convert --input ./manifests --output ./my-chart \
    --output-format oci --registry ghcr.io --repository nvidia/my-chart \
    --tag v1.2.0 --push`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Required: true,
				Usage: `Manifest source (can be repeated).
	Supports: file paths, directories, HTTP/HTTPS URLs, or ConfigMap URIs (cm://namespace/name).`,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   ".",
				Usage:   "Output directory for the generated chart (the directory becomes the chart root)",
			},
			&cli.StringFlag{
				Name:  "chart-name",
				Usage: "Chart name (default: derived from the output directory name)",
			},
			&cli.StringFlag{
				Name:  "chart-version",
				Value: "0.1.0",
				Usage: "Chart version written to Chart.yaml",
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "Chart description written to Chart.yaml",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the planned chart files without writing anything",
			},
			&cli.BoolFlag{
				Name:  "overwrite",
				Usage: "Overwrite an existing chart in the output directory",
			},
			// AI assist flags
			&cli.BoolFlag{
				Name:  "use-ai",
				Usage: "Refine generated templates with the AI assist endpoint",
			},
			&cli.StringFlag{
				Name:  "ai-url",
				Value: ai.DefaultAPIURL,
				Usage: "AI assist inference endpoint URL",
			},
			&cli.StringFlag{
				Name:    "ai-token",
				Usage:   "API token for the AI assist endpoint",
				Sources: cli.EnvVars("KUBE2HELM_AI_TOKEN"),
			},
			&cli.DurationFlag{
				Name:  "ai-timeout",
				Value: defaults.AIAssistTimeout,
				Usage: "Per-resource timeout for AI assist calls",
			},
			// Output format flag
			&cli.StringFlag{
				Name:    "output-format",
				Aliases: []string{"F"},
				Value:   outputFormatDir,
				Usage:   "Output format: 'dir' (local directory) or 'oci' (OCI artifact)",
			},
			// OCI registry flags (used when output-format is oci)
			&cli.StringFlag{
				Name:  "registry",
				Usage: "OCI registry host for image reference (e.g., ghcr.io, localhost:5000)",
			},
			&cli.StringFlag{
				Name:  "repository",
				Usage: "OCI repository path for image reference (e.g., nvidia/my-chart)",
			},
			&cli.StringFlag{
				Name:  "tag",
				Usage: fmt.Sprintf("OCI image tag (default: %s)", defaultOCITag),
			},
			&cli.BoolFlag{
				Name:  "push",
				Usage: "Push OCI artifact to remote registry (requires --output-format=oci)",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "Skip TLS certificate verification for OCI registry",
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "Use HTTP instead of HTTPS for OCI registry (for local development)",
			},
			kubeconfigFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := parseConvertCmdOptions(cmd)
			if err != nil {
				return err
			}

			slog.Info("converting manifests",
				slog.Any("inputs", opts.inputs),
				slog.String("output", opts.outputDir),
				slog.Bool("dry-run", opts.dryRun),
				slog.Bool("use-ai", opts.useAI),
			)

			convOpts := []converter.Option{
				converter.WithInputs(opts.inputs...),
				converter.WithOutputDir(opts.outputDir),
				converter.WithChartName(opts.chartName),
				converter.WithChartVersion(opts.chartVersion),
				converter.WithDescription(opts.description),
				converter.WithKubeconfig(opts.kubeconfig),
				converter.WithDryRun(opts.dryRun),
				converter.WithOverwrite(opts.overwrite),
			}
			if opts.useAI {
				convOpts = append(convOpts, converter.WithTransformer(ai.NewClient(
					opts.aiToken,
					ai.WithAPIURL(opts.aiURL),
					ai.WithTimeout(opts.aiTimeout),
				)))
			}

			conv, err := converter.New(convOpts...)
			if err != nil {
				return err
			}

			result, err := conv.Convert(ctx)
			if err != nil {
				slog.Error("conversion failed", "error", err)
				return err
			}

			if opts.dryRun {
				printPlan(result)
			}
			fmt.Fprint(os.Stdout, result.Summary())

			if opts.outputFormat == outputFormatOCI {
				return packageOCI(ctx, opts)
			}
			return nil
		},
	}
}

// printPlan writes every planned chart file to stdout, each prefixed with a
// comment header naming its path inside the chart.
func printPlan(result *converter.Result) {
	for _, f := range result.Plan.Files {
		fmt.Fprintf(os.Stdout, "---\n# %s\n%s", f.Path, f.Data)
		if len(f.Data) > 0 && f.Data[len(f.Data)-1] != '\n' {
			fmt.Fprintln(os.Stdout)
		}
	}
}

// packageOCI pushes the written chart directory to the configured registry.
func packageOCI(ctx context.Context, opts *convertCmdOptions) error {
	if !opts.push {
		slog.Info("skipping registry push (--push not set)",
			"registry", opts.registryHost, "repository", opts.repository, "tag", opts.tag)
		return nil
	}
	res, err := oci.Push(ctx, oci.PushOptions{
		ChartDir:    opts.outputDir,
		Registry:    opts.registryHost,
		Repository:  opts.repository,
		Tag:         opts.tag,
		PlainHTTP:   opts.plainHTTP,
		InsecureTLS: opts.insecureTLS,
	})
	if err != nil {
		slog.Error("failed to push chart artifact", "error", err)
		return err
	}
	slog.Info("chart artifact pushed", "reference", res.Reference, "digest", res.Digest)
	return nil
}
