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
	"testing"
	"time"

	"github.com/urfave/cli/v3"
)

// parseWithArgs runs the convert command's flag parsing without executing
// the conversion itself.
func parseWithArgs(t *testing.T, args ...string) (*convertCmdOptions, error) {
	t.Helper()

	var (
		opts     *convertCmdOptions
		parseErr error
	)
	cmd := convertCmd()
	cmd.Action = func(_ context.Context, c *cli.Command) error {
		opts, parseErr = parseConvertCmdOptions(c)
		return nil
	}

	root := &cli.Command{Name: "kube2helm", Commands: []*cli.Command{cmd}}
	argv := append([]string{"kube2helm", "convert"}, args...)
	if err := root.Run(context.Background(), argv); err != nil {
		return nil, err
	}
	return opts, parseErr
}

func TestParseConvertCmdOptionsDefaults(t *testing.T) {
	opts, err := parseWithArgs(t, "--input", "manifests.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts.inputs) != 1 || opts.inputs[0] != "manifests.yaml" {
		t.Errorf("unexpected inputs: %v", opts.inputs)
	}
	if opts.outputDir != "." {
		t.Errorf("expected default output '.', got %q", opts.outputDir)
	}
	if opts.chartVersion != "0.1.0" {
		t.Errorf("expected default chart version, got %q", opts.chartVersion)
	}
	if opts.outputFormat != outputFormatDir {
		t.Errorf("expected default output format, got %q", opts.outputFormat)
	}
	if opts.aiTimeout != 30*time.Second {
		t.Errorf("unexpected ai timeout default: %s", opts.aiTimeout)
	}
	if opts.dryRun || opts.overwrite || opts.useAI || opts.push {
		t.Error("boolean flags must default to false")
	}
}

func TestParseConvertCmdOptionsRepeatedInputs(t *testing.T) {
	opts, err := parseWithArgs(t, "-i", "a.yaml", "-i", "b.yaml", "-o", "./chart")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts.inputs) != 2 {
		t.Fatalf("expected 2 inputs, got %v", opts.inputs)
	}
	if opts.outputDir != "./chart" {
		t.Errorf("unexpected output dir %q", opts.outputDir)
	}
}

func TestParseConvertCmdOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "bad output format",
			args: []string{"--input", "a.yaml", "--output-format", "zip"},
		},
		{
			name: "push without oci",
			args: []string{"--input", "a.yaml", "--push"},
		},
		{
			name: "oci without registry",
			args: []string{"--input", "a.yaml", "--output-format", "oci", "--repository", "org/chart"},
		},
		{
			name: "oci without repository",
			args: []string{"--input", "a.yaml", "--output-format", "oci", "--registry", "ghcr.io"},
		},
		{
			name: "oci with dry run",
			args: []string{"--input", "a.yaml", "--output-format", "oci",
				"--registry", "ghcr.io", "--repository", "org/chart", "--dry-run"},
		},
		{
			name: "use-ai without token",
			args: []string{"--input", "a.yaml", "--use-ai"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseWithArgs(t, tt.args...); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestParseConvertCmdOptionsOCIDefaults(t *testing.T) {
	opts, err := parseWithArgs(t, "--input", "a.yaml", "--output-format", "oci",
		"--registry", "ghcr.io", "--repository", "org/chart")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.tag != defaultOCITag {
		t.Errorf("expected default tag %q, got %q", defaultOCITag, opts.tag)
	}
}

func TestConvertCmdFlags(t *testing.T) {
	cmd := convertCmd()

	requiredFlags := []string{
		"input", "output", "chart-name", "chart-version", "dry-run", "overwrite",
		"use-ai", "ai-url", "ai-token", "ai-timeout", "output-format",
		"registry", "repository", "tag", "push", "kubeconfig",
	}
	for _, flagName := range requiredFlags {
		found := false
		for _, flag := range cmd.Flags {
			for _, n := range flag.Names() {
				if n == flagName {
					found = true
					break
				}
			}
		}
		if !found {
			t.Errorf("flag %q not found", flagName)
		}
	}

	if cmd.Action == nil {
		t.Error("Action should not be nil")
	}
}

func TestRootCmdWiring(t *testing.T) {
	root := rootCmd()
	if root.Name != "kube2helm" {
		t.Errorf("unexpected root name %q", root.Name)
	}

	var names []string
	for _, c := range root.Commands {
		names = append(names, c.Name)
	}
	for _, want := range []string{"convert", "version"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("command %q not registered", want)
		}
	}
}
