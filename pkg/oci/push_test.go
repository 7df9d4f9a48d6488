/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package oci

import (
	"context"
	"strings"
	"testing"
)

func TestStripProtocol(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "https prefix",
			input:    "https://ghcr.io",
			expected: "ghcr.io",
		},
		{
			name:     "http prefix",
			input:    "http://localhost:5000",
			expected: "localhost:5000",
		},
		{
			name:     "no prefix",
			input:    "registry.example.com",
			expected: "registry.example.com",
		},
		{
			name:     "with port no prefix",
			input:    "localhost:5000",
			expected: "localhost:5000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripProtocol(tt.input); got != tt.expected {
				t.Errorf("stripProtocol(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidateRegistryReference(t *testing.T) {
	tests := []struct {
		name       string
		registry   string
		repository string
		wantErr    bool
	}{
		{
			name:       "valid ghcr reference",
			registry:   "ghcr.io",
			repository: "nvidia/my-chart",
		},
		{
			name:       "valid local registry",
			registry:   "localhost:5000",
			repository: "charts/web",
		},
		{
			name:       "protocol prefix stripped",
			registry:   "https://ghcr.io",
			repository: "nvidia/my-chart",
		},
		{
			name:       "invalid repository casing",
			registry:   "ghcr.io",
			repository: "Nvidia/My-Chart",
			wantErr:    true,
		},
		{
			name:       "empty repository",
			registry:   "ghcr.io",
			repository: "",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegistryReference(tt.registry, tt.repository)
			if tt.wantErr && err == nil {
				t.Errorf("expected error for %s/%s", tt.registry, tt.repository)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestPushRequiresTag(t *testing.T) {
	_, err := Push(context.Background(), PushOptions{
		ChartDir:   t.TempDir(),
		Registry:   "localhost:5000",
		Repository: "charts/web",
	})
	if err == nil {
		t.Fatal("expected error when tag is missing")
	}
	if !strings.Contains(err.Error(), "tag is required") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPushRejectsInvalidReference(t *testing.T) {
	_, err := Push(context.Background(), PushOptions{
		ChartDir:   t.TempDir(),
		Registry:   "localhost:5000",
		Repository: "Charts/Web",
		Tag:        "0.1.0",
	})
	if err == nil {
		t.Fatal("expected error for invalid reference")
	}
}
