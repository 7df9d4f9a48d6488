/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package oci packages a generated chart directory as an OCI artifact and
// pushes it to a registry using ORAS.
package oci

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/distribution/reference"
	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
)

// ArtifactType is the media type for pushed chart artifacts.
const ArtifactType = "application/vnd.nvidia.kube2helm.chart"

// PushOptions configures the OCI push operation.
type PushOptions struct {
	// ChartDir is the chart directory to package and push.
	ChartDir string
	// Registry is the OCI registry host (e.g., "ghcr.io", "localhost:5000").
	Registry string
	// Repository is the image repository path (e.g., "org/my-chart").
	Repository string
	// Tag is the image tag; defaults to the chart version at the CLI layer.
	Tag string
	// PlainHTTP uses HTTP instead of HTTPS for the registry connection.
	PlainHTTP bool
	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
}

// PushResult contains the result of a successful push.
type PushResult struct {
	// Digest is the SHA256 digest of the pushed artifact.
	Digest string
	// Reference is the full image reference (registry/repository:tag).
	Reference string
}

// ValidateRegistryReference checks that registry and repository combine
// into a parseable image reference.
func ValidateRegistryReference(registry, repository string) error {
	refString := fmt.Sprintf("%s/%s", stripProtocol(registry), repository)
	if _, err := reference.ParseNormalizedNamed(refString); err != nil {
		return fmt.Errorf("invalid registry reference %q: %w", refString, err)
	}
	return nil
}

// Push packages the chart directory as a single gzipped layer and pushes
// it to the registry.
func Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	if opts.Tag == "" {
		return nil, fmt.Errorf("tag is required to push OCI image")
	}

	absDir, err := filepath.Abs(opts.ChartDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve chart dir: %w", err)
	}

	registryHost := stripProtocol(opts.Registry)
	refString := fmt.Sprintf("%s/%s:%s", registryHost, opts.Repository, opts.Tag)
	if _, parseErr := reference.ParseNormalizedNamed(refString); parseErr != nil {
		return nil, fmt.Errorf("invalid image reference %q: %w", refString, parseErr)
	}

	fs, err := file.New(absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create file store: %w", err)
	}
	defer func() { _ = fs.Close() }()

	// Deterministic tars keep digests stable across runs.
	fs.TarReproducible = true

	layerDesc, err := fs.Add(ctx, ".", ociv1.MediaTypeImageLayerGzip, absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to add chart directory to store: %w", err)
	}

	manifestDesc, err := oras.PackManifest(ctx, fs, oras.PackManifestVersion1_1, ArtifactType,
		oras.PackManifestOptions{
			Layers: []ociv1.Descriptor{layerDesc},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to pack manifest: %w", err)
	}

	if err := fs.Tag(ctx, manifestDesc, opts.Tag); err != nil {
		return nil, fmt.Errorf("failed to tag manifest in local store: %w", err)
	}

	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", registryHost, opts.Repository))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize remote repository: %w", err)
	}
	repo.PlainHTTP = opts.PlainHTTP
	repo.Client = newAuthClient(opts.PlainHTTP, opts.InsecureTLS)

	desc, err := oras.Copy(ctx, fs, opts.Tag, repo, opts.Tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to push chart to registry: %w", err)
	}

	return &PushResult{
		Digest:    desc.Digest.String(),
		Reference: refString,
	}, nil
}

func stripProtocol(registry string) string {
	registry = strings.TrimPrefix(registry, "https://")
	registry = strings.TrimPrefix(registry, "http://")
	return registry
}

// newAuthClient builds an auth client backed by local Docker credentials.
func newAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, _ := credentials.NewStoreFromDocker(credentials.StoreOptions{})

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !plainHTTP && insecureTLS {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		} else {
			transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
		}
	}

	return &auth.Client{
		Client:     &http.Client{Transport: transport},
		Cache:      auth.NewCache(),
		Credential: credentials.Credential(credStore),
	}
}
