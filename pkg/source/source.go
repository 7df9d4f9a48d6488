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

// Package source loads raw manifest blobs from the supported input kinds:
// local files, directories (walked in lexical path order, .yaml/.yml only),
// http(s) URLs, and cm://namespace/name ConfigMap URIs read from a live
// cluster. Each loaded blob is treated as a candidate multi-document YAML
// source by the converter.
package source

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/NVIDIA/kube2helm/pkg/defaults"
	"github.com/NVIDIA/kube2helm/pkg/errors"
	"github.com/NVIDIA/kube2helm/pkg/k8s/client"
)

// ConfigMapURIScheme prefixes ConfigMap source URIs (cm://namespace/name).
const ConfigMapURIScheme = "cm://"

// File is one loaded manifest source.
type File struct {
	// Path identifies the source: file path, URL, or cm URI plus data key.
	Path string

	// Data is the raw blob.
	Data []byte
}

// Loader resolves input arguments into manifest blobs.
type Loader struct {
	kubeconfig string
	httpClient *http.Client
	kube       client.Interface
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithKubeconfig sets the kubeconfig path used for cm:// inputs.
func WithKubeconfig(path string) LoaderOption {
	return func(l *Loader) {
		l.kubeconfig = path
	}
}

// WithHTTPClient substitutes the HTTP client used for URL inputs.
func WithHTTPClient(hc *http.Client) LoaderOption {
	return func(l *Loader) {
		if hc != nil {
			l.httpClient = hc
		}
	}
}

// WithKubeClient injects a Kubernetes client, bypassing kubeconfig
// discovery. Used by tests with a fake clientset.
func WithKubeClient(c client.Interface) LoaderOption {
	return func(l *Loader) {
		l.kube = c
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		httpClient: &http.Client{Timeout: defaults.HTTPClientTimeout},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves every input in order and returns the loaded files. Fails
// when any input cannot be resolved or when no manifest source was found
// at all.
func (l *Loader) Load(ctx context.Context, inputs []string) ([]File, error) {
	var files []File

	for _, input := range inputs {
		switch {
		case strings.HasPrefix(input, ConfigMapURIScheme):
			loaded, err := l.loadConfigMap(ctx, input)
			if err != nil {
				return nil, err
			}
			files = append(files, loaded...)
		case strings.HasPrefix(input, "http://"), strings.HasPrefix(input, "https://"):
			loaded, err := l.loadURL(ctx, input)
			if err != nil {
				return nil, err
			}
			files = append(files, loaded)
		default:
			loaded, err := loadPath(input)
			if err != nil {
				return nil, err
			}
			files = append(files, loaded...)
		}
	}

	if len(files) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "no manifest sources found in inputs")
	}
	return files, nil
}

func loadPath(path string) ([]File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound,
			"input path not accessible", err, map[string]any{"path": path})
	}

	if !info.IsDir() {
		data, err := readLimited(path)
		if err != nil {
			return nil, err
		}
		return []File{{Path: path, Data: data}}, nil
	}

	var files []File
	// WalkDir visits entries in lexical order, which keeps directory
	// inputs deterministic.
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAMLFile(p) {
			return nil
		}
		data, err := readLimited(p)
		if err != nil {
			return err
		}
		files = append(files, File{Path: p, Data: data})
		return nil
	})
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal,
			"failed to walk input directory", err, map[string]any{"path": path})
	}
	return files, nil
}

func (l *Loader) loadURL(ctx context.Context, url string) (File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return File{}, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid manifest URL", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return File{}, errors.WrapWithContext(errors.ErrCodeNotFound,
			"failed to fetch manifest URL", err, map[string]any{"url": url})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return File{}, errors.NewWithContext(errors.ErrCodeNotFound,
			fmt.Sprintf("manifest URL returned status %d", resp.StatusCode),
			map[string]any{"url": url})
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, defaults.MaxManifestSize))
	if err != nil {
		return File{}, errors.Wrap(errors.ErrCodeInternal, "failed to read manifest response", err)
	}
	return File{Path: url, Data: data}, nil
}

func (l *Loader) loadConfigMap(ctx context.Context, uri string) ([]File, error) {
	namespace, name, err := parseConfigMapURI(uri)
	if err != nil {
		return nil, err
	}

	kube := l.kube
	if kube == nil {
		kube, err = client.BuildKubeClient(l.kubeconfig)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnauthorized,
				"failed to build kubernetes client for cm:// input", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.K8sAPITimeout)
	defer cancel()

	cm, err := kube.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound,
			"failed to read ConfigMap", err,
			map[string]any{"namespace": namespace, "name": name})
	}

	keys := make([]string, 0, len(cm.Data))
	for k := range cm.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	files := make([]File, 0, len(keys))
	for _, k := range keys {
		files = append(files, File{
			Path: uri + "/" + k,
			Data: []byte(cm.Data[k]),
		})
	}
	return files, nil
}

// parseConfigMapURI splits cm://namespace/name.
func parseConfigMapURI(uri string) (namespace, name string, err error) {
	rest := strings.TrimPrefix(uri, ConfigMapURIScheme)
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"ConfigMap URI must be cm://namespace/name",
			map[string]any{"uri": uri})
	}
	return parts[0], parts[1], nil
}

func isYAMLFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func readLimited(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound,
			"failed to open manifest file", err, map[string]any{"path": path})
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, defaults.MaxManifestSize))
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal,
			"failed to read manifest file", err, map[string]any{"path": path})
	}
	return data, nil
}
