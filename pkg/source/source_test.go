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

package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/NVIDIA/kube2helm/pkg/errors"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deploy.yaml")
	if err := os.WriteFile(path, []byte("kind: Deployment\n"), 0644); err != nil {
		t.Fatal(err)
	}

	files, err := NewLoader().Load(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || files[0].Path != path {
		t.Fatalf("unexpected files: %+v", files)
	}
	if string(files[0].Data) != "kind: Deployment\n" {
		t.Errorf("unexpected data: %q", files[0].Data)
	}
}

func TestLoadDirectoryLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writes := map[string]string{
		"b-service.yaml":    "kind: Service\n",
		"a-deployment.yml":  "kind: Deployment\n",
		"notes.txt":         "not a manifest",
		"c-configmap.yaml":  "kind: ConfigMap\n",
	}
	for name, content := range writes {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := NewLoader().Load(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a-deployment.yml", "b-service.yaml", "c-configmap.yaml"}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(files))
	}
	for i, name := range want {
		if filepath.Base(files[i].Path) != name {
			t.Errorf("file %d: expected %s, got %s", i, name, files[i].Path)
		}
	}
}

func TestLoadMissingPath(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), []string{"/does/not/exist.yaml"})
	if err == nil {
		t.Fatal("expected error for missing path")
	}
	if code := errors.CodeOf(err); code != errors.ErrCodeNotFound {
		t.Errorf("expected not-found code, got %q", code)
	}
}

func TestLoadEmptyDirectory(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), []string{t.TempDir()})
	if err == nil {
		t.Fatal("expected error for empty input set")
	}
	if code := errors.CodeOf(err); code != errors.ErrCodeNotFound {
		t.Errorf("expected not-found code, got %q", code)
	}
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("kind: Service\n"))
	}))
	defer srv.Close()

	files, err := NewLoader().Load(context.Background(), []string{srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || string(files[0].Data) != "kind: Service\n" {
		t.Fatalf("unexpected files: %+v", files)
	}
}

func TestLoadURLNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewLoader().Load(context.Background(), []string{srv.URL})
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if code := errors.CodeOf(err); code != errors.ErrCodeNotFound {
		t.Errorf("expected not-found code, got %q", code)
	}
}

func TestLoadConfigMap(t *testing.T) {
	kube := fake.NewSimpleClientset(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "manifests",
			Namespace: "default",
		},
		Data: map[string]string{
			"z-service.yaml":    "kind: Service\n",
			"a-deployment.yaml": "kind: Deployment\n",
		},
	})

	loader := NewLoader(WithKubeClient(kube))
	files, err := loader.Load(context.Background(), []string{"cm://default/manifests"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Keys are read in sorted order for determinism.
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Path != "cm://default/manifests/a-deployment.yaml" {
		t.Errorf("unexpected first path: %s", files[0].Path)
	}
	if string(files[1].Data) != "kind: Service\n" {
		t.Errorf("unexpected data: %q", files[1].Data)
	}
}

func TestLoadConfigMapMissing(t *testing.T) {
	loader := NewLoader(WithKubeClient(fake.NewSimpleClientset()))
	_, err := loader.Load(context.Background(), []string{"cm://default/nope"})
	if err == nil {
		t.Fatal("expected error for missing ConfigMap")
	}
	if code := errors.CodeOf(err); code != errors.ErrCodeNotFound {
		t.Errorf("expected not-found code, got %q", code)
	}
}

func TestParseConfigMapURI(t *testing.T) {
	tests := []struct {
		uri     string
		ns      string
		name    string
		wantErr bool
	}{
		{"cm://gpu-operator/snapshot", "gpu-operator", "snapshot", false},
		{"cm://default/manifests", "default", "manifests", false},
		{"cm://onlyname", "", "", true},
		{"cm:///name", "", "", true},
		{"cm://ns/", "", "", true},
		{"cm://a/b/c", "", "", true},
	}
	for _, tt := range tests {
		ns, name, err := parseConfigMapURI(tt.uri)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tt.uri)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.uri, err)
			continue
		}
		if ns != tt.ns || name != tt.name {
			t.Errorf("%s: got %s/%s, want %s/%s", tt.uri, ns, name, tt.ns, tt.name)
		}
	}
}
