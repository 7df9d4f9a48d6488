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

// Package client builds the Kubernetes client used by the cm:// manifest
// source. Configuration is discovered from an explicit kubeconfig path, the
// KUBECONFIG environment variable, ~/.kube/config, or the in-cluster
// service account, in that order.
package client

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// Interface aliases kubernetes.Interface so tests can substitute
// fake.NewSimpleClientset().
type Interface = kubernetes.Interface

var (
	clientOnce   sync.Once
	cachedClient *kubernetes.Clientset
	clientErr    error
)

// GetKubeClient returns a singleton Kubernetes client, creating it on first
// call with automatic configuration discovery. Subsequent calls return the
// cached client for connection reuse.
func GetKubeClient() (Interface, error) {
	clientOnce.Do(func() {
		cachedClient, clientErr = BuildKubeClient("")
	})
	return cachedClient, clientErr
}

// BuildKubeClient creates a Kubernetes client from the given kubeconfig
// path, bypassing the singleton cache. An empty path triggers automatic
// discovery: KUBECONFIG, then ~/.kube/config, then in-cluster config.
func BuildKubeClient(kubeconfig string) (*kubernetes.Clientset, error) {
	var config *rest.Config
	var err error

	if kubeconfig == "" {
		kubeconfig = os.Getenv("KUBECONFIG")

		if kubeconfig == "" {
			kubeconfig = filepath.Join(homedir.HomeDir(), ".kube", "config")
			if _, err = os.Stat(kubeconfig); os.IsNotExist(err) {
				kubeconfig = ""
			}
		}
	}

	if kubeconfig == "" {
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to get in-cluster config: %w", err)
		}
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to build kube config from %s: %w", kubeconfig, err)
		}
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return clientset, nil
}
