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

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/kube2helm/pkg/defaults"
)

// DefaultAPIURL is the default text-generation inference endpoint.
const DefaultAPIURL = "https://api-inference.huggingface.co/models/HuggingFaceH4/zephyr-7b-beta"

const systemPrompt = "You are an expert Helm chart author. Given a Helm " +
	"template generated from a Kubernetes manifest, improve its templating " +
	"without changing resource semantics. Reply with the full template text " +
	"only, no commentary."

// Transformer may rewrite a resource's default template text. ok=false
// means the caller keeps the default text.
type Transformer interface {
	Transform(ctx context.Context, kind, defaultTemplate string) (string, bool)
}

// Client calls a hosted text-generation model over HTTPS.
type Client struct {
	apiURL  string
	token   string
	timeout time.Duration
	retries int
	client  *http.Client
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithAPIURL overrides the inference endpoint.
func WithAPIURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.apiURL = url
		}
	}
}

// WithTimeout bounds a single Transform call, retries included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewClient creates a Client with the given bearer credential.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		apiURL:  DefaultAPIURL,
		token:   token,
		timeout: defaults.AIAssistTimeout,
		retries: defaults.AIAssistRetries,
		client: &http.Client{
			Timeout: defaults.HTTPClientTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(defaults.AIAssistRequestsPerSecond), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// generateRequest is the inference API request payload.
type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

type generateParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type generateResponse struct {
	GeneratedText string `json:"generated_text"`
}

// Transform sends the default template to the model and returns its
// rewrite. The call is bounded by the client timeout and retried at most
// once; any failure returns ok=false.
func (c *Client) Transform(ctx context.Context, kind, defaultTemplate string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			lastErr = err
			break
		}

		text, err := c.generate(ctx, kind, defaultTemplate)
		if err == nil {
			return text, true
		}
		lastErr = err
	}

	slog.Warn("AI assist unavailable, keeping default template",
		"kind", kind, "error", lastErr)
	return "", false
}

func (c *Client) generate(ctx context.Context, kind, defaultTemplate string) (string, error) {
	prompt := fmt.Sprintf("<|system|>\n%s</s>\n<|user|>\nKubernetes kind: %s\n\n%s</s>\n<|assistant|>\n",
		systemPrompt, kind, defaultTemplate)

	payload, err := json.Marshal(generateRequest{
		Inputs: prompt,
		Parameters: generateParameters{
			MaxNewTokens:   2048,
			Temperature:    0.2,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("inference API returned %d: %s", resp.StatusCode, string(body))
	}

	var results []generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", fmt.Errorf("unexpected inference API response: %w", err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("empty inference API response")
	}

	text := strings.TrimSpace(results[0].GeneratedText)
	text = strings.TrimPrefix(text, "<|assistant|>")
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("blank generation")
	}
	return text, nil
}
