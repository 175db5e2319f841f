// Copyright 2024 Workflow Generator Project
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

// Package llm provides text-completion providers behind a single narrow
// contract: a system instruction and a user prompt in, generated text out.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/your-org/workflow-generator/internal/config"
)

const (
	// BackendOpenAI talks to any OpenAI-compatible endpoint through go-openai
	BackendOpenAI = "openai"
	// BackendLangChain talks to an OpenAI-compatible endpoint through langchaingo
	BackendLangChain = "langchain"
)

// ErrNotConfigured is returned when no API credential is available
var ErrNotConfigured = errors.New("completion provider is not configured")

// CompletionRequest is a single completion call
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Completer generates text for a prompt
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ProviderError is a failure reported by the completion provider
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying client error
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a later attempt could succeed
func (e *ProviderError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// IsRetryable reports whether err is a retryable provider error
func IsRetryable(err error) bool {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Retryable()
	}
	return false
}

// New builds the completer selected by the provider configuration.
// It returns ErrNotConfigured when the API key is empty.
func New(cfg config.ProviderConfig, logger *zap.Logger) (Completer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}

	switch cfg.Backend {
	case BackendOpenAI, "":
		return NewOpenAIClient(cfg.APIKey, cfg.Endpoint, cfg.Model, logger), nil
	case BackendLangChain:
		client, err := NewLangChainClient(cfg.APIKey, cfg.Endpoint, cfg.Model, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported provider backend: %s", cfg.Backend)
	}
}

// truncateText truncates text to a maximum length for logging
func truncateText(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}
	return text[:maxLength] + "..."
}
