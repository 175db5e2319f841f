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

package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const openAIProviderName = "openai"

// OpenAIClient wraps the go-openai client for any OpenAI-compatible endpoint
type OpenAIClient struct {
	client *openai.Client
	logger *zap.Logger
	model  string
}

// NewOpenAIClient creates a client for the given endpoint. An empty endpoint
// uses the library default.
func NewOpenAIClient(apiKey, endpoint, model string, logger *zap.Logger) *OpenAIClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		logger: logger,
		model:  model,
	}
}

// Complete sends one chat completion with a system and a user message
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	openaiReq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	c.logger.Debug("Creating chat completion",
		zap.String("model", c.model),
		zap.Int("max_tokens", req.MaxTokens),
		zap.Float64("temperature", float64(req.Temperature)),
		zap.String("prompt_preview", truncateText(req.Prompt, 100)),
	)

	resp, err := c.client.CreateChatCompletion(ctx, openaiReq)
	if err != nil {
		return "", c.handleAPIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: openAIProviderName, Message: "no choices returned"}
	}

	c.logger.Debug("Chat completion successful",
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return resp.Choices[0].Message.Content, nil
}

// handleAPIError converts go-openai errors into a ProviderError carrying the
// HTTP status reported by the endpoint.
func (c *OpenAIClient) handleAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Provider:   openAIProviderName,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{
			Provider:   openAIProviderName,
			StatusCode: reqErr.HTTPStatusCode,
			Message:    fmt.Sprintf("request failed: %v", reqErr.Err),
			Err:        err,
		}
	}

	// Transport errors and context cancellation pass through unchanged so
	// callers can still match context.DeadlineExceeded.
	return fmt.Errorf("%s client error: %w", openAIProviderName, err)
}
