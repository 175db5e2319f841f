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
	"regexp"
	"strconv"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

const langChainProviderName = "langchain"

// statusCodePattern finds the HTTP status langchaingo embeds in its error text
var statusCodePattern = regexp.MustCompile(`status code:?\s*(\d{3})`)

// LangChainClient completes prompts through a langchaingo model
type LangChainClient struct {
	model  llms.Model
	logger *zap.Logger
}

// NewLangChainClient creates a langchaingo OpenAI-compatible model
func NewLangChainClient(apiKey, endpoint, model string, logger *zap.Logger) (*LangChainClient, error) {
	opts := []lcopenai.Option{
		lcopenai.WithToken(apiKey),
	}
	if model != "" {
		opts = append(opts, lcopenai.WithModel(model))
	}
	if endpoint != "" {
		opts = append(opts, lcopenai.WithBaseURL(endpoint))
	}

	m, err := lcopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create langchain model: %w", err)
	}

	return NewLangChainClientWithModel(m, logger), nil
}

// NewLangChainClientWithModel wraps an existing langchaingo model
func NewLangChainClientWithModel(model llms.Model, logger *zap.Logger) *LangChainClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LangChainClient{model: model, logger: logger}
}

// Complete sends a system and a human message and returns the first choice
func (c *LangChainClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.System),
		llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt),
	}

	c.logger.Debug("Generating content",
		zap.Int("max_tokens", req.MaxTokens),
		zap.Float64("temperature", float64(req.Temperature)),
		zap.String("prompt_preview", truncateText(req.Prompt, 100)),
	)

	resp, err := c.model.GenerateContent(ctx, messages,
		llms.WithMaxTokens(req.MaxTokens),
		llms.WithTemperature(float64(req.Temperature)),
	)
	if err != nil {
		return "", classifyLangChainError(err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: langChainProviderName, Message: "no choices returned"}
	}

	c.logger.Debug("Content generated",
		zap.String("stop_reason", resp.Choices[0].StopReason),
		zap.Int("content_length", len(resp.Choices[0].Content)),
	)

	return resp.Choices[0].Content, nil
}

// classifyLangChainError lifts the HTTP status out of a langchaingo error.
// Context errors are returned unchanged.
func classifyLangChainError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	perr := &ProviderError{
		Provider: langChainProviderName,
		Message:  err.Error(),
		Err:      err,
	}
	if m := statusCodePattern.FindStringSubmatch(err.Error()); m != nil {
		if code, convErr := strconv.Atoi(m[1]); convErr == nil {
			perr.StatusCode = code
		}
	}
	return perr
}
