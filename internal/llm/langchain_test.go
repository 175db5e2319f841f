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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap/zaptest"
)

// fakeModel is an in-memory llms.Model
type fakeModel struct {
	response *llms.ContentResponse
	err      error

	messages []llms.MessageContent
	options  llms.CallOptions
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, opt := range options {
		opt(&m.options)
	}
	return m.response, m.err
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestLangChainClientComplete(t *testing.T) {
	model := &fakeModel{response: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: `{"title": "x"}`, StopReason: "stop"}},
	}}
	client := NewLangChainClientWithModel(model, zaptest.NewLogger(t))

	text, err := client.Complete(context.Background(), CompletionRequest{
		System:      "be precise",
		Prompt:      "plan my week",
		MaxTokens:   4000,
		Temperature: 0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"title": "x"}`, text)

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, llms.TextContent{Text: "be precise"}, model.messages[0].Parts[0])
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Equal(t, llms.TextContent{Text: "plan my week"}, model.messages[1].Parts[0])
	assert.Equal(t, 4000, model.options.MaxTokens)
	assert.InDelta(t, 0.7, model.options.Temperature, 1e-6)
}

func TestLangChainClientNoChoices(t *testing.T) {
	client := NewLangChainClientWithModel(&fakeModel{response: &llms.ContentResponse{}}, zaptest.NewLogger(t))

	_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 0, perr.StatusCode)
}

func TestLangChainClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"payment required", errors.New("API returned unexpected status code: 402: Insufficient Balance"), 402},
		{"unauthorized", errors.New("API returned unexpected status code: 401: invalid api key"), 401},
		{"rate limited", fmt.Errorf("openai: %w", errors.New("status code 429")), 429},
		{"no status", errors.New("connection reset by peer"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewLangChainClientWithModel(&fakeModel{err: tt.err}, zaptest.NewLogger(t))

			_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
			var perr *ProviderError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.status, perr.StatusCode)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestLangChainClientContextErrorsPassThrough(t *testing.T) {
	client := NewLangChainClientWithModel(&fakeModel{err: context.DeadlineExceeded}, zaptest.NewLogger(t))

	_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	assert.Equal(t, context.DeadlineExceeded, err)

	var perr *ProviderError
	assert.False(t, errors.As(err, &perr))
}
