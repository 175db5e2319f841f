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

// Package generator turns natural-language requests into tool lists,
// workflow plans, optimization tips and tab insights using a completion
// provider, falling back to canned content whenever generation fails.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/workflow-generator/internal/config"
	"github.com/your-org/workflow-generator/internal/extract"
	"github.com/your-org/workflow-generator/internal/fallback"
	"github.com/your-org/workflow-generator/internal/llm"
	"github.com/your-org/workflow-generator/internal/resilience"
	"github.com/your-org/workflow-generator/internal/workflow"
)

// Source tells whether a result came from the provider or the fallback
type Source string

const (
	// SourceProvider marks a result parsed from a completion
	SourceProvider Source = "provider"
	// SourceFallback marks a result built by the fallback synthesizer
	SourceFallback Source = "fallback"
)

// Outcome describes how a result was produced
type Outcome struct {
	Source   Source
	Reason   workflow.FailureReason
	Duration time.Duration
}

// Degraded reports whether the result is fallback content
func (o Outcome) Degraded() bool {
	return o.Source == SourceFallback
}

// Options bounds each provider call
type Options struct {
	Temperature       float32
	WorkflowMaxTokens int
	ToolsMaxTokens    int
	TabsMaxTokens     int
	OptimizeMaxTokens int
	Timeout           time.Duration
	MaxRetries        int

	// RetryDelay is the first backoff delay; zero uses the resilience default
	RetryDelay time.Duration
}

// DefaultOptions returns the limits used when no configuration is given
func DefaultOptions() Options {
	return Options{
		Temperature:       0.7,
		WorkflowMaxTokens: 4000,
		ToolsMaxTokens:    1500,
		TabsMaxTokens:     200,
		OptimizeMaxTokens: 1000,
		Timeout:           resilience.DefaultTimeout,
		MaxRetries:        0,
	}
}

// OptionsFromConfig converts the generation config section
func OptionsFromConfig(cfg config.GenerationConfig) Options {
	return Options{
		Temperature:       float32(cfg.Temperature),
		WorkflowMaxTokens: cfg.WorkflowMaxTokens,
		ToolsMaxTokens:    cfg.ToolsMaxTokens,
		TabsMaxTokens:     cfg.TabsMaxTokens,
		OptimizeMaxTokens: cfg.OptimizeMaxTokens,
		Timeout:           cfg.Timeout,
		MaxRetries:        cfg.MaxRetries,
	}
}

// Service is the structured generation service. It holds only immutable
// collaborators and is safe for concurrent use.
type Service struct {
	completer llm.Completer
	synth     *fallback.Synthesizer
	validator *workflow.Validator
	opts      Options
	logger    *zap.Logger
}

// NewService creates a service. A nil completer means the provider is not
// configured and every operation returns fallback content.
func NewService(completer llm.Completer, synth *fallback.Synthesizer, validator *workflow.Validator, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		completer: completer,
		synth:     synth,
		validator: validator,
		opts:      opts,
		logger:    logger,
	}
}

// NewFromConfig wires a service from application configuration. A missing
// API key is not an error.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	completer, err := llm.New(cfg.Provider, logger)
	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			return nil, fmt.Errorf("failed to create completion provider: %w", err)
		}
		logger.Warn("No provider API key configured, all results will use fallback content")
		completer = nil
	}

	synth, err := fallback.NewSynthesizer()
	if err != nil {
		return nil, err
	}

	validator, err := workflow.NewValidator()
	if err != nil {
		return nil, err
	}

	return NewService(completer, synth, validator, OptionsFromConfig(cfg.Generation), logger), nil
}

// Configured reports whether a completion provider is available
func (s *Service) Configured() bool {
	return s.completer != nil
}

// SuggestTools recommends tools for query. Any failure yields the three
// fallback tools.
func (s *Service) SuggestTools(ctx context.Context, query string) ([]workflow.ToolRecommendation, Outcome) {
	start := time.Now()

	tools, err := s.suggestTools(ctx, query)
	if err != nil {
		reason := s.logFallback("suggest_tools", err)
		return s.synth.Tools(), Outcome{Source: SourceFallback, Reason: reason, Duration: time.Since(start)}
	}
	return tools, Outcome{Source: SourceProvider, Duration: time.Since(start)}
}

func (s *Service) suggestTools(ctx context.Context, query string) ([]workflow.ToolRecommendation, error) {
	text, err := s.complete(ctx, "suggest_tools", llm.CompletionRequest{
		System:      toolsSystemPrompt,
		Prompt:      BuildToolsPrompt(query),
		MaxTokens:   s.opts.ToolsMaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		return nil, err
	}

	raw, err := extract.Span(text, extract.KindArray)
	if err != nil {
		return nil, err
	}
	return s.validator.DecodeTools(raw)
}

// AnalyzeTabs returns a short conversational insight about the open tabs.
// The completion text is returned as is, trimmed.
func (s *Service) AnalyzeTabs(ctx context.Context, tabs []workflow.TabInfo) (string, Outcome) {
	start := time.Now()

	if len(tabs) == 0 {
		return s.synth.TabInsight(), Outcome{Source: SourceFallback, Reason: workflow.ReasonNone, Duration: time.Since(start)}
	}

	text, err := s.complete(ctx, "analyze_tabs", llm.CompletionRequest{
		System:      tabsSystemPrompt,
		Prompt:      BuildTabsPrompt(tabs),
		MaxTokens:   s.opts.TabsMaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("empty tab insight: %w", extract.ErrMalformedResponse)
	}
	if err != nil {
		reason := s.logFallback("analyze_tabs", err)
		return s.synth.TabInsight(), Outcome{Source: SourceFallback, Reason: reason, Duration: time.Since(start)}
	}

	return strings.TrimSpace(text), Outcome{Source: SourceProvider, Duration: time.Since(start)}
}

// GenerateWorkflow builds a validated plan for query, using the optional
// context string. Any failure yields a fallback plan for the query topic.
func (s *Service) GenerateWorkflow(ctx context.Context, query, userContext string) (*workflow.Plan, Outcome) {
	start := time.Now()

	plan, err := s.generateWorkflow(ctx, query, userContext)
	if err != nil {
		reason := s.logFallback("generate_workflow", err)
		s.logger.Info("Building fallback workflow",
			zap.String("topic", s.synth.Topic(query)),
			zap.String("reason", reason.String()))
		return s.synth.WorkflowPlan(query, reason), Outcome{Source: SourceFallback, Reason: reason, Duration: time.Since(start)}
	}
	return plan, Outcome{Source: SourceProvider, Duration: time.Since(start)}
}

func (s *Service) generateWorkflow(ctx context.Context, query, userContext string) (*workflow.Plan, error) {
	text, err := s.complete(ctx, "generate_workflow", llm.CompletionRequest{
		System:      workflowSystemPrompt,
		Prompt:      BuildWorkflowPrompt(query, userContext),
		MaxTokens:   s.opts.WorkflowMaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		return nil, err
	}

	raw, err := extract.Span(text, extract.KindObject)
	if err != nil {
		return nil, err
	}
	return s.validator.DecodePlan(raw)
}

// OptimizeWorkflow proposes optimizations for a plan summary. Any failure
// yields the generic tips plus reason-specific ones.
func (s *Service) OptimizeWorkflow(ctx context.Context, summary string) ([]string, Outcome) {
	start := time.Now()

	tips, err := s.optimizeWorkflow(ctx, summary)
	if err != nil {
		reason := s.logFallback("optimize_workflow", err)
		return s.synth.Optimizations(reason), Outcome{Source: SourceFallback, Reason: reason, Duration: time.Since(start)}
	}
	return tips, Outcome{Source: SourceProvider, Duration: time.Since(start)}
}

func (s *Service) optimizeWorkflow(ctx context.Context, summary string) ([]string, error) {
	text, err := s.complete(ctx, "optimize_workflow", llm.CompletionRequest{
		System:      optimizeSystemPrompt,
		Prompt:      BuildOptimizePrompt(summary),
		MaxTokens:   s.opts.OptimizeMaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		return nil, err
	}

	raw, err := extract.Span(text, extract.KindArray)
	if err != nil {
		return nil, err
	}
	return s.validator.DecodeStrings(raw)
}

// complete performs one bounded provider call, retried only for retryable
// provider errors when retries are enabled.
func (s *Service) complete(ctx context.Context, operation string, req llm.CompletionRequest) (string, error) {
	if s.completer == nil {
		return "", llm.ErrNotConfigured
	}

	backoff := resilience.DefaultBackoffConfig()
	backoff.MaxRetries = s.opts.MaxRetries
	backoff.RetryOnFunc = llm.IsRetryable
	if s.opts.RetryDelay > 0 {
		backoff.BaseDelay = s.opts.RetryDelay
	}

	start := time.Now()
	var text string
	err := resilience.WithExponentialBackoff(ctx, s.logger, backoff, func(ctx context.Context) error {
		var out string
		err := resilience.WithTimeout(ctx, s.opts.Timeout, s.logger, func(ctx context.Context) error {
			var err error
			out, err = s.completer.Complete(ctx, req)
			return err
		})
		if err != nil {
			return err
		}
		text = out
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("Completion received",
		zap.String("operation", operation),
		zap.Duration("duration", time.Since(start)),
		zap.Int("response_length", len(text)))

	return text, nil
}

func (s *Service) logFallback(operation string, err error) workflow.FailureReason {
	reason := ClassifyError(err)

	fields := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason.String()),
	}
	if reason != workflow.ReasonMissingCredentials {
		fields = append(fields, zap.Error(err))
	}
	s.logger.Warn("Generation failed, using fallback", fields...)

	return reason
}
