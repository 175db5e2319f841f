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

// Package resilience bounds and optionally retries calls to the completion
// provider, and renders API errors in a single envelope.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// BackoffConfig holds configuration for exponential backoff retry logic
type BackoffConfig struct {
	BaseDelay   time.Duration
	MaxRetries  int
	MaxDelay    time.Duration
	Multiplier  float64
	Jitter      bool
	RetryOnFunc func(error) bool
}

const (
	// DefaultMaxDelaySeconds is the default maximum delay in seconds
	DefaultMaxDelaySeconds = 30
	// DefaultMultiplier is the default exponential backoff multiplier
	DefaultMultiplier = 2.0
	// JitterModulus is used for random jitter calculation
	JitterModulus = 1000
)

// DefaultBackoffConfig returns a single-attempt configuration: generation
// goes straight to its fallback after one failure unless retries are enabled.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		BaseDelay:   1 * time.Second,
		MaxRetries:  0,
		MaxDelay:    DefaultMaxDelaySeconds * time.Second,
		Multiplier:  DefaultMultiplier,
		Jitter:      true,
		RetryOnFunc: DefaultRetryOnFunc,
	}
}

// DefaultRetryOnFunc retries everything except context cancellation and expiry
func DefaultRetryOnFunc(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// RetryFunc is a function that can be retried with exponential backoff
type RetryFunc func(ctx context.Context) error

// WithExponentialBackoff executes fn, retrying up to MaxRetries times while
// RetryOnFunc accepts the error. With MaxRetries of zero the error of the
// single attempt is returned as is.
func WithExponentialBackoff(ctx context.Context, logger *zap.Logger, config BackoffConfig, fn RetryFunc) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.RetryOnFunc == nil {
		config.RetryOnFunc = DefaultRetryOnFunc
	}

	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				logger.Info("Operation succeeded after retry",
					zap.Int("attempt", attempt+1),
					zap.Int("total_attempts", config.MaxRetries+1))
			}
			return nil
		}

		lastErr = err

		if !config.RetryOnFunc(err) {
			logger.Debug("Error is not retryable, stopping attempts",
				zap.Error(err),
				zap.Int("attempt", attempt+1))
			return err
		}

		if attempt == config.MaxRetries {
			break
		}

		delay := backoffDelay(config, attempt)

		logger.Debug("Retrying after delay",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Int("max_retries", config.MaxRetries))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	if config.MaxRetries == 0 {
		return lastErr
	}

	logger.Warn("All retry attempts exhausted",
		zap.Error(lastErr),
		zap.Int("total_attempts", config.MaxRetries+1))

	return fmt.Errorf("operation failed after %d attempts: %w", config.MaxRetries+1, lastErr)
}

// backoffDelay computes the wait before the attempt following attempt
func backoffDelay(config BackoffConfig, attempt int) time.Duration {
	delay := time.Duration(float64(config.BaseDelay) * math.Pow(config.Multiplier, float64(attempt)))
	if config.MaxDelay > 0 && delay > config.MaxDelay {
		delay = config.MaxDelay
	}

	// Jitter of +/-10% spreads concurrent retries apart
	if config.Jitter {
		jitter := time.Duration(float64(delay) * 0.1 * (2*float64(time.Now().UnixNano()%JitterModulus)/JitterModulus - 1))
		delay += jitter
	}
	return delay
}
