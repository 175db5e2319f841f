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

package resilience

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a provider call when no timeout is configured
const DefaultTimeout = 30 * time.Second

// TimeoutFunc is a function that can be executed with a timeout
type TimeoutFunc func(ctx context.Context) error

// WithTimeout executes fn with a deadline. It returns as soon as the deadline
// passes even if fn ignores its context; the returned error then wraps
// context.DeadlineExceeded.
func WithTimeout(ctx context.Context, timeout time.Duration, logger *zap.Logger, fn TimeoutFunc) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(timeoutCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-timeoutCtx.Done():
		logger.Warn("Operation timed out",
			zap.Duration("timeout", timeout),
			zap.Error(timeoutCtx.Err()))
		return NewTimeoutError("Operation timed out", timeoutCtx.Err())
	}
}
