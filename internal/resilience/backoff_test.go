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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func fastConfig(retries int) BackoffConfig {
	return BackoffConfig{
		BaseDelay:   time.Millisecond,
		MaxRetries:  retries,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2,
		RetryOnFunc: DefaultRetryOnFunc,
	}
}

func TestDefaultBackoffConfig(t *testing.T) {
	config := DefaultBackoffConfig()

	assert.Equal(t, 1*time.Second, config.BaseDelay)
	assert.Equal(t, 0, config.MaxRetries, "retries are opt-in")
	assert.InDelta(t, 2.0, config.Multiplier, 1e-9)
	assert.Equal(t, 30*time.Second, config.MaxDelay)
	assert.NotNil(t, config.RetryOnFunc)
}

func TestWithExponentialBackoffSingleAttempt(t *testing.T) {
	sentinel := errors.New("provider down")
	attempts := 0

	err := WithExponentialBackoff(context.Background(), zaptest.NewLogger(t), fastConfig(0), func(context.Context) error {
		attempts++
		return sentinel
	})

	assert.Equal(t, 1, attempts)
	assert.Same(t, sentinel, err, "single attempt returns the error unwrapped")
}

func TestWithExponentialBackoffEventualSuccess(t *testing.T) {
	attempts := 0

	err := WithExponentialBackoff(context.Background(), zaptest.NewLogger(t), fastConfig(3), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithExponentialBackoffExhausted(t *testing.T) {
	sentinel := errors.New("still failing")
	attempts := 0

	err := WithExponentialBackoff(context.Background(), zaptest.NewLogger(t), fastConfig(2), func(context.Context) error {
		attempts++
		return sentinel
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestWithExponentialBackoffNonRetryable(t *testing.T) {
	permanent := errors.New("bad credentials")
	config := fastConfig(5)
	config.RetryOnFunc = func(err error) bool { return !errors.Is(err, permanent) }
	attempts := 0

	err := WithExponentialBackoff(context.Background(), zaptest.NewLogger(t), config, func(context.Context) error {
		attempts++
		return permanent
	})

	assert.Equal(t, 1, attempts)
	assert.Same(t, permanent, err)
}

func TestWithExponentialBackoffContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	config := fastConfig(5)
	config.BaseDelay = time.Second
	config.MaxDelay = time.Second

	err := WithExponentialBackoff(ctx, zaptest.NewLogger(t), config, func(context.Context) error {
		cancel()
		return errors.New("temporary")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultRetryOnFunc(t *testing.T) {
	assert.False(t, DefaultRetryOnFunc(nil))
	assert.False(t, DefaultRetryOnFunc(context.Canceled))
	assert.False(t, DefaultRetryOnFunc(context.DeadlineExceeded))
	assert.True(t, DefaultRetryOnFunc(errors.New("connection reset")))
}

func TestBackoffDelayCapped(t *testing.T) {
	config := BackoffConfig{BaseDelay: time.Second, Multiplier: 2, MaxDelay: 3 * time.Second}

	assert.Equal(t, time.Second, backoffDelay(config, 0))
	assert.Equal(t, 2*time.Second, backoffDelay(config, 1))
	assert.Equal(t, 3*time.Second, backoffDelay(config, 5))
}
