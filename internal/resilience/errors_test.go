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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestServiceError(t *testing.T) {
	internal := errors.New("internal error")
	serviceErr := NewServiceError("user message", ErrorCodeInternalError, http.StatusInternalServerError, internal)

	assert.Equal(t, "user message", serviceErr.Error())
	assert.Equal(t, internal, serviceErr.Unwrap())
	assert.Equal(t, ErrorCodeInternalError, serviceErr.Code)
	assert.Equal(t, http.StatusInternalServerError, serviceErr.StatusCode)
}

func TestServiceErrorConvenience(t *testing.T) {
	internal := errors.New("internal")

	tests := []struct {
		name         string
		err          *ServiceError
		expectCode   ErrorCode
		expectStatus int
	}{
		{"bad request", NewBadRequestError("bad", internal), ErrorCodeBadRequest, http.StatusBadRequest},
		{"not found", NewNotFoundError("missing", internal), ErrorCodeNotFound, http.StatusNotFound},
		{"internal", NewInternalError("boom", internal), ErrorCodeInternalError, http.StatusInternalServerError},
		{"unavailable", NewServiceUnavailableError("down", internal), ErrorCodeServiceUnavailable, http.StatusServiceUnavailable},
		{"timeout", NewTimeoutError("slow", internal), ErrorCodeTimeout, http.StatusRequestTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectCode, tt.err.Code)
			assert.Equal(t, tt.expectStatus, tt.err.StatusCode)
			assert.ErrorIs(t, tt.err, internal)
		})
	}
}

func TestAsServiceErrorWrapped(t *testing.T) {
	original := NewBadRequestError("query is required", nil)
	wrapped := fmt.Errorf("handler: %w", original)

	var target *ServiceError
	require.True(t, AsServiceError(wrapped, &target))
	assert.Same(t, original, target)

	assert.False(t, AsServiceError(nil, &target))
	assert.False(t, AsServiceError(errors.New("plain"), &target))
}

func TestWrapError(t *testing.T) {
	handler := NewErrorHandler(zaptest.NewLogger(t))

	assert.Nil(t, handler.WrapError(nil, "generating"))

	timeout := handler.WrapError(fmt.Errorf("call: %w", context.DeadlineExceeded), "generating")
	assert.Equal(t, ErrorCodeTimeout, timeout.Code)

	generic := handler.WrapError(errors.New("disk on fire"), "generating")
	assert.Equal(t, ErrorCodeInternalError, generic.Code)
	assert.Contains(t, generic.Message, "generating")
	assert.NotContains(t, generic.Message, "disk on fire")

	existing := NewBadRequestError("bad", nil)
	assert.Same(t, existing, handler.WrapError(existing, "generating"))
}

func TestWriteErrorResponse(t *testing.T) {
	handler := NewErrorHandler(zaptest.NewLogger(t))
	rec := httptest.NewRecorder()

	handler.WriteErrorResponse(rec, NewBadRequestError("query is required", nil), "req-123")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "query is required", resp.Error)
	assert.Equal(t, string(ErrorCodeBadRequest), resp.Code)
	assert.Equal(t, "req-123", resp.RequestID)
	assert.False(t, resp.Timestamp.IsZero())
}
