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

package generator

import (
	"errors"
	"net/http"

	"github.com/your-org/workflow-generator/internal/extract"
	"github.com/your-org/workflow-generator/internal/llm"
	"github.com/your-org/workflow-generator/internal/workflow"
)

// ClassifyError maps a generation failure to the reason that selects the
// fallback content. A nil error yields ReasonNone.
func ClassifyError(err error) workflow.FailureReason {
	if err == nil {
		return workflow.ReasonNone
	}

	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		return workflow.ReasonMissingCredentials
	case errors.Is(err, extract.ErrMalformedResponse), errors.Is(err, workflow.ErrInvalid):
		return workflow.ReasonMalformedResponse
	}

	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		switch perr.StatusCode {
		case http.StatusPaymentRequired:
			return workflow.ReasonInsufficientBalance
		case http.StatusUnauthorized:
			return workflow.ReasonInvalidCredentials
		case http.StatusTooManyRequests:
			return workflow.ReasonRateLimited
		}
	}

	return workflow.ReasonUnknown
}
