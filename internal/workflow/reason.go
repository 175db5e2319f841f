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

package workflow

// FailureReason classifies why structured generation could not complete
type FailureReason string

const (
	// ReasonNone marks a result that came from the provider
	ReasonNone FailureReason = ""
	// ReasonMissingCredentials means no API key was configured
	ReasonMissingCredentials FailureReason = "missing_credentials"
	// ReasonInsufficientBalance means the provider account is out of credit (HTTP 402)
	ReasonInsufficientBalance FailureReason = "insufficient_balance"
	// ReasonInvalidCredentials means the provider rejected the API key (HTTP 401)
	ReasonInvalidCredentials FailureReason = "invalid_credentials"
	// ReasonRateLimited means the provider throttled the request (HTTP 429)
	ReasonRateLimited FailureReason = "rate_limited"
	// ReasonMalformedResponse means the completion could not be parsed or validated
	ReasonMalformedResponse FailureReason = "malformed_response"
	// ReasonUnknown covers network errors, timeouts and any other failure
	ReasonUnknown FailureReason = "unknown"
)

// AllFailureReasons lists every failure reason in a stable order
var AllFailureReasons = []FailureReason{
	ReasonMissingCredentials,
	ReasonInsufficientBalance,
	ReasonInvalidCredentials,
	ReasonRateLimited,
	ReasonMalformedResponse,
	ReasonUnknown,
}

// String returns the wire name of the reason
func (r FailureReason) String() string {
	return string(r)
}

// IsConfigurationProblem reports whether an operator action on the provider
// account or credentials would restore generation.
func (r FailureReason) IsConfigurationProblem() bool {
	switch r {
	case ReasonMissingCredentials, ReasonInvalidCredentials, ReasonInsufficientBalance:
		return true
	default:
		return false
	}
}
