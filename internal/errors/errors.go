// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrInvalidAPIKey indicates openFDA rejected the supplied API key.
	// Maps to exit code 2.
	ErrInvalidAPIKey = errors.New("invalid openfda api key")

	// ErrEndpointNotFound indicates the configured API endpoint does not exist.
	// Maps to exit code 2.
	ErrEndpointNotFound = errors.New("api endpoint not found")

	// ErrNetworkFailure indicates a network connection problem.
	// Maps to exit code 3.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrRateLimit indicates the openFDA request quota has been exhausted.
	// Maps to exit code 2.
	ErrRateLimit = errors.New("openfda rate limit exceeded")
)
