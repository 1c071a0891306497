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

// Package openfda provides a client for the openFDA 510(k) device clearance
// API. It abstracts the skip/limit pagination protocol and provides a simple
// interface for retrieving device clearance records with support for
// pagination, error handling, retries, and rate limiting.
//
// The package includes:
//   - A Client interface for fetching pages of device records
//   - A REST implementation over the openFDA JSON endpoint
//   - A RetryClient decorator that adds exponential backoff
//   - Mock client for testing
//   - Type definitions for device clearance data
//
// Basic usage:
//
//	client := openfda.NewRESTClient(openfda.ClientConfig{
//	    APIKey: "your-api-key",
//	})
//	page, err := client.FetchDevices(ctx, "LLZ", openfda.FetchOptions{
//	    PageSize: 100,
//	})
//	if err != nil {
//	    // Handle error
//	}
//	for _, rec := range page.Records {
//	    // Process device record
//	}
package openfda
