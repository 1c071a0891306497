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

// Package main implements the fda-relay command-line interface.
// This tool fetches 510(k) device clearance records from the openFDA API
// and outputs them as a JSON array or as NDJSON for streaming processing.
//
// The CLI supports:
//   - Fetching every record matching a product code (default behavior)
//   - Capping the record count with the --limit flag
//   - Customizable output destinations (stdout or file)
//   - API key authentication via flag or environment variable
//   - Fetch statistics written as JSON with the --stats flag
//   - Graceful error handling with appropriate exit codes
//
// Usage:
//
//	fda-relay fetch <product-code> [flags]
//
// Example:
//
//	export FDA_API_KEY=your_key
//	fda-relay fetch LLZ --format ndjson --output devices.ndjson
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Authentication/authorization error
//   - 3: Network error
package main
