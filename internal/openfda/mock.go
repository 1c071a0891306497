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

package openfda

import (
	"context"
	"fmt"

	relayerrors "github.com/sirseerhq/fda-relay/internal/errors"
)

// MockClient is a mock implementation of the Client interface for testing.
// It serves its configured records through real skip/limit pagination so
// callers exercise the same paging loop they run against the live API.
type MockClient struct {
	// Records to serve, sliced by Skip and PageSize on each call
	Records []DeviceRecord

	// ReportedTotal overrides the total reported to callers.
	// -1 simulates an API that reports no total; 0 means len(Records).
	ReportedTotal int

	// Error to return
	Error error

	// Behavior flags
	ShouldFailAuth     bool
	ShouldFailNetwork  bool
	ShouldFailEndpoint bool

	// Track calls for verification
	CallCount       int
	LastProductCode string
	LastOpts        FetchOptions

	// Skips records the offset of every call, in order
	Skips []int
}

// NewMockClient creates a new mock client with default test data
func NewMockClient() *MockClient {
	return &MockClient{
		Records: generateTestDevices(),
	}
}

// FetchDevices implements the Client interface
func (m *MockClient) FetchDevices(ctx context.Context, productCode string, opts FetchOptions) (*DevicePage, error) {
	// Track the call
	m.CallCount++
	m.LastProductCode = productCode
	m.LastOpts = opts
	m.Skips = append(m.Skips, opts.Skip)

	// Check for context cancellation
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Simulate various error conditions
	if m.ShouldFailAuth {
		return nil, fmt.Errorf("authentication failed: %w", relayerrors.ErrInvalidAPIKey)
	}

	if m.ShouldFailNetwork {
		return nil, fmt.Errorf("network timeout: %w", relayerrors.ErrNetworkFailure)
	}

	if m.ShouldFailEndpoint {
		return nil, fmt.Errorf("endpoint not found: %w", relayerrors.ErrEndpointNotFound)
	}

	// Return configured error if set
	if m.Error != nil {
		return nil, m.Error
	}

	// Slice the configured records the way the live API would
	pageSize := normalizePageSize(opts.PageSize)

	start := opts.Skip
	if start > len(m.Records) {
		start = len(m.Records)
	}
	end := start + pageSize
	if end > len(m.Records) {
		end = len(m.Records)
	}

	total := m.ReportedTotal
	switch {
	case total < 0:
		total = 0
	case total == 0:
		total = len(m.Records)
	}

	records := m.Records[start:end]
	fullPage := len(records) == pageSize
	exhausted := total > 0 && opts.Skip+len(records) >= total

	return &DevicePage{
		Records: records,
		Total:   total,
		HasMore: fullPage && !exhausted,
	}, nil
}

// generateTestDevices creates sample 510(k) clearance data for testing
func generateTestDevices() []DeviceRecord {
	return []DeviceRecord{
		{
			KNumber:             "K240001",
			DeviceName:          "ClearView Image Analyzer",
			Manufacturer:        "Meridian Imaging Systems, Inc.",
			IndicationsForUse:   "Intended for viewing, manipulation, and analysis of radiological images by trained professionals.",
			SummaryOfTechnology: "Software application for processing and display of digital radiographs.",
		},
		{
			KNumber:             "K233102",
			DeviceName:          "PixelScan Diagnostic Console",
			Manufacturer:        "Northstar Medical Technologies LLC",
			IndicationsForUse:   "Display and review of multi-modality medical images.",
			SummaryOfTechnology: "Workstation combining image reconstruction and measurement tools.",
		},
		{
			KNumber:             "K225480",
			DeviceName:          "RadAssist Viewer",
			Manufacturer:        "Halcyon Devices Corp.",
			IndicationsForUse:   "",
			SummaryOfTechnology: "Web-based viewer for DICOM image series.",
		},
	}
}

// MockClientOption allows configuring the mock client
type MockClientOption func(*MockClient)

// WithDevices sets specific device records to serve
func WithDevices(records []DeviceRecord) MockClientOption {
	return func(m *MockClient) {
		m.Records = records
	}
}

// WithReportedTotal overrides the total the mock reports to callers.
// Pass -1 to simulate an API response without result metadata.
func WithReportedTotal(total int) MockClientOption {
	return func(m *MockClient) {
		m.ReportedTotal = total
	}
}

// WithError makes the client return a specific error
func WithError(err error) MockClientOption {
	return func(m *MockClient) {
		m.Error = err
	}
}

// WithAuthFailure makes the client simulate authentication failure
func WithAuthFailure() MockClientOption {
	return func(m *MockClient) {
		m.ShouldFailAuth = true
	}
}

// NewMockClientWithOptions creates a mock client with options
func NewMockClientWithOptions(opts ...MockClientOption) *MockClient {
	mock := NewMockClient()
	for _, opt := range opts {
		opt(mock)
	}
	return mock
}
