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

// Package openfda provides types and interfaces for interacting with the openFDA API.
package openfda

// DeviceRecord represents a single 510(k) device clearance with essential
// metadata. This is the core data structure that gets serialized to JSON or
// NDJSON output. Fields missing from the API response are empty strings so
// every emitted record carries the same shape.
type DeviceRecord struct {
	KNumber             string `json:"k_number"`
	DeviceName          string `json:"device_name"`
	Manufacturer        string `json:"manufacturer"`
	IndicationsForUse   string `json:"indications_for_use"`
	SummaryOfTechnology string `json:"summary_of_technology"`
}

// DevicePage represents one page of results from an openFDA query.
// It includes the records for the current page and pagination information
// to support fetching subsequent pages. This enables efficient streaming
// without loading the full result set into memory at once.
type DevicePage struct {
	Records []DeviceRecord

	// Total is the number of records matching the query across all pages,
	// as reported by the API's result metadata. Zero when the API did not
	// report a total.
	Total int

	// HasMore indicates whether another page may exist. A page shorter than
	// the requested size always means the result set is exhausted.
	HasMore bool
}

// FetchOptions configures how device records are fetched.
// It supports pagination through the Skip offset field and
// allows customization of the page size for each request.
type FetchOptions struct {
	// PageSize controls how many records to fetch per page.
	// Defaults to 100 if not specified. Maximum is 100 per openFDA's
	// skip/limit rules.
	PageSize int

	// Skip is the zero-based offset for pagination.
	// Zero fetches from the beginning. Advance by the number of records
	// returned in the previous page to fetch the next one.
	Skip int
}

// Default values for fetch operations
const (
	defaultPageSize = 100
	maxPageSize     = 100
)

// normalizePageSize clamps opts.PageSize into the API's accepted range.
func normalizePageSize(size int) int {
	if size <= 0 {
		return defaultPageSize
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
}

// searchResponse mirrors the JSON body of a successful openFDA query.
// Only the fields the relay consumes are declared.
type searchResponse struct {
	Meta struct {
		Results struct {
			Skip  int `json:"skip"`
			Limit int `json:"limit"`
			Total int `json:"total"`
		} `json:"results"`
	} `json:"meta"`
	Results []wireDevice `json:"results"`
}

// wireDevice is the subset of the openFDA 510(k) document the relay maps
// into a DeviceRecord. The API omits absent fields entirely, so every field
// decodes to its zero value when missing.
type wireDevice struct {
	KNumber             string `json:"k_number"`
	DeviceName          string `json:"device_name"`
	Applicant           string `json:"applicant"`
	IndicationsForUse   string `json:"indications_for_use"`
	SummaryOfTechnology string `json:"summary_of_technology"`
	DeviceDescription   string `json:"device_description"`
}

// toRecord maps a wire document to the relay's output shape. The applicant
// becomes the manufacturer, and the technology summary falls back to the
// device description when the API provides no summary.
func (w wireDevice) toRecord() DeviceRecord {
	summary := w.SummaryOfTechnology
	if summary == "" {
		summary = w.DeviceDescription
	}
	return DeviceRecord{
		KNumber:             w.KNumber,
		DeviceName:          w.DeviceName,
		Manufacturer:        w.Applicant,
		IndicationsForUse:   w.IndicationsForUse,
		SummaryOfTechnology: summary,
	}
}

// errorResponse mirrors the JSON body openFDA returns on failures,
// including the structured NOT_FOUND body sent when a search matches
// zero records.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
