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

package testutil

import (
	"fmt"
	"time"
)

// DeviceBuilder provides a fluent API for creating test 510(k) documents
// in the shape the openFDA API returns them
type DeviceBuilder struct {
	number        int
	kNumber       string
	deviceName    string
	applicant     string
	indications   string
	summary       string
	description   string
	productCode   string
	decisionDate  time.Time
	decisionCode  string
	clearanceType string
	countryCode   string
}

// NewDeviceBuilder creates a new device builder with defaults
func NewDeviceBuilder(number int) *DeviceBuilder {
	return &DeviceBuilder{
		number:        number,
		kNumber:       fmt.Sprintf("K%06d", number),
		deviceName:    fmt.Sprintf("Device %d", number),
		applicant:     fmt.Sprintf("Manufacturer %d", number),
		indications:   fmt.Sprintf("Indicated for condition %d", number),
		summary:       fmt.Sprintf("Technology summary %d", number),
		productCode:   "LLZ",
		decisionDate:  time.Now().AddDate(0, 0, -number),
		decisionCode:  "SESE",
		clearanceType: "Traditional",
		countryCode:   "US",
	}
}

// WithKNumber sets the clearance number
func (b *DeviceBuilder) WithKNumber(kNumber string) *DeviceBuilder {
	b.kNumber = kNumber
	return b
}

// WithDeviceName sets the device name
func (b *DeviceBuilder) WithDeviceName(name string) *DeviceBuilder {
	b.deviceName = name
	return b
}

// WithApplicant sets the applicant company
func (b *DeviceBuilder) WithApplicant(applicant string) *DeviceBuilder {
	b.applicant = applicant
	return b
}

// WithIndicationsForUse sets the indications-for-use text
func (b *DeviceBuilder) WithIndicationsForUse(text string) *DeviceBuilder {
	b.indications = text
	return b
}

// WithSummaryOfTechnology sets the technology summary
func (b *DeviceBuilder) WithSummaryOfTechnology(text string) *DeviceBuilder {
	b.summary = text
	return b
}

// WithDeviceDescription sets the device description
func (b *DeviceBuilder) WithDeviceDescription(text string) *DeviceBuilder {
	b.description = text
	return b
}

// WithProductCode sets the product code
func (b *DeviceBuilder) WithProductCode(code string) *DeviceBuilder {
	b.productCode = code
	return b
}

// WithDecisionDate sets the clearance decision date
func (b *DeviceBuilder) WithDecisionDate(t time.Time) *DeviceBuilder {
	b.decisionDate = t
	return b
}

// WithDecisionCode sets the decision code
func (b *DeviceBuilder) WithDecisionCode(code string) *DeviceBuilder {
	b.decisionCode = code
	return b
}

// Build creates the device document. Empty fields are left out entirely,
// matching how openFDA omits fields it has no value for.
func (b *DeviceBuilder) Build() map[string]interface{} {
	device := map[string]interface{}{}

	for key, value := range map[string]string{
		"k_number":              b.kNumber,
		"device_name":           b.deviceName,
		"applicant":             b.applicant,
		"indications_for_use":   b.indications,
		"summary_of_technology": b.summary,
		"device_description":    b.description,
		"product_code":          b.productCode,
		"decision_code":         b.decisionCode,
		"clearance_type":        b.clearanceType,
		"country_code":          b.countryCode,
	} {
		if value != "" {
			device[key] = value
		}
	}

	if !b.decisionDate.IsZero() {
		device["decision_date"] = b.decisionDate.Format("2006-01-02")
	}

	return device
}

// SearchResponseBuilder builds openFDA search responses
type SearchResponseBuilder struct {
	devices    []map[string]interface{}
	skip       int
	limit      int
	total      int
	errCode    string
	errMessage string
}

// NewSearchResponseBuilder creates a new response builder
func NewSearchResponseBuilder() *SearchResponseBuilder {
	return &SearchResponseBuilder{
		devices: []map[string]interface{}{},
	}
}

// WithDevices adds device documents to the response
func (b *SearchResponseBuilder) WithDevices(devices ...map[string]interface{}) *SearchResponseBuilder {
	b.devices = append(b.devices, devices...)
	return b
}

// WithMeta sets the result metadata. Zero limit and total default to the
// number of devices in the response.
func (b *SearchResponseBuilder) WithMeta(skip, limit, total int) *SearchResponseBuilder {
	b.skip = skip
	b.limit = limit
	b.total = total
	return b
}

// WithError turns the response into an openFDA error body
func (b *SearchResponseBuilder) WithError(code, message string) *SearchResponseBuilder {
	b.errCode = code
	b.errMessage = message
	return b
}

// Build creates the search response
func (b *SearchResponseBuilder) Build() map[string]interface{} {
	if b.errCode != "" {
		return GenerateErrorResponse(b.errCode, b.errMessage)
	}

	limit := b.limit
	if limit == 0 {
		limit = len(b.devices)
	}
	total := b.total
	if total == 0 {
		total = len(b.devices)
	}

	return map[string]interface{}{
		"meta": map[string]interface{}{
			"results": map[string]interface{}{
				"skip":  b.skip,
				"limit": limit,
				"total": total,
			},
		},
		"results": b.devices,
	}
}
