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
	"encoding/json"
	"testing"
)

func TestDeviceRecordJSONSerialization(t *testing.T) {
	rec := DeviceRecord{
		KNumber:             "K240001",
		DeviceName:          "ClearView Image Analyzer",
		Manufacturer:        "Meridian Imaging Systems, Inc.",
		IndicationsForUse:   "Viewing and analysis of radiological images.",
		SummaryOfTechnology: "Software application for processing digital radiographs.",
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Failed to marshal DeviceRecord: %v", err)
	}

	var decoded DeviceRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal DeviceRecord: %v", err)
	}

	if decoded != rec {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, rec)
	}
}

func TestDeviceRecordEmitsAllFields(t *testing.T) {
	// Records with missing source fields still carry every key so the
	// output shape is uniform across records.
	rec := DeviceRecord{KNumber: "K225480"}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Failed to marshal DeviceRecord: %v", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Failed to unmarshal to map: %v", err)
	}

	for _, key := range []string{"k_number", "device_name", "manufacturer", "indications_for_use", "summary_of_technology"} {
		val, exists := m[key]
		if !exists {
			t.Errorf("key %q missing from serialized record", key)
			continue
		}
		if _, ok := val.(string); !ok {
			t.Errorf("key %q is %T, want string", key, val)
		}
	}
	if len(m) != 5 {
		t.Errorf("serialized record has %d keys, want 5", len(m))
	}
}

func TestWireDeviceToRecord(t *testing.T) {
	tests := []struct {
		name string
		wire wireDevice
		want DeviceRecord
	}{
		{
			name: "all fields present",
			wire: wireDevice{
				KNumber:             "K240001",
				DeviceName:          "ClearView Image Analyzer",
				Applicant:           "Meridian Imaging Systems, Inc.",
				IndicationsForUse:   "Image review.",
				SummaryOfTechnology: "Image processing software.",
				DeviceDescription:   "A workstation.",
			},
			want: DeviceRecord{
				KNumber:             "K240001",
				DeviceName:          "ClearView Image Analyzer",
				Manufacturer:        "Meridian Imaging Systems, Inc.",
				IndicationsForUse:   "Image review.",
				SummaryOfTechnology: "Image processing software.",
			},
		},
		{
			name: "summary falls back to device description",
			wire: wireDevice{
				KNumber:           "K233102",
				DeviceName:        "PixelScan Diagnostic Console",
				Applicant:         "Northstar Medical Technologies LLC",
				DeviceDescription: "Console combining reconstruction and measurement tools.",
			},
			want: DeviceRecord{
				KNumber:             "K233102",
				DeviceName:          "PixelScan Diagnostic Console",
				Manufacturer:        "Northstar Medical Technologies LLC",
				SummaryOfTechnology: "Console combining reconstruction and measurement tools.",
			},
		},
		{
			name: "missing fields map to empty strings",
			wire: wireDevice{KNumber: "K225480"},
			want: DeviceRecord{KNumber: "K225480"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.wire.toRecord()
			if got != tt.want {
				t.Errorf("toRecord() =\n %+v\nwant\n %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizePageSize(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 100},
		{-5, 100},
		{1, 1},
		{50, 50},
		{100, 100},
		{101, 100},
		{1000, 100},
	}

	for _, tt := range tests {
		if got := normalizePageSize(tt.in); got != tt.want {
			t.Errorf("normalizePageSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFetchOptionsDefaults(t *testing.T) {
	if defaultPageSize != 100 {
		t.Errorf("defaultPageSize = %d, want 100", defaultPageSize)
	}
	if maxPageSize != 100 {
		t.Errorf("maxPageSize = %d, want 100", maxPageSize)
	}
}
