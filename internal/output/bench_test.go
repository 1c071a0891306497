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

package output

import (
	"fmt"
	"io"
	"testing"
)

// sampleDevice represents a typical clearance record structure for benchmarking
type sampleDevice struct {
	KNumber             string `json:"k_number"`
	DeviceName          string `json:"device_name"`
	Manufacturer        string `json:"manufacturer"`
	IndicationsForUse   string `json:"indications_for_use"`
	SummaryOfTechnology string `json:"summary_of_technology"`
}

// createSampleDevice creates a realistic record for benchmarking
func createSampleDevice(num int) sampleDevice {
	return sampleDevice{
		KNumber:             fmt.Sprintf("K%06d", num),
		DeviceName:          "Multi-Parameter Patient Monitoring System with Integrated Telemetry",
		Manufacturer:        "Example Medical Instruments Corporation",
		IndicationsForUse:   "Continuous monitoring of physiological parameters including ECG, respiration, temperature, and non-invasive blood pressure in adult and pediatric patients within professional healthcare facilities.",
		SummaryOfTechnology: "The device employs multi-channel signal acquisition with digital filtering and automated arrhythmia detection algorithms. Acquired data is displayed locally and transmitted to a central station over the facility network.",
	}
}

// BenchmarkNDJSONWriter_Write benchmarks writing single records
func BenchmarkNDJSONWriter_Write(b *testing.B) {
	w := NewNDJSONWriter(io.Discard)
	rec := createSampleDevice(1)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := w.Write(rec); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkArrayWriter_Write benchmarks the streaming array writer
func BenchmarkArrayWriter_Write(b *testing.B) {
	w := NewArrayWriter(io.Discard)
	rec := createSampleDevice(1)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := w.Write(rec); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkNDJSONWriter_WriteLarge benchmarks writing many records sequentially
func BenchmarkNDJSONWriter_WriteLarge(b *testing.B) {
	benchmarks := []struct {
		name  string
		count int
	}{
		{"100Records", 100},
		{"1000Records", 1000},
		{"10000Records", 10000},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				b.StopTimer()
				w := NewNDJSONWriter(io.Discard)
				b.StartTimer()

				for j := 0; j < bm.count; j++ {
					rec := createSampleDevice(j)
					if err := w.Write(rec); err != nil {
						b.Fatal(err)
					}
				}
			}
		})
	}
}

// BenchmarkNDJSONWriter_Concurrent benchmarks concurrent writes
func BenchmarkNDJSONWriter_Concurrent(b *testing.B) {
	w := NewNDJSONWriter(io.Discard)
	rec := createSampleDevice(1)

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if err := w.Write(rec); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkFileWriter_Write benchmarks file-based writing
func BenchmarkFileWriter_Write(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		tempFile := b.TempDir() + "/bench.ndjson"
		w, err := NewFileWriter(FormatNDJSON, tempFile)
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()

		// Write 1000 records to simulate realistic usage
		for j := 0; j < 1000; j++ {
			rec := createSampleDevice(j)
			if err := w.Write(rec); err != nil {
				b.Fatal(err)
			}
		}

		b.StopTimer()
		w.Close()
		b.StartTimer()
	}
}
