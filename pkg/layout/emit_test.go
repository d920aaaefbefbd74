// Copyright the xsan-runtime authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package layout

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// §6 contractual constant names, all of which must appear in every emitted
// artifact.
var contractualNames = []string{
	"kLoAppMemBeg", "kLoAppMemEnd", "kAsanLoAppMemEnd",
	"kMidAppMemBeg", "kMidAppMemEnd", "kHiAppMemBeg", "kHiAppMemEnd",
	"kHeapMemBeg", "kHeapMemEnd", "kVdsoBeg",
	"kAsanShadowOffset", "kAsanShadowScale",
	"kMSanShadowXor", "kMSanShadowAdd",
	"kTsanShadowXor", "kTsanShadowAdd", "kTsanShadowMsk",
	"kTsanMetaShadowBeg", "kTsanMetaShadowEnd",
	"kTsanShadowBeg", "kTsanShadowEnd",
}

func report(t *testing.T, key string) string {
	t.Helper()
	//
	var builder strings.Builder
	//
	if err := solved(t, key).sol.WriteReport(&builder, 80); err != nil {
		t.Fatalf("report rendering failed: %v", err)
	}
	//
	return builder.String()
}

func Test_Emit_01(t *testing.T) {
	// Scenario: the canonical x64_48 report fragments.
	out := report(t, "x64_48")
	//
	for _, fragment := range []string{
		"SOLUTION - Platform: x64_48",
		"static constexpr const uintptr kAsanShadowOffset = 0x0000'7fff'8000ull;",
		"static constexpr const uintptr kAsanShadowScale = 3;",
		"static constexpr const uintptr kVdsoBeg = 0xf000'0000'0000'0000ull;",
		"000000000000 - 00007fff7000: LoApp (",
		"// Used only for ASan's shadow calculation",
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("report missing %q", fragment)
		}
	}
}

func Test_Emit_02(t *testing.T) {
	// Every contractual constant appears in the report.
	out := report(t, "x64_48")
	//
	for _, name := range contractualNames {
		if !strings.Contains(out, name+" = ") {
			t.Errorf("report missing constant %s", name)
		}
	}
}

func Test_Emit_03(t *testing.T) {
	// Exactly one gap row per hole between consecutive regions.
	for _, key := range []string{"x64_48", "aarch64_48"} {
		var (
			r        = solved(t, key)
			expected = 0
			prevEnd  uint64
		)
		//
		for i, region := range r.sol.Regions {
			if i > 0 && region.Beg > prevEnd {
				expected++
			}
			//
			prevEnd = region.End
		}
		//
		if actual := strings.Count(report(t, key), ": - gap ("); actual != expected {
			t.Errorf("%s: expected %d gap rows, got %d", key, expected, actual)
		}
	}
}

func Test_Emit_04(t *testing.T) {
	// Scenario: header emission for x64_48.
	var (
		dir  = t.TempDir()
		r    = solved(t, "x64_48")
		when = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	)
	//
	path, err := r.sol.WriteHeader(dir, "layoutgen --platform x64_48 --output header", when)
	if err != nil {
		t.Fatalf("header emission failed: %v", err)
	}
	//
	if filepath.Base(path) != "xsan_platform_x64_48.h" {
		t.Errorf("unexpected header name %q", path)
	}
	//
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading header failed: %v", err)
	}
	//
	out := string(content)
	//
	for _, fragment := range []string{
		"#pragma once",
		"struct MappingX64_48 {",
		"// Generated Time: 2025-06-01T12:00:00.000000Z",
		"// layoutgen --platform x64_48 --output header",
		"static constexpr const MemRegion kRegions[] = {",
		`RegionType::App, "LoApp"`,
		`RegionType::Shadow, "ASan Shadow (Rest)"`,
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("header missing %q", fragment)
		}
	}
	//
	for _, name := range contractualNames {
		if !strings.Contains(out, name+" = ") {
			t.Errorf("header missing constant %s", name)
		}
	}
	// No stray temporary files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	//
	if len(entries) != 1 {
		t.Errorf("expected a single artifact in %s, found %d entries", dir, len(entries))
	}
}

func Test_Emit_05(t *testing.T) {
	// Scenario: the aarch64_48 header carries its shadow mask verbatim.
	var (
		dir  = t.TempDir()
		r    = solved(t, "aarch64_48")
		when = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	)
	//
	path, err := r.sol.WriteHeader(dir, "layoutgen", when)
	if err != nil {
		t.Fatalf("header emission failed: %v", err)
	}
	//
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	//
	if !strings.Contains(string(content), "kTsanShadowMsk = 0xf000'0000'0000ull") {
		t.Error("header missing the race-detector shadow mask")
	}
	//
	if !strings.Contains(string(content), "struct MappingAarch64_48 {") {
		t.Error("header missing the platform struct")
	}
}

func Test_Emit_06(t *testing.T) {
	// Emission is a pure function of the solution, timestamp and command
	// line: identical inputs yield identical bytes.
	var (
		r    = solved(t, "x64_48")
		when = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	)
	//
	first := r.sol.renderHeader("xsan_platform_x64_48.h", "layoutgen", when)
	second := r.sol.renderHeader("xsan_platform_x64_48.h", "layoutgen", when)
	//
	if first != second {
		t.Error("header rendering is not deterministic")
	}
	// A differing timestamp touches only the generated-time line.
	third := r.sol.renderHeader("xsan_platform_x64_48.h", "layoutgen", when.Add(time.Hour))
	//
	var (
		firstLines = strings.Split(first, "\n")
		thirdLines = strings.Split(third, "\n")
		differing  = 0
	)
	//
	if len(firstLines) != len(thirdLines) {
		t.Fatal("header line count changed with the timestamp")
	}
	//
	for i := range firstLines {
		if firstLines[i] != thirdLines[i] {
			differing++
			//
			if !strings.HasPrefix(firstLines[i], "// Generated Time:") {
				t.Errorf("unexpected differing line %q", firstLines[i])
			}
		}
	}
	//
	if differing != 1 {
		t.Errorf("expected exactly one differing line, got %d", differing)
	}
}

func Test_Emit_07(t *testing.T) {
	// The banner is padded to exactly 80 columns.
	var (
		r     = solved(t, "x64_48")
		out   = r.sol.renderHeader("xsan_platform_x64_48.h", "layoutgen", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
		first = strings.SplitN(out, "\n", 2)[0]
	)
	//
	if len(first) != 80 || !strings.HasSuffix(first, "===//") {
		t.Errorf("malformed banner %q (len %d)", first, len(first))
	}
}
