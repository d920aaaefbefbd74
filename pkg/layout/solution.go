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
	"fmt"
	"strings"

	"github.com/xsan-runtime/layoutgen/pkg/util"
)

// MapperBlock groups one detector's concrete parameters for emission.
type MapperBlock struct {
	Detector string
	Params   []ConcreteParam
}

// Solution is the immutable result of one solve: every parameter evaluated to
// a concrete value, plus the full region table sorted by region end.  All
// emitted artifacts derive from it.
type Solution struct {
	// Catalog key, e.g. "x64_48".
	Key string
	// Header struct name, e.g. "MappingX64_48".
	PlatformName string
	VdsoBeg      uint64
	Alignment    uint64
	// Every named constant (application bounds and detector parameters).
	Values map[string]uint64
	// Per-detector parameter blocks, in platform mapper order.
	Blocks []MapperBlock
	// All regions sorted ascending by end.
	Regions []SolvedRegion
}

// appParamOrder is the emission order of the application constants in the
// printed report.
var appParamOrder = []string{
	"kLoAppMemBeg", "kLoAppMemEnd", "kAsanLoAppMemEnd",
	"kMidAppMemBeg", "kMidAppMemEnd",
	"kHiAppMemBeg", "kHiAppMemEnd",
	"kHeapMemBeg", "kHeapMemEnd",
}

// constLine renders one generated constant the way the consuming runtime
// expects it.
func constLine(indent string, name string, val uint64, decimal bool) string {
	if decimal {
		return fmt.Sprintf("%sstatic constexpr const uintptr %s = %d;", indent, name, val)
	}
	//
	return fmt.Sprintf("%sstatic constexpr const uintptr %s = 0x%sull;", indent, name, util.FormatHex(val))
}

// layoutDesc renders the human-readable layout table: one row per region in
// end order, with a gap row wherever consecutive regions leave a hole.
func (s *Solution) layoutDesc() string {
	var builder strings.Builder
	//
	builder.WriteString("Complete Memory Layout (sorted by address):\n")
	builder.WriteString(strings.Repeat("-", 80))
	builder.WriteString("\n")
	//
	first := true
	//
	var prevEnd uint64
	//
	for _, region := range s.Regions {
		if !first && region.Beg > prevEnd {
			builder.WriteString(fmt.Sprintf("%012x - %012x: - gap (%s)\n",
				prevEnd, region.Beg, util.FormatSize(region.Beg-prevEnd)))
		}
		//
		name := region.Name
		if !region.App {
			name = "-- " + name
		}
		//
		builder.WriteString(fmt.Sprintf("%012x - %012x: %s (%s)\n",
			region.Beg, region.End, name, util.FormatSize(region.Size())))
		//
		prevEnd = region.End
		first = false
	}
	//
	return builder.String()
}

// blockLines renders one detector's parameter block.
func blockLines(indent string, block MapperBlock) []string {
	lines := []string{fmt.Sprintf("%s// %s Parameters:", indent, block.Detector)}
	//
	for _, param := range block.Params {
		lines = append(lines, constLine(indent, param.Name, param.Value, param.Decimal))
	}
	//
	return lines
}
