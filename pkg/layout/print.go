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
	"io"
	"strings"
)

// WriteReport writes the human-readable solution report.  The width governs
// the decorative rules only (the layout table is fixed at 80 columns so that
// the same rendering can be embedded in generated headers).
func (s *Solution) WriteReport(w io.Writer, width int) error {
	if width < 80 {
		width = 80
	}
	//
	var (
		rule    = strings.Repeat("=", width)
		builder strings.Builder
	)
	//
	builder.WriteString("\n" + rule + "\n")
	builder.WriteString(fmt.Sprintf("SOLUTION - Platform: %s\n", s.Key))
	builder.WriteString(rule + "\n")
	builder.WriteString(constLine("", "kVdsoBeg", s.VdsoBeg, false) + "\n")
	//
	builder.WriteString("\n// App Memory Regions:\n")
	//
	for _, name := range appParamOrder {
		if name == "kAsanLoAppMemEnd" {
			builder.WriteString("// Used only for ASan's shadow calculation\n")
		}
		//
		builder.WriteString(constLine("", name, s.Values[name], false) + "\n")
	}
	//
	for _, block := range s.Blocks {
		builder.WriteString("\n")
		builder.WriteString(strings.Join(blockLines("", block), "\n"))
		builder.WriteString("\n")
	}
	//
	builder.WriteString("\n// Complete Memory Layout:\n")
	builder.WriteString(s.layoutDesc())
	//
	_, err := io.WriteString(w, builder.String())
	//
	return err
}
