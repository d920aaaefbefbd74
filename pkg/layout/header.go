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
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/xsan-runtime/layoutgen/pkg/util"
)

// headerRuleWidth is the column the banner comments are padded to.
const headerRuleWidth = 80

// headerParamOrder is the emission order of the application constants in the
// generated header.  The runtime's platform templates list the heap first.
var headerParamOrder = []string{
	"kHeapMemBeg", "kHeapMemEnd",
	"kLoAppMemBeg", "kLoAppMemEnd", "kAsanLoAppMemEnd",
	"kMidAppMemBeg", "kMidAppMemEnd",
	"kHiAppMemBeg", "kHiAppMemEnd",
}

// HeaderFileName returns the name of the generated header for a platform key.
func HeaderFileName(key string) string {
	return fmt.Sprintf("xsan_platform_%s.h", key)
}

// WriteHeader renders the solution as a generated C++ header under outdir,
// stamping it with the generation time and the command line that produced it.
// The file is written to a temporary sibling and renamed into place, so a
// failed run leaves no partial artifact.  Returns the final path.
func (s *Solution) WriteHeader(outdir string, cmdline string, now time.Time) (string, error) {
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %q: %w", outdir, err)
	}
	//
	var (
		filename = HeaderFileName(s.Key)
		path     = filepath.Join(outdir, filename)
		code     = s.renderHeader(filename, cmdline, now)
	)
	//
	tmp, err := os.CreateTemp(outdir, filename+".tmp*")
	if err != nil {
		return "", fmt.Errorf("writing header %q: %w", path, err)
	}
	//
	if _, err := tmp.WriteString(code); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		//
		return "", fmt.Errorf("writing header %q: %w", path, err)
	}
	//
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing header %q: %w", path, err)
	}
	//
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing header %q: %w", path, err)
	}
	//
	log.Infof("header file written: %s", path)
	//
	return path, nil
}

func (s *Solution) renderHeader(filename string, cmdline string, now time.Time) string {
	var (
		builder   strings.Builder
		separator = "//===" + strings.Repeat("-", headerRuleWidth-10) + "===//"
	)
	// Banner.
	banner := fmt.Sprintf("//===-- %s: Auto-generated by SMT solver --", filename)
	if pad := headerRuleWidth - len(banner) - len("===//"); pad > 0 {
		banner += strings.Repeat("-", pad)
	}
	//
	banner += "===//"
	//
	builder.WriteString(banner + "\n")
	builder.WriteString("//\n")
	builder.WriteString(fmt.Sprintf("// Generated Time: %sZ\n", now.Format("2006-01-02T15:04:05.000000")))
	builder.WriteString(fmt.Sprintf("// Platform: %s\n", s.PlatformName))
	builder.WriteString("// Generated by:\n")
	builder.WriteString("//\n")
	builder.WriteString(fmt.Sprintf("// %s\n", cmdline))
	builder.WriteString("//\n")
	builder.WriteString(separator + "\n")
	builder.WriteString("//\n")
	builder.WriteString("// NOTE: This file was generated by an SMT solver; do not edit manually unless\n")
	builder.WriteString("// you know what you are doing.\n")
	builder.WriteString("//\n")
	builder.WriteString(separator + "\n")
	builder.WriteString("\n#pragma once\n")
	// Embedded human-readable layout.
	builder.WriteString("\n/*\n")
	builder.WriteString(fmt.Sprintf("C/C++ on %s Memory Layout:\n\n", s.PlatformName))
	builder.WriteString(s.layoutDesc())
	builder.WriteString("\n*/\n")
	// The struct itself.
	builder.WriteString(fmt.Sprintf("struct %s {\n", s.PlatformName))
	//
	for _, name := range headerParamOrder {
		if name == "kAsanLoAppMemEnd" {
			builder.WriteString("  // Used only for ASan's shadow calculation\n")
		}
		//
		builder.WriteString(constLine("  ", name, s.Values[name], false) + "\n")
	}
	//
	builder.WriteString(constLine("  ", "kVdsoBeg", s.VdsoBeg, false) + "\n")
	//
	for _, block := range s.Blocks {
		builder.WriteString("\n")
		builder.WriteString(strings.Join(blockLines("  ", block), "\n"))
		builder.WriteString("\n")
	}
	//
	builder.WriteString("\n")
	builder.WriteString("  // All Memory Regions to Map (just for reference as sanitizer might change the mapping dynamically)\n")
	builder.WriteString("  static constexpr const MemRegion kRegions[] = {\n")
	//
	for _, region := range s.Regions {
		kind := "Shadow"
		if region.App {
			kind = "App"
		}
		//
		builder.WriteString(fmt.Sprintf("      {0x%sull, 0x%sull, RegionType::%s, %q},\n",
			util.FormatHex(region.Beg), util.FormatHex(region.End), kind, region.Name))
	}
	//
	builder.WriteString("  };\n")
	builder.WriteString("};\n")
	//
	return builder.String()
}
