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
package util

import (
	"fmt"
	"strings"
)

// HexDigits is the minimum number of hex digits printed for an address.  The
// generated headers pad every constant to this width.
const HexDigits = 12

// FormatHex renders a value as lower-case hex, zero-padded to twelve digits,
// with a tick separator every four digits (e.g. 7fff'8000'0000).  The
// consuming compiler parses the digit separators.
func FormatHex(val uint64) string {
	var (
		s        = fmt.Sprintf("%x", val)
		segments []string
	)
	//
	if len(s) < HexDigits {
		s = strings.Repeat("0", HexDigits-len(s)) + s
	}
	//
	for len(s) > 0 {
		cut := max(len(s)-4, 0)
		segments = append([]string{s[cut:]}, segments...)
		s = s[:cut]
	}
	//
	return strings.Join(segments, "'")
}

// FormatSize renders a byte count using the largest fitting unit, printing an
// integer when the count divides evenly and two decimals otherwise.
func FormatSize(size uint64) string {
	units := []struct {
		factor uint64
		label  string
	}{
		{1 << 40, "TB"}, {1 << 30, "GB"}, {1 << 20, "MB"}, {1 << 10, "KB"},
	}
	//
	for _, unit := range units {
		if size >= unit.factor {
			if size%unit.factor == 0 {
				return fmt.Sprintf("%d %s", size/unit.factor, unit.label)
			}
			//
			return fmt.Sprintf("%.2f %s", float64(size)/float64(unit.factor), unit.label)
		}
	}
	//
	return fmt.Sprintf("%d B", size)
}
