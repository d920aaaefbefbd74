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
	"slices"
	"strings"

	"github.com/xsan-runtime/layoutgen/pkg/util"
)

// PageSize is the smallest mappable unit on the supported platforms.
const PageSize = uint64(0x1000)

// The address detector protects the last page of low application memory
// against overwrites of its own shadow, hence the strict low end sits one
// page below the shadow offset.
//
// Region policy: the strictest requirements among the detectors are encoded
// as fixed anchors (low app for the address detector, mid/high app for the
// race detector); the heap is always left to the solver, since hard-coding
// it easily renders the system unsatisfiable.

// Platforms builds the catalog of supported platform records, validating and
// normalizing each entry.
func Platforms() (map[string]PlatformConfig, error) {
	catalog := map[string]PlatformConfig{
		"x64_48": {
			Name:             "MappingX64_48",
			Alignment:        0x0100_0000_0000,
			LoAppMemBeg:      0x0000_0000_0000,
			LoAppMemEnd:      0x0000_7FFF_8000 - PageSize,
			LoAppMemEndLoose: 0x0100_0000_0000,
			MidAppBeg:        0x5500_0000_0000,
			MidAppEnd:        util.Some[uint64](0x5A00_0000_0000),
			HiAppBeg:         util.Some[uint64](0x7A00_0000_0000),
			HiAppEnd:         0x8000_0000_0000,
			VdsoBeg:          0xF000_0000_0000_0000,
			MinMidAppSize:    0x0500_0000_0000,
			MinHiAppSize:     0x0600_0000_0000,
			MinHeapSize:      0x0200_0000_0000,
			Mappers: []MapperSpec{
				ASanConfig{
					ShadowOffset: 0x0000_0000_7FFF_8000,
					ShadowScale:  3,
				},
				MSanConfig{XorAlignment: 0x1000_0000_0000},
				TSanConfig{
					ShadowMask:       0x7000_0000_0000,
					ShadowCell:       8,
					ShadowMultiplier: 2,
					MetaShadowCell:   8,
					MetaShadowSize:   4,
					MetaAlignment:    0x1000_0000_0000,
				},
			},
		},
		"aarch64_48": {
			Name:             "MappingAarch64_48",
			Alignment:        0x0100_0000_0000,
			LoAppMemBeg:      0x0000_0000_0000,
			LoAppMemEnd:      0x0010_0000_0000 - PageSize,
			LoAppMemEndLoose: 0x0100_0000_0000,
			MidAppBeg:        0xAAAA_0000_0000,
			MidAppEnd:        util.Some[uint64](0xAC00_0000_0000),
			HiAppBeg:         util.Some[uint64](0xFC00_0000_0000),
			HiAppEnd:         0x1_0000_0000_0000,
			VdsoBeg:          0x000F_FFF0_0000_0000,
			MinHeapSize:      0x0200_0000_0000,
			Mappers: []MapperSpec{
				ASanConfig{
					ShadowOffset: 0x0010_0000_0000,
					ShadowScale:  3,
				},
				MSanConfig{XorAlignment: 0x1000_0000_0000},
				TSanConfig{
					ShadowMask:       0xF000_0000_0000,
					ShadowCell:       8,
					ShadowMultiplier: 2,
					MetaShadowCell:   8,
					MetaShadowSize:   4,
					MetaAlignment:    0x1000_0000_0000,
				},
			},
		},
	}
	//
	for key, cfg := range catalog {
		normalized, err := cfg.Validate(key)
		if err != nil {
			return nil, err
		}
		//
		catalog[key] = normalized
	}
	//
	return catalog, nil
}

// PlatformKeys lists the catalog keys in sorted order, for error messages and
// usage strings.
func PlatformKeys(catalog map[string]PlatformConfig) string {
	keys := make([]string, 0, len(catalog))
	for key := range catalog {
		keys = append(keys, key)
	}
	//
	slices.Sort(keys)
	//
	return strings.Join(keys, ", ")
}

// errUnknownPlatform constructs the diagnostic for a key missing from the
// catalog.
func errUnknownPlatform(key string, catalog map[string]PlatformConfig) error {
	return fmt.Errorf("unknown platform %q (available: %s)", key, PlatformKeys(catalog))
}
