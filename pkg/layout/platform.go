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

	"github.com/xsan-runtime/layoutgen/pkg/util"
)

// DefaultAlignment is the granularity towards which symbolic region bounds
// are biased (1 TB).
const DefaultAlignment = uint64(0x0100_0000_0000)

// ConfigError reports a malformed platform record, naming the platform and
// the offending field.
type ConfigError struct {
	Platform string
	Field    string
	Reason   string
}

// Error implementation for the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("platform %q: field %s: %s", e.Platform, e.Field, e.Reason)
}

// PlatformConfig is an immutable description of one target platform: its
// fixed region anchors, size floors, alignment granularity and the detector
// mappers to instantiate.  Optional anchors left empty are solved for.
type PlatformConfig struct {
	// Name used for the struct in the generated header (e.g. MappingX64_48).
	Name string
	// Fixed bounds of low application memory.  LoAppMemEnd is the strict end
	// used by the address detector's shadow; LoAppMemEndLoose is the loose
	// ceiling used by every other detector.
	LoAppMemBeg      uint64
	LoAppMemEnd      uint64
	LoAppMemEndLoose uint64
	// Mid application memory (PIE binaries, shared objects).
	MidAppBeg uint64
	MidAppEnd util.Option[uint64]
	// High application memory (stacks and friends).  Exactly one of HiAppBeg
	// and HiAppBegHint must be set: the former fixes the bound, the latter is
	// a lower bound for the solver.
	HiAppBeg     util.Option[uint64]
	HiAppBegHint uint64
	HiAppEnd     uint64
	// Heap bounds; usually left to the solver.
	HeapBeg util.Option[uint64]
	HeapEnd util.Option[uint64]
	// Informational only; emitted but never constrained.
	VdsoBeg uint64
	// Granularity towards which symbolic bounds are biased.
	Alignment uint64
	// Per-region size floors (zero means unconstrained).
	MinMidAppSize uint64
	MinHiAppSize  uint64
	MinHeapSize   uint64
	// Detector mappers to instantiate, in order.
	Mappers []MapperSpec
}

// Validate checks the structural invariants of a platform record and returns
// a normalized copy in which HiAppBegHint is always populated.  The given key
// identifies the record in error messages.
func (c PlatformConfig) Validate(key string) (PlatformConfig, error) {
	begSet, hintSet := c.HiAppBeg.HasValue(), c.HiAppBegHint != 0
	//
	if begSet == hintSet {
		return c, &ConfigError{
			Platform: key,
			Field:    "hi_app_beg/hi_app_beg_hint",
			Reason: fmt.Sprintf("exactly one must be set (hi_app_beg set: %v, hi_app_beg_hint set: %v)",
				begSet, hintSet),
		}
	}
	// A fully fixed region must be able to hold its size floor.
	fixed := []struct {
		field    string
		beg, end util.Option[uint64]
		floor    uint64
	}{
		{"mid_app", util.Some(c.MidAppBeg), c.MidAppEnd, c.MinMidAppSize},
		{"hi_app", c.HiAppBeg, util.Some(c.HiAppEnd), c.MinHiAppSize},
		{"heap", c.HeapBeg, c.HeapEnd, c.MinHeapSize},
	}
	//
	for _, region := range fixed {
		if region.floor == 0 || region.beg.IsEmpty() || region.end.IsEmpty() {
			continue
		}
		//
		size := region.end.Unwrap() - region.beg.Unwrap()
		if size < region.floor {
			return c, &ConfigError{
				Platform: key,
				Field:    region.field,
				Reason: fmt.Sprintf("fixed region size %#x below floor %#x (beg=%#x, end=%#x)",
					size, region.floor, region.beg.Unwrap(), region.end.Unwrap()),
			}
		}
	}
	// Normalize: downstream mappers consult only the hint.
	if begSet {
		c.HiAppBegHint = c.HiAppBeg.Unwrap()
	}
	//
	if c.Alignment == 0 {
		c.Alignment = DefaultAlignment
	}
	//
	return c, nil
}
