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

import "github.com/xsan-runtime/layoutgen/pkg/bitvec"

// Well-known application region names.
const (
	LoAppName  = "LoApp"
	MidAppName = "MidApp"
	HiAppName  = "HiApp"
	HeapName   = "Heap"
)

// GlobalApp marks a shadow region which covers the address space as a whole
// rather than shadowing one application region.
const GlobalApp = "Global"

// RegionKind distinguishes the flavours of detector metadata regions.
type RegionKind uint8

const (
	// ShadowKind is a plain per-byte (or per-cell) shadow.
	ShadowKind RegionKind = iota
	// OriginKind is the uninit detector's provenance shadow.
	OriginKind
	// MetaKind is the race detector's per-allocation-cell shadow.
	MetaKind
)

// String implementation for the Stringer interface.
func (k RegionKind) String() string {
	switch k {
	case ShadowKind:
		return "shadow"
	case OriginKind:
		return "origin"
	case MetaKind:
		return "meta"
	}
	//
	return "unknown"
}

// AppRegion is a named half-open interval of application memory whose bounds
// may be symbolic.
type AppRegion struct {
	Name string
	Beg  bitvec.Term
	End  bitvec.Term
}

// ShadowRegion is a detector-owned half-open interval derived from an
// application region (or global), with possibly-symbolic bounds.
type ShadowRegion struct {
	// Human name, e.g. "MSan Shadow (MidApp)".
	Name string
	// Originating detector tag.
	Detector string
	// Flavour of metadata held.
	Kind RegionKind
	// Name of the application region shadowed, or GlobalApp.
	App string
	// Bounds.
	Beg bitvec.Term
	End bitvec.Term
}

// SolvedRegion is a fully concrete region row of the final layout.
type SolvedRegion struct {
	Beg  uint64
	End  uint64
	Name string
	App  bool
}

// Size returns the byte count covered by this region.
func (r SolvedRegion) Size() uint64 {
	return r.End - r.Beg
}
