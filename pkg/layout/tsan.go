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
	"math/bits"

	"github.com/xsan-runtime/layoutgen/pkg/bitvec"
	"github.com/xsan-runtime/layoutgen/pkg/bitvec/solver"
)

// raceIndicator is the bit window (bits 41..43) the race detector uses to
// restore a compressed address to its original.  Application regions must be
// distinguishable by these bits, a stronger requirement than the shadow mask
// alone imposes.
const raceIndicator = uint64(0x0E00_0000_0000)

// TSanConfig configures the data-race detector's mapper.
type TSanConfig struct {
	// Mask of the bits folded away when compressing application addresses.
	ShadowMask uint64
	// That many user bytes are mapped onto a single shadow cell.
	ShadowCell uint64
	// Count of shadow values in a shadow cell.
	ShadowCount uint64
	// Size of a single shadow value.
	ShadowSize uint64
	// Shadow memory is this many times larger than user memory; when zero it
	// is derived as ShadowCount * ShadowSize / ShadowCell.
	ShadowMultiplier uint64
	// That many user bytes are mapped onto a single meta shadow cell.  Must
	// be at most the minimal allocator alignment.
	MetaShadowCell uint64
	// Size of a single meta shadow value.
	MetaShadowSize uint64
	// Meta shadow memory's alignment.
	MetaAlignment uint64
}

func (c TSanConfig) multiplier() uint64 {
	if c.ShadowMultiplier != 0 {
		return c.ShadowMultiplier
	}
	//
	return c.ShadowCount * c.ShadowSize / c.ShadowCell
}

// userSpaceSize is the span of the compressed address space: (~mask) + 1
// within the bit width of the mask.
func (c TSanConfig) userSpaceSize() uint64 {
	width := bits.Len64(c.ShadowMask)
	return (^c.ShadowMask + 1) & ((uint64(1) << width) - 1)
}

func (c TSanConfig) instantiate(apps []AppRegion) Mapper {
	m := &tsanMapper{
		cfg:           c,
		apps:          apps,
		shadowXor:     bitvec.NewVar("kTsanShadowXor"),
		shadowAdd:     bitvec.NewVar("kTsanShadowAdd"),
		metaShadowBeg: bitvec.NewVar("kTsanMetaShadowBeg"),
	}
	//
	metaSpan := c.userSpaceSize() / c.MetaShadowCell * c.MetaShadowSize
	m.metaShadowEnd = bitvec.Sum(m.metaShadowBeg, bitvec.Const(metaSpan))
	//
	return m
}

type tsanMapper struct {
	cfg           TSanConfig
	apps          []AppRegion
	shadowXor     *bitvec.Variable
	shadowAdd     *bitvec.Variable
	metaShadowBeg *bitvec.Variable
	metaShadowEnd bitvec.Term
	// Shadow regions produced so far, for the aggregated begin/end params.
	shadowRegions []ShadowRegion
}

// Detector implementation for the Mapper interface.
func (m *tsanMapper) Detector() string { return "TSan" }

func (m *tsanMapper) shadow(a bitvec.Term) bitvec.Term {
	compressed := bitvec.Conjoin(a, bitvec.Const(^(m.cfg.ShadowMask | (m.cfg.ShadowCell - 1))))
	scaled := bitvec.Multiply(bitvec.ExclusiveOr(compressed, m.shadowXor), bitvec.Const(m.cfg.multiplier()))
	//
	return bitvec.Sum(scaled, m.shadowAdd)
}

func (m *tsanMapper) meta(a bitvec.Term) bitvec.Term {
	compressed := bitvec.Conjoin(a, bitvec.Const(^(m.cfg.ShadowMask | (m.cfg.MetaShadowCell - 1))))
	cell := bitvec.Divide(compressed, bitvec.Const(m.cfg.MetaShadowCell))
	//
	return bitvec.Disjoin(bitvec.Multiply(cell, bitvec.Const(m.cfg.MetaShadowSize)), m.metaShadowBeg)
}

// Shadow maps a concrete application address to its shadow address under the
// given model.
func (m *tsanMapper) Shadow(a uint64, model bitvec.Assignment) uint64 {
	return m.shadow(bitvec.Const(a)).Eval(model)
}

// Meta maps a concrete application address to its meta shadow address under
// the given model.
func (m *tsanMapper) Meta(a uint64, model bitvec.Assignment) uint64 {
	return m.meta(bitvec.Const(a)).Eval(model)
}

// Regions implementation for the Mapper interface: one shadow and one meta
// region per application region.
func (m *tsanMapper) Regions(app AppRegion) []ShadowRegion {
	shadowBeg, shadowEnd := interval(m.shadow, app.Beg, app.End, m.cfg.ShadowCell*m.cfg.multiplier())
	metaBeg, metaEnd := interval(m.meta, app.Beg, app.End, m.cfg.MetaShadowSize)
	//
	shadowRegion := ShadowRegion{
		Name:     fmt.Sprintf("TSan Shadow (%s)", app.Name),
		Detector: m.Detector(),
		Kind:     ShadowKind,
		App:      app.Name,
		Beg:      shadowBeg,
		End:      shadowEnd,
	}
	m.shadowRegions = append(m.shadowRegions, shadowRegion)
	//
	metaRegion := ShadowRegion{
		Name:     fmt.Sprintf("TSan Meta (%s)", app.Name),
		Detector: m.Detector(),
		Kind:     MetaKind,
		App:      app.Name,
		Beg:      metaBeg,
		End:      metaEnd,
	}
	//
	return []ShadowRegion{shadowRegion, metaRegion}
}

// GlobalRegions implementation for the Mapper interface.
func (m *tsanMapper) GlobalRegions() []ShadowRegion {
	return nil
}

// Params implementation for the Mapper interface.  The aggregated shadow
// begin/end cover every per-app shadow region.
func (m *tsanMapper) Params() []Param {
	var begs, ends []bitvec.Term
	//
	for _, region := range m.shadowRegions {
		begs = append(begs, region.Beg)
		ends = append(ends, region.End)
	}
	//
	return []Param{
		{Name: "kTsanShadowXor", Value: m.shadowXor},
		{Name: "kTsanShadowAdd", Value: m.shadowAdd},
		{Name: "kTsanShadowMsk", Value: bitvec.Const(m.cfg.ShadowMask)},
		{Name: "kTsanMetaShadowBeg", Value: m.metaShadowBeg},
		{Name: "kTsanMetaShadowEnd", Value: m.metaShadowEnd},
		{Name: "kTsanShadowBeg", Value: bitvec.Minimum(begs...)},
		{Name: "kTsanShadowEnd", Value: bitvec.Maximum(ends...)},
	}
}

// Declare implementation for the Mapper interface.
func (m *tsanMapper) Declare(prob *solver.Problem, ceiling uint64) {
	prob.Declare(m.shadowXor, solver.NewDomain(0, ceiling, 1))
	prob.Declare(m.shadowAdd, solver.NewDomain(0, ceiling, 1))
	prob.Declare(m.metaShadowBeg, solver.NewDomain(0, ceiling, 1))
}

// Constrain implementation for the Mapper interface.
func (m *tsanMapper) Constrain(prob *solver.Problem, platform *PlatformConfig) {
	prob.Assert(bitvec.LessThan(m.shadowAdd, bitvec.Const(platform.HiAppBegHint)))
	// The runtime's address restoration assumes an untranslated compressed
	// address; relaxing this requires changing that code in lockstep.
	prob.Assert(bitvec.Equals(m.shadowXor, bitvec.Const(0)))
	prob.Assert(bitvec.DivisibleBy(m.shadowAdd, platform.Alignment))
	//
	prob.Assert(bitvec.AtMost(bitvec.Const(platform.LoAppMemEndLoose), m.metaShadowBeg))
	prob.Assert(bitvec.DivisibleBy(m.metaShadowBeg, m.cfg.MetaAlignment))
	// Application regions must be pairwise distinguishable by the indicator
	// bits used to restore compressed addresses.
	indicator := bitvec.Const(raceIndicator)
	//
	for i := 0; i < len(m.apps); i++ {
		for j := i + 1; j < len(m.apps); j++ {
			var (
				r1, r2   = m.apps[i], m.apps[j]
				r1BegInd = bitvec.Conjoin(r1.Beg, indicator)
				r1EndInd = bitvec.Conjoin(r1.End, indicator)
				r2BegInd = bitvec.Conjoin(r2.Beg, indicator)
				r2EndInd = bitvec.Conjoin(r2.End, indicator)
			)
			//
			prob.Assert(bitvec.Either(
				bitvec.AtMost(r1EndInd, r2BegInd),
				bitvec.AtMost(r2EndInd, r1BegInd),
			))
		}
	}
}
