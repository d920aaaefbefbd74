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

	"github.com/xsan-runtime/layoutgen/pkg/bitvec"
	"github.com/xsan-runtime/layoutgen/pkg/bitvec/solver"
)

// MSanConfig configures the uninitialized-memory detector's mapper: an
// xor-based shadow plus an additive origin shadow recording provenance.
type MSanConfig struct {
	XorAlignment uint64
}

func (c MSanConfig) instantiate(apps []AppRegion) Mapper {
	return &msanMapper{
		cfg:       c,
		apps:      apps,
		shadowXor: bitvec.NewVar("kMSanShadowXor"),
		shadowAdd: bitvec.NewVar("kMSanShadowAdd"),
	}
}

type msanMapper struct {
	cfg       MSanConfig
	apps      []AppRegion
	shadowXor *bitvec.Variable
	shadowAdd *bitvec.Variable
}

// Detector implementation for the Mapper interface.
func (m *msanMapper) Detector() string { return "MSan" }

func (m *msanMapper) shadow(a bitvec.Term) bitvec.Term {
	return bitvec.ExclusiveOr(a, m.shadowXor)
}

func (m *msanMapper) origin(a bitvec.Term) bitvec.Term {
	return bitvec.Sum(m.shadow(a), m.shadowAdd)
}

// Shadow maps a concrete application address to its shadow address under the
// given model.
func (m *msanMapper) Shadow(a uint64, model bitvec.Assignment) uint64 {
	return m.shadow(bitvec.Const(a)).Eval(model)
}

// Origin maps a concrete application address to its origin address under the
// given model.
func (m *msanMapper) Origin(a uint64, model bitvec.Assignment) uint64 {
	return m.origin(bitvec.Const(a)).Eval(model)
}

// Regions implementation for the Mapper interface: one shadow and one origin
// region per application region.
func (m *msanMapper) Regions(app AppRegion) []ShadowRegion {
	shadowBeg, shadowEnd := interval(m.shadow, app.Beg, app.End, 1)
	originBeg, originEnd := interval(m.origin, app.Beg, app.End, 1)
	//
	return []ShadowRegion{
		{
			Name:     fmt.Sprintf("MSan Shadow (%s)", app.Name),
			Detector: m.Detector(),
			Kind:     ShadowKind,
			App:      app.Name,
			Beg:      shadowBeg,
			End:      shadowEnd,
		},
		{
			Name:     fmt.Sprintf("MSan Origin (%s)", app.Name),
			Detector: m.Detector(),
			Kind:     OriginKind,
			App:      app.Name,
			Beg:      originBeg,
			End:      originEnd,
		},
	}
}

// GlobalRegions implementation for the Mapper interface.
func (m *msanMapper) GlobalRegions() []ShadowRegion {
	return nil
}

// Params implementation for the Mapper interface.
func (m *msanMapper) Params() []Param {
	return []Param{
		{Name: "kMSanShadowXor", Value: m.shadowXor},
		{Name: "kMSanShadowAdd", Value: m.shadowAdd},
	}
}

// Declare implementation for the Mapper interface.
func (m *msanMapper) Declare(prob *solver.Problem, ceiling uint64) {
	prob.Declare(m.shadowXor, solver.NewDomain(0, ceiling, 1))
	prob.Declare(m.shadowAdd, solver.NewDomain(0, ceiling, 1))
}

// Constrain implementation for the Mapper interface.
func (m *msanMapper) Constrain(prob *solver.Problem, platform *PlatformConfig) {
	prob.Assert(bitvec.LessThan(m.shadowAdd, bitvec.Const(platform.HiAppBegHint)))
	prob.Assert(bitvec.DivisibleBy(m.shadowXor, m.cfg.XorAlignment))
	prob.Assert(bitvec.DivisibleBy(m.shadowAdd, platform.Alignment))
}
