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
	"github.com/xsan-runtime/layoutgen/pkg/bitvec"
	"github.com/xsan-runtime/layoutgen/pkg/bitvec/solver"
)

// Param is a named detector parameter.  The value is symbolic during
// constraint generation and evaluated against the model at emission time.
type Param struct {
	Name  string
	Value bitvec.Term
	// Decimal parameters print as plain integers rather than padded hex
	// (e.g. the address detector's shadow scale).
	Decimal bool
}

// ConcreteParam is a parameter evaluated against a model.
type ConcreteParam struct {
	Name    string
	Value   uint64
	Decimal bool
}

// MapperSpec is a per-detector configuration capable of instantiating its
// mapper against a given set of application regions.
type MapperSpec interface {
	instantiate(apps []AppRegion) Mapper
}

// Mapper captures one detector's contribution to the layout problem: the
// shadow regions it derives from application memory, the parameter variables
// it introduces, and the structural constraints it imposes.  Mappers express
// their mapping functions over symbolic terms, so a single formula serves
// both the solver and the emitter.
type Mapper interface {
	// Detector returns the short tag of the owning detector (e.g. "ASan").
	Detector() string
	// Regions returns the shadow regions this mapper derives from the given
	// application region.
	Regions(app AppRegion) []ShadowRegion
	// GlobalRegions returns shadow regions not tied to a single application
	// region.  Called once, before Regions is called for any application
	// region.
	GlobalRegions() []ShadowRegion
	// Params returns the detector parameters in emission order.
	Params() []Param
	// Declare registers this mapper's decision variables with the problem.
	// The ceiling bounds the candidate space from above.
	Declare(prob *solver.Problem, ceiling uint64)
	// Constrain posts this mapper's constraints against the given platform.
	Constrain(prob *solver.Problem, platform *PlatformConfig)
}

// FormatParams evaluates a mapper's parameters against a model.
func FormatParams(m Mapper, model bitvec.Assignment) []ConcreteParam {
	var out []ConcreteParam
	//
	for _, param := range m.Params() {
		out = append(out, ConcreteParam{
			Name:    param.Name,
			Value:   param.Value.Eval(model),
			Decimal: param.Decimal,
		})
	}
	//
	return out
}

// interval applies the endpoint derivation rule shared by every mapper: for a
// mapping which is monotone-modulo-alignment on [beg, end), the image is
// [m(beg), m(end-1) + unit), where unit is the smallest addressable quantum
// of the shadow.
func interval(m func(bitvec.Term) bitvec.Term, beg bitvec.Term, end bitvec.Term, unit uint64) (bitvec.Term, bitvec.Term) {
	last := m(bitvec.Subtract(end, bitvec.Const(1)))
	return m(beg), bitvec.Sum(last, bitvec.Const(unit))
}
