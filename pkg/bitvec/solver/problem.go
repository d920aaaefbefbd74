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
package solver

import (
	"errors"
	"fmt"

	"github.com/xsan-runtime/layoutgen/pkg/bitvec"
)

// ErrUnsat indicates no assignment satisfies the constraint system.
var ErrUnsat = errors.New("constraints are unsatisfiable")

// ErrExhausted indicates the search budget ran out before either a model or a
// proof of unsatisfiability was found.  Callers treat this like an unknown
// result from an external solver.
var ErrExhausted = errors.New("search budget exhausted")

// DefaultBudget bounds the number of candidate assignments visited during a
// single solve.  The layout problems probed here stay far below this.
const DefaultBudget = uint64(1) << 28

// Problem is a constraint system over 64-bit bit-vector variables.  Decision
// variables carry finite candidate domains; propositions constrain them;
// alignment preferences bias the enumeration order towards aligned values.
// Variables are searched in declaration order, ascending, which makes the
// first model deterministic.
type Problem struct {
	decisions []*decision
	index     map[string]int
	props     []bitvec.Prop
	budget    uint64
}

type decision struct {
	v      *bitvec.Variable
	dom    Domain
	pinned bool
	value  uint64
}

// NewProblem constructs an empty problem.
func NewProblem() *Problem {
	return &Problem{index: make(map[string]int), budget: DefaultBudget}
}

// Declare registers a decision variable with its candidate domain.  The
// declaration order fixes the search order.
func (p *Problem) Declare(v *bitvec.Variable, dom Domain) {
	if _, ok := p.index[v.Name]; ok {
		panic(fmt.Sprintf("variable %q declared twice", v.Name))
	}
	//
	p.index[v.Name] = len(p.decisions)
	p.decisions = append(p.decisions, &decision{v: v, dom: dom})
}

// Assert adds a proposition that every model must satisfy.
func (p *Problem) Assert(prop bitvec.Prop) {
	set := make(map[string]bool)
	prop.Vars(set)
	//
	for name := range set {
		if _, ok := p.index[name]; !ok {
			panic(fmt.Sprintf("constraint mentions undeclared variable %q", name))
		}
	}
	//
	p.props = append(p.props, prop)
}

// PreferAligned restricts the candidate enumeration of a variable to
// multiples of the given modulus: candidates are drawn from the aligned
// lattice only, so an aligned model is found whenever one exists on it.
// Unaligned values are never tried; when no aligned model exists, Solve
// reports the problem as unsatisfiable.
func (p *Problem) PreferAligned(v *bitvec.Variable, modulus uint64) {
	i, ok := p.index[v.Name]
	if !ok {
		panic(fmt.Sprintf("alignment preference for undeclared variable %q", v.Name))
	}
	//
	p.decisions[i].dom.coarsen(modulus)
}

// SetBudget overrides the default search budget.
func (p *Problem) SetBudget(budget uint64) {
	p.budget = budget
}
