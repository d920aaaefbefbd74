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

import "math"

// Domain describes the candidate lattice of a decision variable: all values
// in [Lo, Hi] congruent to zero modulo Step.  Unary constraints and alignment
// preferences tighten the bounds and coarsen the step during propagation.
type Domain struct {
	Lo   uint64
	Hi   uint64
	Step uint64
}

// NewDomain constructs a domain over the given inclusive range, enumerated at
// the given granularity.
func NewDomain(lo uint64, hi uint64, step uint64) Domain {
	if step == 0 {
		step = 1
	}
	//
	return Domain{Lo: lo, Hi: hi, Step: step}
}

// Empty checks whether no candidate remains in this domain.
func (p *Domain) Empty() bool {
	first, ok := p.first()
	return !ok || first > p.Hi
}

// first returns the smallest multiple of Step which is >= Lo, or false on
// overflow.
func (p *Domain) first() (uint64, bool) {
	if p.Lo%p.Step == 0 {
		return p.Lo, true
	}
	//
	first := (p.Lo/p.Step + 1) * p.Step
	// Overflow means the rounded value wrapped past 2^64.
	if first < p.Lo {
		return 0, false
	}
	//
	return first, true
}

// next returns the candidate following val, or false when the domain is
// exhausted.
func (p *Domain) next(val uint64) (uint64, bool) {
	next := val + p.Step
	if next < val || next > p.Hi {
		return 0, false
	}
	//
	return next, true
}

// coarsen raises the enumeration step to the least common multiple of the
// current step and the given modulus.
func (p *Domain) coarsen(modulus uint64) {
	if modulus == 0 {
		return
	}
	//
	p.Step = lcm(p.Step, modulus)
}

func gcd(a uint64, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	//
	return a
}

func lcm(a uint64, b uint64) uint64 {
	if a == 0 || b == 0 {
		return max(a, b)
	}
	//
	g := gcd(a, b)
	if a/g > math.MaxUint64/b {
		// Saturate rather than wrap; such a step empties the domain anyway.
		return math.MaxUint64
	}
	//
	return (a / g) * b
}
