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
package bitvec

// Xor represents the bitwise exclusive-or of two terms.
type Xor struct{ Lhs, Rhs Term }

// ExclusiveOr two terms together bitwise.
func ExclusiveOr(lhs Term, rhs Term) Term {
	return &Xor{Lhs: lhs, Rhs: rhs}
}

// Eval implementation for the Term interface.
func (p *Xor) Eval(asn Assignment) uint64 {
	return p.Lhs.Eval(asn) ^ p.Rhs.Eval(asn)
}

// Vars implementation for the Term interface.
func (p *Xor) Vars(set map[string]bool) {
	varsOfTerms(set, p.Lhs, p.Rhs)
}

func (p *Xor) String() string {
	return stringOfTerms("^", []Term{p.Lhs, p.Rhs})
}

// And represents the bitwise conjunction of two terms.
type And struct{ Lhs, Rhs Term }

// Conjoin two terms together bitwise.
func Conjoin(lhs Term, rhs Term) Term {
	return &And{Lhs: lhs, Rhs: rhs}
}

// Eval implementation for the Term interface.
func (p *And) Eval(asn Assignment) uint64 {
	return p.Lhs.Eval(asn) & p.Rhs.Eval(asn)
}

// Vars implementation for the Term interface.
func (p *And) Vars(set map[string]bool) {
	varsOfTerms(set, p.Lhs, p.Rhs)
}

func (p *And) String() string {
	return stringOfTerms("&", []Term{p.Lhs, p.Rhs})
}

// Or represents the bitwise disjunction of two terms.
type Or struct{ Lhs, Rhs Term }

// Disjoin two terms together bitwise.
func Disjoin(lhs Term, rhs Term) Term {
	return &Or{Lhs: lhs, Rhs: rhs}
}

// Eval implementation for the Term interface.
func (p *Or) Eval(asn Assignment) uint64 {
	return p.Lhs.Eval(asn) | p.Rhs.Eval(asn)
}

// Vars implementation for the Term interface.
func (p *Or) Vars(set map[string]bool) {
	varsOfTerms(set, p.Lhs, p.Rhs)
}

func (p *Or) String() string {
	return stringOfTerms("|", []Term{p.Lhs, p.Rhs})
}
