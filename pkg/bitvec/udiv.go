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

// UDiv represents unsigned truncating division of two terms.
type UDiv struct{ Lhs, Rhs Term }

// Divide one term by another, truncating towards zero.  Division by zero
// panics at evaluation time; callers only divide by nonzero constants.
func Divide(lhs Term, rhs Term) Term {
	return &UDiv{Lhs: lhs, Rhs: rhs}
}

// Eval implementation for the Term interface.
func (p *UDiv) Eval(asn Assignment) uint64 {
	return p.Lhs.Eval(asn) / p.Rhs.Eval(asn)
}

// Vars implementation for the Term interface.
func (p *UDiv) Vars(set map[string]bool) {
	varsOfTerms(set, p.Lhs, p.Rhs)
}

func (p *UDiv) String() string {
	return stringOfTerms("/", []Term{p.Lhs, p.Rhs})
}
