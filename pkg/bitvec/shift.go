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

import "fmt"

// Lsr represents a logical right shift by a fixed amount.
type Lsr struct {
	Arg   Term
	Shift uint
}

// ShiftRight shifts a term right by a fixed number of bits, filling with
// zeroes.
func ShiftRight(arg Term, shift uint) Term {
	return &Lsr{Arg: arg, Shift: shift}
}

// Eval implementation for the Term interface.
func (p *Lsr) Eval(asn Assignment) uint64 {
	if p.Shift >= 64 {
		return 0
	}
	//
	return p.Arg.Eval(asn) >> p.Shift
}

// Vars implementation for the Term interface.
func (p *Lsr) Vars(set map[string]bool) {
	p.Arg.Vars(set)
}

func (p *Lsr) String() string {
	return fmt.Sprintf("(%s >> %d)", p.Arg.String(), p.Shift)
}
