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

// Add represents the wrapping sum of one or more terms.
type Add struct{ Args []Term }

// Sum adds zero or more terms together, folding the degenerate cases.
func Sum(terms ...Term) Term {
	switch len(terms) {
	case 0:
		return Const(0)
	case 1:
		return terms[0]
	default:
		return &Add{Args: terms}
	}
}

// Eval implementation for the Term interface.
func (p *Add) Eval(asn Assignment) uint64 {
	val := p.Args[0].Eval(asn)
	for _, arg := range p.Args[1:] {
		val += arg.Eval(asn)
	}
	//
	return val
}

// Vars implementation for the Term interface.
func (p *Add) Vars(set map[string]bool) {
	varsOfTerms(set, p.Args...)
}

func (p *Add) String() string {
	return stringOfTerms("+", p.Args)
}
