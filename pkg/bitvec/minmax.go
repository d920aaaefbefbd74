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

// Min represents the unsigned minimum of one or more terms.
type Min struct{ Args []Term }

// Minimum of one or more terms under unsigned ordering.
func Minimum(terms ...Term) Term {
	if len(terms) == 1 {
		return terms[0]
	}
	//
	return &Min{Args: terms}
}

// Eval implementation for the Term interface.
func (p *Min) Eval(asn Assignment) uint64 {
	val := p.Args[0].Eval(asn)
	for _, arg := range p.Args[1:] {
		if ith := arg.Eval(asn); ith < val {
			val = ith
		}
	}
	//
	return val
}

// Vars implementation for the Term interface.
func (p *Min) Vars(set map[string]bool) {
	varsOfTerms(set, p.Args...)
}

func (p *Min) String() string {
	return stringOfTerms("min", p.Args)
}

// Max represents the unsigned maximum of one or more terms.
type Max struct{ Args []Term }

// Maximum of one or more terms under unsigned ordering.
func Maximum(terms ...Term) Term {
	if len(terms) == 1 {
		return terms[0]
	}
	//
	return &Max{Args: terms}
}

// Eval implementation for the Term interface.
func (p *Max) Eval(asn Assignment) uint64 {
	val := p.Args[0].Eval(asn)
	for _, arg := range p.Args[1:] {
		if ith := arg.Eval(asn); ith > val {
			val = ith
		}
	}
	//
	return val
}

// Vars implementation for the Term interface.
func (p *Max) Vars(set map[string]bool) {
	varsOfTerms(set, p.Args...)
}

func (p *Max) String() string {
	return stringOfTerms("max", p.Args)
}
