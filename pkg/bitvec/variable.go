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

// Variable is a named symbolic 64-bit value whose concrete value is chosen by
// the solver.
type Variable struct {
	Name string
}

// NewVar constructs a fresh variable with the given name.  Names must be
// unique within a problem; the solver keys assignments by name.
func NewVar(name string) *Variable {
	return &Variable{Name: name}
}

// Eval implementation for the Term interface.
func (p *Variable) Eval(asn Assignment) uint64 {
	val, ok := asn[p.Name]
	if !ok {
		panic(fmt.Sprintf("variable %q evaluated without a binding", p.Name))
	}
	//
	return val
}

// Vars implementation for the Term interface.
func (p *Variable) Vars(set map[string]bool) {
	set[p.Name] = true
}

func (p *Variable) String() string {
	return p.Name
}
