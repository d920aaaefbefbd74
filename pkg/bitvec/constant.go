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

// Constant is a concrete 64-bit value embedded in a symbolic expression.
type Constant struct {
	Value uint64
}

// Const wraps a concrete value as a term.
func Const(val uint64) Constant {
	return Constant{Value: val}
}

// Eval implementation for the Term interface.
func (p Constant) Eval(asn Assignment) uint64 {
	return p.Value
}

// Vars implementation for the Term interface.
func (p Constant) Vars(set map[string]bool) {}

func (p Constant) String() string {
	return fmt.Sprintf("%#x", p.Value)
}
