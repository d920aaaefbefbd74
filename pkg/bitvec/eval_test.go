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

import (
	"math"
	"testing"
)

func Test_Eval_01(t *testing.T) {
	// Addition wraps modulo 2^64.
	checkEval(t, Sum(Const(math.MaxUint64), Const(1)), nil, 0)
}

func Test_Eval_02(t *testing.T) {
	checkEval(t, Sum(Const(1), Const(2), Const(3)), nil, 6)
}

func Test_Eval_03(t *testing.T) {
	// Subtraction wraps below zero.
	checkEval(t, Subtract(Const(0), Const(1)), nil, math.MaxUint64)
}

func Test_Eval_04(t *testing.T) {
	// Multiplication wraps modulo 2^64.
	checkEval(t, Multiply(Const(1<<63), Const(2)), nil, 0)
}

func Test_Eval_05(t *testing.T) {
	checkEval(t, Divide(Const(7), Const(2)), nil, 3)
}

func Test_Eval_06(t *testing.T) {
	checkEval(t, ShiftRight(Const(0x8000_0000_0000), 3), nil, 0x1000_0000_0000)
}

func Test_Eval_07(t *testing.T) {
	checkEval(t, ExclusiveOr(Const(0x5500_0000_0000), Const(0x4000_0000_0000)), nil, 0x1500_0000_0000)
}

func Test_Eval_08(t *testing.T) {
	checkEval(t, Conjoin(Const(0x7A00_0000_0000), Const(^uint64(0x7000_0000_0007))), nil, 0x0A00_0000_0000)
}

func Test_Eval_09(t *testing.T) {
	checkEval(t, Disjoin(Const(0x0280_0000_0000), Const(0x7000_0000_0000)), nil, 0x7280_0000_0000)
}

func Test_Eval_10(t *testing.T) {
	checkEval(t, Minimum(Const(5), Const(3), Const(9)), nil, 3)
}

func Test_Eval_11(t *testing.T) {
	checkEval(t, Maximum(Const(5), Const(3), Const(9)), nil, 9)
}

func Test_Eval_12(t *testing.T) {
	// Min/max use unsigned ordering.
	checkEval(t, Minimum(Const(math.MaxUint64), Const(1)), nil, 1)
	checkEval(t, Maximum(Const(math.MaxUint64), Const(1)), nil, math.MaxUint64)
}

func Test_Eval_13(t *testing.T) {
	x := NewVar("x")
	term := Sum(ExclusiveOr(x, Const(0xF0)), Const(1))
	//
	checkEval(t, term, Assignment{"x": 0x0F}, 0x100)
}

func Test_Eval_14(t *testing.T) {
	x := NewVar("x")
	set := VarsOf(Sum(x, Multiply(x, Const(2))))
	//
	if len(set) != 1 || !set["x"] {
		t.Errorf("expected {x}, got %v", set)
	}
}

// Propositions

func Test_Prop_01(t *testing.T) {
	// Comparisons are unsigned: 2^64-1 is the largest value, not -1.
	checkProp(t, LessThan(Const(1), Const(math.MaxUint64)), nil, true)
	checkProp(t, LessThan(Const(math.MaxUint64), Const(1)), nil, false)
}

func Test_Prop_02(t *testing.T) {
	checkProp(t, AtMost(Const(5), Const(5)), nil, true)
	checkProp(t, LessThan(Const(5), Const(5)), nil, false)
}

func Test_Prop_03(t *testing.T) {
	checkProp(t, Equals(Const(5), Const(5)), nil, true)
	checkProp(t, Equals(Const(5), Const(6)), nil, false)
}

func Test_Prop_04(t *testing.T) {
	checkProp(t, DivisibleBy(Const(0x4000_0000_0000), 0x1000_0000_0000), nil, true)
	checkProp(t, DivisibleBy(Const(0x4000_0000_0001), 0x1000_0000_0000), nil, false)
}

func Test_Prop_05(t *testing.T) {
	either := Either(Equals(Const(1), Const(2)), LessThan(Const(1), Const(2)))
	checkProp(t, either, nil, true)
	//
	neither := Either(Equals(Const(1), Const(2)), LessThan(Const(2), Const(1)))
	checkProp(t, neither, nil, false)
}

func Test_Prop_06(t *testing.T) {
	x, y := NewVar("x"), NewVar("y")
	// Non-overlap shape used throughout the allocator.
	prop := Either(AtMost(x, Const(10)), AtMost(Const(20), y))
	//
	checkProp(t, prop, Assignment{"x": 15, "y": 25}, true)
	checkProp(t, prop, Assignment{"x": 15, "y": 15}, false)
}

func checkEval(t *testing.T, term Term, asn Assignment, expected uint64) {
	t.Helper()
	//
	if actual := term.Eval(asn); actual != expected {
		t.Errorf("%s evaluated to %#x, expected %#x", term.String(), actual, expected)
	}
}

func checkProp(t *testing.T, prop Prop, asn Assignment, expected bool) {
	t.Helper()
	//
	if actual := prop.Holds(asn); actual != expected {
		t.Errorf("%s held %v, expected %v", prop.String(), actual, expected)
	}
}
