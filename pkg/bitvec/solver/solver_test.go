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
	"testing"

	"github.com/xsan-runtime/layoutgen/pkg/bitvec"
)

func Test_Solver_01(t *testing.T) {
	// Smallest value above a lower bound.
	var (
		prob = NewProblem()
		x    = bitvec.NewVar("x")
	)
	//
	prob.Declare(x, NewDomain(0, 100, 1))
	prob.Assert(bitvec.LessThan(bitvec.Const(3), x))
	//
	model := mustSolve(t, prob)
	if model["x"] != 4 {
		t.Errorf("expected x=4, got %#x", model["x"])
	}
}

func Test_Solver_02(t *testing.T) {
	// Divisibility coarsens the enumeration lattice.
	var (
		prob = NewProblem()
		x    = bitvec.NewVar("x")
	)
	//
	prob.Declare(x, NewDomain(0, 100, 1))
	prob.Assert(bitvec.DivisibleBy(x, 6))
	prob.Assert(bitvec.LessThan(bitvec.Const(4), x))
	//
	model := mustSolve(t, prob)
	if model["x"] != 6 {
		t.Errorf("expected x=6, got %d", model["x"])
	}
}

func Test_Solver_03(t *testing.T) {
	// Equality pins a variable without search.
	var (
		prob = NewProblem()
		x    = bitvec.NewVar("x")
		y    = bitvec.NewVar("y")
	)
	//
	prob.Declare(x, NewDomain(0, 1000, 1))
	prob.Declare(y, NewDomain(0, 1000, 1))
	prob.Assert(bitvec.Equals(x, bitvec.Const(42)))
	prob.Assert(bitvec.LessThan(x, y))
	//
	model := mustSolve(t, prob)
	if model["x"] != 42 || model["y"] != 43 {
		t.Errorf("expected x=42, y=43, got %v", model)
	}
}

func Test_Solver_04(t *testing.T) {
	// Contradictory bounds are unsatisfiable.
	var (
		prob = NewProblem()
		x    = bitvec.NewVar("x")
	)
	//
	prob.Declare(x, NewDomain(0, 100, 1))
	prob.Assert(bitvec.LessThan(x, bitvec.Const(2)))
	prob.Assert(bitvec.LessThan(bitvec.Const(5), x))
	//
	if _, err := prob.Solve(); !errors.Is(err, ErrUnsat) {
		t.Errorf("expected %v, got %v", ErrUnsat, err)
	}
}

func Test_Solver_05(t *testing.T) {
	// Two intervals packed without overlap; the disjunction forces the
	// second past the first.
	var (
		prob = NewProblem()
		x    = bitvec.NewVar("x")
		y    = bitvec.NewVar("y")
	)
	//
	prob.Declare(x, NewDomain(0, 100, 10))
	prob.Declare(y, NewDomain(0, 100, 10))
	prob.Assert(bitvec.Equals(x, bitvec.Const(0)))
	prob.Assert(bitvec.Either(
		bitvec.AtMost(bitvec.Sum(x, bitvec.Const(15)), y),
		bitvec.AtMost(bitvec.Sum(y, bitvec.Const(15)), x),
	))
	//
	model := mustSolve(t, prob)
	if model["y"] != 20 {
		t.Errorf("expected y=20, got %d", model["y"])
	}
}

func Test_Solver_06(t *testing.T) {
	// Alignment preference restricts candidates to the aligned lattice.
	var (
		prob = NewProblem()
		x    = bitvec.NewVar("x")
	)
	//
	prob.Declare(x, NewDomain(0, 1<<20, 1))
	prob.PreferAligned(x, 4096)
	prob.Assert(bitvec.LessThan(bitvec.Const(1), x))
	//
	model := mustSolve(t, prob)
	if model["x"] != 4096 {
		t.Errorf("expected x=4096, got %d", model["x"])
	}
}

func Test_Solver_07(t *testing.T) {
	// The search budget surfaces as an explicit failure.
	var (
		prob = NewProblem()
		x    = bitvec.NewVar("x")
		y    = bitvec.NewVar("y")
	)
	//
	prob.Declare(x, NewDomain(0, 1000, 1))
	prob.Declare(y, NewDomain(0, 1000, 1))
	prob.Assert(bitvec.LessThan(bitvec.Sum(x, y), bitvec.Const(0)))
	prob.SetBudget(10)
	//
	if _, err := prob.Solve(); !errors.Is(err, ErrExhausted) {
		t.Errorf("expected %v, got %v", ErrExhausted, err)
	}
}

func Test_Solver_08(t *testing.T) {
	// Solving is deterministic.
	build := func() *Problem {
		prob := NewProblem()
		x, y := bitvec.NewVar("x"), bitvec.NewVar("y")
		//
		prob.Declare(x, NewDomain(0, 1000, 7))
		prob.Declare(y, NewDomain(0, 1000, 3))
		prob.Assert(bitvec.LessThan(bitvec.Const(10), x))
		prob.Assert(bitvec.LessThan(x, y))
		//
		return prob
	}
	//
	first := mustSolve(t, build())
	second := mustSolve(t, build())
	//
	if first["x"] != second["x"] || first["y"] != second["y"] {
		t.Errorf("expected identical models, got %v and %v", first, second)
	}
}

func Test_Solver_09(t *testing.T) {
	// An empty domain after propagation is unsatisfiable.
	var (
		prob = NewProblem()
		x    = bitvec.NewVar("x")
	)
	//
	prob.Declare(x, NewDomain(0, 10, 1))
	prob.Assert(bitvec.DivisibleBy(x, 16))
	prob.Assert(bitvec.LessThan(bitvec.Const(0), x))
	//
	if _, err := prob.Solve(); !errors.Is(err, ErrUnsat) {
		t.Errorf("expected %v, got %v", ErrUnsat, err)
	}
}

func mustSolve(t *testing.T, prob *Problem) bitvec.Assignment {
	t.Helper()
	//
	model, err := prob.Solve()
	if err != nil {
		t.Fatalf("unexpected solver failure: %v", err)
	}
	//
	return model
}
