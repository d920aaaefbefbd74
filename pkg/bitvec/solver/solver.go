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
	"maps"
	"math"

	"github.com/xsan-runtime/layoutgen/pkg/bitvec"
)

// Solve searches for an assignment satisfying every asserted proposition.  It
// first propagates unary information (equalities pin variables, comparisons
// tighten bounds, divisibility coarsens steps) and then runs a depth-first
// search over the remaining decision variables in declaration order, checking
// each proposition as soon as all of its variables are bound.  The first
// model found is returned; the search is fully deterministic.
func (p *Problem) Solve() (bitvec.Assignment, error) {
	if err := p.propagate(); err != nil {
		return nil, err
	}
	// Collect open (unpinned) decisions in declaration order.
	var open []*decision
	//
	position := make(map[string]int)
	env := make(bitvec.Assignment)
	//
	for _, d := range p.decisions {
		if d.pinned {
			env[d.v.Name] = d.value
		} else {
			if d.dom.Empty() {
				return nil, ErrUnsat
			}
			//
			position[d.v.Name] = len(open)
			open = append(open, d)
		}
	}
	// Schedule every proposition at the deepest open variable it mentions;
	// propositions over pinned variables only are checked right away.
	checks := make([][]bitvec.Prop, len(open))
	//
	for _, prop := range p.props {
		level := -1
		//
		set := make(map[string]bool)
		prop.Vars(set)
		//
		for name := range set {
			if at, ok := position[name]; ok && at > level {
				level = at
			}
		}
		//
		if level < 0 {
			if !prop.Holds(env) {
				return nil, ErrUnsat
			}
		} else {
			checks[level] = append(checks[level], prop)
		}
	}
	// Depth-first search.
	var (
		visits uint64
		dfs    func(i int) (bool, error)
	)
	//
	dfs = func(i int) (bool, error) {
		if i == len(open) {
			return true, nil
		}
		//
		d := open[i]
		val, ok := d.dom.first()
		//
		for ; ok && val <= d.dom.Hi; val, ok = d.dom.next(val) {
			if visits++; visits > p.budget {
				return false, ErrExhausted
			}
			//
			env[d.v.Name] = val
			//
			holds := true
			for _, prop := range checks[i] {
				if !prop.Holds(env) {
					holds = false
					break
				}
			}
			//
			if holds {
				if done, err := dfs(i + 1); done || err != nil {
					return done, err
				}
			}
		}
		//
		delete(env, d.v.Name)
		//
		return false, nil
	}
	//
	done, err := dfs(0)
	//
	switch {
	case err != nil:
		return nil, err
	case !done:
		return nil, ErrUnsat
	}
	//
	return maps.Clone(env), nil
}

// propagate repeatedly folds unary information from the asserted propositions
// into the decision domains until a fixpoint is reached.
func (p *Problem) propagate() error {
	for changed := true; changed; {
		changed = false
		env := p.pinnedEnv()
		//
		for _, prop := range p.props {
			step, err := p.propagateOne(prop, env)
			if err != nil {
				return err
			}
			//
			changed = changed || step
		}
	}
	// Sanity check every domain still has candidates.
	for _, d := range p.decisions {
		if !d.pinned && d.dom.Empty() {
			return ErrUnsat
		}
	}
	//
	return nil
}

//nolint:gocyclo
func (p *Problem) propagateOne(prop bitvec.Prop, env bitvec.Assignment) (bool, error) {
	switch q := prop.(type) {
	case *bitvec.Eq:
		if v, val, ok := p.varAgainst(q.Lhs, q.Rhs, env); ok {
			return p.pin(v, val, env)
		} else if v, val, ok := p.varAgainst(q.Rhs, q.Lhs, env); ok {
			return p.pin(v, val, env)
		}
	case *bitvec.Ult:
		if v, val, ok := p.varAgainst(q.Lhs, q.Rhs, env); ok {
			// v < val
			if val == 0 {
				return false, ErrUnsat
			}
			//
			return p.tighten(v, 0, val-1), nil
		} else if v, val, ok := p.varAgainst(q.Rhs, q.Lhs, env); ok {
			// val < v
			if val == math.MaxUint64 {
				return false, ErrUnsat
			}
			//
			return p.tighten(v, val+1, math.MaxUint64), nil
		}
	case *bitvec.Ule:
		if v, val, ok := p.varAgainst(q.Lhs, q.Rhs, env); ok {
			return p.tighten(v, 0, val), nil
		} else if v, val, ok := p.varAgainst(q.Rhs, q.Lhs, env); ok {
			return p.tighten(v, val, math.MaxUint64), nil
		}
	case *bitvec.Congruence:
		if v, ok := q.Arg.(*bitvec.Variable); ok {
			d := p.decisions[p.index[v.Name]]
			if !d.pinned && d.dom.Step%q.Modulus != 0 {
				d.dom.coarsen(q.Modulus)
				return true, nil
			}
		}
	}
	//
	return false, nil
}

// varAgainst recognises the shape (open variable, evaluable term), returning
// the decision variable and the term's concrete value.
func (p *Problem) varAgainst(lhs bitvec.Term, rhs bitvec.Term, env bitvec.Assignment) (*bitvec.Variable, uint64, bool) {
	v, ok := lhs.(*bitvec.Variable)
	if !ok || p.decisions[p.index[v.Name]].pinned {
		return nil, 0, false
	}
	//
	set := make(map[string]bool)
	rhs.Vars(set)
	//
	for name := range set {
		if _, ok := env[name]; !ok {
			return nil, 0, false
		}
	}
	//
	return v, rhs.Eval(env), true
}

func (p *Problem) pin(v *bitvec.Variable, val uint64, env bitvec.Assignment) (bool, error) {
	d := p.decisions[p.index[v.Name]]
	//
	if d.pinned {
		if d.value != val {
			return false, ErrUnsat
		}
		//
		return false, nil
	}
	//
	d.pinned = true
	d.value = val
	env[v.Name] = val
	//
	return true, nil
}

func (p *Problem) tighten(v *bitvec.Variable, lo uint64, hi uint64) bool {
	var (
		d       = p.decisions[p.index[v.Name]]
		changed = false
	)
	//
	if lo > d.dom.Lo {
		d.dom.Lo = lo
		changed = true
	}
	//
	if hi < d.dom.Hi {
		d.dom.Hi = hi
		changed = true
	}
	//
	return changed
}

func (p *Problem) pinnedEnv() bitvec.Assignment {
	env := make(bitvec.Assignment)
	for _, d := range p.decisions {
		if d.pinned {
			env[d.v.Name] = d.value
		}
	}
	//
	return env
}
