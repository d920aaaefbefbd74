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
package layout

import (
	"fmt"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/xsan-runtime/layoutgen/pkg/bitvec"
	"github.com/xsan-runtime/layoutgen/pkg/bitvec/solver"
	"github.com/xsan-runtime/layoutgen/pkg/util"
)

// Allocator owns the symbolic address-space model for one platform: the
// region bound variables, the instantiated detector mappers, and the
// constraint problem fed to the solver.  Construct it, call Solve once, and
// emit the resulting solution; allocators are not reused.
type Allocator struct {
	key      string
	platform PlatformConfig
	prob     *solver.Problem
	// Application region bound variables, in the declaration (and hence
	// search) order.
	loAppBeg, loAppEnd   *bitvec.Variable
	midAppBeg, midAppEnd *bitvec.Variable
	hiAppBeg, hiAppEnd   *bitvec.Variable
	heapBeg, heapEnd     *bitvec.Variable
	apps                 []AppRegion
	mappers              []Mapper
	// All regions participating in non-overlap, in enumeration order.
	all []layoutEntry
	// Mapper-produced per-app regions, subject to the reachability rule.
	perApp []ShadowRegion
}

type layoutEntry struct {
	Beg  bitvec.Term
	End  bitvec.Term
	Name string
	App  bool
}

// Option adjusts an allocator at construction time.
type Option func(*PlatformConfig)

// WithAlignment overrides the platform's alignment granularity.
func WithAlignment(alignment uint64) Option {
	return func(cfg *PlatformConfig) {
		if alignment != 0 {
			cfg.Alignment = alignment
		}
	}
}

// NewAllocator constructs the allocator for the given catalog platform.
func NewAllocator(key string, opts ...Option) (*Allocator, error) {
	catalog, err := Platforms()
	if err != nil {
		return nil, err
	}
	//
	cfg, ok := catalog[key]
	if !ok {
		return nil, errUnknownPlatform(key, catalog)
	}
	//
	for _, opt := range opts {
		opt(&cfg)
	}
	//
	return NewAllocatorFor(key, cfg), nil
}

// NewAllocatorFor constructs an allocator from an explicit (already
// validated) platform record.
func NewAllocatorFor(key string, cfg PlatformConfig) *Allocator {
	a := &Allocator{
		key:      key,
		platform: cfg,
		prob:     solver.NewProblem(),
		loAppBeg: bitvec.NewVar("kLoAppMemBeg"), loAppEnd: bitvec.NewVar("kLoAppMemEnd"),
		midAppBeg: bitvec.NewVar("kMidAppMemBeg"), midAppEnd: bitvec.NewVar("kMidAppMemEnd"),
		hiAppBeg: bitvec.NewVar("kHiAppMemBeg"), hiAppEnd: bitvec.NewVar("kHiAppMemEnd"),
		heapBeg: bitvec.NewVar("kHeapMemBeg"), heapEnd: bitvec.NewVar("kHeapMemEnd"),
	}
	//
	a.apps = []AppRegion{
		{Name: LoAppName, Beg: a.loAppBeg, End: a.loAppEnd},
		{Name: MidAppName, Beg: a.midAppBeg, End: a.midAppEnd},
		{Name: HiAppName, Beg: a.hiAppBeg, End: a.hiAppEnd},
		{Name: HeapName, Beg: a.heapBeg, End: a.heapEnd},
	}
	//
	for _, spec := range cfg.Mappers {
		a.mappers = append(a.mappers, spec.instantiate(a.apps))
	}
	//
	return a
}

// Platform returns the (normalized) platform record driving this allocator.
func (a *Allocator) Platform() PlatformConfig {
	return a.platform
}

// Mappers returns the instantiated detector mappers, in platform order.
func (a *Allocator) Mappers() []Mapper {
	return a.mappers
}

// Solve assembles the full constraint system, dispatches the solver and
// extracts the solution.  Infeasibility surfaces as an error wrapping
// solver.ErrUnsat.
func (a *Allocator) Solve() (*Solution, error) {
	var detectors []string
	for _, m := range a.mappers {
		detectors = append(detectors, m.Detector())
	}
	//
	log.Infof("platform: %s", a.key)
	log.Infof("detectors: %s", strings.Join(detectors, ", "))
	log.Info("setting up constraints")
	//
	a.declareVariables()
	a.enumerateRegions()
	a.postConstraints()
	//
	log.Info("solving")
	//
	model, err := a.prob.Solve()
	if err != nil {
		return nil, fmt.Errorf("platform %q: %w", a.key, err)
	}
	//
	log.Info("solution found")
	//
	return a.extract(model), nil
}

// declareVariables registers every decision variable, fixing the search
// order: application bounds first, then each mapper's parameters.
func (a *Allocator) declareVariables() {
	// Nothing lives at or above the end of high application memory.
	ceiling := a.platform.HiAppEnd - 1
	//
	for _, v := range []*bitvec.Variable{
		a.loAppBeg, a.loAppEnd, a.midAppBeg, a.midAppEnd,
		a.hiAppBeg, a.hiAppEnd, a.heapBeg, a.heapEnd,
	} {
		a.prob.Declare(v, solver.NewDomain(0, ceiling, PageSize))
	}
	//
	for _, m := range a.mappers {
		m.Declare(a.prob, ceiling)
	}
}

// enumerateRegions builds the full region table: application regions, global
// shadow regions, then per-app shadow regions in mapper order.  All bounds
// stay symbolic; constraints are posted afterwards, which breaks the cycle
// between region endpoints and the parameters they depend on.
func (a *Allocator) enumerateRegions() {
	for _, app := range a.apps {
		a.all = append(a.all, layoutEntry{Beg: app.Beg, End: app.End, Name: app.Name, App: true})
	}
	//
	for _, m := range a.mappers {
		for _, region := range m.GlobalRegions() {
			a.all = append(a.all, layoutEntry{Beg: region.Beg, End: region.End, Name: region.Name})
		}
	}
	//
	for _, m := range a.mappers {
		for _, app := range a.apps {
			for _, region := range m.Regions(app) {
				a.all = append(a.all, layoutEntry{Beg: region.Beg, End: region.End, Name: region.Name})
				a.perApp = append(a.perApp, region)
			}
		}
	}
}

// postConstraints asserts the full constraint system.  The order matters only
// for diagnostics: region ordering, fixed anchors, size floors, alignment
// preferences, shadow reachability, per-mapper constraints, non-overlap.
func (a *Allocator) postConstraints() {
	var (
		prob = a.prob
		cfg  = &a.platform
	)
	// (1) Region ordering, including heap bracketing.
	prob.Assert(bitvec.LessThan(a.loAppEnd, a.midAppBeg))
	prob.Assert(bitvec.LessThan(a.midAppBeg, a.midAppEnd))
	prob.Assert(bitvec.LessThan(a.midAppEnd, a.hiAppBeg))
	prob.Assert(bitvec.LessThan(a.hiAppBeg, a.hiAppEnd))
	prob.Assert(bitvec.LessThan(a.loAppEnd, a.heapBeg))
	prob.Assert(bitvec.LessThan(a.heapBeg, a.heapEnd))
	prob.Assert(bitvec.LessThan(a.heapEnd, a.hiAppBeg))
	prob.Assert(bitvec.LessThan(a.midAppEnd, a.heapBeg))
	prob.Assert(bitvec.AtMost(bitvec.Const(cfg.HiAppBegHint), a.hiAppBeg))
	// (2) Fixed anchors.
	anchor := func(v *bitvec.Variable, val uint64) {
		prob.Assert(bitvec.Equals(v, bitvec.Const(val)))
	}
	//
	anchor(a.loAppBeg, cfg.LoAppMemBeg)
	anchor(a.loAppEnd, cfg.LoAppMemEndLoose)
	anchor(a.midAppBeg, cfg.MidAppBeg)
	anchor(a.hiAppEnd, cfg.HiAppEnd)
	//
	for _, opt := range []struct {
		v   *bitvec.Variable
		val util.Option[uint64]
	}{
		{a.midAppEnd, cfg.MidAppEnd},
		{a.hiAppBeg, cfg.HiAppBeg},
		{a.heapBeg, cfg.HeapBeg},
		{a.heapEnd, cfg.HeapEnd},
	} {
		if opt.val.HasValue() {
			anchor(opt.v, opt.val.Unwrap())
		}
	}
	// (3) Size floors.
	floor := func(beg, end *bitvec.Variable, min uint64) {
		prob.Assert(bitvec.AtMost(bitvec.Const(min), bitvec.Subtract(end, beg)))
	}
	//
	floor(a.midAppBeg, a.midAppEnd, cfg.MinMidAppSize)
	floor(a.hiAppBeg, a.hiAppEnd, cfg.MinHiAppSize)
	floor(a.heapBeg, a.heapEnd, cfg.MinHeapSize)
	// (4) Alignment preferences for the solver-chosen bounds.
	for _, v := range []*bitvec.Variable{a.midAppBeg, a.midAppEnd, a.hiAppBeg, a.heapBeg, a.heapEnd} {
		a.prob.PreferAligned(v, cfg.Alignment)
	}
	// (5) Shadow reachability: every per-app shadow region lives strictly
	// between low and high application memory.  Global regions are exempt
	// (the address detector's shadow necessarily overlaps low memory).
	for _, region := range a.perApp {
		prob.Assert(bitvec.LessThan(a.loAppEnd, region.Beg))
		prob.Assert(bitvec.LessThan(region.Beg, region.End))
		prob.Assert(bitvec.LessThan(region.End, a.hiAppBeg))
	}
	// (6) Per-mapper constraints.
	for _, m := range a.mappers {
		m.Constrain(prob, cfg)
	}
	// (7) Pairwise non-overlap over all regions except LoApp, which is
	// intentionally covered by the address detector's global shadow.
	var pairs []layoutEntry
	//
	for _, entry := range a.all {
		if entry.Name != LoAppName {
			pairs = append(pairs, entry)
		}
	}
	//
	for i := 0; i < len(pairs); i++ {
		for j := i + 1; j < len(pairs); j++ {
			prob.Assert(bitvec.Either(
				bitvec.AtMost(pairs[i].End, pairs[j].Beg),
				bitvec.AtMost(pairs[j].End, pairs[i].Beg),
			))
		}
	}
}

// extract evaluates the region table and every parameter against the model.
func (a *Allocator) extract(model bitvec.Assignment) *Solution {
	sol := &Solution{
		Key:          a.key,
		PlatformName: a.platform.Name,
		VdsoBeg:      a.platform.VdsoBeg,
		Alignment:    a.platform.Alignment,
		Values:       make(map[string]uint64),
	}
	//
	for name, val := range model {
		sol.Values[name] = val
	}
	//
	sol.Values["kAsanLoAppMemEnd"] = a.platform.LoAppMemEnd
	//
	for _, m := range a.mappers {
		block := MapperBlock{Detector: m.Detector(), Params: FormatParams(m, model)}
		sol.Blocks = append(sol.Blocks, block)
		//
		for _, param := range block.Params {
			sol.Values[param.Name] = param.Value
		}
	}
	//
	for _, entry := range a.all {
		sol.Regions = append(sol.Regions, SolvedRegion{
			Beg:  entry.Beg.Eval(model),
			End:  entry.End.Eval(model),
			Name: entry.Name,
			App:  entry.App,
		})
	}
	// The strict low region protected by the address detector is reported
	// alongside the loose one.
	sol.Regions = append(sol.Regions, SolvedRegion{
		Beg:  a.platform.LoAppMemBeg,
		End:  a.platform.LoAppMemEnd,
		Name: "LoApp (for ASan)",
		App:  true,
	})
	//
	slices.SortStableFunc(sol.Regions, func(r1, r2 SolvedRegion) int {
		switch {
		case r1.End < r2.End:
			return -1
		case r1.End > r2.End:
			return 1
		}
		//
		return 0
	})
	//
	return sol
}
