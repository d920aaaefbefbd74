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

	"github.com/xsan-runtime/layoutgen/pkg/bitvec"
	"github.com/xsan-runtime/layoutgen/pkg/bitvec/solver"
)

// ASanConfig configures the address-error detector's mapper: a fixed affine
// mapping shadow(a) = (a >> scale) + offset.
type ASanConfig struct {
	ShadowOffset uint64
	ShadowScale  uint
}

func (c ASanConfig) instantiate(apps []AppRegion) Mapper {
	return &asanMapper{cfg: c, apps: apps}
}

// asanMapper publishes two global shadow regions instead of per-app ones: the
// shadow of low application memory starts at the offset itself, and the
// shadow of everything else ends at shadow(hi_app_end).
type asanMapper struct {
	cfg  ASanConfig
	apps []AppRegion
}

// Detector implementation for the Mapper interface.
func (m *asanMapper) Detector() string { return "ASan" }

func (m *asanMapper) shadow(a bitvec.Term) bitvec.Term {
	return bitvec.Sum(bitvec.ShiftRight(a, m.cfg.ShadowScale), bitvec.Const(m.cfg.ShadowOffset))
}

// Shadow maps a concrete application address to its shadow address.
func (m *asanMapper) Shadow(a uint64) uint64 {
	return m.shadow(bitvec.Const(a)).Eval(nil)
}

// Regions implementation for the Mapper interface.  The address detector
// contributes no per-app regions.
func (m *asanMapper) Regions(app AppRegion) []ShadowRegion {
	return nil
}

// GlobalRegions implementation for the Mapper interface.
func (m *asanMapper) GlobalRegions() []ShadowRegion {
	var hiApp *AppRegion
	//
	for i := range m.apps {
		if m.apps[i].Name == HiAppName {
			hiApp = &m.apps[i]
		}
	}
	//
	if hiApp == nil {
		panic(fmt.Sprintf("application region %q not found", HiAppName))
	}
	//
	var (
		loShadowBeg   = bitvec.Const(m.cfg.ShadowOffset)
		loShadowEnd   = m.shadow(loShadowBeg)
		restShadowEnd = m.shadow(hiApp.End)
		restShadowBeg = m.shadow(restShadowEnd)
	)
	//
	return []ShadowRegion{
		{
			Name:     "ASan Shadow (LoApp)",
			Detector: m.Detector(),
			Kind:     ShadowKind,
			App:      LoAppName,
			Beg:      loShadowBeg,
			End:      loShadowEnd,
		},
		{
			Name:     "ASan Shadow (Rest)",
			Detector: m.Detector(),
			Kind:     ShadowKind,
			App:      GlobalApp,
			Beg:      restShadowBeg,
			End:      restShadowEnd,
		},
	}
}

// Params implementation for the Mapper interface.
func (m *asanMapper) Params() []Param {
	return []Param{
		{Name: "kAsanShadowOffset", Value: bitvec.Const(m.cfg.ShadowOffset)},
		{Name: "kAsanShadowScale", Value: bitvec.Const(uint64(m.cfg.ShadowScale)), Decimal: true},
	}
}

// Declare implementation for the Mapper interface.  All parameters are fixed.
func (m *asanMapper) Declare(prob *solver.Problem, ceiling uint64) {}

// Constrain implementation for the Mapper interface.
func (m *asanMapper) Constrain(prob *solver.Problem, platform *PlatformConfig) {}
