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
	"errors"
	"strings"
	"testing"

	"github.com/xsan-runtime/layoutgen/pkg/util"
)

func validConfig() PlatformConfig {
	return PlatformConfig{
		Name:             "MappingTest",
		LoAppMemBeg:      0,
		LoAppMemEnd:      0x7FFF_7000,
		LoAppMemEndLoose: 0x0100_0000_0000,
		MidAppBeg:        0x5500_0000_0000,
		MidAppEnd:        util.Some[uint64](0x5A00_0000_0000),
		HiAppBeg:         util.Some[uint64](0x7A00_0000_0000),
		HiAppEnd:         0x8000_0000_0000,
		VdsoBeg:          0xF000_0000_0000_0000,
	}
}

func Test_Platform_01(t *testing.T) {
	// A valid record normalizes the hint from the fixed bound.
	cfg, err := validConfig().Validate("test")
	if err != nil {
		t.Fatalf("unexpected validation failure: %v", err)
	}
	//
	if cfg.HiAppBegHint != 0x7A00_0000_0000 {
		t.Errorf("expected hint %#x, got %#x", uint64(0x7A00_0000_0000), cfg.HiAppBegHint)
	}
	//
	if cfg.Alignment != DefaultAlignment {
		t.Errorf("expected default alignment, got %#x", cfg.Alignment)
	}
}

func Test_Platform_02(t *testing.T) {
	// Both hi_app_beg and the hint set is a configuration error.
	cfg := validConfig()
	cfg.HiAppBegHint = 0x7000_0000_0000
	//
	checkConfigError(t, cfg, "hi_app_beg")
}

func Test_Platform_03(t *testing.T) {
	// Neither hi_app_beg nor the hint set is a configuration error.
	cfg := validConfig()
	cfg.HiAppBeg = util.None[uint64]()
	//
	checkConfigError(t, cfg, "hi_app_beg")
}

func Test_Platform_04(t *testing.T) {
	// A fully fixed region smaller than its floor is rejected.
	cfg := validConfig()
	cfg.MinMidAppSize = 0x0600_0000_0000 // region holds 5 TB
	//
	checkConfigError(t, cfg, "mid_app")
}

func Test_Platform_05(t *testing.T) {
	// A floor on a symbolic region is fine at validation time.
	cfg := validConfig()
	cfg.MinHeapSize = 0x0200_0000_0000
	//
	if _, err := cfg.Validate("test"); err != nil {
		t.Errorf("unexpected validation failure: %v", err)
	}
}

func Test_Platform_06(t *testing.T) {
	// The catalog itself validates.
	catalog, err := Platforms()
	if err != nil {
		t.Fatalf("catalog construction failed: %v", err)
	}
	//
	for _, key := range []string{"x64_48", "aarch64_48"} {
		cfg, ok := catalog[key]
		if !ok {
			t.Fatalf("missing catalog entry %q", key)
		}
		//
		if cfg.HiAppBegHint == 0 {
			t.Errorf("%s: hint not normalized", key)
		}
		//
		if len(cfg.Mappers) != 3 {
			t.Errorf("%s: expected 3 mappers, got %d", key, len(cfg.Mappers))
		}
	}
}

func checkConfigError(t *testing.T, cfg PlatformConfig, field string) {
	t.Helper()
	//
	_, err := cfg.Validate("test")
	//
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected a ConfigError, got %v", err)
	}
	//
	if cerr.Platform != "test" || !strings.Contains(cerr.Field, field) {
		t.Errorf("unexpected error detail: %v", cerr)
	}
}
