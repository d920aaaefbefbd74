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
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/kballard/go-shellquote"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"
	"golang.org/x/term"

	"github.com/xsan-runtime/layoutgen/pkg/layout"
)

var modes = []string{"default", "conservative", "aggressive"}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "layoutgen",
	Short: "Compute a shadow memory layout for the xsan runtimes.",
	Long: `Compute a non-overlapping shadow memory layout for a set of dynamic
bug detectors sharing one address space, and emit the resulting constants
either as a readable report or as a generated platform header.`,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(run(cmd))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().  It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gocyclo
func run(cmd *cobra.Command) int {
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
	//
	var (
		platform = GetString(cmd, "platform")
		mode     = GetString(cmd, "mode")
		output   = GetString(cmd, "output")
		outdir   = GetString(cmd, "outdir")
		align    = GetString(cmd, "align")
	)
	//
	if !slices.Contains(modes, mode) {
		fmt.Fprintf(os.Stderr, "invalid mode %q (one of: default, conservative, aggressive)\n", mode)
		return 1
	}
	//
	if output != "print" && output != "header" {
		fmt.Fprintf(os.Stderr, "invalid output mode %q (one of: print, header)\n", output)
		return 1
	}
	// Reserved for future tuning; all modes currently solve identically.
	log.Debugf("mode: %s", mode)
	//
	if n := GetInt(cmd, "max-solutions"); n > 1 {
		log.Debugf("max-solutions %d requested; the solver extracts a single model", n)
	}
	//
	var opts []layout.Option
	//
	if align != "" {
		val, err := strconv.ParseUint(align, 0, 64)
		if err != nil || val == 0 {
			fmt.Fprintf(os.Stderr, "invalid alignment %q\n", align)
			return 1
		}
		//
		opts = append(opts, layout.WithAlignment(val))
	}
	//
	allocator, err := layout.NewAllocator(platform, opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	//
	solution, err := allocator.Solve()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "failed to find a valid memory layout")
		//
		return 1
	}
	//
	switch output {
	case "print":
		if err := solution.WriteReport(os.Stdout, reportWidth()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	case "header":
		cmdline := shellquote.Join(os.Args...)
		//
		if _, err := solution.WriteHeader(outdir, cmdline, time.Now()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	//
	log.Info("successfully found non-overlapping memory layout")
	//
	return 0
}

// reportWidth sizes the report rules to the terminal, with an 80 column
// floor.
func reportWidth() int {
	width := 80
	//
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > width {
			width = w
		}
	}
	//
	return width
}

func init() {
	defaultOutdir := env.Str("XSAN_LAYOUT_OUTDIR", filepath.Join("src", "include", "platforms"))
	//
	rootCmd.Flags().String("platform", env.Str("XSAN_LAYOUT_PLATFORM", "x64_48"), "platform key to use")
	rootCmd.Flags().String("mode", "default", "solver mode (reserved: default, conservative, aggressive)")
	rootCmd.Flags().String("output", "print", "output mode: print to stdout or emit a platform header")
	rootCmd.Flags().String("outdir", defaultOutdir, "output directory for generated headers")
	rootCmd.Flags().String("align", "", "override for platform alignment (C-style integer literal)")
	rootCmd.Flags().Int("max-solutions", 1, "max number of solutions to request (advisory)")
	rootCmd.Flags().BoolP("verbose", "v", false, "increase logging verbosity")
}
