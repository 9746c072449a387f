// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// tsinspect is a command-line tool for examining tree sequence
// containers: printing their manifest and record counts, validating
// their invariants, and driving a tree-diff iterator over them.
package main

import (
	"fmt"
	"log"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/treeseq/diff"
	"v.io/x/lib/cmdline"
)

func newCmdDump() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "dump",
		Short:    "Print a tree sequence container's manifest and record counts",
		ArgsName: "path",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("dump takes one pathname argument, but got %v", argv)
		}
		return runDump(argv[0])
	})
	return cmd
}

func newCmdValidate() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "validate",
		Short:    "Check a tree sequence container's store- and tree-level invariants",
		ArgsName: "path",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("validate takes one pathname argument, but got %v", argv)
		}
		return runValidate(argv[0])
	})
	return cmd
}

func newCmdDiff() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "diff",
		Short:    "Print the sequence of local-tree transitions in a tree sequence container",
		ArgsName: "path",
	}
	allBreakpoints := cmd.Flags.Bool("all-breakpoints", false, "Step through every breakpoint, not just the ones where the tree actually changes")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("diff takes one pathname argument, but got %v", argv)
		}
		mode := diff.DistinctTrees
		if *allBreakpoints {
			mode = diff.AllBreakpoints
		}
		return runDiff(argv[0], mode)
	})
	return cmd
}

func Run() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "tsinspect",
			Short:    "Inspect tree sequence containers",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdDump(),
				newCmdValidate(),
				newCmdDiff(),
			},
		})
}

func main() {
	Run()
}
