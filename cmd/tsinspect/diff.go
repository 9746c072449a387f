// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/treeseq/diff"
	"github.com/grailbio/treeseq/tsio"
)

func formatNodes(nodes []diff.Node) string {
	if len(nodes) == 0 {
		return "-"
	}
	s := ""
	for i, n := range nodes {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%d", n.ID)
	}
	return s
}

func runDiff(path string, mode diff.Mode) (err error) {
	ctx := vcontext.Background()
	store, err := tsio.Load(ctx, path)
	if err != nil {
		return err
	}

	it := diff.NewIterator(store, mode)
	defer func() {
		if cerr := it.Close(); err == nil {
			err = cerr
		}
	}()

	var left uint32
	for {
		step := it.Next()
		if step.Kind == diff.StepEnd {
			break
		}
		right := left + step.Span
		switch step.Kind {
		case diff.StepTree:
			fmt.Printf("[%d, %d) out=%s in=%s\n", left, right, formatNodes(step.Out), formatNodes(step.In))
		case diff.StepEmpty:
			fmt.Printf("[%d, %d) (no change)\n", left, right)
		}
		left = right
	}
	return nil
}
