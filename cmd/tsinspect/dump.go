// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/treeseq/tsio"
)

func runDump(path string) error {
	ctx := vcontext.Background()
	store, err := tsio.Load(ctx, path)
	if err != nil {
		return err
	}
	fmt.Printf("path:             %s\n", path)
	fmt.Printf("sample_size:      %d\n", store.SampleSize())
	fmt.Printf("num_loci:         %d\n", store.NumLoci())
	fmt.Printf("num_breakpoints:  %d\n", store.NumBreakpoints())
	fmt.Printf("num_records:      %d\n", store.NumRecords())
	return nil
}
