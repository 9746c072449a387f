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

func runValidate(path string) error {
	ctx := vcontext.Background()
	store, err := tsio.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("%s: load failed: %v", path, err)
	}
	if err := store.Validate(); err != nil {
		return fmt.Errorf("%s: store invariants failed: %v", path, err)
	}
	if err := diff.ValidateTrees(store); err != nil {
		return fmt.Errorf("%s: tree invariants failed: %v", path, err)
	}
	fmt.Printf("%s: OK (%d records, %d loci)\n", path, store.NumRecords(), store.NumLoci())
	return nil
}
