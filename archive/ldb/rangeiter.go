// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ldb

import (
	"github.com/fantom-foundation/block-archive/common"
	"github.com/fantom-foundation/block-archive/common/okv"
)

// rangeIter is a forward iterator scoped to a single key-family prefix.
// The verifier opens one per property family and walks them in lock-step
// by block id.
type rangeIter struct {
	it     okv.Iterator
	prefix []byte
	done   bool
}

// newRangeIter opens a forward iterator over every key with the given
// prefix, positioned at the first entry (if any).
func newRangeIter(store okv.Store, prefix []byte) (*rangeIter, error) {
	it, err := store.GetLowerBound(prefix)
	if err != nil {
		return nil, err
	}
	r := &rangeIter{it: it, prefix: prefix}
	r.done = it.IsEnd() || !hasPrefix(it.Key(), prefix)
	return r, nil
}

// Valid reports whether the cursor is positioned at an entry under prefix.
func (r *rangeIter) Valid() bool { return !r.done }

// Block returns the trailing BlockId of the current entry.
func (r *rangeIter) Block() common.BlockId { return BlockFromKey(r.it.Key()) }

// Key returns the current entry's full key.
func (r *rangeIter) Key() []byte { return r.it.Key() }

// Value returns the current entry's value.
func (r *rangeIter) Value() []byte { return r.it.Value() }

// Advance moves to the next entry under prefix, marking the iterator done
// once the prefix is exhausted.
func (r *rangeIter) Advance() {
	if r.done {
		return
	}
	if !r.it.Next() || !hasPrefix(r.it.Key(), r.prefix) {
		r.done = true
	}
}

// Release frees the underlying store iterator.
func (r *rangeIter) Release() { r.it.Release() }

// Error reports any error encountered by the underlying store iterator.
func (r *rangeIter) Error() error { return r.it.Error() }
