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
	"bytes"

	"github.com/fantom-foundation/block-archive/archive"
	"github.com/fantom-foundation/block-archive/common/okv"
)

// findMostRecentFor implements the lower-bound-seek-then-step-back
// algorithm common to every historical point read: seek the exemplar key
// for (prefix, block); if the seek overshoots the exact key (landed past
// it, or past the end of the store entirely), step back once; the
// resulting entry is the most recent one at or before block under prefix,
// or no entry exists with this prefix at all.
//
// exemplarKey is the key as of the queried block (e.g. AccountStateKey(a,
// block)); prefix is exemplarKey with the trailing BlockId stripped.
// found is false when no entry under prefix exists at or before block.
func findMostRecentFor(store okv.Store, exemplarKey, prefix []byte) (value []byte, found bool, err error) {
	it, err := store.GetLowerBound(exemplarKey)
	if err != nil {
		return nil, false, err
	}
	defer it.Release()

	if it.IsEnd() || !bytes.Equal(it.Key(), exemplarKey) {
		it.Prev()
	}
	if !it.Valid() {
		return nil, false, it.Error()
	}
	if !hasPrefix(it.Key(), prefix) {
		return nil, false, nil
	}
	if BlockFromKey(it.Key()) > BlockFromKey(exemplarKey) {
		// A step back only reaches keys smaller than exemplarKey, so with
		// prefix being exemplarKey minus its BlockId this does not occur;
		// an entry recorded after block is treated as "nothing at or before
		// block".
		return nil, false, nil
	}

	v := make([]byte, len(it.Value()))
	copy(v, it.Value())
	return v, true, nil
}

// mustFixedWidth validates that data has exactly want bytes, else reports
// archive.ErrCorruption.
func mustFixedWidth(data []byte, want int) error {
	if len(data) != want {
		return archive.ErrCorruption
	}
	return nil
}
