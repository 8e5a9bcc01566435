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
	"crypto/sha256"
	"fmt"

	"github.com/fantom-foundation/block-archive/archive"
	"github.com/fantom-foundation/block-archive/backend"
	"github.com/fantom-foundation/block-archive/common"
)

// VerifyAccount re-derives, from the stored raw entries, the diff hash for
// every block touching account up to and including block, and checks it
// against the stored AccountHash chain. See spec §4.5.
func (a *Archive) VerifyAccount(block uint64, account common.Address) error {
	if err := a.checkOpen(); err != nil {
		return err
	}

	state, err := newRangeIter(a.store, AccountPrefix(backend.AccountStateSpace, account))
	if err != nil {
		return err
	}
	defer state.Release()
	balance, err := newRangeIter(a.store, AccountPrefix(backend.BalanceSpace, account))
	if err != nil {
		return err
	}
	defer balance.Release()
	nonce, err := newRangeIter(a.store, AccountPrefix(backend.NonceSpace, account))
	if err != nil {
		return err
	}
	defer nonce.Release()
	code, err := newRangeIter(a.store, AccountPrefix(backend.CodeSpace, account))
	if err != nil {
		return err
	}
	defer code.Release()
	storage, err := newRangeIter(a.store, StorageAddressPrefix(account))
	if err != nil {
		return err
	}
	defer storage.Release()
	accountHash, err := newRangeIter(a.store, AccountPrefix(backend.AccountHashSpace, account))
	if err != nil {
		return err
	}
	defer accountHash.Release()

	var prevHash common.Hash
	var reincarnation common.ReincarnationNumber
	haveLastBlock := false
	var lastBlock common.BlockId

	diffHasher := sha256.New()
	chainHasher := sha256.New()

	for {
		current, ok := minBlockAtMost(block, state, balance, nonce, code, storage)
		if !ok {
			break
		}
		if haveLastBlock && current <= lastBlock {
			return fmt.Errorf("%w: out-of-order or duplicate entry at block %d for account %x", archive.ErrCorruption, current, account)
		}

		u := &archive.AccountUpdate{}

		if state.Valid() && state.Block() == current {
			if err := mustFixedWidth(state.Value(), common.AccountStateSize); err != nil {
				return err
			}
			st := common.DecodeAccountState(state.Value())
			if st.Exists {
				u.Created = true
			} else {
				u.Deleted = true
			}
			if st.ReincarnationNumber != reincarnation+1 {
				return fmt.Errorf("%w: reincarnation discontinuity for %x at block %d: have %d, want %d", archive.ErrCorruption, account, current, st.ReincarnationNumber, reincarnation+1)
			}
			reincarnation = st.ReincarnationNumber
			state.Advance()
		}

		if balance.Valid() && balance.Block() == current {
			u.HasBalance = true
			copy(u.Balance[:], balance.Value())
			balance.Advance()
		}
		if nonce.Valid() && nonce.Block() == current {
			u.HasNonce = true
			copy(u.Nonce[:], nonce.Value())
			nonce.Advance()
		}
		if code.Valid() && code.Block() == current {
			u.HasCode = true
			u.Code = append([]byte(nil), code.Value()...)
			code.Advance()
		}
		for storage.Valid() && storage.Block() == current {
			if ReincarnationFromStorageKey(storage.Key()) != reincarnation {
				return fmt.Errorf("%w: storage entry for %x at block %d has stale reincarnation", archive.ErrCorruption, account, current)
			}
			var slotValue common.Value
			copy(slotValue[:], storage.Value())
			u.Storage = append(u.Storage, archive.AccountSlotUpdate{
				Key:   SlotFromStorageKey(storage.Key()),
				Value: slotValue,
			})
			storage.Advance()
		}

		if !accountHash.Valid() || accountHash.Block() != current {
			if accountHash.Valid() && accountHash.Block() < current {
				return fmt.Errorf("%w: hash recorded without a corresponding change for %x at block %d", archive.ErrCorruption, account, accountHash.Block())
			}
			return fmt.Errorf("%w: change without a recorded hash for %x at block %d", archive.ErrCorruption, account, current)
		}
		if err := mustFixedWidth(accountHash.Value(), common.HashSize); err != nil {
			return err
		}

		diffHash := u.Hash(diffHasher)
		chainHasher.Reset()
		chainHasher.Write(prevHash[:])
		chainHasher.Write(diffHash[:])
		var newHash common.Hash
		copy(newHash[:], chainHasher.Sum(nil))

		var stored common.Hash
		copy(stored[:], accountHash.Value())
		if newHash != stored {
			return fmt.Errorf("%w: account hash mismatch for %x at block %d", archive.ErrCorruption, account, current)
		}
		prevHash = newHash
		accountHash.Advance()

		haveLastBlock = true
		lastBlock = current
	}

	if accountHash.Valid() && accountHash.Block() <= block {
		return fmt.Errorf("%w: unconsumed account hash entry for %x at block %d", archive.ErrCorruption, account, accountHash.Block())
	}

	for _, it := range []*rangeIter{state, balance, nonce, code, storage, accountHash} {
		if err := it.Error(); err != nil {
			return err
		}
	}
	return nil
}

// minBlockAtMost returns the smallest Block() among the given valid
// iterators that does not exceed limit, and whether any such iterator
// exists.
func minBlockAtMost(limit common.BlockId, iters ...*rangeIter) (common.BlockId, bool) {
	var min common.BlockId
	found := false
	for _, it := range iters {
		if !it.Valid() || it.Block() > limit {
			continue
		}
		if !found || it.Block() < min {
			min = it.Block()
			found = true
		}
	}
	return min, found
}

// Verify re-derives the block-hash chain from the stored per-account
// hashes for every block up to and including block, invoking progress
// once per processed block, and compares the result at block against
// expectedHash. This resolves the whole-archive verification the source
// declared but left unimplemented.
func (a *Archive) Verify(block uint64, expectedHash common.Hash, progress func(block uint64)) error {
	if err := a.checkOpen(); err != nil {
		return err
	}

	blockFamily := []byte{byte(backend.BlockHashSpace)}
	it, err := a.store.GetLowerBound(blockFamily)
	if err != nil {
		return err
	}
	defer it.Release()

	var prevHash common.Hash
	var lastBlock common.BlockId
	var tip common.Hash

	for !it.IsEnd() && hasPrefix(it.Key(), blockFamily) {
		current := BlockFromKey(it.Key())
		if current > block {
			break
		}
		if err := mustFixedWidth(it.Value(), common.HashSize); err != nil {
			return err
		}

		recomputed, err := a.recomputeBlockHash(current, prevHash)
		if err != nil {
			return err
		}

		var stored common.Hash
		copy(stored[:], it.Value())
		if recomputed != stored {
			return fmt.Errorf("%w: block hash mismatch at block %d", archive.ErrCorruption, current)
		}

		prevHash = recomputed
		tip = recomputed
		lastBlock = current
		if progress != nil {
			progress(current)
		}
		it.Next()
	}
	if err := it.Error(); err != nil {
		return err
	}

	if lastBlock != block {
		return fmt.Errorf("%w: no block hash recorded at block %d", archive.ErrCorruption, block)
	}
	if tip != expectedHash {
		return fmt.Errorf("%w: recomputed hash at block %d does not match expected value", archive.ErrCorruption, block)
	}
	return nil
}

// recomputeBlockHash rebuilds the block hash for block from its stored
// per-account hashes, in ascending address order, given the already
// re-derived previous block hash.
func (a *Archive) recomputeBlockHash(block common.BlockId, prevBlockHash common.Hash) (common.Hash, error) {
	prefix := []byte{byte(backend.AccountHashSpace)}
	it, err := a.store.GetLowerBound(prefix)
	if err != nil {
		return common.Hash{}, err
	}
	defer it.Release()

	hasher := sha256.New()
	hasher.Write(prevBlockHash[:])

	for !it.IsEnd() && hasPrefix(it.Key(), prefix) {
		if BlockFromKey(it.Key()) == block {
			if err := mustFixedWidth(it.Value(), common.HashSize); err != nil {
				return common.Hash{}, err
			}
			hasher.Write(it.Value())
		}
		it.Next()
	}
	if err := it.Error(); err != nil {
		return common.Hash{}, err
	}

	var out common.Hash
	copy(out[:], hasher.Sum(nil))
	return out, nil
}
