// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package archive defines the behavioral surface of the versioned
// blockchain state archive: an append-only historical record of per-block
// account updates, queryable at any historical block and independently
// re-verifiable through a two-level SHA-256 hash chain. See archive/ldb
// for the concrete implementation on top of an ordered key/value store.
package archive

import (
	"io"

	"github.com/fantom-foundation/block-archive/common"
)

// Archive retains a history of state mutations in a blockchain at
// block-level granularity. History is recorded by adding per-block
// updates; once written, an entry is never altered or removed.
//
// The archive is single-writer: callers must serialize calls to Add.
// Reads may run concurrently with each other and with Add to the extent
// the underlying store allows.
type Archive interface {
	// Add records the changes of the given block. block must be strictly
	// greater than GetLatestBlock, or ErrOutOfOrder is returned. An empty
	// update is a no-op: no entry is written, and the block-hash chain is
	// left without an entry for that block (see GetHash).
	Add(block uint64, update common.Update) error

	// GetLatestBlock returns the highest block height for which a
	// BlockHash entry exists, or -1 if the archive is empty.
	GetLatestBlock() (int64, error)

	// Exists reports a historic account-existence status.
	Exists(block uint64, account common.Address) (bool, error)

	// GetBalance reports a historic account balance.
	GetBalance(block uint64, account common.Address) (common.Balance, error)

	// GetNonce reports a historic account nonce.
	GetNonce(block uint64, account common.Address) (common.Nonce, error)

	// GetCode reports historic account code.
	GetCode(block uint64, account common.Address) (common.Code, error)

	// GetStorage reports a historic storage slot value.
	GetStorage(block uint64, account common.Address, slot common.Key) (common.Value, error)

	// GetHash reports the block-hash chain tip as of block.
	GetHash(block uint64) (common.Hash, error)

	// GetAccountHash reports the per-account diff-hash chain tip as of
	// block.
	GetAccountHash(block uint64, account common.Address) (common.Hash, error)

	// GetAccountList reports every address with at least one AccountHash
	// entry at or before block, sorted ascending.
	GetAccountList(block uint64) ([]common.Address, error)

	// VerifyAccount re-derives, from the stored raw entries, the diff hash
	// for every block touching account up to and including block, and
	// checks it against the stored hash chain.
	VerifyAccount(block uint64, account common.Address) error

	// Verify re-derives the block-hash chain from the stored per-account
	// hashes for every block up to and including block, invoking progress
	// once per processed block, and compares the result at block against
	// expectedHash.
	Verify(block uint64, expectedHash common.Hash, progress func(block uint64)) error

	// Flush persists any buffered writes to stable storage.
	Flush() error

	io.Closer
}
