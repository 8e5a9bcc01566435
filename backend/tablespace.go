// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package backend names the key-family tablespaces the archive multiplexes
// onto a single ordered key/value store.
package backend

// TableSpace is a one-byte tag distinguishing the six interleaved property
// streams (plus the block-hash stream) the archive stores under a single
// key space.
type TableSpace byte

const (
	// AccountStateSpace tags account existence/reincarnation records.
	AccountStateSpace TableSpace = 0
	// BalanceSpace tags account balance records.
	BalanceSpace TableSpace = 1
	// NonceSpace tags account nonce records.
	NonceSpace TableSpace = 2
	// CodeSpace tags account code records.
	CodeSpace TableSpace = 3
	// StorageSpace tags storage slot records.
	StorageSpace TableSpace = 4
	// AccountHashSpace tags per-account running diff-hash records.
	AccountHashSpace TableSpace = 5
	// BlockHashSpace tags per-block hash-chain tip records.
	BlockHashSpace TableSpace = 6
)
