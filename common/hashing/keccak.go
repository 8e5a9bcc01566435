// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package hashing provides the hashing primitives assumed available by the
// archive's host system. The archive's own block/account hash chain is
// fixed to SHA-256 (see archive.AccountUpdate.Hash); Keccak-256 is offered
// here for collaborators that derive EVM-style identifiers, such as the
// keccak256 digest command in cmd/archivectl.
package hashing

import (
	"sync"

	"golang.org/x/crypto/sha3"
)

// Keccak256 hashes data with Keccak-256, the digest used by Ethereum-style
// address and transaction identifiers.
func Keccak256(data []byte) [32]byte {
	hasher := keccakPool.Get().(hasher)
	hasher.Reset()
	hasher.Write(data)
	var out [32]byte
	hasher.Read(out[:])
	keccakPool.Put(hasher)
	return out
}

type hasher interface {
	Reset()
	Write(in []byte) (int, error)
	Read(out []byte) (int, error)
}

var keccakPool = sync.Pool{New: func() any { return sha3.NewLegacyKeccak256() }}
