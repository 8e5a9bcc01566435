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
	"encoding/binary"

	"github.com/fantom-foundation/block-archive/backend"
	"github.com/fantom-foundation/block-archive/common"
)

// Key layouts, one byte family tag followed by big-endian fields so that
// byte-lexicographic order agrees with (family, address, [reincarnation,
// slot], block) order:
//
//	AccountState / Balance / Nonce / Code / AccountHash: tag ‖ A ‖ B
//	Storage:                                              tag ‖ A ‖ R ‖ K ‖ B
//	BlockHash:                                            tag ‖ B
//
// Blocks are stored ascending, not inverted: findMostRecentFor resolves
// "most recent at or before B" with a lower-bound seek followed by a single
// step back (see find.go), rather than relying on key inversion to turn the
// query into a forward scan.

const (
	accountKeyLen = 1 + common.AddressSize + common.BlockIdSize
	storageKeyLen = 1 + common.AddressSize + common.ReincarnationSize + common.KeySize + common.BlockIdSize
	blockKeyLen   = 1 + common.BlockIdSize

	accountPrefixLen = 1 + common.AddressSize
	storagePrefixLen = 1 + common.AddressSize + common.ReincarnationSize + common.KeySize
)

func putAccountKey(space backend.TableSpace, a common.Address, block common.BlockId) []byte {
	k := make([]byte, accountKeyLen)
	k[0] = byte(space)
	copy(k[1:], a[:])
	binary.BigEndian.PutUint64(k[1+common.AddressSize:], block)
	return k
}

// AccountStateKey encodes an AccountState family key.
func AccountStateKey(a common.Address, block common.BlockId) []byte {
	return putAccountKey(backend.AccountStateSpace, a, block)
}

// BalanceKey encodes a Balance family key.
func BalanceKey(a common.Address, block common.BlockId) []byte {
	return putAccountKey(backend.BalanceSpace, a, block)
}

// NonceKey encodes a Nonce family key.
func NonceKey(a common.Address, block common.BlockId) []byte {
	return putAccountKey(backend.NonceSpace, a, block)
}

// CodeKey encodes a Code family key.
func CodeKey(a common.Address, block common.BlockId) []byte {
	return putAccountKey(backend.CodeSpace, a, block)
}

// AccountHashKey encodes an AccountHash family key.
func AccountHashKey(a common.Address, block common.BlockId) []byte {
	return putAccountKey(backend.AccountHashSpace, a, block)
}

// StorageKey encodes a Storage family key: tag ‖ A ‖ R ‖ K ‖ B.
func StorageKey(a common.Address, r common.ReincarnationNumber, slot common.Key, block common.BlockId) []byte {
	k := make([]byte, storageKeyLen)
	k[0] = byte(backend.StorageSpace)
	off := 1
	copy(k[off:], a[:])
	off += common.AddressSize
	binary.BigEndian.PutUint32(k[off:], r)
	off += common.ReincarnationSize
	copy(k[off:], slot[:])
	off += common.KeySize
	binary.BigEndian.PutUint64(k[off:], block)
	return k
}

// BlockKey encodes a BlockHash family key: tag ‖ B.
func BlockKey(block common.BlockId) []byte {
	k := make([]byte, blockKeyLen)
	k[0] = byte(backend.BlockHashSpace)
	binary.BigEndian.PutUint64(k[1:], block)
	return k
}

// AccountPrefix returns the family-and-address prefix shared by every
// AccountState/Balance/Nonce/Code/AccountHash key for a given address,
// i.e. the key with the trailing BlockId stripped.
func AccountPrefix(space backend.TableSpace, a common.Address) []byte {
	p := make([]byte, accountPrefixLen)
	p[0] = byte(space)
	copy(p[1:], a[:])
	return p
}

// StoragePrefix returns the prefix shared by every Storage key for a given
// address and reincarnation, i.e. tag ‖ A ‖ R, with K and B stripped.
func StoragePrefix(a common.Address, r common.ReincarnationNumber) []byte {
	p := make([]byte, 1+common.AddressSize+common.ReincarnationSize)
	p[0] = byte(backend.StorageSpace)
	copy(p[1:], a[:])
	binary.BigEndian.PutUint32(p[1+common.AddressSize:], r)
	return p
}

// StorageAddressPrefix returns the prefix shared by every Storage key for a
// given address across all reincarnations, i.e. tag ‖ A.
func StorageAddressPrefix(a common.Address) []byte {
	p := make([]byte, accountPrefixLen)
	p[0] = byte(backend.StorageSpace)
	copy(p[1:], a[:])
	return p
}

// BlockFromKey returns the trailing BlockId of an account-family or
// block-family key. The caller must know the key's family ahead of time;
// it does not validate length itself beyond what indexing requires.
func BlockFromKey(key []byte) common.BlockId {
	return binary.BigEndian.Uint64(key[len(key)-common.BlockIdSize:])
}

// ReincarnationFromStorageKey extracts R from a Storage family key.
func ReincarnationFromStorageKey(key []byte) common.ReincarnationNumber {
	off := 1 + common.AddressSize
	return binary.BigEndian.Uint32(key[off : off+common.ReincarnationSize])
}

// SlotFromStorageKey extracts K from a Storage family key.
func SlotFromStorageKey(key []byte) common.Key {
	var k common.Key
	off := 1 + common.AddressSize + common.ReincarnationSize
	copy(k[:], key[off:off+common.KeySize])
	return k
}

// AddressFromAccountKey extracts A from an account-family key (any family
// whose layout is tag ‖ A ‖ B).
func AddressFromAccountKey(key []byte) common.Address {
	var a common.Address
	copy(a[:], key[1:1+common.AddressSize])
	return a
}

// hasPrefix reports whether key starts with prefix.
func hasPrefix(key, prefix []byte) bool {
	if len(key) < len(prefix) {
		return false
	}
	for i, b := range prefix {
		if key[i] != b {
			return false
		}
	}
	return true
}
