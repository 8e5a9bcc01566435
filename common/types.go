// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package common defines the primitive value types shared by the archive
// engine, its key/value codec, and its callers.
package common

import (
	"bytes"
	"encoding/binary"
)

// AddressSize is the length, in bytes, of an Address.
const AddressSize = 20

// KeySize is the length, in bytes, of a storage slot Key.
const KeySize = 32

// ValueSize is the length, in bytes, of a storage slot Value.
const ValueSize = 32

// BalanceSize is the length, in bytes, of a Balance.
const BalanceSize = 16

// NonceSize is the length, in bytes, of a Nonce.
const NonceSize = 8

// HashSize is the length, in bytes, of a Hash.
const HashSize = 32

// ReincarnationSize is the length, in bytes, of an encoded ReincarnationNumber.
const ReincarnationSize = 4

// BlockIdSize is the length, in bytes, of an encoded BlockId.
const BlockIdSize = 8

// Address is a 20 byte account identifier.
type Address [AddressSize]byte

// Compare provides a lexicographic ordering of addresses, matching the
// order imposed by their big-endian byte representation.
func (a *Address) Compare(b *Address) int {
	return bytes.Compare(a[:], b[:])
}

// Key identifies a single storage slot within an account.
type Key [KeySize]byte

// Compare provides a lexicographic ordering of slot keys.
func (k *Key) Compare(b *Key) int {
	return bytes.Compare(k[:], b[:])
}

// Value is the content of a single storage slot.
type Value [ValueSize]byte

// Balance is a 16 byte, big-endian account balance.
type Balance [BalanceSize]byte

// Nonce is an 8 byte, big-endian account nonce.
type Nonce [NonceSize]byte

// Hash is a 32 byte SHA-256 digest.
type Hash [HashSize]byte

// BlockId identifies a block by its height.
type BlockId = uint64

// ReincarnationNumber counts how many times an account has been created
// (and thus how many times its storage has been logically purged).
type ReincarnationNumber = uint32

// Code is contract bytecode, a variable-length byte string.
type Code = []byte

// AccountState is the per-account existence/reincarnation record written
// on every account creation or deletion.
type AccountState struct {
	Exists               bool
	ReincarnationNumber ReincarnationNumber
}

// AccountStateSize is the length, in bytes, of an encoded AccountState.
const AccountStateSize = 1 + ReincarnationSize

// Encode serializes the AccountState to its fixed 5 byte representation:
// 1 byte of existence flag followed by the big-endian reincarnation number.
func (s AccountState) Encode() [AccountStateSize]byte {
	var out [AccountStateSize]byte
	if s.Exists {
		out[0] = 1
	}
	binary.BigEndian.PutUint32(out[1:], s.ReincarnationNumber)
	return out
}

// DecodeAccountState parses the fixed-width encoding produced by Encode.
// The caller is responsible for checking the input length beforehand.
func DecodeAccountState(data []byte) AccountState {
	return AccountState{
		Exists:              data[0] != 0,
		ReincarnationNumber: binary.BigEndian.Uint32(data[1:]),
	}
}
