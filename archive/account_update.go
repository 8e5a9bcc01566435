// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package archive

import (
	"encoding/binary"
	"hash"
	"sort"

	"github.com/fantom-foundation/block-archive/common"
)

// AccountUpdate is the portion of an Update restricted to a single account.
// It is the diff unit hashed into the per-account chain (see Hash).
type AccountUpdate struct {
	Created bool
	Deleted bool

	HasBalance bool
	Balance    common.Balance

	HasNonce bool
	Nonce    common.Nonce

	HasCode bool
	Code    []byte

	// Storage holds this account's slot writes for the block, sorted
	// ascending by Key; see AccountUpdatesFrom.
	Storage []AccountSlotUpdate
}

// AccountSlotUpdate is one storage slot write within an AccountUpdate.
type AccountSlotUpdate struct {
	Key   common.Key
	Value common.Value
}

// AccountUpdatesFrom partitions a block-wide Update into one AccountUpdate
// per touched address, and returns the touched addresses sorted ascending
// — the order in which their diff hashes must be folded into the block
// hash (see archive/ldb.Archive.Add).
func AccountUpdatesFrom(update *common.Update) ([]common.Address, map[common.Address]*AccountUpdate) {
	updates := make(map[common.Address]*AccountUpdate)

	get := func(addr common.Address) *AccountUpdate {
		u, ok := updates[addr]
		if !ok {
			u = &AccountUpdate{}
			updates[addr] = u
		}
		return u
	}

	for _, addr := range update.DeletedAccounts {
		get(addr).Deleted = true
	}
	for _, addr := range update.CreatedAccounts {
		get(addr).Created = true
	}
	for _, b := range update.Balances {
		u := get(b.Account)
		u.HasBalance = true
		u.Balance = b.Balance
	}
	for _, n := range update.Nonces {
		u := get(n.Account)
		u.HasNonce = true
		u.Nonce = n.Nonce
	}
	for _, c := range update.Codes {
		u := get(c.Account)
		u.HasCode = true
		u.Code = c.Code
	}
	for _, s := range update.Slots {
		u := get(s.Account)
		u.Storage = append(u.Storage, AccountSlotUpdate{Key: s.Key, Value: s.Value})
	}

	addresses := make([]common.Address, 0, len(updates))
	for addr, u := range updates {
		sort.Slice(u.Storage, func(i, j int) bool {
			return u.Storage[i].Key.Compare(&u.Storage[j].Key) < 0
		})
		addresses = append(addresses, addr)
	}
	sort.Slice(addresses, func(i, j int) bool {
		return addresses[i].Compare(&addresses[j]) < 0
	})

	return addresses, updates
}

// Hash computes the diff hash of this account update: a canonical
// serialization fed through the given (already-constructed) hasher.
//
// Layout: a fixed 2-byte (deleted, created) prefix, then the balance,
// nonce, and code fields in that order, each as a 1-byte presence tag
// followed by its encoding when present (a zero-length marker — just the
// tag byte — when absent), then the sorted storage writes as Key‖Value
// pairs. Any change to this layout is a hard fork: stored hash chains
// become unverifiable.
func (u *AccountUpdate) Hash(hasher hash.Hash) common.Hash {
	hasher.Reset()

	hasher.Write([]byte{boolByte(u.Deleted), boolByte(u.Created)})

	if u.HasBalance {
		hasher.Write([]byte{1})
		hasher.Write(u.Balance[:])
	} else {
		hasher.Write([]byte{0})
	}

	if u.HasNonce {
		hasher.Write([]byte{1})
		hasher.Write(u.Nonce[:])
	} else {
		hasher.Write([]byte{0})
	}

	if u.HasCode {
		hasher.Write([]byte{1})
		var size [4]byte
		binary.BigEndian.PutUint32(size[:], uint32(len(u.Code)))
		hasher.Write(size[:])
		hasher.Write(u.Code)
	} else {
		hasher.Write([]byte{0})
	}

	for _, s := range u.Storage {
		hasher.Write(s.Key[:])
		hasher.Write(s.Value[:])
	}

	var out common.Hash
	copy(out[:], hasher.Sum(nil))
	return out
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
