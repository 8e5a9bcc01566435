// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"fmt"
	"sort"
)

// Update summarizes the effective changes to the archive at the end of one
// block: accounts created or deleted, balances, nonces, codes, and storage
// slot writes.
//
// A typical caller builds an Update incrementally:
//
//	update := common.Update{}
//	update.AppendCreateAccount(addr)
//	update.AppendBalanceUpdate(addr, balance)
//	if err := update.Check(); err != nil {
//		// reject malformed batch
//	}
//	err := archive.Add(block, update)
type Update struct {
	DeletedAccounts []Address
	CreatedAccounts []Address
	Balances        []BalanceUpdate
	Nonces          []NonceUpdate
	Codes           []CodeUpdate
	Slots           []SlotUpdate
}

// BalanceUpdate is a single account's new balance in a block.
type BalanceUpdate struct {
	Account Address
	Balance Balance
}

// NonceUpdate is a single account's new nonce in a block.
type NonceUpdate struct {
	Account Address
	Nonce   Nonce
}

// CodeUpdate is a single account's new code in a block.
type CodeUpdate struct {
	Account Address
	Code    []byte
}

// SlotUpdate is a single storage slot write in a block.
type SlotUpdate struct {
	Account Address
	Key     Key
	Value   Value
}

// IsEmpty is true if this update carries no change at all.
func (u *Update) IsEmpty() bool {
	return len(u.DeletedAccounts) == 0 &&
		len(u.CreatedAccounts) == 0 &&
		len(u.Balances) == 0 &&
		len(u.Nonces) == 0 &&
		len(u.Codes) == 0 &&
		len(u.Slots) == 0
}

// AppendDeleteAccount registers an account to be deleted in this block.
// Deletions take effect before any creation, balance, nonce, code, or
// storage change registered in the same update.
func (u *Update) AppendDeleteAccount(addr Address) {
	u.DeletedAccounts = append(u.DeletedAccounts, addr)
}

// AppendCreateAccount registers a new account to be created in this block.
func (u *Update) AppendCreateAccount(addr Address) {
	u.CreatedAccounts = append(u.CreatedAccounts, addr)
}

// AppendBalanceUpdate registers a balance change.
func (u *Update) AppendBalanceUpdate(addr Address, balance Balance) {
	u.Balances = append(u.Balances, BalanceUpdate{addr, balance})
}

// AppendNonceUpdate registers a nonce change.
func (u *Update) AppendNonceUpdate(addr Address, nonce Nonce) {
	u.Nonces = append(u.Nonces, NonceUpdate{addr, nonce})
}

// AppendCodeUpdate registers a code change.
func (u *Update) AppendCodeUpdate(addr Address, code []byte) {
	u.Codes = append(u.Codes, CodeUpdate{addr, code})
}

// AppendSlotUpdate registers a storage slot write.
func (u *Update) AppendSlotUpdate(addr Address, key Key, value Value) {
	u.Slots = append(u.Slots, SlotUpdate{addr, key, value})
}

// Normalize sorts every list by address (slots additionally by key) and
// removes duplicate addresses from the created and deleted account lists.
// Duplicate balance, nonce, code and slot entries are not removed, and the
// order among entries with the same address (and, for slots, key) is not
// defined.
func (u *Update) Normalize() {
	u.DeletedAccounts = sortUniqueAddresses(u.DeletedAccounts)
	u.CreatedAccounts = sortUniqueAddresses(u.CreatedAccounts)
	sort.Slice(u.Balances, func(i, j int) bool { return less(&u.Balances[i].Account, &u.Balances[j].Account) })
	sort.Slice(u.Nonces, func(i, j int) bool { return less(&u.Nonces[i].Account, &u.Nonces[j].Account) })
	sort.Slice(u.Codes, func(i, j int) bool { return less(&u.Codes[i].Account, &u.Codes[j].Account) })
	sort.Slice(u.Slots, func(i, j int) bool {
		a, b := &u.Slots[i], &u.Slots[j]
		if c := a.Account.Compare(&b.Account); c != 0 {
			return c < 0
		}
		return a.Key.Compare(&b.Key) < 0
	})
}

// Check verifies that created/deleted accounts do not overlap, which would
// make the partitioning into per-account diffs (see archive.AccountUpdatesFrom)
// ambiguous about whether the account was ultimately created or deleted.
func (u *Update) Check() error {
	deleted := make(map[Address]bool, len(u.DeletedAccounts))
	for _, addr := range u.DeletedAccounts {
		deleted[addr] = true
	}
	for _, addr := range u.CreatedAccounts {
		if deleted[addr] {
			return fmt.Errorf("account %x is both created and deleted in the same update", addr)
		}
	}
	return nil
}

func less(a, b *Address) bool {
	return a.Compare(b) < 0
}

func sortUniqueAddresses(list []Address) []Address {
	if len(list) <= 1 {
		return list
	}
	sort.Slice(list, func(i, j int) bool { return less(&list[i], &list[j]) })
	j := 0
	for i := 1; i < len(list); i++ {
		if list[j] != list[i] {
			j++
			list[j] = list[i]
		}
	}
	return list[:j+1]
}
