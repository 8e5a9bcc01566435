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
	"testing"

	"github.com/fantom-foundation/block-archive/common"
)

var addrA = common.Address{0x01}
var addrB = common.Address{0x02}

func TestAccountKeysOrderByBlock(t *testing.T) {
	if bytes.Compare(AccountStateKey(addrA, 1), AccountStateKey(addrA, 2)) >= 0 {
		t.Errorf("expected key for block 1 to sort before key for block 2")
	}
	if bytes.Compare(AccountStateKey(addrA, 0xff), AccountStateKey(addrA, 0x100)) >= 0 {
		t.Errorf("expected block 0xff to sort before block 0x100, big-endian encoding broken")
	}
}

func TestAccountKeysOrderByAddress(t *testing.T) {
	if bytes.Compare(AccountStateKey(addrA, 100), AccountStateKey(addrB, 1)) >= 0 {
		t.Errorf("expected address to dominate block in key ordering")
	}
}

func TestStorageKeysOrderByReincarnationThenSlotThenBlock(t *testing.T) {
	k1 := common.Key{0x01}
	k2 := common.Key{0x02}

	if bytes.Compare(StorageKey(addrA, 0, k1, 10), StorageKey(addrA, 1, k1, 1)) >= 0 {
		t.Errorf("expected reincarnation to dominate block in storage key ordering")
	}
	if bytes.Compare(StorageKey(addrA, 0, k1, 10), StorageKey(addrA, 0, k2, 1)) >= 0 {
		t.Errorf("expected slot key to dominate block in storage key ordering")
	}
	if bytes.Compare(StorageKey(addrA, 0, k1, 1), StorageKey(addrA, 0, k1, 2)) >= 0 {
		t.Errorf("expected block to order ascending within a fixed (address, reincarnation, slot)")
	}
}

func TestBlockKeyOrdersByBlock(t *testing.T) {
	if bytes.Compare(BlockKey(1), BlockKey(2)) >= 0 {
		t.Errorf("expected block hash keys to sort ascending by block")
	}
}

func TestAccountPrefixIsSharedAcrossBlocks(t *testing.T) {
	prefix := AccountPrefix(0, addrA)
	if !hasPrefix(AccountStateKey(addrA, 1), prefix) || !hasPrefix(AccountStateKey(addrA, 9999), prefix) {
		t.Errorf("expected account prefix to match keys at any block")
	}
	if hasPrefix(AccountStateKey(addrB, 1), prefix) {
		t.Errorf("expected account prefix not to match a different address")
	}
}

func TestBlockFromKeyRoundTrips(t *testing.T) {
	for _, block := range []common.BlockId{0, 1, 255, 256, 1 << 40} {
		if got := BlockFromKey(AccountStateKey(addrA, block)); got != block {
			t.Errorf("BlockFromKey(AccountStateKey(_, %d)) = %d", block, got)
		}
		if got := BlockFromKey(BlockKey(block)); got != block {
			t.Errorf("BlockFromKey(BlockKey(%d)) = %d", block, got)
		}
	}
}

func TestStorageKeyExtractors(t *testing.T) {
	slot := common.Key{0x07}
	key := StorageKey(addrA, 3, slot, 42)
	if got := ReincarnationFromStorageKey(key); got != 3 {
		t.Errorf("ReincarnationFromStorageKey = %d, want 3", got)
	}
	if got := SlotFromStorageKey(key); got != slot {
		t.Errorf("SlotFromStorageKey = %x, want %x", got, slot)
	}
	if got := BlockFromKey(key); got != 42 {
		t.Errorf("BlockFromKey = %d, want 42", got)
	}
}
