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
	"errors"
	"testing"

	"github.com/fantom-foundation/block-archive/archive"
	"github.com/fantom-foundation/block-archive/common"
)

var addr1 = common.Address{0x01}

func open(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestEmptyArchive(t *testing.T) {
	a := open(t)

	if latest, err := a.GetLatestBlock(); err != nil || latest != -1 {
		t.Fatalf("expected empty archive to report -1, got %d, %v", latest, err)
	}
	if balance, err := a.GetBalance(0, addr1); err != nil || balance != (common.Balance{}) {
		t.Errorf("unexpected balance in empty archive: %x, %v", balance, err)
	}
}

func TestSingleCreate(t *testing.T) {
	a := open(t)

	if err := a.Add(5, common.Update{CreatedAccounts: []common.Address{addr1}}); err != nil {
		t.Fatalf("failed to add block 5: %v", err)
	}

	if exists, err := a.Exists(5, addr1); err != nil || !exists {
		t.Errorf("expected account to exist at block 5, got %t, %v", exists, err)
	}
	if exists, err := a.Exists(4, addr1); err != nil || exists {
		t.Errorf("expected account not to exist at block 4, got %t, %v", exists, err)
	}

	hash, err := a.GetHash(5)
	if err != nil {
		t.Fatalf("failed to get hash of block 5: %v", err)
	}
	if hash == (common.Hash{}) {
		t.Errorf("expected non-zero block hash")
	}

	accountHash, err := a.GetAccountHash(5, addr1)
	if err != nil {
		t.Fatalf("failed to get account hash: %v", err)
	}
	if accountHash == (common.Hash{}) {
		t.Errorf("expected non-zero account hash")
	}
}

func TestStoragePurgeOnRecreate(t *testing.T) {
	a := open(t)
	slot := common.Key{0x07}
	value := common.Value{0x42}

	if err := a.Add(1, common.Update{CreatedAccounts: []common.Address{addr1}}); err != nil {
		t.Fatalf("failed to add block 1: %v", err)
	}
	if err := a.Add(2, common.Update{Slots: []common.SlotUpdate{{Account: addr1, Key: slot, Value: value}}}); err != nil {
		t.Fatalf("failed to add block 2: %v", err)
	}
	if err := a.Add(3, common.Update{DeletedAccounts: []common.Address{addr1}}); err != nil {
		t.Fatalf("failed to add block 3: %v", err)
	}
	if err := a.Add(4, common.Update{CreatedAccounts: []common.Address{addr1}}); err != nil {
		t.Fatalf("failed to add block 4: %v", err)
	}

	if got, err := a.GetStorage(2, addr1, slot); err != nil || got != value {
		t.Errorf("unexpected storage at block 2: %x, %v", got, err)
	}
	if got, err := a.GetStorage(3, addr1, slot); err != nil || got != (common.Value{}) {
		t.Errorf("expected storage purged at block 3, got %x, %v", got, err)
	}
	if got, err := a.GetStorage(4, addr1, slot); err != nil || got != (common.Value{}) {
		t.Errorf("expected storage still purged at block 4, got %x, %v", got, err)
	}

	state, err := a.getAccountStateLocked(4, addr1)
	if err != nil {
		t.Fatalf("failed to read account state: %v", err)
	}
	if state.ReincarnationNumber != 2 {
		t.Errorf("expected reincarnation 2 at block 4, got %d", state.ReincarnationNumber)
	}
}

func TestOutOfOrderRejected(t *testing.T) {
	a := open(t)
	u := common.Update{CreatedAccounts: []common.Address{addr1}}

	if err := a.Add(10, u); err != nil {
		t.Fatalf("failed to add block 10: %v", err)
	}
	if err := a.Add(10, u); !errors.Is(err, archive.ErrOutOfOrder) {
		t.Errorf("expected ErrOutOfOrder re-adding block 10, got %v", err)
	}
	if err := a.Add(9, u); !errors.Is(err, archive.ErrOutOfOrder) {
		t.Errorf("expected ErrOutOfOrder adding block 9 after 10, got %v", err)
	}
}

func TestGetAccountListDedupsAcrossReincarnationsAndSortsByAddress(t *testing.T) {
	a := open(t)
	addr2 := common.Address{0x02}

	if err := a.Add(1, common.Update{CreatedAccounts: []common.Address{addr1}}); err != nil {
		t.Fatalf("failed to add block 1: %v", err)
	}
	if err := a.Add(2, common.Update{
		DeletedAccounts: []common.Address{addr1},
		CreatedAccounts: []common.Address{addr2},
	}); err != nil {
		t.Fatalf("failed to add block 2: %v", err)
	}
	if err := a.Add(3, common.Update{CreatedAccounts: []common.Address{addr1}}); err != nil {
		t.Fatalf("failed to add block 3: %v", err)
	}

	if list, err := a.GetAccountList(0); err != nil || len(list) != 0 {
		t.Errorf("expected no accounts before block 1, got %v, %v", list, err)
	}

	list, err := a.GetAccountList(1)
	if err != nil {
		t.Fatalf("failed to list accounts at block 1: %v", err)
	}
	if len(list) != 1 || list[0] != addr1 {
		t.Errorf("expected [addr1] at block 1, got %v", list)
	}

	list, err = a.GetAccountList(2)
	if err != nil {
		t.Fatalf("failed to list accounts at block 2: %v", err)
	}
	if len(list) != 2 || list[0] != addr1 || list[1] != addr2 {
		t.Errorf("expected [addr1, addr2] at block 2, got %v", list)
	}

	list, err = a.GetAccountList(3)
	if err != nil {
		t.Fatalf("failed to list accounts at block 3: %v", err)
	}
	if len(list) != 2 || list[0] != addr1 || list[1] != addr2 {
		t.Errorf("expected addr1's later reincarnation not to duplicate the entry, got %v", list)
	}
}

func TestEmptyUpdateIsNoOp(t *testing.T) {
	a := open(t)

	if err := a.Add(3, common.Update{CreatedAccounts: []common.Address{addr1}}); err != nil {
		t.Fatalf("failed to add block 3: %v", err)
	}
	before, err := a.GetLatestBlock()
	if err != nil {
		t.Fatalf("failed to read latest block: %v", err)
	}

	if err := a.Add(7, common.Update{}); err != nil {
		t.Fatalf("failed to add empty block 7: %v", err)
	}

	after, err := a.GetLatestBlock()
	if err != nil {
		t.Fatalf("failed to read latest block: %v", err)
	}
	if before != after {
		t.Errorf("expected latest block to be unchanged by an empty update, got %d -> %d", before, after)
	}
}

func TestVerifyAccountCatchesTampering(t *testing.T) {
	a := open(t)

	if err := a.Add(1, common.Update{
		CreatedAccounts: []common.Address{addr1},
		Balances:        []common.BalanceUpdate{{Account: addr1, Balance: common.Balance{0x12}}},
	}); err != nil {
		t.Fatalf("failed to add block 1: %v", err)
	}
	if err := a.Add(2, common.Update{
		Balances: []common.BalanceUpdate{{Account: addr1, Balance: common.Balance{0x34}}},
	}); err != nil {
		t.Fatalf("failed to add block 2: %v", err)
	}

	if err := a.VerifyAccount(2, addr1); err != nil {
		t.Fatalf("expected valid archive to verify, got %v", err)
	}

	bogus := make([]byte, common.HashSize)
	for i := range bogus {
		bogus[i] = 0xff
	}
	if err := a.store.Add(AccountHashKey(addr1, 2), bogus); err != nil {
		t.Fatalf("failed to tamper with stored entry: %v", err)
	}

	if err := a.VerifyAccount(2, addr1); !errors.Is(err, archive.ErrCorruption) {
		t.Errorf("expected tampering to be detected as corruption, got %v", err)
	}
}

func TestWholeArchiveVerify(t *testing.T) {
	a := open(t)

	if err := a.Add(1, common.Update{CreatedAccounts: []common.Address{addr1}}); err != nil {
		t.Fatalf("failed to add block 1: %v", err)
	}
	if err := a.Add(2, common.Update{
		Balances: []common.BalanceUpdate{{Account: addr1, Balance: common.Balance{0x34}}},
	}); err != nil {
		t.Fatalf("failed to add block 2: %v", err)
	}

	expected, err := a.GetHash(2)
	if err != nil {
		t.Fatalf("failed to read hash: %v", err)
	}

	var progressed []uint64
	if err := a.Verify(2, expected, func(block uint64) { progressed = append(progressed, block) }); err != nil {
		t.Fatalf("expected valid archive to verify, got %v", err)
	}
	if len(progressed) != 2 {
		t.Errorf("expected progress callback once per block, got %v", progressed)
	}

	if err := a.Verify(2, common.Hash{0xff}, nil); !errors.Is(err, archive.ErrCorruption) {
		t.Errorf("expected mismatched expected hash to fail verification, got %v", err)
	}
}

func TestGetMemoryFootprintGrowsWithCachedAddresses(t *testing.T) {
	a := open(t)

	empty := a.GetMemoryFootprint().Total()

	if err := a.Add(1, common.Update{CreatedAccounts: []common.Address{addr1}}); err != nil {
		t.Fatalf("failed to add block 1: %v", err)
	}

	after := a.GetMemoryFootprint().Total()
	if after <= empty {
		t.Errorf("expected footprint to grow, got %d -> %d", empty, after)
	}
}

func TestClosedArchiveRejectsOperations(t *testing.T) {
	a, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("failed to close archive: %v", err)
	}

	if err := a.Add(1, common.Update{}); !errors.Is(err, archive.ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
	if _, err := a.GetLatestBlock(); !errors.Is(err, archive.ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
}
