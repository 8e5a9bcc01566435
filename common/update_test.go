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

import "testing"

func TestUpdateIsEmpty(t *testing.T) {
	var u Update
	if !u.IsEmpty() {
		t.Errorf("expected zero-value Update to be empty")
	}
	u.AppendCreateAccount(Address{0x01})
	if u.IsEmpty() {
		t.Errorf("expected Update with a created account not to be empty")
	}
}

func TestUpdateCheckRejectsCreateAndDeleteOfSameAccount(t *testing.T) {
	addr := Address{0x01}
	var u Update
	u.AppendCreateAccount(addr)
	u.AppendDeleteAccount(addr)
	if err := u.Check(); err == nil {
		t.Errorf("expected Check to reject an account both created and deleted")
	}
}

func TestUpdateNormalizeSortsAndDedups(t *testing.T) {
	a, b := Address{0x02}, Address{0x01}
	var u Update
	u.AppendCreateAccount(a)
	u.AppendCreateAccount(b)
	u.AppendCreateAccount(a)
	u.Normalize()

	if len(u.CreatedAccounts) != 2 {
		t.Fatalf("expected duplicates to be removed, got %v", u.CreatedAccounts)
	}
	if u.CreatedAccounts[0] != b || u.CreatedAccounts[1] != a {
		t.Errorf("expected ascending order, got %v", u.CreatedAccounts)
	}
}

func TestUpdateNormalizeSortsSlotsByAddressThenKey(t *testing.T) {
	a1, a2 := Address{0x01}, Address{0x02}
	var u Update
	u.AppendSlotUpdate(a2, Key{0x01}, Value{})
	u.AppendSlotUpdate(a1, Key{0x02}, Value{})
	u.AppendSlotUpdate(a1, Key{0x01}, Value{})
	u.Normalize()

	if u.Slots[0].Account != a1 || u.Slots[0].Key != (Key{0x01}) {
		t.Errorf("expected first slot to be (a1, 0x01), got %+v", u.Slots[0])
	}
	if u.Slots[1].Account != a1 || u.Slots[1].Key != (Key{0x02}) {
		t.Errorf("expected second slot to be (a1, 0x02), got %+v", u.Slots[1])
	}
	if u.Slots[2].Account != a2 {
		t.Errorf("expected third slot to belong to a2, got %+v", u.Slots[2])
	}
}
