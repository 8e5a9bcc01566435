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

	"github.com/fantom-foundation/block-archive/common"
	"github.com/fantom-foundation/block-archive/common/okv"
	"github.com/golang/mock/gomock"
)

// errBackendDown stands in for a failure surfaced by the underlying OKV
// store (disk error, corrupted manifest, and the like); the archive engine
// itself never constructs this kind of error, it only propagates it.
var errBackendDown = errors.New("backend down")

func TestGetLatestBlockPropagatesBackendError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := okv.NewMockStore(ctrl)
	store.EXPECT().GetLowerBound(gomock.Any()).Return(nil, errBackendDown)

	a := New(store)
	if _, err := a.GetLatestBlock(); !errors.Is(err, errBackendDown) {
		t.Errorf("expected GetLatestBlock to propagate backend error, got %v", err)
	}
}

func TestAddPropagatesBatchWriteError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := okv.NewMockStore(ctrl)

	emptyIt := okv.NewMockIterator(ctrl)
	emptyIt.EXPECT().IsEnd().Return(true).AnyTimes()
	emptyIt.EXPECT().Valid().Return(false).AnyTimes()
	emptyIt.EXPECT().Error().Return(nil).AnyTimes()
	emptyIt.EXPECT().Prev().Return(false).AnyTimes()
	emptyIt.EXPECT().Release().AnyTimes()

	store.EXPECT().GetLowerBound(gomock.Any()).Return(emptyIt, nil).AnyTimes()

	batch := okv.NewMockBatch(ctrl)
	batch.EXPECT().Put(gomock.Any(), gomock.Any()).AnyTimes()
	store.EXPECT().NewBatch().Return(batch)
	store.EXPECT().Write(batch).Return(errBackendDown)

	a := New(store)
	addr := common.Address{0x01}
	err := a.Add(1, common.Update{CreatedAccounts: []common.Address{addr}})
	if !errors.Is(err, errBackendDown) {
		t.Errorf("expected Add to propagate a batch write error, got %v", err)
	}
}
