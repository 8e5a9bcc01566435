// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package ldb implements archive.Archive on top of an ordered key/value
// store (see common/okv), the sole concrete backend shipped in this
// repository — backed by goleveldb.
package ldb

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"unsafe"

	"github.com/fantom-foundation/block-archive/archive"
	"github.com/fantom-foundation/block-archive/backend"
	"github.com/fantom-foundation/block-archive/common"
	"github.com/fantom-foundation/block-archive/common/okv"
)

// Archive is the goleveldb-backed implementation of archive.Archive.
// Add must be called from a single goroutine at a time; reads may run
// concurrently with each other and with Add.
type Archive struct {
	store okv.Store

	addMutex sync.Mutex
	// reincarnationCache remembers the reincarnation number an address was
	// last written with during the in-progress Add call, so that a
	// create/delete followed by storage writes in the same update resolves
	// the post-increment value without a re-read.
	reincarnationCache map[common.Address]common.ReincarnationNumber

	closedMutex sync.RWMutex
	closed      bool
}

var _ archive.Archive = (*Archive)(nil)

// Open creates or opens a goleveldb-backed archive at dir.
func Open(dir string) (*Archive, error) {
	store, err := okv.OpenLevelDB(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive at %s: %w", dir, err)
	}
	return New(store), nil
}

// New wraps an already-open okv.Store as an Archive. The Archive takes
// ownership of store and releases it on Close.
func New(store okv.Store) *Archive {
	return &Archive{
		store:              store,
		reincarnationCache: map[common.Address]common.ReincarnationNumber{},
	}
}

func (a *Archive) checkOpen() error {
	a.closedMutex.RLock()
	defer a.closedMutex.RUnlock()
	if a.closed {
		return archive.ErrClosed
	}
	return nil
}

// Add records the changes of the given block. See archive.Archive.Add.
func (a *Archive) Add(block uint64, update common.Update) error {
	if err := a.checkOpen(); err != nil {
		return err
	}
	if err := update.Check(); err != nil {
		return fmt.Errorf("invalid update for block %d: %w", block, err)
	}
	update.Normalize()

	a.addMutex.Lock()
	defer a.addMutex.Unlock()

	last, err := a.getLatestBlockLocked()
	if err != nil {
		return fmt.Errorf("failed to read latest block before adding block %d: %w", block, err)
	}
	if last >= 0 && block <= uint64(last) {
		return fmt.Errorf("%w: block %d is not higher than latest block %d", archive.ErrOutOfOrder, block, last)
	}

	if update.IsEmpty() {
		return nil
	}

	prevBlockHash, err := a.getHashLocked(block)
	if err != nil {
		return fmt.Errorf("failed to read previous block hash for block %d: %w", block, err)
	}

	batch := a.store.NewBatch()
	clear(a.reincarnationCache)

	if err := a.writeUpdateIntoBatch(batch, block, &update); err != nil {
		return fmt.Errorf("failed to stage block %d: %w", block, err)
	}

	blockHasher := sha256.New()
	blockHasher.Write(prevBlockHash[:])

	diffHasher := sha256.New()
	chainHasher := sha256.New()
	addresses, accountUpdates := archive.AccountUpdatesFrom(&update)
	for _, address := range addresses {
		accountUpdate := accountUpdates[address]

		prevAccountHash, err := a.getAccountHashLocked(block, address)
		if err != nil {
			return fmt.Errorf("failed to read previous account hash for %x at block %d: %w", address, block, err)
		}
		diffHash := accountUpdate.Hash(diffHasher)

		chainHasher.Reset()
		chainHasher.Write(prevAccountHash[:])
		chainHasher.Write(diffHash[:])
		var newAccountHash common.Hash
		copy(newAccountHash[:], chainHasher.Sum(nil))

		batch.Put(AccountHashKey(address, block), newAccountHash[:])
		blockHasher.Write(newAccountHash[:])
	}

	var blockHash common.Hash
	copy(blockHash[:], blockHasher.Sum(nil))
	batch.Put(BlockKey(block), blockHash[:])

	if err := a.store.Write(batch); err != nil {
		return fmt.Errorf("failed to write block %d: %w", block, err)
	}
	return nil
}

// writeUpdateIntoBatch stages every non-hash entry of the update: account
// state (deletions then creations, per spec ordering), balances, codes,
// nonces, and storage. Order matters: state must be staged before storage
// so that storage keys embed the post-increment reincarnation number.
func (a *Archive) writeUpdateIntoBatch(batch okv.Batch, block uint64, update *common.Update) error {
	reincarnationOf := func(address common.Address) (common.ReincarnationNumber, error) {
		if r, ok := a.reincarnationCache[address]; ok {
			return r, nil
		}
		state, err := a.getAccountStateLocked(block, address)
		if err != nil {
			return 0, err
		}
		a.reincarnationCache[address] = state.ReincarnationNumber
		return state.ReincarnationNumber, nil
	}

	for _, address := range update.DeletedAccounts {
		r, err := reincarnationOf(address)
		if err != nil {
			return fmt.Errorf("failed to resolve status of %x: %w", address, err)
		}
		encoded := common.AccountState{Exists: false, ReincarnationNumber: r + 1}.Encode()
		batch.Put(AccountStateKey(address, block), encoded[:])
		a.reincarnationCache[address] = r + 1
	}

	for _, address := range update.CreatedAccounts {
		r, err := reincarnationOf(address)
		if err != nil {
			return fmt.Errorf("failed to resolve status of %x: %w", address, err)
		}
		encoded := common.AccountState{Exists: true, ReincarnationNumber: r + 1}.Encode()
		batch.Put(AccountStateKey(address, block), encoded[:])
		a.reincarnationCache[address] = r + 1
	}

	for _, b := range update.Balances {
		batch.Put(BalanceKey(b.Account, block), b.Balance[:])
	}
	for _, c := range update.Codes {
		batch.Put(CodeKey(c.Account, block), c.Code)
	}
	for _, n := range update.Nonces {
		batch.Put(NonceKey(n.Account, block), n.Nonce[:])
	}

	for _, s := range update.Slots {
		r, err := reincarnationOf(s.Account)
		if err != nil {
			return fmt.Errorf("failed to resolve status of %x: %w", s.Account, err)
		}
		batch.Put(StorageKey(s.Account, r, s.Key, block), s.Value[:])
	}

	return nil
}

// GetLatestBlock returns the highest block with a BlockHash entry, or -1.
func (a *Archive) GetLatestBlock() (int64, error) {
	if err := a.checkOpen(); err != nil {
		return 0, err
	}
	return a.getLatestBlockLocked()
}

func (a *Archive) getLatestBlockLocked() (int64, error) {
	exemplar := BlockKey(^uint64(0))
	it, err := a.store.GetLowerBound(exemplar)
	if err != nil {
		return 0, err
	}
	defer it.Release()

	if it.IsEnd() {
		it.Prev()
	}
	if !it.Valid() {
		return -1, it.Error()
	}
	if it.Key()[0] != byte(backend.BlockHashSpace) {
		return -1, nil
	}
	return int64(BlockFromKey(it.Key())), nil
}

// Exists reports a historic account-existence status.
func (a *Archive) Exists(block uint64, account common.Address) (bool, error) {
	if err := a.checkOpen(); err != nil {
		return false, err
	}
	state, err := a.getAccountStateLocked(block, account)
	if err != nil {
		return false, err
	}
	return state.Exists, nil
}

func (a *Archive) getAccountStateLocked(block uint64, account common.Address) (common.AccountState, error) {
	value, found, err := findMostRecentFor(a.store, AccountStateKey(account, block), AccountPrefix(backend.AccountStateSpace, account))
	if err != nil || !found {
		return common.AccountState{}, err
	}
	if err := mustFixedWidth(value, common.AccountStateSize); err != nil {
		return common.AccountState{}, err
	}
	return common.DecodeAccountState(value), nil
}

// GetBalance reports a historic account balance.
func (a *Archive) GetBalance(block uint64, account common.Address) (common.Balance, error) {
	if err := a.checkOpen(); err != nil {
		return common.Balance{}, err
	}
	value, found, err := findMostRecentFor(a.store, BalanceKey(account, block), AccountPrefix(backend.BalanceSpace, account))
	if err != nil || !found {
		return common.Balance{}, err
	}
	var out common.Balance
	if err := mustFixedWidth(value, common.BalanceSize); err != nil {
		return common.Balance{}, err
	}
	copy(out[:], value)
	return out, nil
}

// GetNonce reports a historic account nonce.
func (a *Archive) GetNonce(block uint64, account common.Address) (common.Nonce, error) {
	if err := a.checkOpen(); err != nil {
		return common.Nonce{}, err
	}
	value, found, err := findMostRecentFor(a.store, NonceKey(account, block), AccountPrefix(backend.NonceSpace, account))
	if err != nil || !found {
		return common.Nonce{}, err
	}
	var out common.Nonce
	if err := mustFixedWidth(value, common.NonceSize); err != nil {
		return common.Nonce{}, err
	}
	copy(out[:], value)
	return out, nil
}

// GetCode reports historic account code.
func (a *Archive) GetCode(block uint64, account common.Address) (common.Code, error) {
	if err := a.checkOpen(); err != nil {
		return nil, err
	}
	value, found, err := findMostRecentFor(a.store, CodeKey(account, block), AccountPrefix(backend.CodeSpace, account))
	if err != nil || !found {
		return nil, err
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// GetStorage reports a historic storage slot value, scoped to the
// reincarnation resolved at (block, account); see I3.
func (a *Archive) GetStorage(block uint64, account common.Address, slot common.Key) (common.Value, error) {
	if err := a.checkOpen(); err != nil {
		return common.Value{}, err
	}
	state, err := a.getAccountStateLocked(block, account)
	if err != nil {
		return common.Value{}, err
	}

	exemplar := StorageKey(account, state.ReincarnationNumber, slot, block)
	prefix := exemplar[:storagePrefixLen]
	value, found, err := findMostRecentFor(a.store, exemplar, prefix)
	if err != nil || !found {
		return common.Value{}, err
	}
	var out common.Value
	if err := mustFixedWidth(value, common.ValueSize); err != nil {
		return common.Value{}, err
	}
	copy(out[:], value)
	return out, nil
}

// GetHash reports the block-hash chain tip as of block.
func (a *Archive) GetHash(block uint64) (common.Hash, error) {
	if err := a.checkOpen(); err != nil {
		return common.Hash{}, err
	}
	return a.getHashLocked(block)
}

func (a *Archive) getHashLocked(block uint64) (common.Hash, error) {
	prefix := []byte{byte(backend.BlockHashSpace)}
	value, found, err := findMostRecentFor(a.store, BlockKey(block), prefix)
	if err != nil || !found {
		return common.Hash{}, err
	}
	var out common.Hash
	if err := mustFixedWidth(value, common.HashSize); err != nil {
		return common.Hash{}, err
	}
	copy(out[:], value)
	return out, nil
}

// GetAccountHash reports the per-account diff-hash chain tip as of block.
func (a *Archive) GetAccountHash(block uint64, account common.Address) (common.Hash, error) {
	if err := a.checkOpen(); err != nil {
		return common.Hash{}, err
	}
	return a.getAccountHashLocked(block, account)
}

func (a *Archive) getAccountHashLocked(block uint64, account common.Address) (common.Hash, error) {
	value, found, err := findMostRecentFor(a.store, AccountHashKey(account, block), AccountPrefix(backend.AccountHashSpace, account))
	if err != nil || !found {
		return common.Hash{}, err
	}
	var out common.Hash
	if err := mustFixedWidth(value, common.HashSize); err != nil {
		return common.Hash{}, err
	}
	copy(out[:], value)
	return out, nil
}

// GetAccountList reports every address with at least one AccountHash entry
// at or before block, sorted ascending.
func (a *Archive) GetAccountList(block uint64) ([]common.Address, error) {
	if err := a.checkOpen(); err != nil {
		return nil, err
	}
	familyPrefix := []byte{byte(backend.AccountHashSpace)}
	it, err := a.store.GetLowerBound(familyPrefix)
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var out []common.Address
	var currentAddress common.Address
	haveCurrent := false

	for !it.IsEnd() && hasPrefix(it.Key(), familyPrefix) {
		address := AddressFromAccountKey(it.Key())
		if haveCurrent && address == currentAddress {
			it.Next()
			continue
		}
		currentAddress = address
		haveCurrent = true
		if BlockFromKey(it.Key()) <= block {
			out = append(out, address)
		}
		it.Next()
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMemoryFootprint reports the size of the archive's in-memory state.
// The bulk of archived data lives in the underlying store, not in the
// Archive struct itself; this reports only the per-process caches.
func (a *Archive) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*a))
	a.addMutex.Lock()
	mf.AddChild("reincarnationCache", common.NewMemoryFootprint(
		uintptr(len(a.reincarnationCache))*(common.AddressSize+unsafe.Sizeof(common.ReincarnationNumber(0)))))
	a.addMutex.Unlock()
	return mf
}

// Flush persists any buffered writes to stable storage.
func (a *Archive) Flush() error {
	if err := a.checkOpen(); err != nil {
		return err
	}
	return a.store.Flush()
}

// Close flushes then releases the archive. Subsequent operations fail
// with archive.ErrClosed.
func (a *Archive) Close() error {
	a.closedMutex.Lock()
	defer a.closedMutex.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	if err := a.store.Flush(); err != nil {
		return err
	}
	return a.store.Close()
}
