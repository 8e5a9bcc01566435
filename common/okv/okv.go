// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package okv defines the ordered key/value store contract the archive
// engine is built on: byte-lexicographically ordered keys, point writes,
// and forward/backward iteration positioned by a lower-bound seek. It
// carries both the interface and the goleveldb-backed default
// implementation a deployable archive needs.
package okv

// Store is an ordered key/value backend. Keys are compared
// byte-lexicographically. Add (and a batch's Put) is last-write-wins; there is no delete in
// this contract because the archive never deletes an entry once written.
type Store interface {
	// Add inserts or overwrites a single key.
	Add(key, value []byte) error

	// NewBatch starts a batch of writes to be applied atomically by Write.
	NewBatch() Batch

	// Write atomically applies every Put recorded in the batch.
	Write(batch Batch) error

	// GetLowerBound returns a forward iterator positioned at the smallest
	// stored key greater than or equal to key, or an iterator for which
	// IsEnd() is true if no such key exists.
	GetLowerBound(key []byte) (Iterator, error)

	// Flush persists any buffered writes to stable storage.
	Flush() error

	// Close flushes and releases the store. The store must not be used
	// afterwards.
	Close() error
}

// Batch accumulates writes to be applied atomically by Store.Write.
type Batch interface {
	// Put records a key/value pair to be written when the batch is
	// applied. It does not take effect until Store.Write(batch) is called.
	Put(key, value []byte)

	// Reset clears the batch for reuse.
	Reset()
}

// Iterator is a cursor over a Store's key space, ordered
// byte-lexicographically. A freshly returned iterator is positioned by
// the GetLowerBound call that created it.
type Iterator interface {
	// Key returns the key at the current position. Only valid when
	// neither IsEnd nor IsBegin holds.
	Key() []byte

	// Value returns the value at the current position. Only valid when
	// neither IsEnd nor IsBegin holds.
	Value() []byte

	// Next advances to the next key in ascending order. Returns false if
	// there is no further key, in which case IsEnd becomes true.
	Next() bool

	// Prev moves to the previous key in ascending order. Returns false if
	// there is no prior key, in which case IsBegin becomes true.
	Prev() bool

	// IsEnd is true if the iterator has been advanced past the last key.
	IsEnd() bool

	// IsBegin is true if the iterator has been moved before the first key.
	IsBegin() bool

	// Valid is true if the iterator is currently positioned at a key.
	Valid() bool

	// Error reports any error encountered while iterating.
	Error() error

	// Release frees resources held by the iterator. The iterator must not
	// be used afterwards.
	Release()
}
