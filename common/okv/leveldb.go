// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package okv

import (
	"github.com/syndtr/goleveldb/leveldb"
)

// levelDBStore is the Store implementation backed by goleveldb, the
// storage engine this archive is built on.
type levelDBStore struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if necessary) a goleveldb instance at path
// and wraps it as a Store.
func OpenLevelDB(path string) (Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &levelDBStore{db: db}, nil
}

func (s *levelDBStore) Add(key, value []byte) error {
	return s.db.Put(key, value, nil)
}

func (s *levelDBStore) NewBatch() Batch {
	return &levelDBBatch{}
}

func (s *levelDBStore) Write(batch Batch) error {
	b, ok := batch.(*levelDBBatch)
	if !ok {
		return errNotOurBatch
	}
	return s.db.Write(&b.batch, nil)
}

func (s *levelDBStore) GetLowerBound(key []byte) (Iterator, error) {
	it := s.db.NewIterator(nil, nil)
	valid := it.Seek(key)
	return &levelDBIterator{it: it, valid: valid}, nil
}

func (s *levelDBStore) Flush() error {
	// goleveldb persists writes as they are made (WAL + memtable flush on
	// compaction); there is no separate user-triggered flush call besides
	// letting the DB manage its own compaction.
	return nil
}

func (s *levelDBStore) Close() error {
	return s.db.Close()
}

const errNotOurBatch = constError("batch was not created by this store")

type constError string

func (e constError) Error() string { return string(e) }

type levelDBBatch struct {
	batch leveldb.Batch
}

func (b *levelDBBatch) Put(key, value []byte) {
	b.batch.Put(key, value)
}

func (b *levelDBBatch) Reset() {
	b.batch.Reset()
}

type levelDBIterator struct {
	it    iterator
	valid bool
}

// iterator is the subset of goleveldb's iterator.Iterator that
// levelDBIterator uses.
type iterator interface {
	Key() []byte
	Value() []byte
	Next() bool
	Prev() bool
	Release()
	Error() error
}

func (i *levelDBIterator) Key() []byte { return append([]byte(nil), i.it.Key()...) }

func (i *levelDBIterator) Value() []byte { return append([]byte(nil), i.it.Value()...) }

func (i *levelDBIterator) Next() bool {
	i.valid = i.it.Next()
	return i.valid
}

func (i *levelDBIterator) Prev() bool {
	i.valid = i.it.Prev()
	return i.valid
}

func (i *levelDBIterator) IsEnd() bool { return !i.valid }

func (i *levelDBIterator) IsBegin() bool { return !i.valid }

func (i *levelDBIterator) Valid() bool { return i.valid }

func (i *levelDBIterator) Error() error { return i.it.Error() }

func (i *levelDBIterator) Release() { i.it.Release() }
