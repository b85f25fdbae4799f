// Package staging provides the write-side mirror of recent index inserts.
//
// The index only needs [Store.Put]. [Badger] persists records in BadgerDB;
// [Memory] keeps them in memory and can be told to fail, for tests.
//
// Records are msgpack encoded and keyed by the big-endian id under the "v/"
// prefix, so badger iterates them in id order.
package staging

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotFound is returned when no record is staged for an id.
var ErrNotFound = errors.New("staging: not found")

// Store receives a copy of every insert.
type Store interface {
	Put(ctx context.Context, id uint64, vec []float32) error
}

// Record is a staged id/vector pair.
type Record struct {
	ID     uint64    `msgpack:"id"`
	Vector []float32 `msgpack:"vector"`
}

var keyPrefix = []byte("v/")

func encodeKey(id uint64) []byte {
	k := make([]byte, len(keyPrefix)+8)
	copy(k, keyPrefix)
	binary.BigEndian.PutUint64(k[len(keyPrefix):], id)
	return k
}

func encodeRecord(id uint64, vec []float32) ([]byte, error) {
	return msgpack.Marshal(&Record{ID: id, Vector: vec})
}

func decodeRecord(data []byte) (Record, error) {
	var r Record
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return Record{}, err
	}
	return r, nil
}
