// Package kv defines the persistent ordered key-value capability used by the
// disk-backed lexicon.
//
// Writes are staged: Put records a mutation that becomes durable, and visible
// to other handles, only after Commit succeeds. Reads observe committed state
// only. Keys iterate in ascending byte order so prefix queries can seek to a
// key and scan forward.
package kv

import (
	"bytes"
	"context"
)

// Store is an ordered key-value store with explicit commits.
type Store interface {
	// Get returns the committed value for key. ok is false if the key is absent.
	Get(ctx context.Context, key []byte) (value []byte, ok bool, err error)

	// Put stages a write. It is not visible to readers until Commit.
	Put(ctx context.Context, key, value []byte) error

	// Commit makes all staged writes durable and visible.
	Commit(ctx context.Context) error

	// Seek visits committed entries with key >= from in ascending order until
	// fn returns false. Slices passed to fn are only valid during the call.
	Seek(ctx context.Context, from []byte, fn func(key, value []byte) bool) error

	Close() error
}

// ScanPrefix visits every committed entry whose key starts with prefix.
func ScanPrefix(ctx context.Context, s Store, prefix []byte, fn func(key, value []byte) bool) error {
	return s.Seek(ctx, prefix, func(key, value []byte) bool {
		if !bytes.HasPrefix(key, prefix) {
			return false
		}
		return fn(key, value)
	})
}
