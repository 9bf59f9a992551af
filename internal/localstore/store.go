// Package localstore is the client-resident key/value store used as the
// offline fallback and write-ahead cache. It never depends on the network;
// its only failure modes are local I/O problems, which callers must treat
// as hard failures.
package localstore

import "context"

// Store is a key-addressable persistent store with a small number of
// secondary index lists. PutRecord and DeleteRecord apply the primary key
// and its index entry atomically: no caller may observe a record without
// its index entry or vice versa within one call.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error

	// Index returns the ordered id list stored under indexKey. A missing
	// index reads as empty.
	Index(ctx context.Context, indexKey string) ([]string, error)

	// PutRecord stores value under key and ensures id is present in the
	// index list under indexKey. An empty indexKey skips index maintenance.
	PutRecord(ctx context.Context, key string, value []byte, indexKey, id string) error

	// DeleteRecord removes key and drops id from the index list under
	// indexKey. Deleting an absent record is not an error.
	DeleteRecord(ctx context.Context, key string, indexKey, id string) error

	Close() error
}

func appendID(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
