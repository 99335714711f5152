// Package store implements the on-disk replay record store.
//
// The Store interface is a read-only view over a directory written by
// another process (the uploader):
// - one JSON document per replay, named <id>.json
// - Get returns raw bytes; decoding is the caller's concern
// - List enumerates ids for index scans
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no record exists for an id.
var ErrNotFound = errors.New("store: record not found")

// Store reads replay records from persistent storage.
type Store interface {
	// Get returns the raw record stored under id.
	Get(ctx context.Context, id string) ([]byte, error)

	// List returns the ids of all stored records, in directory order.
	List(ctx context.Context) ([]string, error)

	// Ping checks that the backing storage is reachable.
	Ping(ctx context.Context) error

	// Dir returns the directory holding the records.
	Dir() string
}
