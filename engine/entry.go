package engine

import (
	"context"

	"github.com/jacentio/lattice/mapping"
)

// EntryStore is the contract a storage backend supplies. T is the backend's
// native entry form and K its native key type.
//
// Entries handed out by NewEntry are exclusively owned by a single save
// operation; GetValue and SetValue therefore need no synchronization. The
// remaining operations must be safe for concurrent use if persisters are
// shared across goroutines.
type EntryStore[T any, K comparable] interface {
	// NewEntry creates an empty entry for the family.
	NewEntry(family string) T

	// GetValue reads one field from the entry, or nil when absent.
	GetValue(entry T, key string) any

	// SetValue writes one field on the entry.
	SetValue(entry T, key string, value any)

	// RetrieveEntry fetches the entry stored under key. The boolean reports
	// whether an entry was found; absence is not an error.
	RetrieveEntry(ctx context.Context, entity *mapping.Entity, family string, key K) (T, bool, error)

	// StoreEntry inserts the entry, assigning and returning its native key.
	StoreEntry(ctx context.Context, entity *mapping.Entity, entry T) (K, error)

	// UpdateEntry overwrites the entry stored under key.
	UpdateEntry(ctx context.Context, entity *mapping.Entity, key K, entry T) error

	// DeleteEntry removes one entry.
	DeleteEntry(ctx context.Context, family string, key K) error

	// DeleteEntries removes many entries in one call.
	DeleteEntries(ctx context.Context, family string, keys []K) error

	// NativeKey converts an object identifier into the backend's key form.
	// There is no pass-through default on purpose: a backend whose keys
	// differ structurally from object identifiers must perform the real
	// conversion here, and reject values it cannot convert with ErrBadKey.
	NativeKey(family string, id any) (K, error)
}
