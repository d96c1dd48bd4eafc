// Package engine maps entity metadata onto key/value storage backends.
//
// Lattice encodes the object-mapping algorithm once, in [Persister], and
// lets each storage backend supply only primitive entry operations through
// the [EntryStore] contract. The same persister drives a column-family
// store, a document store or an in-process map without change.
//
// # Backend contract
//
// A backend implements [EntryStore] over its native entry form T (row,
// document, attribute map) and native key type K:
//
//	type EntryStore[T any, K comparable] interface {
//	    NewEntry(family string) T
//	    GetValue(entry T, key string) any
//	    SetValue(entry T, key string, value any)
//	    RetrieveEntry(ctx, entity, family, key) (T, bool, error)
//	    StoreEntry(ctx, entity, entry) (K, error)
//	    UpdateEntry(ctx, entity, key, entry) error
//	    DeleteEntry(ctx, family, key) error
//	    DeleteEntries(ctx, family, keys) error
//	    NativeKey(family string, id any) (K, error)
//	}
//
// Backends that maintain secondary indexes additionally implement
// [IndexerSource], exposing a [PropertyIndexer] per indexed property and an
// [AssociationIndexer] per one-to-many association. The persister detects
// the capability by type assertion.
//
// # Sessions
//
// Cross-entity work (cascaded saves, association loads) is delegated to the
// enclosing [Session], which routes each object to its own persister. The
// engine defines only the interface; transaction scope and identity
// management belong to the caller.
//
// # Errors
//
//   - [ErrIntegrity] - a save-cascaded required association is nil
//   - [ErrNilEntity] - persist was handed a nil object
//   - [ErrNoAccess] - an object does not implement mapping.Access
//   - [ErrBadKey] - an identifier cannot be converted to native key form
//
// Absence is not an error: Retrieve returns (nil, nil) when no entry exists
// under a key.
package engine
