package engine

import (
	"context"

	"github.com/jacentio/lattice/mapping"
)

// PropertyIndexer maintains a secondary lookup from a property value to the
// keys of the entities carrying it.
type PropertyIndexer[K comparable] interface {
	// Index records that owner currently carries value.
	Index(ctx context.Context, value any, owner K) error
}

// AssociationIndexer maintains the owner-side index of a one-to-many
// association, mapping an owner key to the keys of its members.
//
// Member keys travel as []any because they are session-level identifiers of
// a different entity type; the backend converts them to its native form as
// needed.
type AssociationIndexer[K comparable] interface {
	// Index records owner's full member set, replacing any previous set.
	Index(ctx context.Context, owner K, members []any) error

	// Query returns owner's member keys in indexed order.
	Query(ctx context.Context, owner K) ([]any, error)
}

// IndexerSource is implemented by stores that maintain secondary indexes.
// Returning a nil indexer for a property means the backend does not index
// it and the persister skips the indexing step.
type IndexerSource[K comparable] interface {
	// PropertyIndexer returns the value indexer for an indexed property.
	PropertyIndexer(family string, prop *mapping.Property) PropertyIndexer[K]

	// AssociationIndexer returns the indexer for a one-to-many association.
	AssociationIndexer(family string, prop *mapping.Property) AssociationIndexer[K]
}
