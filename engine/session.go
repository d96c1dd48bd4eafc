package engine

import "context"

// Session is the enclosing unit of work. The persister delegates every
// cross-entity operation to it: cascaded saves hand the associated object
// back to the session, which routes it to that entity's own persister, and
// association loads resolve member keys the same way.
//
// Keys cross the session boundary as any because they identify entities of
// heterogeneous types with potentially different native key forms.
type Session interface {
	// Persist saves one object and returns its key.
	Persist(ctx context.Context, obj any) (any, error)

	// PersistAll saves the objects and returns their keys in input order.
	PersistAll(ctx context.Context, objs []any) ([]any, error)

	// Retrieve loads the named entity stored under key, or nil.
	Retrieve(ctx context.Context, entity string, key any) (any, error)

	// RetrieveAll loads the named entities in key order, with a nil result
	// for every key that resolves to nothing.
	RetrieveAll(ctx context.Context, entity string, keys []any) ([]any, error)
}
