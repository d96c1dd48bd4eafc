package engine

import (
	"context"
	"fmt"

	"github.com/jacentio/lattice/mapping"
)

// Persister drives save, load and delete of one mapped entity type against
// a backend's entry primitives.
//
// A Persister holds only immutable state: the entity metadata and the
// family resolved at construction. Concurrent calls against independent
// objects are safe whenever the backend's primitives and indexers are.
type Persister[T any, K comparable] struct {
	entity  *mapping.Entity
	family  string
	store   EntryStore[T, K]
	session Session
	conv    *Converter
	indexes IndexerSource[K]
}

// New creates a Persister for entity backed by store. Cross-entity
// association work is delegated to sess. If the store implements
// IndexerSource, indexed properties and one-to-many associations are kept
// consistent through it.
func New[T any, K comparable](entity *mapping.Entity, store EntryStore[T, K], sess Session) *Persister[T, K] {
	p := &Persister[T, K]{
		entity:  entity,
		family:  entity.FamilyName(),
		store:   store,
		session: sess,
		conv:    NewConverter(),
	}
	if src, ok := store.(IndexerSource[K]); ok {
		p.indexes = src
	}
	return p
}

// Entity returns the metadata this persister serves.
func (p *Persister[T, K]) Entity() *mapping.Entity { return p.entity }

// Family returns the resolved storage family.
func (p *Persister[T, K]) Family() string { return p.family }

// SetConverter replaces the default coercion rules applied on load.
func (p *Persister[T, K]) SetConverter(c *Converter) { p.conv = c }

// pendingIndex remembers an indexed property value until the owner's key is
// known; index records always carry the final key.
type pendingIndex struct {
	prop  *mapping.Property
	value any
}

// Persist saves obj and returns its native key. A missing identifier means
// insert: the backend assigns the key, which is written back onto the
// object's identifier property. A present identifier means update at that
// key.
//
// Persist is not atomic across property writes. If a cascaded association
// fails partway through, fields written earlier stay written on the
// in-memory entry, though nothing has been committed to the backend unless
// the store or update call itself already ran. Atomicity must come from an
// enclosing transaction boundary.
func (p *Persister[T, K]) Persist(ctx context.Context, obj any) (K, error) {
	var zero K
	if obj == nil {
		return zero, ErrNilEntity
	}
	access, ok := obj.(mapping.Access)
	if !ok {
		return zero, fmt.Errorf("%w: %T", ErrNoAccess, obj)
	}

	entry := p.store.NewEntry(p.family)

	var toIndex []pendingIndex
	var deferred []*mapping.Property

	for i := range p.entity.Properties {
		prop := &p.entity.Properties[i]
		storageKey := prop.StorageKey()

		switch prop.Kind {
		case mapping.Simple:
			value := access.Get(prop.Name)
			p.store.SetValue(entry, storageKey, value)
			if prop.Indexed {
				toIndex = append(toIndex, pendingIndex{prop, value})
			}

		case mapping.OneToMany:
			// Realized through the association index, not an entry field.
			deferred = append(deferred, prop)

		case mapping.ToOne:
			if !prop.CascadeSave || prop.ForeignKeyInChild {
				continue
			}
			associated := access.Get(prop.Name)
			if associated == nil {
				return zero, fmt.Errorf("%w: entity %q: required association %q is nil",
					ErrIntegrity, p.entity.Name, prop.Name)
			}
			id, err := p.session.Persist(ctx, associated)
			if err != nil {
				return zero, err
			}
			p.store.SetValue(entry, storageKey, id)
			if prop.Indexed {
				toIndex = append(toIndex, pendingIndex{prop, id})
			}
		}
	}

	var key K
	if id := access.Get(p.entity.ID); id == nil {
		k, err := p.store.StoreEntry(ctx, p.entity, entry)
		if err != nil {
			return zero, err
		}
		access.Set(p.entity.ID, k)
		key = k
	} else {
		k, err := p.store.NativeKey(p.family, id)
		if err != nil {
			return zero, err
		}
		if err := p.store.UpdateEntry(ctx, p.entity, k, entry); err != nil {
			return zero, err
		}
		key = k
	}

	for _, prop := range deferred {
		if !prop.CascadeSave {
			continue
		}
		members, ok := access.Get(prop.Name).([]any)
		if !ok {
			continue
		}
		memberKeys, err := p.session.PersistAll(ctx, members)
		if err != nil {
			return zero, err
		}
		if idx := p.associationIndexer(prop); idx != nil {
			if err := idx.Index(ctx, key, memberKeys); err != nil {
				return zero, err
			}
		}
	}

	// Index records are written only now that the owner's key is final.
	for _, pi := range toIndex {
		idx := p.propertyIndexer(pi.prop)
		if idx == nil {
			continue
		}
		if err := idx.Index(ctx, pi.value, key); err != nil {
			return zero, err
		}
	}

	return key, nil
}

// PersistAll saves each object in turn and returns the keys in input order.
// This is the unoptimized fallback; a backend with true bulk writes can
// front it with its own batching layer.
func (p *Persister[T, K]) PersistAll(ctx context.Context, objs []any) ([]K, error) {
	keys := make([]K, 0, len(objs))
	for _, obj := range objs {
		key, err := p.Persist(ctx, obj)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Retrieve loads the entity stored under key into a freshly instantiated
// object. It returns (nil, nil) when no entry exists: absence is an
// explicit result, not an error.
func (p *Persister[T, K]) Retrieve(ctx context.Context, key K) (any, error) {
	entry, found, err := p.store.RetrieveEntry(ctx, p.entity, p.family, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	access := p.entity.New()
	access.Set(p.entity.ID, key)

	for i := range p.entity.Properties {
		prop := &p.entity.Properties[i]
		storageKey := prop.StorageKey()

		switch prop.Kind {
		case mapping.Simple:
			raw := p.store.GetValue(entry, storageKey)
			access.Set(prop.Name, p.conv.Coerce(raw, prop.Type))

		case mapping.ToOne:
			raw := p.store.GetValue(entry, storageKey)
			if raw == nil {
				continue
			}
			associated, err := p.session.Retrieve(ctx, prop.Target, raw)
			if err != nil {
				return nil, err
			}
			access.Set(prop.Name, associated)

		case mapping.OneToMany:
			if prop.Fetch == mapping.Lazy {
				// Deferred loading belongs to the caller, not this layer.
				continue
			}
			idx := p.associationIndexer(prop)
			if idx == nil {
				continue
			}
			memberKeys, err := idx.Query(ctx, key)
			if err != nil {
				return nil, err
			}
			members, err := p.session.RetrieveAll(ctx, prop.Target, memberKeys)
			if err != nil {
				return nil, err
			}
			access.Set(prop.Name, members)
		}
	}

	return access, nil
}

// RetrieveAll loads each key in turn. Results keep input order and contain
// a nil for every key with no entry; nothing is reordered or dropped.
func (p *Persister[T, K]) RetrieveAll(ctx context.Context, keys []K) ([]any, error) {
	results := make([]any, 0, len(keys))
	for _, key := range keys {
		obj, err := p.Retrieve(ctx, key)
		if err != nil {
			return nil, err
		}
		results = append(results, obj)
	}
	return results, nil
}

// Delete removes obj's entry. Objects without an identifier were never
// persisted and are skipped, so a second delete of the same object is a
// no-op.
func (p *Persister[T, K]) Delete(ctx context.Context, obj any) error {
	key, ok, err := p.objectKey(obj)
	if err != nil || !ok {
		return err
	}
	return p.store.DeleteEntry(ctx, p.family, key)
}

// DeleteAll removes the entries of every object that has an identifier in
// one backend call.
func (p *Persister[T, K]) DeleteAll(ctx context.Context, objs []any) error {
	var keys []K
	for _, obj := range objs {
		key, ok, err := p.objectKey(obj)
		if err != nil {
			return err
		}
		if ok {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return p.store.DeleteEntries(ctx, p.family, keys)
}

// objectKey reads the identifier off obj and converts it to native form.
// ok is false for nil objects and objects that carry no identifier.
func (p *Persister[T, K]) objectKey(obj any) (K, bool, error) {
	var zero K
	if obj == nil {
		return zero, false, nil
	}
	access, ok := obj.(mapping.Access)
	if !ok {
		return zero, false, fmt.Errorf("%w: %T", ErrNoAccess, obj)
	}
	id := access.Get(p.entity.ID)
	if id == nil {
		return zero, false, nil
	}
	key, err := p.store.NativeKey(p.family, id)
	if err != nil {
		return zero, false, err
	}
	return key, true, nil
}

func (p *Persister[T, K]) propertyIndexer(prop *mapping.Property) PropertyIndexer[K] {
	if p.indexes == nil {
		return nil
	}
	return p.indexes.PropertyIndexer(p.family, prop)
}

func (p *Persister[T, K]) associationIndexer(prop *mapping.Property) AssociationIndexer[K] {
	if p.indexes == nil {
		return nil
	}
	return p.indexes.AssociationIndexer(p.family, prop)
}
