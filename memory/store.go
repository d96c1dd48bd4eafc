// Package memory provides an in-process lattice backend backed by maps.
// It is intended for tests and embedded use; entries do not survive the
// process.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jacentio/lattice/engine"
	"github.com/jacentio/lattice/mapping"
)

// Entry is the native entry form of the memory backend: a plain bag of
// key/value pairs scoped to one family.
type Entry struct {
	family string
	values map[string]any
}

// Store implements engine.EntryStore[*Entry, string] plus both indexer
// capabilities. All state is guarded by a single mutex; a Store is safe for
// concurrent use.
type Store struct {
	mu       sync.RWMutex
	families map[string]map[string]map[string]any
	props    map[string][]string
	assocs   map[string][]any
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		families: make(map[string]map[string]map[string]any),
		props:    make(map[string][]string),
		assocs:   make(map[string][]any),
	}
}

// NewEntry creates an empty entry for the family.
func (s *Store) NewEntry(family string) *Entry {
	return &Entry{family: family, values: make(map[string]any)}
}

// GetValue reads one field from the entry.
func (s *Store) GetValue(entry *Entry, key string) any {
	if entry == nil {
		return nil
	}
	return entry.values[key]
}

// SetValue writes one field on the entry.
func (s *Store) SetValue(entry *Entry, key string, value any) {
	entry.values[key] = value
}

// RetrieveEntry fetches the entry stored under key. The returned entry is a
// copy; mutating it does not affect the store.
func (s *Store) RetrieveEntry(ctx context.Context, entity *mapping.Entity, family string, key string) (*Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, ok := s.families[family][key]
	if !ok {
		return nil, false, nil
	}
	return &Entry{family: family, values: copyValues(values)}, true, nil
}

// StoreEntry inserts the entry under a freshly assigned UUID key.
func (s *Store) StoreEntry(ctx context.Context, entity *mapping.Entity, entry *Entry) (string, error) {
	key := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	family := s.families[entry.family]
	if family == nil {
		family = make(map[string]map[string]any)
		s.families[entry.family] = family
	}
	family[key] = copyValues(entry.values)
	return key, nil
}

// UpdateEntry overwrites the entry stored under key.
func (s *Store) UpdateEntry(ctx context.Context, entity *mapping.Entity, key string, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	family := s.families[entry.family]
	if family == nil {
		family = make(map[string]map[string]any)
		s.families[entry.family] = family
	}
	family[key] = copyValues(entry.values)
	return nil
}

// DeleteEntry removes one entry. Missing keys are ignored.
func (s *Store) DeleteEntry(ctx context.Context, family string, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.families[family], key)
	return nil
}

// DeleteEntries removes many entries. Missing keys are ignored.
func (s *Store) DeleteEntries(ctx context.Context, family string, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.families[family], key)
	}
	return nil
}

// NativeKey converts an object identifier to the backend's string key form.
// Strings pass through; fmt.Stringer values are rendered. Anything else is
// rejected with engine.ErrBadKey.
func (s *Store) NativeKey(family string, id any) (string, error) {
	switch v := id.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return "", fmt.Errorf("%w: %T", engine.ErrBadKey, id)
}

// PropertyIndexer returns the value indexer for prop.
func (s *Store) PropertyIndexer(family string, prop *mapping.Property) engine.PropertyIndexer[string] {
	return &propertyIndexer{store: s, family: family, property: prop.StorageKey()}
}

// AssociationIndexer returns the association indexer for prop.
func (s *Store) AssociationIndexer(family string, prop *mapping.Property) engine.AssociationIndexer[string] {
	return &associationIndexer{store: s, family: family, property: prop.StorageKey()}
}

// Count returns the number of entries stored in family.
func (s *Store) Count(family string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.families[family])
}

// OwnersOf returns the keys indexed under a property value, in indexing
// order.
func (s *Store) OwnersOf(family, property string, value any) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owners := s.props[propKey(family, property, value)]
	out := make([]string, len(owners))
	copy(out, owners)
	return out
}

type propertyIndexer struct {
	store    *Store
	family   string
	property string
}

func (i *propertyIndexer) Index(ctx context.Context, value any, owner string) error {
	s := i.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := propKey(i.family, i.property, value)
	for _, existing := range s.props[key] {
		if existing == owner {
			return nil
		}
	}
	s.props[key] = append(s.props[key], owner)
	return nil
}

type associationIndexer struct {
	store    *Store
	family   string
	property string
}

func (i *associationIndexer) Index(ctx context.Context, owner string, members []any) error {
	s := i.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]any, len(members))
	copy(stored, members)
	s.assocs[assocKey(i.family, i.property, owner)] = stored
	return nil
}

func (i *associationIndexer) Query(ctx context.Context, owner string) ([]any, error) {
	s := i.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.assocs[assocKey(i.family, i.property, owner)]
	out := make([]any, len(stored))
	copy(out, stored)
	return out, nil
}

func propKey(family, property string, value any) string {
	return fmt.Sprintf("%s\x00%s\x00%v", family, property, value)
}

func assocKey(family, property, owner string) string {
	return fmt.Sprintf("%s\x00%s\x00%s", family, property, owner)
}

func copyValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
