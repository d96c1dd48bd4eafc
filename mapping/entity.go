// Package mapping describes how entity types map onto key/value storage.
package mapping

// Kind classifies a persistent property.
type Kind int

const (
	// Simple is a plain value stored inline on the entity's entry.
	Simple Kind = iota

	// ToOne is a single-valued association stored as an embedded key.
	ToOne

	// OneToMany is a multi-valued association realized through an
	// external association index, never an entry field. Its value crosses
	// the Access boundary as []any.
	OneToMany
)

// Fetch controls when an association is resolved on load.
type Fetch int

const (
	// Eager resolves the association as part of the load.
	Eager Fetch = iota

	// Lazy defers resolution to the caller; the persister leaves the
	// property unset.
	Lazy
)

// Type declares the coercion target for values read back from storage.
type Type int

const (
	// TypeAny applies no coercion.
	TypeAny Type = iota

	// TypeString coerces to string.
	TypeString

	// TypeInt64 coerces to int64.
	TypeInt64

	// TypeFloat64 coerces to float64.
	TypeFloat64

	// TypeBool coerces to bool.
	TypeBool

	// TypeBytes coerces to []byte.
	TypeBytes
)

// Property describes one persistent property of an entity.
type Property struct {
	// Name is the property name on the in-memory object.
	Name string

	// Kind classifies the property.
	Kind Kind

	// Key overrides the storage key. Empty means Name is used.
	Key string

	// Indexed marks the property for secondary indexing.
	Indexed bool

	// CascadeSave causes a save of the owner to also save this association.
	CascadeSave bool

	// ForeignKeyInChild indicates the association is materialized on the
	// child side, so the owner's entry carries no value for it.
	ForeignKeyInChild bool

	// Fetch controls when the association is resolved on load.
	Fetch Fetch

	// Target is the associated entity name (ToOne and OneToMany only).
	Target string

	// Type is the declared coercion target for values read from storage.
	Type Type
}

// StorageKey returns the key under which the property's value is stored.
func (p *Property) StorageKey() string {
	if p.Key != "" {
		return p.Key
	}
	return p.Name
}

// Entity describes a mapped type: its identifier, its persistent properties
// in declaration order, and how to instantiate it. An Entity is immutable
// once constructed and is shared read-only by every persister for the type.
type Entity struct {
	// Name is the fully-qualified entity name (e.g. "catalog.Album").
	Name string

	// Family overrides the storage family. Empty means Name is used.
	Family string

	// ID is the identifier property name.
	ID string

	// Properties are the persistent properties in declaration order.
	// The identifier is not listed here.
	Properties []Property

	// New instantiates an empty instance for loads.
	New func() Access
}

// FamilyName resolves the storage family, falling back to the entity name.
func (e *Entity) FamilyName() string {
	if e.Family != "" {
		return e.Family
	}
	return e.Name
}

// Property returns the named property, or nil if the entity has none.
func (e *Entity) Property(name string) *Property {
	for i := range e.Properties {
		if e.Properties[i].Name == name {
			return &e.Properties[i]
		}
	}
	return nil
}

// Access reads and writes named properties of an in-memory object.
//
// Implementations are explicit per entity type (typically a switch over
// property names) rather than reflective. Get must return nil for a property
// that has no value; in particular an unset identifier must read as nil, as
// identifier presence is what distinguishes an update from an insert.
//
// Collection-valued properties (kind [OneToMany]) cross this boundary as
// []any in both directions: Get must surface the members as []any, and Set
// receives the loaded members as []any. A OneToMany value of any other type
// is treated as unset and skipped on save.
type Access interface {
	// Get returns the property's current value, or nil when unset.
	Get(name string) any

	// Set assigns the property. Unknown names are ignored.
	Set(name string, value any)
}

// FieldMap is a ready-made Access implementation backed by a plain map, for
// dynamic entities whose properties are not known at compile time. Typed
// entities normally implement Access directly.
type FieldMap map[string]any

// Get returns the named field, or nil when absent.
func (m FieldMap) Get(name string) any { return m[name] }

// Set assigns the named field.
func (m FieldMap) Set(name string, value any) { m[name] = value }
