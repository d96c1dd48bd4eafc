package mapping

import (
	"errors"
	"fmt"
)

// ErrInvalidMapping is returned by Registry.Validate for inconsistent
// entity metadata.
var ErrInvalidMapping = errors.New("lattice: invalid entity mapping")

// Registry holds all known entity mappings.
type Registry struct {
	entities []*Entity
	byName   map[string]*Entity
	byFamily map[string]*Entity
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:   make(map[string]*Entity),
		byFamily: make(map[string]*Entity),
	}
}

// Register adds an entity mapping to the registry.
// This should be called during init() for each mapped type.
func (r *Registry) Register(e *Entity) {
	r.entities = append(r.entities, e)
	r.byName[e.Name] = e
	r.byFamily[e.FamilyName()] = e
}

// ByName returns the entity registered under name, or nil.
func (r *Registry) ByName(name string) *Entity {
	return r.byName[name]
}

// ByFamily returns the entity whose entries live in family, or nil.
func (r *Registry) ByFamily(family string) *Entity {
	return r.byFamily[family]
}

// All returns every registered entity in registration order.
func (r *Registry) All() []*Entity {
	return r.entities
}

// Validate checks every registered mapping for completeness: a non-empty
// identifier name, an instantiation factory, and association targets that
// resolve to registered entities.
func (r *Registry) Validate() error {
	for _, e := range r.entities {
		if e.ID == "" {
			return fmt.Errorf("%w: entity %q has no identifier property", ErrInvalidMapping, e.Name)
		}
		if e.New == nil {
			return fmt.Errorf("%w: entity %q has no instantiation factory", ErrInvalidMapping, e.Name)
		}
		for i := range e.Properties {
			prop := &e.Properties[i]
			if prop.Kind == Simple {
				continue
			}
			if prop.Target == "" {
				return fmt.Errorf("%w: entity %q association %q has no target", ErrInvalidMapping, e.Name, prop.Name)
			}
			if r.byName[prop.Target] == nil {
				return fmt.Errorf("%w: entity %q association %q targets unregistered entity %q",
					ErrInvalidMapping, e.Name, prop.Name, prop.Target)
			}
		}
	}
	return nil
}
