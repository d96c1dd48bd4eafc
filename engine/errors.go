package engine

import "errors"

var (
	// ErrIntegrity is returned when a save-cascaded required association
	// resolves to nil. The save is aborted and no key is returned.
	ErrIntegrity = errors.New("lattice: data integrity violation")

	// ErrNilEntity is returned when persisting a nil object.
	ErrNilEntity = errors.New("lattice: cannot persist nil object")

	// ErrNoAccess is returned when an object does not implement mapping.Access.
	ErrNoAccess = errors.New("lattice: object does not implement mapping.Access")

	// ErrBadKey is returned when an identifier cannot be converted to the
	// backend's native key form.
	ErrBadKey = errors.New("lattice: identifier is not convertible to a native key")
)
