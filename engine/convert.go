package engine

import (
	"strconv"

	"github.com/jacentio/lattice/mapping"
)

// Converter coerces raw stored values into a property's declared type when
// an entity is loaded. A failed coercion yields the target type's zero
// value rather than an error: malformed stored data does not make a load
// fail.
type Converter struct {
	funcs map[mapping.Type]func(any) any
}

// NewConverter creates a Converter with the default coercion rules for
// strings, integers, floats, booleans and byte sequences.
func NewConverter() *Converter {
	c := &Converter{funcs: make(map[mapping.Type]func(any) any)}
	c.Register(mapping.TypeString, toString)
	c.Register(mapping.TypeInt64, toInt64)
	c.Register(mapping.TypeFloat64, toFloat64)
	c.Register(mapping.TypeBool, toBool)
	c.Register(mapping.TypeBytes, toBytes)
	return c
}

// Register installs or replaces the coercion rule for a declared type.
func (c *Converter) Register(t mapping.Type, fn func(any) any) {
	c.funcs[t] = fn
}

// Coerce converts v to the declared type. TypeAny and nil values pass
// through untouched.
func (c *Converter) Coerce(v any, t mapping.Type) any {
	if v == nil || t == mapping.TypeAny {
		return v
	}
	if fn := c.funcs[t]; fn != nil {
		return fn(v)
	}
	return v
}

func toString(v any) any {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	}
	return ""
}

func toInt64(v any) any {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float64:
		return int64(x)
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return int64(0)
		}
		return n
	case []byte:
		n, err := strconv.ParseInt(string(x), 10, 64)
		if err != nil {
			return int64(0)
		}
		return n
	}
	return int64(0)
}

func toFloat64(v any) any {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int64:
		return float64(x)
	case int:
		return float64(x)
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return float64(0)
		}
		return f
	case []byte:
		f, err := strconv.ParseFloat(string(x), 64)
		if err != nil {
			return float64(0)
		}
		return f
	}
	return float64(0)
}

func toBool(v any) any {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			return false
		}
		return b
	case []byte:
		b, err := strconv.ParseBool(string(x))
		if err != nil {
			return false
		}
		return b
	}
	return false
}

func toBytes(v any) any {
	switch x := v.(type) {
	case []byte:
		return x
	case string:
		return []byte(x)
	}
	return []byte(nil)
}
