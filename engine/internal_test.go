package engine

import (
	"testing"

	"github.com/jacentio/lattice/mapping"
)

// --- Converter Tests ---

func TestCoerce_PassThrough(t *testing.T) {
	c := NewConverter()

	if got := c.Coerce(nil, mapping.TypeInt64); got != nil {
		t.Errorf("expected nil pass-through, got %v", got)
	}
	if got := c.Coerce("anything", mapping.TypeAny); got != "anything" {
		t.Errorf("expected TypeAny pass-through, got %v", got)
	}
}

func TestCoerce_String(t *testing.T) {
	c := NewConverter()

	tests := []struct {
		name     string
		in       any
		expected string
	}{
		{"string", "hello", "hello"},
		{"bytes", []byte("hello"), "hello"},
		{"unconvertible", 42, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Coerce(tt.in, mapping.TypeString); got != tt.expected {
				t.Errorf("expected %q, got %#v", tt.expected, got)
			}
		})
	}
}

func TestCoerce_Int64(t *testing.T) {
	c := NewConverter()

	tests := []struct {
		name     string
		in       any
		expected int64
	}{
		{"int64", int64(42), 42},
		{"int", 42, 42},
		{"int32", int32(42), 42},
		{"float64", float64(42.9), 42},
		{"string", "42", 42},
		{"bytes", []byte("42"), 42},
		{"malformed string", "not a number", 0},
		{"malformed bytes", []byte("xx"), 0},
		{"unconvertible", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Coerce(tt.in, mapping.TypeInt64); got != tt.expected {
				t.Errorf("expected %d, got %#v", tt.expected, got)
			}
		})
	}
}

func TestCoerce_Float64(t *testing.T) {
	c := NewConverter()

	tests := []struct {
		name     string
		in       any
		expected float64
	}{
		{"float64", 1.5, 1.5},
		{"float32", float32(1.5), 1.5},
		{"int64", int64(3), 3},
		{"string", "1.5", 1.5},
		{"bytes", []byte("1.5"), 1.5},
		{"malformed", "xx", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Coerce(tt.in, mapping.TypeFloat64); got != tt.expected {
				t.Errorf("expected %v, got %#v", tt.expected, got)
			}
		})
	}
}

func TestCoerce_Bool(t *testing.T) {
	c := NewConverter()

	tests := []struct {
		name     string
		in       any
		expected bool
	}{
		{"bool", true, true},
		{"string true", "true", true},
		{"string false", "false", false},
		{"bytes", []byte("true"), true},
		{"malformed", "maybe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Coerce(tt.in, mapping.TypeBool); got != tt.expected {
				t.Errorf("expected %v, got %#v", tt.expected, got)
			}
		})
	}
}

func TestCoerce_Bytes(t *testing.T) {
	c := NewConverter()

	if got := c.Coerce("hello", mapping.TypeBytes).([]byte); string(got) != "hello" {
		t.Errorf("expected 'hello', got %q", got)
	}
	if got := c.Coerce(42, mapping.TypeBytes).([]byte); got != nil {
		t.Errorf("expected nil for unconvertible value, got %v", got)
	}
}

func TestRegister_Override(t *testing.T) {
	c := NewConverter()
	c.Register(mapping.TypeString, func(v any) any { return "constant" })

	if got := c.Coerce("anything", mapping.TypeString); got != "constant" {
		t.Errorf("expected overridden rule applied, got %v", got)
	}
}
