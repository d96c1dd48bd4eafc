package dynamo_test

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/jacentio/lattice/dynamo"
	"github.com/jacentio/lattice/engine"
)

func TestDefaultConfig(t *testing.T) {
	cfg := dynamo.DefaultConfig()

	if cfg.PropertyIndexTable != "lattice_property_index" {
		t.Errorf("expected PropertyIndexTable 'lattice_property_index', got %q", cfg.PropertyIndexTable)
	}
	if cfg.AssociationTable != "lattice_associations" {
		t.Errorf("expected AssociationTable 'lattice_associations', got %q", cfg.AssociationTable)
	}
	if cfg.NumShards != 1 {
		t.Errorf("expected NumShards 1, got %d", cfg.NumShards)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		config   dynamo.Config
		expected int
	}{
		{"zero shards clamps to 1", dynamo.Config{NumShards: 0}, 1},
		{"negative clamps to 1", dynamo.Config{NumShards: -4}, 1},
		{"over max clamps to 256", dynamo.Config{NumShards: 1000}, 256},
		{"in range untouched", dynamo.Config{NumShards: 16}, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := dynamo.New(nil, tt.config)
			if got := s.Config().NumShards; got != tt.expected {
				t.Errorf("expected NumShards %d, got %d", tt.expected, got)
			}
			if s.Config().PropertyIndexTable == "" {
				t.Error("expected default table names filled in")
			}
		})
	}
}

func TestFamilyFromTable(t *testing.T) {
	s := dynamo.New(nil, dynamo.Config{TablePrefix: "prod_"})

	family, ok := s.Family("prod_albums")
	if !ok || family != "albums" {
		t.Errorf("expected family 'albums', got %q (ok=%v)", family, ok)
	}
	if _, ok := s.Family("other_albums"); ok {
		t.Error("expected table without prefix to be rejected")
	}

	unprefixed := dynamo.New(nil, dynamo.DefaultConfig())
	family, ok = unprefixed.Family("albums")
	if !ok || family != "albums" {
		t.Errorf("expected identity mapping without prefix, got %q (ok=%v)", family, ok)
	}
}

func TestNewEntry_CarriesFamily(t *testing.T) {
	s := dynamo.New(nil, dynamo.DefaultConfig())

	entry := s.NewEntry("albums")
	v, ok := entry["_family"].(*types.AttributeValueMemberS)
	if !ok || v.Value != "albums" {
		t.Errorf("expected managed _family attribute 'albums', got %v", entry["_family"])
	}
}

func TestEntryValues_RoundTrip(t *testing.T) {
	s := dynamo.New(nil, dynamo.DefaultConfig())

	tests := []struct {
		name     string
		in       any
		expected any
	}{
		{"string", "hello", "hello"},
		{"int64", int64(42), int64(42)},
		{"float64", 1.5, 1.5},
		{"bool", true, true},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := s.NewEntry("albums")
			s.SetValue(entry, "field", tt.in)
			if got := s.GetValue(entry, "field"); got != tt.expected {
				t.Errorf("expected %#v, got %#v", tt.expected, got)
			}
		})
	}
}

func TestEntryValues_Bytes(t *testing.T) {
	s := dynamo.New(nil, dynamo.DefaultConfig())

	entry := s.NewEntry("albums")
	s.SetValue(entry, "blob", []byte{0x01, 0x02})
	got, ok := s.GetValue(entry, "blob").([]byte)
	if !ok || len(got) != 2 || got[0] != 0x01 {
		t.Errorf("expected byte payload back, got %#v", s.GetValue(entry, "blob"))
	}
}

func TestGetValue_AbsentField(t *testing.T) {
	s := dynamo.New(nil, dynamo.DefaultConfig())

	entry := s.NewEntry("albums")
	if got := s.GetValue(entry, "missing"); got != nil {
		t.Errorf("expected nil for absent field, got %#v", got)
	}
}

func TestNativeKey(t *testing.T) {
	s := dynamo.New(nil, dynamo.DefaultConfig())
	id := uuid.New()

	tests := []struct {
		name     string
		in       any
		expected string
		wantErr  bool
	}{
		{"string", "abc-123", "abc-123", false},
		{"uuid stringer", id, id.String(), false},
		{"int rejected", 42, "", true},
		{"struct rejected", struct{}{}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.NativeKey("albums", tt.in)
			if tt.wantErr {
				if !errors.Is(err, engine.ErrBadKey) {
					t.Errorf("expected ErrBadKey, got %v", err)
				}
				return
			}
			if err != nil || got != tt.expected {
				t.Errorf("expected %q, got %q (err %v)", tt.expected, got, err)
			}
		})
	}
}

func TestIndexValue(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		expected string
	}{
		{"string", "a@x.com", "a@x.com"},
		{"bytes", []byte("raw"), "raw"},
		{"int", 42, "42"},
		{"int64", int64(42), "42"},
		{"float64", 1.5, "1.5"},
		{"integral float64 matches stored number form", float64(1e8), "100000000"},
		{"bool", true, "true"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dynamo.IndexValue(tt.in); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
