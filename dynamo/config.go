package dynamo

// Config holds configuration for the Store.
type Config struct {
	// TablePrefix is prepended to every family to form the entity table
	// name. Default: "" (family names are table names).
	TablePrefix string

	// PropertyIndexTable is the name of the property index table.
	// Default: "lattice_property_index"
	PropertyIndexTable string

	// AssociationTable is the name of the association index table.
	// Default: "lattice_associations"
	AssociationTable string

	// NumShards is the number of shards for the association table.
	// Higher values increase write throughput per owner but require more
	// parallel queries on load.
	// Default: 1 (no sharding, single query)
	// Max: 256
	NumShards int
}

// DefaultConfig returns sensible defaults for small datasets.
func DefaultConfig() Config {
	return Config{
		PropertyIndexTable: "lattice_property_index",
		AssociationTable:   "lattice_associations",
		NumShards:          1,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.PropertyIndexTable == "" {
		c.PropertyIndexTable = "lattice_property_index"
	}
	if c.AssociationTable == "" {
		c.AssociationTable = "lattice_associations"
	}
	if c.NumShards < 1 {
		c.NumShards = 1
	}
	if c.NumShards > 256 {
		c.NumShards = 256
	}
}
