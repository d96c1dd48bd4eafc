// Package shard provides partition key generation for lattice's secondary
// index tables.
package shard

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/fnv"
)

// PropertyIndexPK computes a hash-distributed partition key for a property
// index record. Hashing the full (family, property, value) triple spreads
// the index across partitions, eliminating hot partition risk for skewed
// values.
func PropertyIndexPK(family, property, value string) string {
	data := fmt.Sprintf("%s#%s#%s", family, property, value)
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:16]) // 128-bit hash as hex
}

// AssociationPK computes the sharded partition key for one association
// member record. With numShards=1, all of an owner's members go to shard
// "00". With numShards>1, members are distributed across shards based on
// the member key hash.
func AssociationPK(family, property, owner, member string, numShards int) string {
	base := fmt.Sprintf("%s#%s#%s", family, property, owner)
	if numShards <= 1 {
		return base + "#00"
	}
	h := fnv.New32a()
	h.Write([]byte(member))
	return fmt.Sprintf("%s#%02x", base, h.Sum32()%uint32(numShards))
}

// AssociationPKs enumerates every shard partition key for an owner's
// association, for fan-out queries.
func AssociationPKs(family, property, owner string, numShards int) []string {
	if numShards < 1 {
		numShards = 1
	}
	base := fmt.Sprintf("%s#%s#%s", family, property, owner)
	pks := make([]string, numShards)
	for i := 0; i < numShards; i++ {
		pks[i] = fmt.Sprintf("%s#%02x", base, i)
	}
	return pks
}
