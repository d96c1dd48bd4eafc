package dynamo

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/lattice/engine"
	"github.com/jacentio/lattice/internal/shard"
	"github.com/jacentio/lattice/mapping"
)

// PropertyIndexer returns the value indexer for prop.
func (s *Store) PropertyIndexer(family string, prop *mapping.Property) engine.PropertyIndexer[string] {
	return &propertyIndexer{store: s, family: family, property: prop.StorageKey()}
}

// AssociationIndexer returns the association indexer for prop.
func (s *Store) AssociationIndexer(family string, prop *mapping.Property) engine.AssociationIndexer[string] {
	return &associationIndexer{store: s, family: family, property: prop.StorageKey()}
}

type propertyIndexer struct {
	store    *Store
	family   string
	property string
}

// Index writes one index record keyed by the hashed (family, property,
// value) triple, with the owner key as sort key.
func (i *propertyIndexer) Index(ctx context.Context, value any, owner string) error {
	canonical := IndexValue(value)
	pk := shard.PropertyIndexPK(i.family, i.property, canonical)

	_, err := i.store.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(i.store.config.PropertyIndexTable),
		Item: map[string]types.AttributeValue{
			"pk":       &types.AttributeValueMemberS{Value: pk},
			"owner":    &types.AttributeValueMemberS{Value: owner},
			"family":   &types.AttributeValueMemberS{Value: i.family},
			"property": &types.AttributeValueMemberS{Value: i.property},
			"value":    &types.AttributeValueMemberS{Value: canonical},
		},
	})
	return err
}

// OwnersOf queries the property index for the entity keys carrying value.
// Query layers use this to resolve value lookups on indexed properties.
func (s *Store) OwnersOf(ctx context.Context, family, property string, value any) ([]string, error) {
	pk := shard.PropertyIndexPK(family, property, IndexValue(value))

	var owners []string
	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.config.PropertyIndexTable),
		KeyConditionExpression: aws.String("pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			if v, ok := item["owner"].(*types.AttributeValueMemberS); ok {
				owners = append(owners, v.Value)
			}
		}
	}
	return owners, nil
}

// DeletePropertyIndex removes the index record for one (value, owner) pair.
func (s *Store) DeletePropertyIndex(ctx context.Context, family, property, value, owner string) error {
	pk := shard.PropertyIndexPK(family, property, value)

	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.config.PropertyIndexTable),
		Key: map[string]types.AttributeValue{
			"pk":    &types.AttributeValueMemberS{Value: pk},
			"owner": &types.AttributeValueMemberS{Value: owner},
		},
	})
	return err
}

type associationIndexer struct {
	store    *Store
	family   string
	property string
}

// Index writes one record per member, sharded by member hash, with a pos
// ordinal so Query can restore declaration order after fan-out. The owner's
// previous member set is removed first: members absent from the new set
// must not survive, and stale pos ordinals must not interleave with the
// new ordering.
func (i *associationIndexer) Index(ctx context.Context, owner string, members []any) error {
	if err := i.store.DeleteAssociations(ctx, i.family, i.property, owner); err != nil {
		return err
	}

	numShards := i.store.config.NumShards

	var writes []types.WriteRequest
	for pos, member := range members {
		memberKey, err := i.store.NativeKey(i.family, member)
		if err != nil {
			return err
		}
		pk := shard.AssociationPK(i.family, i.property, owner, memberKey, numShards)
		writes = append(writes, types.WriteRequest{
			PutRequest: &types.PutRequest{
				Item: map[string]types.AttributeValue{
					"pk":     &types.AttributeValueMemberS{Value: pk},
					"member": &types.AttributeValueMemberS{Value: memberKey},
					"owner":  &types.AttributeValueMemberS{Value: owner},
					"pos":    &types.AttributeValueMemberN{Value: strconv.Itoa(pos)},
				},
			},
		})
	}

	table := i.store.config.AssociationTable
	for start := 0; start < len(writes); start += maxBatchWrite {
		end := start + maxBatchWrite
		if end > len(writes) {
			end = len(writes)
		}
		if err := i.store.batchWrite(ctx, table, writes[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// Query fans out across the association shards and returns member keys in
// indexed order.
func (i *associationIndexer) Query(ctx context.Context, owner string) ([]any, error) {
	records, err := i.store.queryAssociation(ctx, i.family, i.property, owner)
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(a, b int) bool { return records[a].pos < records[b].pos })

	members := make([]any, 0, len(records))
	for _, r := range records {
		members = append(members, r.member)
	}
	return members, nil
}

// memberRecord is one association table record.
type memberRecord struct {
	member string
	pos    int
	pk     string
}

// queryAssociation collects every member record an owner holds for one
// association, querying all shards concurrently when sharding is enabled.
func (s *Store) queryAssociation(ctx context.Context, family, property, owner string) ([]memberRecord, error) {
	pks := shard.AssociationPKs(family, property, owner, s.config.NumShards)

	// Fast path for single shard (default)
	if len(pks) == 1 {
		return s.queryAssociationShard(ctx, pks[0])
	}

	var mu sync.Mutex
	var all []memberRecord
	var wg sync.WaitGroup
	errs := make(chan error, len(pks))

	for _, pk := range pks {
		wg.Add(1)
		go func(pk string) {
			defer wg.Done()

			records, err := s.queryAssociationShard(ctx, pk)
			if err != nil {
				errs <- fmt.Errorf("shard %s: %w", pk, err)
				return
			}
			mu.Lock()
			all = append(all, records...)
			mu.Unlock()
		}(pk)
	}

	go func() {
		wg.Wait()
		close(errs)
	}()

	for err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return all, nil
}

func (s *Store) queryAssociationShard(ctx context.Context, pk string) ([]memberRecord, error) {
	var records []memberRecord

	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.config.AssociationTable),
		KeyConditionExpression: aws.String("pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			record := memberRecord{pk: pk}
			if v, ok := item["member"].(*types.AttributeValueMemberS); ok {
				record.member = v.Value
			}
			if v, ok := item["pos"].(*types.AttributeValueMemberN); ok {
				record.pos, _ = strconv.Atoi(v.Value)
			}
			records = append(records, record)
		}
	}
	return records, nil
}

// DeleteAssociations removes every member record an owner holds for one
// association, across all shards.
func (s *Store) DeleteAssociations(ctx context.Context, family, property, owner string) error {
	records, err := s.queryAssociation(ctx, family, property, owner)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	writes := make([]types.WriteRequest, 0, len(records))
	for _, r := range records {
		writes = append(writes, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"pk":     &types.AttributeValueMemberS{Value: r.pk},
					"member": &types.AttributeValueMemberS{Value: r.member},
				},
			},
		})
	}

	for start := 0; start < len(writes); start += maxBatchWrite {
		end := start + maxBatchWrite
		if end > len(writes) {
			end = len(writes)
		}
		if err := s.batchWrite(ctx, s.config.AssociationTable, writes[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// IndexValue canonicalizes a property value for index keying. Stream
// handlers use the same formatting when deleting index records. Floats use
// the plain decimal form that numbers take in stored attributes, so an
// integral float keys identically to the stored number string.
func IndexValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return fmt.Sprint(v)
}
