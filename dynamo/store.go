// Package dynamo implements the lattice entry primitives on DynamoDB.
//
// Each entity family maps to one table keyed by a string "id" attribute.
// Secondary indexes live in two side tables: a property index keyed by the
// hashed (family, property, value) triple, and an association table holding
// one record per member, sharded by member hash for write throughput.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/jacentio/lattice/engine"
	"github.com/jacentio/lattice/mapping"
)

// maxBatchWrite is the DynamoDB BatchWriteItem item limit.
const maxBatchWrite = 25

// familyAttr is the managed attribute recording which family an entry
// belongs to. Stream handlers use it to recover entity metadata without
// parsing table ARNs.
const familyAttr = "_family"

// Entry is the native entry form of the DynamoDB backend.
type Entry map[string]types.AttributeValue

// Store implements engine.EntryStore[Entry, string] backed by DynamoDB,
// with property and association indexes kept in two side tables.
type Store struct {
	client *dynamodb.Client
	config Config
}

// New creates a new Store instance.
func New(client *dynamodb.Client, config Config) *Store {
	config.validate()
	return &Store{
		client: client,
		config: config,
	}
}

// Config returns the store's validated configuration.
func (s *Store) Config() Config {
	return s.config
}

// Family recovers the family name from a table name, inverting the
// configured prefix. It returns false when the table does not carry the
// prefix.
func (s *Store) Family(table string) (string, bool) {
	p := s.config.TablePrefix
	if len(table) < len(p) || table[:len(p)] != p {
		return "", false
	}
	return table[len(p):], true
}

func (s *Store) tableFor(family string) string {
	return s.config.TablePrefix + family
}

// NewEntry creates an empty entry for the family.
func (s *Store) NewEntry(family string) Entry {
	return Entry{familyAttr: &types.AttributeValueMemberS{Value: family}}
}

// GetValue reads one field from the entry, converting the attribute to a Go
// native value. Numbers come back as int64 when integral, float64 otherwise.
func (s *Store) GetValue(entry Entry, key string) any {
	return fromAttribute(entry[key])
}

// SetValue writes one field on the entry. Values that cannot be marshalled
// are stored as NULL.
func (s *Store) SetValue(entry Entry, key string, value any) {
	av, err := attributevalue.Marshal(value)
	if err != nil {
		entry[key] = &types.AttributeValueMemberNULL{Value: true}
		return
	}
	entry[key] = av
}

// RetrieveEntry fetches the entry stored under key.
func (s *Store) RetrieveEntry(ctx context.Context, entity *mapping.Entity, family string, key string) (Entry, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableFor(family)),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, false, err
	}
	if out.Item == nil {
		return nil, false, nil
	}
	return Entry(out.Item), true, nil
}

// StoreEntry inserts the entry under a freshly assigned UUID key. The put
// is conditioned on the key not existing; a UUID collision surfaces as an
// error rather than a silent overwrite.
func (s *Store) StoreEntry(ctx context.Context, entity *mapping.Entity, entry Entry) (string, error) {
	key := uuid.NewString()
	entry["id"] = &types.AttributeValueMemberS{Value: key}

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableFor(entity.FamilyName())),
		Item:                entry,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return "", fmt.Errorf("dynamo: key %s already exists in %s: %w", key, entity.FamilyName(), err)
		}
		return "", err
	}
	return key, nil
}

// UpdateEntry overwrites the entry stored under key.
func (s *Store) UpdateEntry(ctx context.Context, entity *mapping.Entity, key string, entry Entry) error {
	entry["id"] = &types.AttributeValueMemberS{Value: key}

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableFor(entity.FamilyName())),
		Item:      entry,
	})
	return err
}

// DeleteEntry removes one entry.
func (s *Store) DeleteEntry(ctx context.Context, family string, key string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableFor(family)),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: key},
		},
	})
	return err
}

// DeleteEntries removes many entries via BatchWriteItem, chunked to the
// DynamoDB batch limit.
func (s *Store) DeleteEntries(ctx context.Context, family string, keys []string) error {
	table := s.tableFor(family)

	for start := 0; start < len(keys); start += maxBatchWrite {
		end := start + maxBatchWrite
		if end > len(keys) {
			end = len(keys)
		}

		writes := make([]types.WriteRequest, 0, end-start)
		for _, key := range keys[start:end] {
			writes = append(writes, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{
						"id": &types.AttributeValueMemberS{Value: key},
					},
				},
			})
		}
		if err := s.batchWrite(ctx, table, writes); err != nil {
			return err
		}
	}
	return nil
}

// NativeKey converts an object identifier to the backend's string key form.
// Strings pass through; fmt.Stringer values (uuid.UUID and friends) are
// rendered. Anything else is rejected with engine.ErrBadKey.
func (s *Store) NativeKey(family string, id any) (string, error) {
	switch v := id.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return "", fmt.Errorf("%w: %T", engine.ErrBadKey, id)
}

// batchWrite issues one BatchWriteItem call, retrying unprocessed items
// until the batch drains.
func (s *Store) batchWrite(ctx context.Context, table string, writes []types.WriteRequest) error {
	input := &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{table: writes},
	}
	for len(input.RequestItems) > 0 {
		out, err := s.client.BatchWriteItem(ctx, input)
		if err != nil {
			return err
		}
		if len(out.UnprocessedItems) == 0 {
			break
		}
		input.RequestItems = out.UnprocessedItems
	}
	return nil
}

// fromAttribute converts a DynamoDB attribute into a Go native value.
func fromAttribute(av types.AttributeValue) any {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		if n, err := strconv.ParseInt(v.Value, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(v.Value, 64); err == nil {
			return f
		}
		return nil
	case *types.AttributeValueMemberB:
		return v.Value
	case *types.AttributeValueMemberBOOL:
		return v.Value
	case *types.AttributeValueMemberNULL:
		return nil
	case *types.AttributeValueMemberL:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, fromAttribute(item))
		}
		return out
	}
	return nil
}
