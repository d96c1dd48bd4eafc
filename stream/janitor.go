// Package stream provides DynamoDB Streams handlers that keep lattice's
// secondary index tables consistent with entity tables.
package stream

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/lattice/dynamo"
	"github.com/jacentio/lattice/mapping"
)

// Handler removes the property index and association index records left
// behind when an entity entry is deleted. Attach it to the stream of every
// entity table whose mapping declares indexed properties or one-to-many
// associations.
type Handler struct {
	store    *dynamo.Store
	registry *mapping.Registry
	logger   *slog.Logger
}

// NewHandler creates a new stream handler. The registry must hold the
// mapping for every entity family the stream covers.
func NewHandler(store *dynamo.Store, registry *mapping.Registry, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:    store,
		registry: registry,
		logger:   logger,
	}
}

// HandleRemove processes DynamoDB stream events, deleting index records for
// removed entries. This function is designed to be used as an AWS Lambda
// handler.
func (h *Handler) HandleRemove(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// processRecord processes a single DynamoDB stream record.
func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	if record.EventName != "REMOVE" {
		return nil
	}

	old := record.Change.OldImage
	family := ImageValue(old, "_family")
	owner := ImageValue(old, "id")
	if family == "" || owner == "" {
		return nil
	}

	entity := h.registry.ByFamily(family)
	if entity == nil {
		// Not a mapped table; nothing to clean up.
		return nil
	}

	var indexed, associations int
	for i := range entity.Properties {
		prop := &entity.Properties[i]
		storageKey := prop.StorageKey()

		if prop.Indexed {
			value := ImageValue(old, storageKey)
			if err := h.store.DeletePropertyIndex(ctx, family, storageKey, value, owner); err != nil {
				return err
			}
			indexed++
		}
		if prop.Kind == mapping.OneToMany {
			if err := h.store.DeleteAssociations(ctx, family, storageKey, owner); err != nil {
				return err
			}
			associations++
		}
	}

	h.logger.Info("index cleanup completed",
		"family", family,
		"owner", owner,
		"propertyIndexes", indexed,
		"associations", associations,
	)

	return nil
}

// ImageValue extracts an attribute from a DynamoDB stream image in the
// canonical string form used for index keys. Numbers are re-rendered
// through [dynamo.IndexValue] so the delete keys match what the indexer
// wrote at persist time.
func ImageValue(image map[string]events.DynamoDBAttributeValue, key string) string {
	v, ok := image[key]
	if !ok {
		return ""
	}
	switch v.DataType() {
	case events.DataTypeString:
		return v.String()
	case events.DataTypeNumber:
		return canonicalNumber(v.Number())
	case events.DataTypeBinary:
		return string(v.Binary())
	case events.DataTypeBoolean:
		if v.Boolean() {
			return "true"
		}
		return "false"
	}
	return ""
}

func canonicalNumber(n string) string {
	if i, err := strconv.ParseInt(n, 10, 64); err == nil {
		return dynamo.IndexValue(i)
	}
	if f, err := strconv.ParseFloat(n, 64); err == nil {
		return dynamo.IndexValue(f)
	}
	return n
}
