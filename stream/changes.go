// Package stream turns DynamoDB Streams events on the slots table into
// per-record change notifications.
//
// The table must have a stream with view type NEW_AND_OLD_IMAGES. Every
// stream record carries a whole collection before and after a write; the
// handler diffs the two and reports what happened to each record.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/slotstore/kv"
	"github.com/jacentio/slotstore/store"
)

// Kind describes what happened to a record.
type Kind string

const (
	KindCreated Kind = "created"
	KindUpdated Kind = "updated"
	KindDeleted Kind = "deleted"
)

// Change is a single record-level change within a type's collection.
type Change struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`

	// Record is the new record, or the last known record for deletes.
	Record store.Record `json:"record"`
}

// Sink receives changes. A returned error fails the batch.
type Sink func(ctx context.Context, change Change) error

// Handler processes DynamoDB stream events for the slots table.
type Handler struct {
	sink   Sink
	logger *slog.Logger
}

// NewHandler creates a new stream handler.
func NewHandler(sink Sink, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		sink:   sink,
		logger: logger,
	}
}

// HandleChanges processes DynamoDB stream events and delivers record changes.
// This function is designed to be used as an AWS Lambda handler.
func (h *Handler) HandleChanges(ctx context.Context, event events.DynamoDBEvent) error {
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
	typ := getStringAttr(record.Change.Keys, kv.AttrKey)
	if typ == "" {
		typ = getStringAttr(record.Change.NewImage, kv.AttrKey)
	}
	if typ == "" {
		typ = getStringAttr(record.Change.OldImage, kv.AttrKey)
	}
	if typ == "" {
		h.logger.Warn("skipping record without slot key", "eventID", record.EventID)
		return nil
	}

	var oldRecords, newRecords map[string]store.Record
	var err error

	switch record.EventName {
	case "INSERT":
		newRecords, err = decodeImage(record.Change.NewImage)
	case "MODIFY":
		oldRecords, err = decodeImage(record.Change.OldImage)
		if err == nil {
			newRecords, err = decodeImage(record.Change.NewImage)
		}
	case "REMOVE":
		oldRecords, err = decodeImage(record.Change.OldImage)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("decode slot %s: %w", typ, err)
	}

	changes := Diff(typ, oldRecords, newRecords)

	h.logger.Info("processing slot change",
		"type", typ,
		"event", record.EventName,
		"changes", len(changes),
	)

	for _, change := range changes {
		if err := h.sink(ctx, change); err != nil {
			return fmt.Errorf("deliver %s %s#%s: %w", change.Kind, change.Type, change.ID, err)
		}
	}
	return nil
}

// Diff compares two versions of a collection and returns the record-level
// changes, ordered by id. Either side may be nil.
func Diff(typ string, before, after map[string]store.Record) []Change {
	var changes []Change
	for id, rec := range after {
		old, existed := before[id]
		switch {
		case !existed:
			changes = append(changes, Change{Type: typ, ID: id, Kind: KindCreated, Record: rec})
		case !reflect.DeepEqual(old, rec):
			changes = append(changes, Change{Type: typ, ID: id, Kind: KindUpdated, Record: rec})
		}
	}
	for id, rec := range before {
		if _, ok := after[id]; !ok {
			changes = append(changes, Change{Type: typ, ID: id, Kind: KindDeleted, Record: rec})
		}
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].ID < changes[j].ID
	})
	return changes
}

// decodeImage extracts and parses the collection held by a slot image.
// A missing image or value decodes to an empty collection.
func decodeImage(image map[string]events.DynamoDBAttributeValue) (map[string]store.Record, error) {
	raw := getStringAttr(image, kv.AttrValue)
	if raw == "" {
		return map[string]store.Record{}, nil
	}
	return store.ParseCollection(raw)
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}

// LogSink returns a Sink that logs every change at info level.
func LogSink(logger *slog.Logger) Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return func(_ context.Context, change Change) error {
		logger.Info("record changed",
			"type", change.Type,
			"id", change.ID,
			"kind", string(change.Kind),
		)
		return nil
	}
}
