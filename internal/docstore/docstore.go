package docstore

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by Get when no document exists for the given id.
var ErrNotFound = errors.New("document not found")

// Document is a schema-less document body
type Document map[string]any

// Store is a keyed document store. Set is a full replace: any fields not
// present in the written document are lost. Increment is an atomic numeric
// add on a single field; a missing document or field reads as 0. Watch
// delivers the latest document state after each write, coalescing
// intermediate states if the consumer is slow.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Set(ctx context.Context, collection, id string, doc Document) error
	Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error)
	Watch(collection, id string) (<-chan Document, func())
	List(ctx context.Context, collection string) ([]Document, error)
}

// Decode unmarshals the document into v through JSON
func (d Document) Decode(v any) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Encode converts v into a Document through JSON
func Encode(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// Int64 reads a numeric field, tolerating the types JSON decoding and the
// in-memory store can produce. Missing or non-numeric fields read as 0.
func (d Document) Int64(field string) int64 {
	switch v := d[field].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	default:
		return 0
	}
}
