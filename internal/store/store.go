package store

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get when no value exists at the path.
var ErrNotFound = errors.New("store: not found")

// Event is one child appended under a watched path.
type Event struct {
	Key  string
	Data json.RawMessage
}

// Database is the slice of the realtime document store the application
// uses: path-addressed JSON values plus a child-added subscription. Paths
// are slash-separated, e.g. "products/<key>".
type Database interface {
	// Get unmarshals the value at path into v, or returns ErrNotFound.
	Get(ctx context.Context, path string, v interface{}) error
	// Set writes v at path, replacing any existing value.
	Set(ctx context.Context, path string, v interface{}) error
	// Update merges fields into the object at path; unnamed fields are
	// left untouched, nil values delete the field.
	Update(ctx context.Context, path string, fields map[string]interface{}) error
	// Push stores v under a new generated key and returns the key.
	Push(ctx context.Context, path string, v interface{}) (string, error)
	// Delete removes the value at path.
	Delete(ctx context.Context, path string) error
	// Watch emits one Event per child under path: existing children first,
	// in key order, then children appended while the subscription is live.
	// The channel is closed when ctx ends or the stream breaks.
	Watch(ctx context.Context, path string) (<-chan Event, error)
}
