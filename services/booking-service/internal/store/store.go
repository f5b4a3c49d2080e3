// Package store abstracts the key-path document store the service persists
// into. Documents are JSON values addressed by "collection/key" paths; a read
// of a bare collection path returns its keyed children, mirroring subtree
// reads in hosted realtime databases. Implementations must be safe for
// concurrent use.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("document not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

type Store interface {
	// Get returns the document at path. For a collection path it returns a
	// JSON object keyed by child key. ErrNotFound when nothing exists there.
	Get(ctx context.Context, path string) (json.RawMessage, error)

	// Query returns the children of path whose top-level field equals value,
	// keyed by child key. Non-string field values match their JSON text
	// rendering. An empty result is not an error.
	Query(ctx context.Context, path, field, value string) (map[string]json.RawMessage, error)

	// Set writes the document at path, replacing any existing value.
	Set(ctx context.Context, path string, value any) error

	// Update shallow-merges fields into the document at path.
	// ErrNotFound when no document exists there.
	Update(ctx context.Context, path string, fields map[string]any) error

	// Delete removes the document at path. Deleting an absent document is a no-op.
	Delete(ctx context.Context, path string) error

	// GenerateID returns a fresh unique child key for parentPath.
	GenerateID(ctx context.Context, parentPath string) (string, error)
}

// Decode unmarshals a raw document into out, mapping empty input to ErrNotFound.
func Decode(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return ErrNotFound
	}
	return json.Unmarshal(raw, out)
}

func parentOf(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return ""
	}
	return path[:i]
}

// fieldText renders a document's top-level field the way equality queries
// compare it: strings unquoted, everything else as its JSON text.
func fieldText(doc json.RawMessage, field string) (string, bool) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(doc, &m); err != nil {
		return "", false
	}
	raw, ok := m[field]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return string(raw), true
}
