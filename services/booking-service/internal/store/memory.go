package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store used by tests and local development.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]json.RawMessage
}

func NewMemory() *Memory {
	return &Memory{docs: map[string]json.RawMessage{}}
}

func (m *Memory) Get(_ context.Context, path string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if doc, ok := m.docs[path]; ok {
		return append(json.RawMessage(nil), doc...), nil
	}

	children := m.childrenLocked(path)
	if len(children) == 0 {
		return nil, ErrNotFound
	}
	return json.Marshal(children)
}

func (m *Memory) Query(_ context.Context, path, field, value string) (map[string]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := map[string]json.RawMessage{}
	for key, doc := range m.childrenLocked(path) {
		if text, ok := fieldText(doc, field); ok && text == value {
			out[key] = doc
		}
	}
	return out, nil
}

func (m *Memory) Set(_ context.Context, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[path] = raw
	return nil
}

func (m *Memory) Update(_ context.Context, path string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.docs[path]
	if !ok {
		return ErrNotFound
	}
	var doc map[string]any
	if err := json.Unmarshal(existing, &doc); err != nil {
		return err
	}
	for k, v := range fields {
		doc[k] = v
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	m.docs[path] = raw
	return nil
}

func (m *Memory) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, path)
	return nil
}

func (m *Memory) GenerateID(_ context.Context, _ string) (string, error) {
	return uuid.NewString(), nil
}

// Paths returns all stored document paths in sorted order (test helper).
func (m *Memory) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.docs))
	for p := range m.docs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (m *Memory) childrenLocked(path string) map[string]json.RawMessage {
	out := map[string]json.RawMessage{}
	prefix := path + "/"
	for p, doc := range m.docs {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		key := p[len(prefix):]
		if strings.ContainsRune(key, '/') {
			continue
		}
		out[key] = doc
	}
	return out
}
