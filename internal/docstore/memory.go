package docstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store used in tests and local development.
// Documents are copied on every read and write so callers never share state
// with the store.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]Document
	hub         *hub
}

// NewMemoryStore creates an empty in-memory document store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
		hub:         newHub(),
	}
}

func copyDoc(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}

	return copyDoc(doc), nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, doc Document) error {
	s.mu.Lock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Document)
	}
	stored := copyDoc(doc)
	s.collections[collection][id] = stored
	s.mu.Unlock()

	s.hub.notify(collection, id, copyDoc(stored))
	return nil
}

func (s *MemoryStore) Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error) {
	s.mu.Lock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Document)
	}

	doc, ok := s.collections[collection][id]
	if !ok {
		doc = Document{}
		s.collections[collection][id] = doc
	}

	value := doc.Int64(field) + delta
	doc[field] = value
	snapshot := copyDoc(doc)
	s.mu.Unlock()

	s.hub.notify(collection, id, snapshot)
	return value, nil
}

func (s *MemoryStore) Watch(collection, id string) (<-chan Document, func()) {
	return s.hub.watch(collection, id)
}

func (s *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.collections[collection]))
	for id := range s.collections[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var docs []Document
	for _, id := range ids {
		doc := copyDoc(s.collections[collection][id])
		doc["id"] = id
		docs = append(docs, doc)
	}

	return docs, nil
}
