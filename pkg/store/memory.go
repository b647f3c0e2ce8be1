package store

import (
	"context"
	"sync"
)

// MemoryStore is the deterministic in-memory implementation used by unit
// tests. It honors the same transactional contract as the SQLite store:
// a failed TxFunc leaves the store untouched.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string][]byte),
	}
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return getFrom(m.collections, collection, id)
}

func (m *MemoryStore) List(ctx context.Context, collection string) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return listFrom(m.collections, collection), nil
}

func (m *MemoryStore) Count(ctx context.Context, collection string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.collections[collection])), nil
}

func (m *MemoryStore) Put(ctx context.Context, collection, id string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	putInto(m.collections, collection, id, doc)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return deleteFrom(m.collections, collection, id)
}

// memoryTx buffers writes against a snapshot view; ExecTx applies them only
// when fn succeeds.
type memoryTx struct {
	base    map[string]map[string][]byte
	staged  map[string]map[string][]byte
	deleted map[string]map[string]bool
}

func newMemoryTx(base map[string]map[string][]byte) *memoryTx {
	return &memoryTx{
		base:    base,
		staged:  make(map[string]map[string][]byte),
		deleted: make(map[string]map[string]bool),
	}
}

func (t *memoryTx) Get(ctx context.Context, collection, id string) ([]byte, error) {
	if t.deleted[collection][id] {
		return nil, ErrNotFound
	}
	if doc, err := getFrom(t.staged, collection, id); err == nil {
		return doc, nil
	}
	return getFrom(t.base, collection, id)
}

func (t *memoryTx) List(ctx context.Context, collection string) ([][]byte, error) {
	var docs [][]byte
	for id, doc := range t.base[collection] {
		if t.deleted[collection][id] {
			continue
		}
		if _, staged := t.staged[collection][id]; staged {
			continue
		}
		docs = append(docs, doc)
	}
	for _, doc := range t.staged[collection] {
		docs = append(docs, doc)
	}
	return docs, nil
}

func (t *memoryTx) Count(ctx context.Context, collection string) (int64, error) {
	docs, _ := t.List(ctx, collection)
	return int64(len(docs)), nil
}

func (t *memoryTx) Put(ctx context.Context, collection, id string, doc []byte) error {
	if t.deleted[collection] != nil {
		delete(t.deleted[collection], id)
	}
	putInto(t.staged, collection, id, doc)
	return nil
}

func (t *memoryTx) Delete(ctx context.Context, collection, id string) error {
	_, stagedErr := getFrom(t.staged, collection, id)
	_, baseErr := getFrom(t.base, collection, id)
	if stagedErr != nil && (baseErr != nil || t.deleted[collection][id]) {
		return ErrNotFound
	}
	if t.staged[collection] != nil {
		delete(t.staged[collection], id)
	}
	if t.deleted[collection] == nil {
		t.deleted[collection] = make(map[string]bool)
	}
	t.deleted[collection][id] = true
	return nil
}

func (m *MemoryStore) ExecTx(ctx context.Context, fn TxFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := newMemoryTx(m.collections)
	if err := fn(tx); err != nil {
		return err
	}

	for collection, ids := range tx.deleted {
		for id := range ids {
			_ = deleteFrom(m.collections, collection, id)
		}
	}
	for collection, docs := range tx.staged {
		for id, doc := range docs {
			putInto(m.collections, collection, id, doc)
		}
	}
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

func getFrom(cols map[string]map[string][]byte, collection, id string) ([]byte, error) {
	doc, ok := cols[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

func listFrom(cols map[string]map[string][]byte, collection string) [][]byte {
	docs := make([][]byte, 0, len(cols[collection]))
	for _, doc := range cols[collection] {
		docs = append(docs, doc)
	}
	return docs
}

func putInto(cols map[string]map[string][]byte, collection, id string, doc []byte) {
	if cols[collection] == nil {
		cols[collection] = make(map[string][]byte)
	}
	cols[collection][id] = doc
}

func deleteFrom(cols map[string]map[string][]byte, collection, id string) error {
	if _, ok := cols[collection][id]; !ok {
		return ErrNotFound
	}
	delete(cols[collection], id)
	return nil
}
