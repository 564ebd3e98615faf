package inmemdb

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/wordwise/core/docstore"
)

type (
	DB struct {
		mutex  sync.RWMutex
		tables map[string]*table
	}

	// table keeps insertion order, which is the order GetAll and Query return.
	table struct {
		order []string
		docs  map[string]docstore.Fields
	}
)

var _ docstore.Store = (*DB)(nil) // interface compliance check

func New() *DB {
	return &DB{tables: make(map[string]*table)}
}

func Open() (*DB, error) {
	return New(), nil
}

func (db *DB) table(name string) *table {
	t, ok := db.tables[name]
	if !ok {
		t = &table{docs: make(map[string]docstore.Fields)}
		db.tables[name] = t
	}
	return t
}

func (db *DB) Add(ctx context.Context, collection string, doc docstore.Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", docstore.NewStoreError("add", collection, err)
	}
	fields, err := copyFields(doc)
	if err != nil {
		return "", docstore.NewStoreError("add", collection, err)
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	id := uuid.NewString()
	t := db.table(collection)
	t.docs[id] = fields
	t.order = append(t.order, id)
	return id, nil
}

func (db *DB) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Document{}, docstore.NewStoreError("get", collection, err)
	}

	db.mutex.RLock()
	defer db.mutex.RUnlock()

	t, ok := db.tables[collection]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	fields, ok := t.docs[id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return docstore.Document{ID: id, Fields: docstore.Merge(fields, nil)}, nil
}

func (db *DB) GetAll(ctx context.Context, collection string) ([]docstore.Document, error) {
	return db.filter(ctx, "getAll", collection, func(docstore.Fields) bool { return true })
}

func (db *DB) Query(ctx context.Context, collection, field string, value interface{}) ([]docstore.Document, error) {
	return db.filter(ctx, "query", collection, func(doc docstore.Fields) bool {
		return docstore.Matches(doc, field, value)
	})
}

func (db *DB) filter(ctx context.Context, op, collection string, keep func(docstore.Fields) bool) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, docstore.NewStoreError(op, collection, err)
	}

	db.mutex.RLock()
	defer db.mutex.RUnlock()

	docs := make([]docstore.Document, 0)
	t, ok := db.tables[collection]
	if !ok {
		return docs, nil
	}
	for _, id := range t.order {
		if fields := t.docs[id]; keep(fields) {
			docs = append(docs, docstore.Document{ID: id, Fields: docstore.Merge(fields, nil)})
		}
	}
	return docs, nil
}

func (db *DB) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	if err := ctx.Err(); err != nil {
		return docstore.NewStoreError("update", collection, err)
	}
	partial, err := copyFields(fields)
	if err != nil {
		return docstore.NewStoreError("update", collection, err)
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	t, ok := db.tables[collection]
	if !ok {
		return docstore.ErrNotFound
	}
	orig, ok := t.docs[id]
	if !ok {
		return docstore.ErrNotFound
	}
	t.docs[id] = docstore.Merge(orig, partial)
	return nil
}

func (db *DB) Close() error { return nil }

// copyFields detaches the stored document from the caller's map and normalizes its values.
func copyFields(doc docstore.Fields) (docstore.Fields, error) {
	norm, err := docstore.Normalize(doc)
	if err != nil {
		return nil, err
	}
	fields, _ := norm.(map[string]interface{})
	if fields == nil {
		fields = make(map[string]interface{})
	}
	delete(fields, "id")
	return fields, nil
}
