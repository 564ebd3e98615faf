// Package boltdb stores documents in a bbolt file, one bucket per collection.
// Keys are time-ordered UUIDs so that a bucket cursor walks documents in creation order.
package boltdb

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/trezcool/wordwise/core/docstore"
)

type DB struct {
	db *bbolt.DB
}

var _ docstore.Store = (*DB)(nil) // interface compliance check

// Open opens (or creates) the database file and its collection buckets.
func Open(path string, collections ...string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "creating database directory")
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "opening bolt database")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range collections {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating buckets")
	}
	return &DB{db: db}, nil
}

func (s *DB) Close() error {
	return s.db.Close()
}

func (s *DB) Add(ctx context.Context, collection string, doc docstore.Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", docstore.NewStoreError("add", collection, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", docstore.NewStoreError("add", collection, err)
	}
	body := docstore.Merge(doc, nil)
	delete(body, "id")
	data, err := json.Marshal(body)
	if err != nil {
		return "", docstore.NewStoreError("add", collection, err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return err
		}
		return b.Put([]byte(id.String()), data)
	})
	if err != nil {
		return "", docstore.NewStoreError("add", collection, err)
	}
	return id.String(), nil
}

func (s *DB) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Document{}, docstore.NewStoreError("get", collection, err)
	}

	var doc docstore.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return docstore.ErrNotFound
		}
		v := b.Get([]byte(id))
		if v == nil {
			return docstore.ErrNotFound
		}
		fields, err := decode(v)
		if err != nil {
			return err
		}
		doc = docstore.Document{ID: id, Fields: fields}
		return nil
	})
	if err == docstore.ErrNotFound {
		return docstore.Document{}, err
	}
	return doc, docstore.NewStoreError("get", collection, err)
}

func (s *DB) GetAll(ctx context.Context, collection string) ([]docstore.Document, error) {
	return s.scan(ctx, "getAll", collection, func(docstore.Fields) bool { return true })
}

func (s *DB) Query(ctx context.Context, collection, field string, value interface{}) ([]docstore.Document, error) {
	return s.scan(ctx, "query", collection, func(doc docstore.Fields) bool {
		return docstore.Matches(doc, field, value)
	})
}

func (s *DB) scan(ctx context.Context, op, collection string, keep func(docstore.Fields) bool) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, docstore.NewStoreError(op, collection, err)
	}

	docs := make([]docstore.Document, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			fields, err := decode(v)
			if err != nil {
				return errors.Wrapf(err, "decoding %s", k)
			}
			if keep(fields) {
				docs = append(docs, docstore.Document{ID: string(k), Fields: fields})
			}
			return nil
		})
	})
	if err != nil {
		return nil, docstore.NewStoreError(op, collection, err)
	}
	return docs, nil
}

func (s *DB) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	if err := ctx.Err(); err != nil {
		return docstore.NewStoreError("update", collection, err)
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return docstore.ErrNotFound
		}
		v := b.Get([]byte(id))
		if v == nil {
			return docstore.ErrNotFound
		}
		orig, err := decode(v)
		if err != nil {
			return err
		}
		merged := docstore.Merge(orig, fields)
		delete(merged, "id")
		data, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), data)
	})
	if err == docstore.ErrNotFound {
		return err
	}
	return docstore.NewStoreError("update", collection, err)
}

func decode(v []byte) (docstore.Fields, error) {
	fields := make(docstore.Fields)
	if err := json.Unmarshal(v, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
