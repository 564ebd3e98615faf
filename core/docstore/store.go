// Package docstore defines the schemaless, multi-collection document store the application reads and writes.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Collection names.
const (
	Users       = "users"
	Words       = "words"
	Assignments = "assignments"
)

var (
	ErrNotFound = errors.New("document not found")
)

type (
	// Fields holds the content of a Document. Values are JSON compatible.
	Fields map[string]interface{}

	// Document is a record with a store-assigned identity.
	Document struct {
		ID     string
		Fields Fields
	}

	// Store is implemented by every document store backend.
	// Query and GetAll return documents in the store's own order.
	Store interface {
		Add(ctx context.Context, collection string, doc Fields) (string, error)
		Get(ctx context.Context, collection, id string) (Document, error)
		GetAll(ctx context.Context, collection string) ([]Document, error)
		Query(ctx context.Context, collection, field string, value interface{}) ([]Document, error)
		Update(ctx context.Context, collection, id string, fields Fields) error
		Close() error
	}
)

// StoreError wraps any backend failure.
type StoreError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("docstore %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Cause() error  { return e.Err }
func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError returns nil if err is nil.
func NewStoreError(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*StoreError); ok {
		return err
	}
	return &StoreError{Op: op, Collection: collection, Err: err}
}

// IsStoreError reports whether err (or its cause) comes from the store.
func IsStoreError(err error) bool {
	for err != nil {
		if _, ok := err.(*StoreError); ok {
			return true
		}
		cause, ok := err.(interface{ Cause() error })
		if !ok {
			return false
		}
		err = cause.Cause()
	}
	return false
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Cause(err) == ErrNotFound
}

// Normalize round-trips v through JSON so that values compare the way they are stored
// (numbers become float64, structs become maps...).
func Normalize(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err = json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Matches reports whether doc[field] equals value once both are normalized.
func Matches(doc Fields, field string, value interface{}) bool {
	got, ok := doc[field]
	if !ok {
		return false
	}
	want, err := Normalize(value)
	if err != nil {
		return false
	}
	got, err = Normalize(got)
	if err != nil {
		return false
	}
	return reflect.DeepEqual(got, want)
}

// Merge applies a partial update on top of doc and returns the result.
func Merge(doc, partial Fields) Fields {
	out := make(Fields, len(doc)+len(partial))
	for k, v := range doc {
		out[k] = v
	}
	for k, v := range partial {
		out[k] = v
	}
	return out
}
