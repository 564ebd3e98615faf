package docstore

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// Entity is implemented by the typed documents so that the store identity can be attached to them.
type Entity interface {
	SetID(id string)
}

// Collection gives typed access to one named collection of a Store.
// T is encoded with its JSON tags; the `id` key is never stored in the document body.
type Collection[T any] struct {
	store Store
	name  string
}

func NewCollection[T any](store Store, name string) Collection[T] {
	return Collection[T]{store: store, name: name}
}

func (c Collection[T]) Name() string { return c.name }

// Add stores v and returns the identity the store assigned to it.
func (c Collection[T]) Add(ctx context.Context, v T) (string, error) {
	fields, err := Encode(v)
	if err != nil {
		return "", errors.Wrapf(err, "encoding %s document", c.name)
	}
	return c.store.Add(ctx, c.name, fields)
}

func (c Collection[T]) Get(ctx context.Context, id string) (T, error) {
	doc, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](doc)
}

func (c Collection[T]) All(ctx context.Context) ([]T, error) {
	docs, err := c.store.GetAll(ctx, c.name)
	if err != nil {
		return nil, err
	}
	return DecodeAll[T](docs)
}

// Where returns the documents whose field equals value.
func (c Collection[T]) Where(ctx context.Context, field string, value interface{}) ([]T, error) {
	docs, err := c.store.Query(ctx, c.name, field, value)
	if err != nil {
		return nil, err
	}
	return DecodeAll[T](docs)
}

// Patch partially updates the document with the given identity.
func (c Collection[T]) Patch(ctx context.Context, id string, fields Fields) error {
	return c.store.Update(ctx, c.name, id, fields)
}

// Encode converts v to Fields, dropping its `id` key.
func Encode(v interface{}) (Fields, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := make(Fields)
	if err = json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	delete(fields, "id")
	return fields, nil
}

// Decode converts a Document into T, attaching the identity when T is an Entity.
func Decode[T any](doc Document) (T, error) {
	var out T
	data, err := json.Marshal(doc.Fields)
	if err != nil {
		return out, errors.Wrap(err, "marshalling document")
	}
	if err = json.Unmarshal(data, &out); err != nil {
		return out, errors.Wrap(err, "unmarshalling document")
	}
	if e, ok := any(&out).(Entity); ok {
		e.SetID(doc.ID)
	}
	return out, nil
}

func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := Decode[T](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
