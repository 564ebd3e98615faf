// Package mongodb stores documents in MongoDB, one mongo collection per document collection.
// Identities are ObjectIDs, which sort in creation order.
package mongodb

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/wordwise/core"
	"github.com/trezcool/wordwise/core/docstore"
)

type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ docstore.Store = (*DB)(nil) // interface compliance check

var byCreation = bson.D{{Key: "_id", Value: 1}}

// URL builds the mongodb connection string from the database configuration.
func URL(conf core.DatabaseConfig) string {
	q := make(url.Values)
	if !conf.DisableTLS {
		q.Set("tls", "true")
	}

	u := url.URL{
		Scheme:   "mongodb",
		Host:     conf.Host + ":" + strconv.Itoa(conf.Port),
		Path:     "/",
		RawQuery: q.Encode(),
	}
	if conf.User != "" {
		u.User = url.UserPassword(conf.User, conf.Password)
	}
	return u.String()
}

// Open connects to the server and checks that it answers.
func Open(conf core.DatabaseConfig) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(URL(conf)))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongo")
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "mongo ping")
	}
	return &DB{client: client, db: client.Database(conf.Name)}, nil
}

func (s *DB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *DB) Add(ctx context.Context, collection string, doc docstore.Fields) (string, error) {
	body, err := toBSON(doc)
	if err != nil {
		return "", docstore.NewStoreError("add", collection, err)
	}
	oid := primitive.NewObjectID()
	body["_id"] = oid

	if _, err = s.db.Collection(collection).InsertOne(ctx, body); err != nil {
		return "", docstore.NewStoreError("add", collection, err)
	}
	return oid.Hex(), nil
}

func (s *DB) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return docstore.Document{}, docstore.ErrNotFound
	}

	var raw bson.M
	err = s.db.Collection(collection).FindOne(ctx, bson.M{"_id": oid}).Decode(&raw)
	if err == mongo.ErrNoDocuments {
		return docstore.Document{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Document{}, docstore.NewStoreError("get", collection, err)
	}
	doc, err := document(raw)
	return doc, docstore.NewStoreError("get", collection, err)
}

func (s *DB) GetAll(ctx context.Context, collection string) ([]docstore.Document, error) {
	return s.find(ctx, "getAll", collection, bson.M{})
}

func (s *DB) Query(ctx context.Context, collection, field string, value interface{}) ([]docstore.Document, error) {
	want, err := docstore.Normalize(value)
	if err != nil {
		return nil, docstore.NewStoreError("query", collection, err)
	}
	return s.find(ctx, "query", collection, bson.M{field: want})
}

func (s *DB) find(ctx context.Context, op, collection string, filter bson.M) ([]docstore.Document, error) {
	cur, err := s.db.Collection(collection).Find(ctx, filter, options.Find().SetSort(byCreation))
	if err != nil {
		return nil, docstore.NewStoreError(op, collection, err)
	}

	var raws []bson.M
	if err = cur.All(ctx, &raws); err != nil {
		return nil, docstore.NewStoreError(op, collection, err)
	}
	docs := make([]docstore.Document, 0, len(raws))
	for _, raw := range raws {
		doc, err := document(raw)
		if err != nil {
			return nil, docstore.NewStoreError(op, collection, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *DB) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return docstore.ErrNotFound
	}
	partial, err := toBSON(fields)
	if err != nil {
		return docstore.NewStoreError("update", collection, err)
	}
	if len(partial) == 0 { // $set refuses an empty document
		_, err = s.Get(ctx, collection, id)
		return err
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": partial})
	if err != nil {
		return docstore.NewStoreError("update", collection, err)
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// toBSON normalizes fields to JSON values, which mongo stores as is.
func toBSON(fields docstore.Fields) (bson.M, error) {
	norm, err := docstore.Normalize(fields)
	if err != nil {
		return nil, err
	}
	m, _ := norm.(map[string]interface{})
	if m == nil {
		m = make(map[string]interface{})
	}
	delete(m, "id")
	delete(m, "_id")
	return bson.M(m), nil
}

// document converts a raw mongo document through relaxed extended JSON,
// so that nested documents and arrays come back as plain JSON values.
func document(raw bson.M) (docstore.Document, error) {
	oid, _ := raw["_id"].(primitive.ObjectID)
	delete(raw, "_id")

	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return docstore.Document{}, errors.Wrapf(err, "encoding %s", oid.Hex())
	}
	fields := make(docstore.Fields)
	if err = json.Unmarshal(data, &fields); err != nil {
		return docstore.Document{}, errors.Wrapf(err, "decoding %s", oid.Hex())
	}
	return docstore.Document{ID: oid.Hex(), Fields: fields}, nil
}
