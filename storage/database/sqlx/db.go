// Package sqlxdb stores documents as JSONB rows in PostgreSQL.
package sqlxdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/wordwise/core"
	"github.com/trezcool/wordwise/core/docstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	seq        BIGSERIAL,
	collection TEXT  NOT NULL,
	id         TEXT  NOT NULL,
	data       JSONB NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_collection_seq_idx ON documents (collection, seq);`

type (
	DB struct {
		db *sqlx.DB
	}

	row struct {
		ID   string `db:"id"`
		Data []byte `db:"data"`
	}
)

var _ docstore.Store = (*DB)(nil) // interface compliance check

// URL builds the postgres connection string from the database configuration.
func URL(conf core.DatabaseConfig) string {
	sslMode := "require"
	if conf.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conf.User, conf.Password),
		Host:     conf.Address(),
		Path:     conf.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open connects to the database, waits for it to be ready and creates the documents table.
func Open(conf core.DatabaseConfig) (*DB, error) {
	db, err := sqlx.Open("postgres", URL(conf))
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err = db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating documents table")
	}
	return &DB{db: db}, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func (s *DB) Close() error {
	return s.db.Close()
}

func (s *DB) Add(ctx context.Context, collection string, doc docstore.Fields) (string, error) {
	body := docstore.Merge(doc, nil)
	delete(body, "id")
	data, err := json.Marshal(body)
	if err != nil {
		return "", docstore.NewStoreError("add", collection, err)
	}

	id := uuid.NewString()
	q := `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`
	if _, err = s.db.ExecContext(ctx, q, collection, id, data); err != nil {
		return "", docstore.NewStoreError("add", collection, err)
	}
	return id, nil
}

func (s *DB) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	var r row
	q := `SELECT id, data FROM documents WHERE collection = $1 AND id = $2`
	if err := s.db.GetContext(ctx, &r, q, collection, id); err != nil {
		if err == sql.ErrNoRows {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, docstore.NewStoreError("get", collection, err)
	}
	doc, err := r.document()
	return doc, docstore.NewStoreError("get", collection, err)
}

func (s *DB) GetAll(ctx context.Context, collection string) ([]docstore.Document, error) {
	q := `SELECT id, data FROM documents WHERE collection = $1 ORDER BY seq`
	return s.selectDocs(ctx, "getAll", collection, q, collection)
}

func (s *DB) Query(ctx context.Context, collection, field string, value interface{}) ([]docstore.Document, error) {
	want, err := json.Marshal(value)
	if err != nil {
		return nil, docstore.NewStoreError("query", collection, err)
	}
	q := `SELECT id, data FROM documents WHERE collection = $1 AND data -> $2 = $3::jsonb ORDER BY seq`
	return s.selectDocs(ctx, "query", collection, q, collection, field, string(want))
}

func (s *DB) selectDocs(ctx context.Context, op, collection, q string, args ...interface{}) ([]docstore.Document, error) {
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, docstore.NewStoreError(op, collection, err)
	}
	docs := make([]docstore.Document, 0, len(rows))
	for _, r := range rows {
		doc, err := r.document()
		if err != nil {
			return nil, docstore.NewStoreError(op, collection, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *DB) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	partial := docstore.Merge(fields, nil)
	delete(partial, "id")
	data, err := json.Marshal(partial)
	if err != nil {
		return docstore.NewStoreError("update", collection, err)
	}

	q := `UPDATE documents SET data = data || $3::jsonb WHERE collection = $1 AND id = $2`
	res, err := s.db.ExecContext(ctx, q, collection, id, string(data))
	if err != nil {
		return docstore.NewStoreError("update", collection, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return docstore.NewStoreError("update", collection, err)
	}
	if n == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (r row) document() (docstore.Document, error) {
	fields := make(docstore.Fields)
	if err := json.Unmarshal(r.Data, &fields); err != nil {
		return docstore.Document{}, errors.Wrapf(err, "decoding %s", r.ID)
	}
	return docstore.Document{ID: r.ID, Fields: fields}, nil
}
