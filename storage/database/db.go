package database

import (
	"github.com/pkg/errors"

	"github.com/trezcool/wordwise/core"
	"github.com/trezcool/wordwise/core/docstore"
	boltdb "github.com/trezcool/wordwise/storage/database/bolt"
	inmemdb "github.com/trezcool/wordwise/storage/database/inmem"
	mongodb "github.com/trezcool/wordwise/storage/database/mongo"
	sqlxdb "github.com/trezcool/wordwise/storage/database/sqlx"
)

var collections = []string{docstore.Users, docstore.Words, docstore.Assignments}

// Open returns the document store selected by conf.Database.Engine.
func Open(conf *core.Config) (docstore.Store, error) {
	switch conf.Database.Engine {
	case "", "bolt":
		return boltdb.Open(conf.Database.Path, collections...)
	case "postgres":
		return sqlxdb.Open(conf.Database)
	case "mongo":
		return mongodb.Open(conf.Database)
	case "memory":
		return inmemdb.Open()
	default:
		return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}
}
