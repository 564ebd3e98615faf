package testutil

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/wordwise/core"
	"github.com/trezcool/wordwise/core/assignment"
	"github.com/trezcool/wordwise/core/docstore"
	"github.com/trezcool/wordwise/core/user"
	"github.com/trezcool/wordwise/core/word"
	inmemdb "github.com/trezcool/wordwise/storage/database/inmem"
)

// NewValidator returns a validator and translator with every custom validator registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

// NewDeps returns controller dependencies backed by store (a fresh in-memory store when nil).
func NewDeps(store docstore.Store) core.Deps {
	if store == nil {
		store = inmemdb.New()
	}
	validate, translator := NewValidator()
	return core.Deps{
		Store:      store,
		Validate:   validate,
		Translator: translator,
		Logger:     core.NewStdLogger(io.Discard, ""),
	}
}

func CreateUser(
	t *testing.T,
	store docstore.Store,
	name, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	id, err := docstore.NewCollection[user.User](store, docstore.Users).Add(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	usr.ID = id
	return usr
}

func CreateWord(t *testing.T, store docstore.Store, text, definition, sentence string) word.Word {
	w := word.Word{Text: text, Definition: definition, Sentence: sentence}
	id, err := docstore.NewCollection[word.Word](store, docstore.Words).Add(context.Background(), w)
	if err != nil {
		t.Fatalf("createWord() failed: %v", err)
	}
	w.ID = id
	return w
}

func CreateAssignment(
	t *testing.T,
	store docstore.Store,
	studentID, typ, description string,
	words []string,
	completed bool,
) assignment.Assignment {
	a := assignment.Assignment{
		StudentID:   studentID,
		Type:        typ,
		Description: description,
		Words:       words,
		Completed:   completed,
	}
	id, err := docstore.NewCollection[assignment.Assignment](store, docstore.Assignments).Add(context.Background(), a)
	if err != nil {
		t.Fatalf("createAssignment() failed: %v", err)
	}
	a.ID = id
	return a
}

// Store operations, as counted by SpyStore.
const (
	OpAdd    = "add"
	OpGet    = "get"
	OpGetAll = "getAll"
	OpQuery  = "query"
	OpUpdate = "update"
)

// SpyStore wraps a Store, counts the calls made to it and fails the operations listed in Failures.
type SpyStore struct {
	docstore.Store

	mu       sync.Mutex
	calls    map[string]int
	Failures map[string]error
	// Before, when set, runs before every call is forwarded.
	Before func(op string)
}

func NewSpyStore(store docstore.Store) *SpyStore {
	if store == nil {
		store = inmemdb.New()
	}
	return &SpyStore{Store: store, calls: make(map[string]int), Failures: make(map[string]error)}
}

func (s *SpyStore) record(op string) error {
	s.mu.Lock()
	s.calls[op]++
	err := s.Failures[op]
	before := s.Before
	s.mu.Unlock()

	if before != nil {
		before(op)
	}
	return err
}

// Fail makes op fail with err from now on. A nil err makes it succeed again.
func (s *SpyStore) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.Failures, op)
		return
	}
	s.Failures[op] = err
}

func (s *SpyStore) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// TotalCalls counts every call made to the store.
func (s *SpyStore) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *SpyStore) Reset() {
	s.mu.Lock()
	s.calls = make(map[string]int)
	s.mu.Unlock()
}

func (s *SpyStore) Add(ctx context.Context, collection string, doc docstore.Fields) (string, error) {
	if err := s.record(OpAdd); err != nil {
		return "", docstore.NewStoreError(OpAdd, collection, err)
	}
	return s.Store.Add(ctx, collection, doc)
}

func (s *SpyStore) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := s.record(OpGet); err != nil {
		return docstore.Document{}, docstore.NewStoreError(OpGet, collection, err)
	}
	return s.Store.Get(ctx, collection, id)
}

func (s *SpyStore) GetAll(ctx context.Context, collection string) ([]docstore.Document, error) {
	if err := s.record(OpGetAll); err != nil {
		return nil, docstore.NewStoreError(OpGetAll, collection, err)
	}
	return s.Store.GetAll(ctx, collection)
}

func (s *SpyStore) Query(ctx context.Context, collection, field string, value interface{}) ([]docstore.Document, error) {
	if err := s.record(OpQuery); err != nil {
		return nil, docstore.NewStoreError(OpQuery, collection, err)
	}
	return s.Store.Query(ctx, collection, field, value)
}

func (s *SpyStore) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	if err := s.record(OpUpdate); err != nil {
		return docstore.NewStoreError(OpUpdate, collection, err)
	}
	return s.Store.Update(ctx, collection, id, fields)
}
