// Package listsync holds the state every list screen shares: the fetched items, a loading flag
// and a user-facing error, kept consistent across fetches, refetches and local patches.
package listsync

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/trezcool/wordwise/core"
)

// ErrStale is returned by Refresh when a newer fetch (or Detach) superseded it; its result was dropped.
var ErrStale = errors.New("stale fetch result discarded")

type (
	// Fetcher reads the whole list from the store.
	Fetcher[T any] func(ctx context.Context) ([]T, error)

	// State is a snapshot of a List, ready to be rendered.
	State[T any] struct {
		Items   []T    `json:"items"`
		Loading bool   `json:"loading"`
		Error   string `json:"error,omitempty"`
	}

	// List is safe for concurrent use.
	List[T any] struct {
		mu         sync.Mutex
		items      []T
		loading    bool
		errMsg     string
		generation uint64
		fetchErr   string // message shown when a fetch fails
		logger     core.Logger
	}
)

// New returns an empty List. fetchErrMsg is what the user sees when a fetch fails.
func New[T any](logger core.Logger, fetchErrMsg string) *List[T] {
	return &List[T]{
		items:    make([]T, 0),
		fetchErr: fetchErrMsg,
		logger:   logger,
	}
}

// Refresh runs fetch and replaces the items with its result.
// Loading is set for the duration of the call. On failure the items are left untouched
// and the error message is set. A result that arrives after a newer Refresh or a Detach is dropped.
func (l *List[T]) Refresh(ctx context.Context, fetch Fetcher[T]) error {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.loading = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		if gen == l.generation {
			l.loading = false
		}
		l.mu.Unlock()
	}()

	items, err := fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		return ErrStale
	}
	if err != nil {
		l.errMsg = l.fetchErr
		l.logger.Error(l.fetchErr, errors.Wrap(err, "fetching list"))
		return err
	}
	if items == nil {
		items = make([]T, 0)
	}
	l.items = items
	l.errMsg = ""
	return nil
}

// Detach drops the result of any fetch still in flight, e.g. when the screen goes away.
func (l *List[T]) Detach() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.generation++
	l.loading = false
}

// Reset detaches and empties the list, e.g. when the items belong to someone else.
func (l *List[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.generation++
	l.loading = false
	l.items = make([]T, 0)
	l.errMsg = ""
}

// Patch applies update to every item matching match and returns how many were changed.
func (l *List[T]) Patch(match func(T) bool, update func(T) T) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int
	l.items = lo.Map(l.items, func(item T, _ int) T {
		if !match(item) {
			return item
		}
		n++
		return update(item)
	})
	return n
}

// Find returns the first item matching match.
func (l *List[T]) Find(match func(T) bool) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return lo.Find(l.items, match)
}

// SetError sets the user-facing error message.
func (l *List[T]) SetError(msg string) {
	l.mu.Lock()
	l.errMsg = msg
	l.mu.Unlock()
}

// ClearError clears the user-facing error message.
func (l *List[T]) ClearError() { l.SetError("") }

func (l *List[T]) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

func (l *List[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]T, len(l.items))
	copy(items, l.items)
	return State[T]{Items: items, Loading: l.loading, Error: l.errMsg}
}
