package listsync

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/wordwise/core"
)

type item struct {
	ID   string
	Done bool
}

func newList() *List[item] {
	return New[item](core.NewStdLogger(io.Discard, ""), "could not load")
}

func fetchOK(items ...item) Fetcher[item] {
	return func(context.Context) ([]item, error) { return items, nil }
}

func fetchErr(err error) Fetcher[item] {
	return func(context.Context) ([]item, error) { return nil, err }
}

func TestList_Refresh(t *testing.T) {
	ctx := context.Background()
	l := newList()
	assert.Equal(t, State[item]{Items: []item{}}, l.State())

	require.NoError(t, l.Refresh(ctx, fetchOK(item{ID: "1"}, item{ID: "2"})))
	st := l.State()
	assert.Equal(t, []item{{ID: "1"}, {ID: "2"}}, st.Items)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)

	// nil result is rendered as an empty list
	require.NoError(t, l.Refresh(ctx, fetchOK()))
	assert.NotNil(t, l.State().Items)
	assert.Empty(t, l.State().Items)
}

func TestList_Refresh_failureKeepsItems(t *testing.T) {
	ctx := context.Background()
	l := newList()
	require.NoError(t, l.Refresh(ctx, fetchOK(item{ID: "1"})))

	boom := errors.New("boom")
	err := l.Refresh(ctx, fetchErr(boom))
	assert.Equal(t, boom, err)

	st := l.State()
	assert.Equal(t, []item{{ID: "1"}}, st.Items)
	assert.False(t, st.Loading)
	assert.Equal(t, "could not load", st.Error)

	// a later success clears the error
	require.NoError(t, l.Refresh(ctx, fetchOK(item{ID: "2"})))
	assert.Empty(t, l.State().Error)
	assert.Equal(t, []item{{ID: "2"}}, l.State().Items)
}

func TestList_Refresh_loadingDuringFetch(t *testing.T) {
	l := newList()
	var during bool
	err := l.Refresh(context.Background(), func(context.Context) ([]item, error) {
		during = l.Loading()
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, during)
	assert.False(t, l.Loading())
}

func TestList_Refresh_loadingResetOnPanic(t *testing.T) {
	l := newList()
	assert.Panics(t, func() {
		_ = l.Refresh(context.Background(), func(context.Context) ([]item, error) {
			panic("boom")
		})
	})
	assert.False(t, l.Loading())
}

func TestList_Refresh_staleResultDropped(t *testing.T) {
	ctx := context.Background()
	l := newList()

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- l.Refresh(ctx, func(context.Context) ([]item, error) {
			close(started)
			<-release
			return []item{{ID: "old"}}, nil
		})
	}()
	<-started

	require.NoError(t, l.Refresh(ctx, fetchOK(item{ID: "new"})))
	close(release)
	assert.Equal(t, ErrStale, <-done)

	st := l.State()
	assert.Equal(t, []item{{ID: "new"}}, st.Items)
	assert.False(t, st.Loading)
}

func TestList_Detach(t *testing.T) {
	ctx := context.Background()
	l := newList()

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- l.Refresh(ctx, func(context.Context) ([]item, error) {
			close(started)
			<-release
			return nil, errors.New("boom")
		})
	}()
	<-started

	l.Detach()
	assert.False(t, l.Loading())
	close(release)
	assert.Equal(t, ErrStale, <-done)
	assert.Empty(t, l.State().Error)
}

func TestList_Reset(t *testing.T) {
	l := newList()
	require.NoError(t, l.Refresh(context.Background(), fetchOK(item{ID: "1"})))
	l.SetError("oops")

	l.Reset()
	assert.Equal(t, State[item]{Items: []item{}}, l.State())
}

func TestList_Patch(t *testing.T) {
	l := newList()
	require.NoError(t, l.Refresh(context.Background(), fetchOK(item{ID: "1"}, item{ID: "2"}, item{ID: "1"})))

	n := l.Patch(
		func(it item) bool { return it.ID == "1" },
		func(it item) item { it.Done = true; return it },
	)
	assert.Equal(t, 2, n)
	assert.Equal(t, []item{{ID: "1", Done: true}, {ID: "2"}, {ID: "1", Done: true}}, l.State().Items)

	n = l.Patch(func(it item) bool { return it.ID == "3" }, func(it item) item { return it })
	assert.Zero(t, n)
}

func TestList_Find(t *testing.T) {
	l := newList()
	require.NoError(t, l.Refresh(context.Background(), fetchOK(item{ID: "1"}, item{ID: "2"})))

	it, ok := l.Find(func(it item) bool { return it.ID == "2" })
	assert.True(t, ok)
	assert.Equal(t, item{ID: "2"}, it)

	_, ok = l.Find(func(it item) bool { return it.ID == "3" })
	assert.False(t, ok)
}

func TestList_Reconcile(t *testing.T) {
	ctx := context.Background()
	sameID := func(it item, id string) bool { return it.ID == id }

	tests := []struct {
		name      string
		write     Write[item]
		wantItems []item
		wantFetch bool
	}{
		{
			name:      "known document is patched",
			write:     Write[item]{ID: "2", Doc: &item{ID: "2", Done: true}},
			wantItems: []item{{ID: "1"}, {ID: "2", Done: true}},
		},
		{
			name:      "unknown document triggers a refetch",
			write:     Write[item]{ID: "3"},
			wantItems: []item{{ID: "1"}, {ID: "2"}, {ID: "3"}},
			wantFetch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newList()
			require.NoError(t, l.Refresh(ctx, fetchOK(item{ID: "1"}, item{ID: "2"})))

			var fetched bool
			err := l.Reconcile(ctx, tt.write, sameID, func(context.Context) ([]item, error) {
				fetched = true
				return []item{{ID: "1"}, {ID: "2"}, {ID: "3"}}, nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantFetch, fetched)
			assert.Equal(t, tt.wantItems, l.State().Items)
		})
	}
}

func TestForm(t *testing.T) {
	var f Form[item]
	f.Set(item{ID: "1"})
	f.Edit(func(it *item) { it.Done = true })
	assert.Equal(t, item{ID: "1", Done: true}, f.Value())

	f.Clear()
	assert.Equal(t, item{}, f.Value())
}
