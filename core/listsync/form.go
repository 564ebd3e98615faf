package listsync

import "sync"

// Form holds the fields a user is typing. It is only cleared after a successful submit.
type Form[T any] struct {
	mu    sync.Mutex
	value T
}

func (f *Form[T]) Value() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Set replaces the whole form.
func (f *Form[T]) Set(v T) {
	f.mu.Lock()
	f.value = v
	f.mu.Unlock()
}

// Edit changes some fields in place.
func (f *Form[T]) Edit(edit func(*T)) {
	f.mu.Lock()
	edit(&f.value)
	f.mu.Unlock()
}

func (f *Form[T]) Clear() {
	var zero T
	f.Set(zero)
}
