package listsync

import "context"

// Write describes the outcome of a successful store write.
// Doc is set when the caller already knows the full resulting document.
type Write[T any] struct {
	ID  string
	Doc *T
}

// Reconcile brings the list in line with the store after w.
// When the resulting document is known, only the entries matching its identity are replaced;
// otherwise the whole list is fetched again.
func (l *List[T]) Reconcile(ctx context.Context, w Write[T], sameID func(item T, id string) bool, fetch Fetcher[T]) error {
	if w.Doc != nil {
		doc := *w.Doc
		l.Patch(
			func(item T) bool { return sameID(item, w.ID) },
			func(T) T { return doc },
		)
		return nil
	}
	return l.Refresh(ctx, fetch)
}
