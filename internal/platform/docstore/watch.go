package docstore

import (
	"context"
)

// DocState is one delivery of a watched document: the current data (nil
// while loading, while the reference is absent, or when the document
// does not exist), a loading flag for the window before the first
// snapshot, and the terminal error if the subscription failed.
type DocState struct {
	Data    *Document
	Loading bool
	Err     error
}

// CollectionState is one delivery of a watched collection, re-delivered
// in full on every member change.
type CollectionState struct {
	Data    []Document
	Loading bool
	Err     error
}

// WatchDoc opens a real-time subscription on a single document. The
// returned channel first carries a loading state, then one state per
// snapshot. A nil ref means "not ready yet" (e.g. no authenticated
// user): the channel delivers a single empty state and closes. The
// subscription is torn down when ctx is cancelled; watching a different
// reference is a new WatchDoc call with its own ctx.
func (s *Store) WatchDoc(ctx context.Context, ref *DocRef) (<-chan DocState, error) {
	out := make(chan DocState, 8)

	if ref == nil {
		out <- DocState{Data: nil, Loading: false, Err: nil}
		close(out)
		return out, nil
	}
	if err := ref.validFor(s); err != nil {
		return nil, err
	}

	sub := s.rdb.Subscribe(ctx, docChannel(ref.path))

	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()

		emit := func(st DocState) bool {
			select {
			case out <- st:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit(DocState{Loading: true}) {
			return
		}

		deliver := func() bool {
			doc, err := s.Get(ctx, ref)
			if err != nil {
				// Get already routed the failure to the error bus.
				return emit(DocState{Data: nil, Loading: false, Err: err})
			}
			return emit(DocState{Data: doc, Loading: false})
		}

		if !deliver() {
			return
		}

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				if !deliver() {
					return
				}
			}
		}
	}()

	return out, nil
}

// WatchCollection opens a real-time subscription on a collection. Every
// change to a member document re-delivers the full filtered, ordered
// snapshot. Contract mirrors WatchDoc.
func (s *Store) WatchCollection(ctx context.Context, col *CollectionRef, opts ListOptions) (<-chan CollectionState, error) {
	out := make(chan CollectionState, 8)

	if col == nil {
		out <- CollectionState{Data: nil, Loading: false, Err: nil}
		close(out)
		return out, nil
	}
	if err := col.validFor(s); err != nil {
		return nil, err
	}

	sub := s.rdb.Subscribe(ctx, colChannel(col.path))

	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()

		emit := func(st CollectionState) bool {
			select {
			case out <- st:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit(CollectionState{Loading: true}) {
			return
		}

		deliver := func() bool {
			docs, err := s.List(ctx, col, opts)
			if err != nil {
				return emit(CollectionState{Data: nil, Loading: false, Err: err})
			}
			return emit(CollectionState{Data: docs, Loading: false})
		}

		if !deliver() {
			return
		}

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				if !deliver() {
					return
				}
			}
		}
	}()

	return out, nil
}
