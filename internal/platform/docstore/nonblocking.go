package docstore

import "context"

// Fire-and-forget write helpers. Each returns to the caller immediately;
// the operation runs on its own context so a closed request does not
// cancel it, and failures surface only through the global error channel.

func (s *Store) SetMergeNonBlocking(ref *DocRef, fields map[string]interface{}) {
	go func() {
		_ = s.SetMerge(context.Background(), ref, fields)
	}()
}

func (s *Store) UpdateNonBlocking(ref *DocRef, fields map[string]interface{}) {
	go func() {
		_ = s.Update(context.Background(), ref, fields)
	}()
}

func (s *Store) AddNonBlocking(col *CollectionRef, fields map[string]interface{}) {
	go func() {
		_, _ = s.Add(context.Background(), col, fields)
	}()
}

func (s *Store) DeleteNonBlocking(ref *DocRef) {
	go func() {
		_ = s.Delete(context.Background(), ref)
	}()
}

// CommitNonBlocking applies the batch off the caller's goroutine.
func (b *Batch) CommitNonBlocking() {
	go func() {
		_ = b.Commit(context.Background())
	}()
}
