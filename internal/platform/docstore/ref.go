package docstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "bcmoney-backend/internal/common/errors"
	"bcmoney-backend/internal/platform/bus"
)

// ErrUnmemoizedRef is returned when a reference that was not produced by
// Store.Doc or Store.Collection is handed to a store operation. A
// hand-built reference would silently resubscribe the underlying change
// channel on every use, so the store refuses it outright.
var ErrUnmemoizedRef = errors.New("docstore: reference was not built through the store; use Store.Doc / Store.Collection")

// ref is the shared part of document and collection references. The memo
// flag and store backpointer are only ever set by the store's own
// constructors, which intern references by path.
type ref struct {
	path  string
	store *Store
	memo  bool
}

// Path returns the slash-joined address of the reference.
func (r *ref) Path() string { return r.path }

func (r *ref) validFor(s *Store) error {
	if r == nil || !r.memo || r.store != s {
		// Loud by contract: surfaced on the global channel as well as
		// to the caller, so fire-and-forget paths cannot hide it.
		if s != nil && s.bus != nil {
			s.bus.Publish(bus.StoreError{
				Op:   bus.OpRef,
				Path: "unmemoized-ref",
				Code: apperrors.ErrCodeStoreError,
				Err:  ErrUnmemoizedRef,
			})
		}
		return ErrUnmemoizedRef
	}
	return nil
}

// DocRef addresses a single document: an even number of path segments,
// alternating collection and document ids.
type DocRef struct {
	ref
}

// ID returns the document's own id (the last path segment).
func (r *DocRef) ID() string {
	segs := strings.Split(r.path, "/")
	return segs[len(segs)-1]
}

// Parent returns the collection the document lives in.
func (r *DocRef) Parent() *CollectionRef {
	segs := strings.Split(r.path, "/")
	return r.store.Collection(segs[:len(segs)-1]...)
}

// CollectionRef addresses a collection: an odd number of path segments.
type CollectionRef struct {
	ref
}

// Doc returns the reference for the document with the given id inside
// this collection.
func (r *CollectionRef) Doc(id string) *DocRef {
	return r.store.Doc(append(strings.Split(r.path, "/"), id)...)
}

// Doc builds (or returns the cached) reference for a document path.
// Segment counts are a programmer contract: an odd count or an empty
// segment panics rather than producing a half-valid address.
func (s *Store) Doc(segments ...string) *DocRef {
	path := joinPath(segments)
	if len(segments)%2 != 0 {
		panic(fmt.Sprintf("docstore: document path needs an even number of segments, got %q", path))
	}

	if cached, ok := s.docRefs.Load(path); ok {
		return cached.(*DocRef)
	}
	r := &DocRef{ref{path: path, store: s, memo: true}}
	actual, _ := s.docRefs.LoadOrStore(path, r)
	return actual.(*DocRef)
}

// Collection builds (or returns the cached) reference for a collection path.
func (s *Store) Collection(segments ...string) *CollectionRef {
	path := joinPath(segments)
	if len(segments)%2 != 1 {
		panic(fmt.Sprintf("docstore: collection path needs an odd number of segments, got %q", path))
	}

	if cached, ok := s.colRefs.Load(path); ok {
		return cached.(*CollectionRef)
	}
	r := &CollectionRef{ref{path: path, store: s, memo: true}}
	actual, _ := s.colRefs.LoadOrStore(path, r)
	return actual.(*CollectionRef)
}

func joinPath(segments []string) string {
	if len(segments) == 0 {
		panic("docstore: empty path")
	}
	for _, seg := range segments {
		if seg == "" || strings.Contains(seg, "/") {
			panic(fmt.Sprintf("docstore: invalid path segment %q", seg))
		}
	}
	return strings.Join(segments, "/")
}

func newDocID() string { return uuid.New().String() }

// Redis key layout. Documents are JSON blobs under doc:<path>; each
// collection keeps a set of member ids under col:<path>; change
// notifications go out on the channels below.
func docKey(path string) string      { return "doc:" + path }
func colKey(path string) string      { return "col:" + path }
func docChannel(path string) string  { return "docstore:doc:" + path }
func colChannel(path string) string  { return "docstore:col:" + path }
