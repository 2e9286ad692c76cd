// Package docstore exposes Redis as a hierarchical document store:
// path-addressed JSON documents grouped in nested collections, with
// real-time change subscriptions, atomic multi-document batches and
// fire-and-forget write helpers.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	apperrors "bcmoney-backend/internal/common/errors"
	"bcmoney-backend/internal/platform/bus"
	"bcmoney-backend/internal/platform/redis"
)

// Document is one stored record: its id, full path and raw JSON fields.
type Document struct {
	ID   string          `json:"id"`
	Path string          `json:"path"`
	Data json.RawMessage `json:"data"`
}

// Decode unmarshals the document fields into v.
func (d *Document) Decode(v interface{}) error {
	return json.Unmarshal(d.Data, v)
}

// Store is the document store facade. All operations are capped by the
// configured timeout and report failures on the injected error bus in
// addition to returning them.
type Store struct {
	rdb       *redis.Client
	bus       *bus.ErrorBus
	opTimeout time.Duration

	docRefs sync.Map // path -> *DocRef
	colRefs sync.Map // path -> *CollectionRef
}

func New(rdb *redis.Client, errBus *bus.ErrorBus, opTimeout time.Duration) *Store {
	if opTimeout <= 0 {
		opTimeout = 10 * time.Second
	}
	return &Store{rdb: rdb, bus: errBus, opTimeout: opTimeout}
}

func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

// fail classifies err, routes it to the global error channel and returns
// the typed form to the caller.
func (s *Store) fail(op bus.Operation, path string, err error) error {
	code := apperrors.ErrCodeStoreError
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		code = apperrors.ErrCodeStoreUnavailable
	}

	if s.bus != nil {
		s.bus.Publish(bus.StoreError{Op: op, Path: path, Code: code, Err: err})
	}

	return apperrors.Wrapf(err, code, "Store operation failed: %s %s", op, path).
		WithDetail("operation", string(op)).
		WithDetail("path", path)
}

// Get fetches a single document. A missing document is (nil, nil), not
// an error.
func (s *Store) Get(ctx context.Context, ref *DocRef) (*Document, error) {
	if err := ref.validFor(s); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	raw, err := s.rdb.Get(ctx, docKey(ref.path)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail(bus.OpGet, ref.path, err)
	}

	return &Document{ID: ref.ID(), Path: ref.path, Data: raw}, nil
}

// SetMerge writes fields into the document, merging with whatever is
// already there. The document is created when absent.
func (s *Store) SetMerge(ctx context.Context, ref *DocRef, fields map[string]interface{}) error {
	if err := ref.validFor(s); err != nil {
		return err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	merged, err := s.mergedPayload(ctx, ref, fields)
	if err != nil {
		return s.fail(bus.OpSet, ref.path, err)
	}

	pipe := s.rdb.TxPipeline()
	s.queueWrite(ctx, pipe, ref, merged)
	if _, err := pipe.Exec(ctx); err != nil {
		return s.fail(bus.OpSet, ref.path, err)
	}
	return nil
}

// SetIfAbsent creates the document only when no document exists at the
// reference yet. The returned bool reports whether this call won the
// claim. Losing the claim is not an error.
func (s *Store) SetIfAbsent(ctx context.Context, ref *DocRef, fields map[string]interface{}) (bool, error) {
	if err := ref.validFor(s); err != nil {
		return false, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	payload, err := json.Marshal(fields)
	if err != nil {
		return false, s.fail(bus.OpSet, ref.path, err)
	}

	claimed, err := s.rdb.SetNX(ctx, docKey(ref.path), payload, 0).Result()
	if err != nil {
		return false, s.fail(bus.OpSet, ref.path, err)
	}
	if !claimed {
		return false, nil
	}

	parent := ref.Parent()
	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, colKey(parent.path), ref.ID())
	pipe.Publish(ctx, docChannel(ref.path), changePayload(ref.path, "write"))
	pipe.Publish(ctx, colChannel(parent.path), changePayload(ref.path, "write"))
	if _, err := pipe.Exec(ctx); err != nil {
		return true, s.fail(bus.OpSet, ref.path, err)
	}
	return true, nil
}

// Update writes fields into an existing document; it fails when the
// document does not exist.
func (s *Store) Update(ctx context.Context, ref *DocRef, fields map[string]interface{}) error {
	if err := ref.validFor(s); err != nil {
		return err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	existing, err := s.rdb.Get(ctx, docKey(ref.path)).Bytes()
	if err == goredis.Nil {
		return s.fail(bus.OpUpdate, ref.path, apperrors.NewNotFoundError("document", ref.path))
	}
	if err != nil {
		return s.fail(bus.OpUpdate, ref.path, err)
	}

	merged, err := mergeJSON(existing, fields)
	if err != nil {
		return s.fail(bus.OpUpdate, ref.path, err)
	}

	pipe := s.rdb.TxPipeline()
	s.queueWrite(ctx, pipe, ref, merged)
	if _, err := pipe.Exec(ctx); err != nil {
		return s.fail(bus.OpUpdate, ref.path, err)
	}
	return nil
}

// Add creates a new document with a generated id inside the collection
// and returns its reference.
func (s *Store) Add(ctx context.Context, col *CollectionRef, fields map[string]interface{}) (*DocRef, error) {
	if err := col.validFor(s); err != nil {
		return nil, err
	}

	ref := col.Doc(newDocID())
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["id"] = ref.ID()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, s.fail(bus.OpAdd, ref.path, err)
	}

	pipe := s.rdb.TxPipeline()
	s.queueWrite(ctx, pipe, ref, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, s.fail(bus.OpAdd, ref.path, err)
	}
	return ref, nil
}

// Delete removes a single document. Deleting an absent document is not
// an error.
func (s *Store) Delete(ctx context.Context, ref *DocRef) error {
	if err := ref.validFor(s); err != nil {
		return err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	pipe := s.rdb.TxPipeline()
	s.queueDelete(ctx, pipe, ref)
	if _, err := pipe.Exec(ctx); err != nil {
		return s.fail(bus.OpDelete, ref.path, err)
	}
	return nil
}

// ListOptions narrows and orders a collection read. OrderBy compares the
// raw field values as strings, which is exact for the ISO-8601 dates the
// schema stores.
type ListOptions struct {
	OrderBy    string
	Descending bool
	WhereField string
	WhereValue string
}

// List returns every document in the collection, filtered and ordered
// per opts.
func (s *Store) List(ctx context.Context, col *CollectionRef, opts ListOptions) ([]Document, error) {
	if err := col.validFor(s); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	ids, err := s.rdb.SMembers(ctx, colKey(col.path)).Result()
	if err != nil {
		return nil, s.fail(bus.OpList, col.path, err)
	}
	if len(ids) == 0 {
		return []Document{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(col.path + "/" + id)
	}

	raws, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, s.fail(bus.OpList, col.path, err)
	}

	docs := make([]Document, 0, len(ids))
	for i, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			// Index member without a document: dropped from results.
			continue
		}
		doc := Document{ID: ids[i], Path: col.path + "/" + ids[i], Data: json.RawMessage(str)}
		if opts.WhereField != "" && fieldString(doc.Data, opts.WhereField) != opts.WhereValue {
			continue
		}
		docs = append(docs, doc)
	}

	if opts.OrderBy != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			a := fieldString(docs[i].Data, opts.OrderBy)
			b := fieldString(docs[j].Data, opts.OrderBy)
			if opts.Descending {
				return a > b
			}
			return a < b
		})
	}

	return docs, nil
}

// DeleteCollection removes every document in the collection along with
// its index. Used by account reset and clear-history flows.
func (s *Store) DeleteCollection(ctx context.Context, col *CollectionRef) error {
	if err := col.validFor(s); err != nil {
		return err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	ids, err := s.rdb.SMembers(ctx, colKey(col.path)).Result()
	if err != nil {
		return s.fail(bus.OpDelete, col.path, err)
	}

	pipe := s.rdb.TxPipeline()
	for _, id := range ids {
		s.queueDelete(ctx, pipe, col.Doc(id))
	}
	pipe.Del(ctx, colKey(col.path))
	pipe.Publish(ctx, colChannel(col.path), changePayload(col.path, "delete"))
	if _, err := pipe.Exec(ctx); err != nil {
		return s.fail(bus.OpDelete, col.path, err)
	}
	return nil
}

// queueWrite stages SET + index + change notifications for one document
// on the pipeline.
func (s *Store) queueWrite(ctx context.Context, pipe goredis.Pipeliner, ref *DocRef, payload []byte) {
	parent := ref.Parent()
	pipe.Set(ctx, docKey(ref.path), payload, 0)
	pipe.SAdd(ctx, colKey(parent.path), ref.ID())
	pipe.Publish(ctx, docChannel(ref.path), changePayload(ref.path, "write"))
	pipe.Publish(ctx, colChannel(parent.path), changePayload(ref.path, "write"))
}

func (s *Store) queueDelete(ctx context.Context, pipe goredis.Pipeliner, ref *DocRef) {
	parent := ref.Parent()
	pipe.Del(ctx, docKey(ref.path))
	pipe.SRem(ctx, colKey(parent.path), ref.ID())
	pipe.Publish(ctx, docChannel(ref.path), changePayload(ref.path, "delete"))
	pipe.Publish(ctx, colChannel(parent.path), changePayload(ref.path, "delete"))
}

func (s *Store) mergedPayload(ctx context.Context, ref *DocRef, fields map[string]interface{}) ([]byte, error) {
	existing, err := s.rdb.Get(ctx, docKey(ref.path)).Bytes()
	if err == goredis.Nil {
		return json.Marshal(fields)
	}
	if err != nil {
		return nil, err
	}
	return mergeJSON(existing, fields)
}

func mergeJSON(existing []byte, fields map[string]interface{}) ([]byte, error) {
	merged := map[string]interface{}{}
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &merged); err != nil {
			return nil, err
		}
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// fieldString extracts a top-level field from raw JSON as its string
// form, without quotes for string values.
func fieldString(data json.RawMessage, field string) string {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return ""
	}
	raw, ok := m[field]
	if !ok {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return string(raw)
}

func changePayload(path, op string) string {
	b, _ := json.Marshal(map[string]string{"path": path, "op": op})
	return string(b)
}
