package docstore

import (
	"context"
	"encoding/json"

	apperrors "bcmoney-backend/internal/common/errors"
	"bcmoney-backend/internal/platform/bus"
)

type batchOpKind int

const (
	batchSet batchOpKind = iota
	batchMerge
	batchDelete
)

type batchOp struct {
	kind   batchOpKind
	ref    *DocRef
	fields map[string]interface{}
}

// Batch stages writes against several documents and applies them
// all-or-nothing. Mutations that must not diverge, like a balance
// decrement and its transaction record, go through one Batch.
type Batch struct {
	store *Store
	ops   []batchOp
	err   error
}

func (s *Store) NewBatch() *Batch {
	return &Batch{store: s}
}

func (b *Batch) stage(op batchOp) *Batch {
	if b.err != nil {
		return b
	}
	if err := op.ref.validFor(b.store); err != nil {
		b.err = err
		return b
	}
	b.ops = append(b.ops, op)
	return b
}

// Set stages a full overwrite of ref.
func (b *Batch) Set(ref *DocRef, fields map[string]interface{}) *Batch {
	return b.stage(batchOp{kind: batchSet, ref: ref, fields: fields})
}

// Merge stages a merge-write of fields into ref.
func (b *Batch) Merge(ref *DocRef, fields map[string]interface{}) *Batch {
	return b.stage(batchOp{kind: batchMerge, ref: ref, fields: fields})
}

// Delete stages a removal of ref.
func (b *Batch) Delete(ref *DocRef) *Batch {
	return b.stage(batchOp{kind: batchDelete, ref: ref})
}

// Commit applies every staged op inside one MULTI/EXEC transaction.
// Merge payloads are resolved before the transaction is queued, so a
// failure at any point leaves no op applied.
func (b *Batch) Commit(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	if len(b.ops) == 0 {
		return nil
	}

	ctx, cancel := b.store.opCtx(ctx)
	defer cancel()

	payloads := make([][]byte, len(b.ops))
	for i, op := range b.ops {
		switch op.kind {
		case batchSet:
			raw, err := json.Marshal(op.fields)
			if err != nil {
				return b.fail(err)
			}
			payloads[i] = raw
		case batchMerge:
			raw, err := b.store.mergedPayload(ctx, op.ref, op.fields)
			if err != nil {
				return b.fail(err)
			}
			payloads[i] = raw
		}
	}

	pipe := b.store.rdb.TxPipeline()
	for i, op := range b.ops {
		if op.kind == batchDelete {
			b.store.queueDelete(ctx, pipe, op.ref)
			continue
		}
		b.store.queueWrite(ctx, pipe, op.ref, payloads[i])
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return b.fail(err)
	}
	return nil
}

func (b *Batch) fail(err error) error {
	paths := make([]string, len(b.ops))
	for i, op := range b.ops {
		paths[i] = op.ref.Path()
	}

	if b.store.bus != nil {
		b.store.bus.Publish(bus.StoreError{
			Op:   bus.OpBatch,
			Path: joinPaths(paths),
			Code: apperrors.ErrCodeBatchFailed,
			Err:  err,
		})
	}

	return apperrors.Wrap(err, apperrors.ErrCodeBatchFailed, "Atomic batch write failed").
		WithDetail("paths", paths)
}

func joinPaths(paths []string) string {
	out := ""
	for i, p := range paths {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}
