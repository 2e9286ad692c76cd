package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bcmoney-backend/internal/common/errors"
	"bcmoney-backend/internal/platform/bus"
)

func newTestStore() *Store {
	return New(nil, bus.New(), time.Second)
}

func TestDocRefsAreInterned(t *testing.T) {
	s := newTestStore()

	a := s.Doc("user_profiles", "u1")
	b := s.Doc("user_profiles", "u1")

	assert.Same(t, a, b, "same path must return the same reference")
	assert.Equal(t, "user_profiles/u1", a.Path())
	assert.Equal(t, "u1", a.ID())
}

func TestCollectionRefsAreInterned(t *testing.T) {
	s := newTestStore()

	a := s.Collection("user_profiles", "u1", "balances")
	b := s.Collection("user_profiles", "u1", "balances")

	assert.Same(t, a, b)
	assert.Equal(t, "user_profiles/u1/balances", a.Path())
}

func TestDocAndParentNavigation(t *testing.T) {
	s := newTestStore()

	col := s.Collection("user_profiles", "u1", "balances")
	doc := col.Doc("1")

	assert.Equal(t, "user_profiles/u1/balances/1", doc.Path())
	assert.Same(t, col, doc.Parent())
	assert.Same(t, doc, s.Doc("user_profiles", "u1", "balances", "1"))
}

func TestPathParityIsEnforced(t *testing.T) {
	s := newTestStore()

	assert.Panics(t, func() { s.Doc("user_profiles") })
	assert.Panics(t, func() { s.Collection("user_profiles", "u1") })
	assert.Panics(t, func() { s.Doc() })
	assert.Panics(t, func() { s.Doc("user_profiles", "") })
	assert.Panics(t, func() { s.Doc("user_profiles", "a/b") })
}

func TestHandBuiltRefIsRejected(t *testing.T) {
	s := newTestStore()
	foreign := &DocRef{ref{path: "user_profiles/u1"}}

	err := foreign.validFor(s)
	assert.ErrorIs(t, err, ErrUnmemoizedRef)
}

func TestRefFromAnotherStoreIsRejected(t *testing.T) {
	first := newTestStore()
	second := newTestStore()

	doc := first.Doc("user_profiles", "u1")
	assert.ErrorIs(t, doc.validFor(second), ErrUnmemoizedRef)
	assert.NoError(t, doc.validFor(first))
}

func TestRejectedRefIsReportedOnTheBus(t *testing.T) {
	errBus := bus.New()
	s := New(nil, errBus, time.Second)
	sub := errBus.Subscribe(1)

	foreign := &DocRef{ref{path: "user_profiles/u1"}}
	require.Error(t, foreign.validFor(s))

	select {
	case got := <-sub:
		assert.Equal(t, bus.OpRef, got.Op)
		assert.ErrorIs(t, got.Err, ErrUnmemoizedRef)
	case <-time.After(time.Second):
		t.Fatal("rejection was not published")
	}
}

func TestWrappedTimeoutClassifiesAsUnavailable(t *testing.T) {
	errBus := bus.New()
	s := New(nil, errBus, time.Second)
	sub := errBus.Subscribe(1)

	err := s.fail(bus.OpGet, "user_profiles/u1", fmt.Errorf("redis: %w", context.DeadlineExceeded))

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeStoreUnavailable, appErr.Code)

	select {
	case got := <-sub:
		assert.Equal(t, apperrors.ErrCodeStoreUnavailable, got.Code)
		assert.ErrorIs(t, got.Err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("failure was not published")
	}
}

func TestSetIfAbsentRejectsHandBuiltRef(t *testing.T) {
	s := newTestStore()

	foreign := &DocRef{ref{path: "handles/satoshi"}}
	_, err := s.SetIfAbsent(context.Background(), foreign, map[string]interface{}{"uid": "u1"})
	assert.ErrorIs(t, err, ErrUnmemoizedRef)
}

func TestMergeJSONOverlaysFields(t *testing.T) {
	existing := []byte(`{"name":"Ada","phone":"123"}`)

	merged, err := mergeJSON(existing, map[string]interface{}{"phone": "456", "email": "a@b.c"})
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(merged, &got))
	assert.Equal(t, map[string]string{"name": "Ada", "phone": "456", "email": "a@b.c"}, got)
}

func TestMergeJSONRejectsMalformedExisting(t *testing.T) {
	_, err := mergeJSON([]byte(`not-json`), map[string]interface{}{"a": 1})
	assert.Error(t, err)
}

func TestFieldString(t *testing.T) {
	data := json.RawMessage(`{"transactionDate":"2026-03-01T12:00:00.000000000Z","amount":-4,"nested":{"x":1}}`)

	assert.Equal(t, "2026-03-01T12:00:00.000000000Z", fieldString(data, "transactionDate"))
	assert.Equal(t, "-4", fieldString(data, "amount"))
	assert.Equal(t, `{"x":1}`, fieldString(data, "nested"))
	assert.Equal(t, "", fieldString(data, "missing"))
	assert.Equal(t, "", fieldString(json.RawMessage(`broken`), "any"))
}

func TestDocumentDecode(t *testing.T) {
	doc := Document{ID: "1", Path: "user_profiles/u1", Data: json.RawMessage(`{"handle":"@ada"}`)}

	var got struct {
		Handle string `json:"handle"`
	}
	require.NoError(t, doc.Decode(&got))
	assert.Equal(t, "@ada", got.Handle)
}

func TestKeyAndChannelLayout(t *testing.T) {
	assert.Equal(t, "doc:user_profiles/u1", docKey("user_profiles/u1"))
	assert.Equal(t, "col:user_profiles/u1/balances", colKey("user_profiles/u1/balances"))
	assert.Equal(t, "docstore:doc:user_profiles/u1", docChannel("user_profiles/u1"))
	assert.Equal(t, "docstore:col:user_profiles/u1/balances", colChannel("user_profiles/u1/balances"))
}
