package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bcmoney-backend/internal/common/errors"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := New()
	first := b.Subscribe(4)
	second := b.Subscribe(4)

	b.Publish(StoreError{Op: OpSet, Path: "user_profiles/u1", Code: errors.ErrCodeStoreError, Err: assert.AnError})

	for _, ch := range []chan StoreError{first, second} {
		select {
		case got := <-ch:
			assert.Equal(t, OpSet, got.Op)
			assert.Equal(t, "user_profiles/u1", got.Path)
			assert.False(t, got.At.IsZero(), "publish must stamp the event")
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	ch := b.Subscribe(1)

	b.Unsubscribe(ch)

	_, open := <-ch
	assert.False(t, open)

	// A second unsubscribe of the same channel must be harmless.
	b.Unsubscribe(ch)
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := New()
	ch := b.Subscribe(1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			b.Publish(StoreError{Op: OpGet, Path: "p", Err: assert.AnError})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	// The buffer holds exactly one event; the rest were dropped.
	require.Len(t, ch, 1)
}

func TestPublishKeepsExplicitTimestamp(t *testing.T) {
	b := New()
	ch := b.Subscribe(1)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b.Publish(StoreError{Op: OpDelete, Path: "p", At: at})

	got := <-ch
	assert.Equal(t, at, got.At)
}
