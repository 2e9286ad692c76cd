package bus

import (
	"sync"
	"time"

	"bcmoney-backend/internal/common/errors"
)

// Operation names the store action that failed.
type Operation string

const (
	OpGet    Operation = "get"
	OpList   Operation = "list"
	OpSet    Operation = "set"
	OpUpdate Operation = "update"
	OpAdd    Operation = "add"
	OpDelete Operation = "delete"
	OpBatch  Operation = "batch"
	OpWatch  Operation = "watch"
	OpRef    Operation = "ref"
)

// StoreError is the typed payload carried on the global error channel:
// which operation failed, against which document path, and why.
type StoreError struct {
	Op   Operation        `json:"operation"`
	Path string           `json:"path"`
	Code errors.ErrorCode `json:"code"`
	Err  error            `json:"-"`
	At   time.Time        `json:"timestamp"`
}

func (e StoreError) Error() string {
	return errors.NewStoreError(string(e.Op), e.Path, e.Err).Error()
}

// ErrorBus is a process-wide fan-out channel for store access failures.
// It is created once at startup and injected into the store layer; it is
// independent of the per-request error responses shown to callers.
type ErrorBus struct {
	mu   sync.RWMutex
	subs map[chan StoreError]struct{}
}

func New() *ErrorBus {
	return &ErrorBus{subs: make(map[chan StoreError]struct{})}
}

// Publish delivers err to every subscriber. A subscriber that cannot
// keep up loses events instead of blocking the writer.
func (b *ErrorBus) Publish(err StoreError) {
	if err.At.IsZero() {
		err.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- err:
		default:
		}
	}
}

// Subscribe registers a new listener with the given buffer size.
func (b *ErrorBus) Subscribe(buffer int) chan StoreError {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan StoreError, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (b *ErrorBus) Unsubscribe(ch chan StoreError) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}
