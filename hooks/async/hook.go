// Package asynchook moves hook callbacks off the decode path.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{OptionalAbsentEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker, queue 1000 events
//	defer hooks.Close()
//
//	schema := layout.MustSchema(layout.Options[Account]{Hooks: hooks}, ...)
//	st, _ := store.New(store.Options[Account]{Hooks: hooks, ...})
//
// Events that do not fit in the queue are dropped and counted.
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/layout"
	"github.com/unkn0wn-root/layout/store"
)

// Sink receives both codec and store events.
type Sink interface {
	layout.Hooks
	store.Hooks
}

type Hooks struct {
	inner   Sink
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var (
	_ layout.Hooks = (*Hooks)(nil)
	_ store.Hooks  = (*Hooks)(nil)
)

func New(inner Sink, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events sent after
// Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) OptionalAbsent(r, f string, off int) {
	h.try(func() { h.inner.OptionalAbsent(r, f, off) })
}
func (h *Hooks) DecodeFailed(r, f string, off int, err error) {
	h.try(func() { h.inner.DecodeFailed(r, f, off, err) })
}
func (h *Hooks) EncodeFailed(r, f string, err error) {
	h.try(func() { h.inner.EncodeFailed(r, f, err) })
}
func (h *Hooks) SelfHeal(k, reason string) { h.try(func() { h.inner.SelfHeal(k, reason) }) }
func (h *Hooks) ProviderSetRejected(k string, n int) {
	h.try(func() { h.inner.ProviderSetRejected(k, n) })
}
func (h *Hooks) BulkImported(ns string, n int) { h.try(func() { h.inner.BulkImported(ns, n) }) }
