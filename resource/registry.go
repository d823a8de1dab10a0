package resource

import (
	"errors"
	"io"
	"math"
	"sort"
	"sync"

	"go.uber.org/multierr"
)

var (
	ErrClosed    = errors.New("resource registry closed")
	ErrExhausted = errors.New("resource registry handle space exhausted")
)

// Registry maps handles to values of one device kind.
//
// Allocation and insertion happen under one lock, so concurrent Insert
// calls always receive distinct handles. A removed handle stays retired;
// later inserts continue from the counter.
//
// The registry lock only guards the map and is never held across device
// I/O. Each entry has its own lock, held by With for the duration of the
// operation, so a stalled device blocks callers of that handle alone.
type Registry[T any] struct {
	entries   map[Handle]*entry[T]
	next      int64
	observers []Observer
	mu        sync.Mutex
	obsMu     sync.RWMutex
	closed    bool
}

type entry[T any] struct {
	value T
	mu    sync.Mutex
	gone  bool
}

// retire waits for any operation in flight on e, then marks it removed.
func (e *entry[T]) retire() {
	e.mu.Lock()
	e.gone = true
	e.mu.Unlock()
}

// NewRegistry creates an empty registry whose first handle is 0.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		entries: make(map[Handle]*entry[T]),
	}
}

// Insert stores value under the next unused handle.
func (r *Registry[T]) Insert(value T) (Handle, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return 0, ErrClosed
	}
	if r.next > math.MaxInt32 {
		r.mu.Unlock()
		return 0, ErrExhausted
	}
	h := Handle(r.next)
	r.next++
	r.entries[h] = &entry[T]{value: value}
	r.mu.Unlock()

	r.notify(Event{Type: EventCreated, Handle: h, Value: value})
	return h, nil
}

// Get returns the value stored under h.
func (r *Registry[T]) Get(h Handle) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[h]; ok {
		return e.value, true
	}
	var zero T
	return zero, false
}

// With runs fn on the value stored under h while holding that entry's
// lock, so a concurrent Remove cannot release the device mid-operation.
// Other handles stay available while fn runs. It reports false when h is
// absent.
func (r *Registry[T]) With(h Handle, fn func(T) error) (bool, error) {
	r.mu.Lock()
	e, ok := r.entries[h]
	r.mu.Unlock()
	if !ok {
		return false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return false, nil
	}
	return true, fn(e.value)
}

// Remove deletes h and returns its value. The handle is absent to every
// caller once Remove starts; Remove itself returns after any operation
// already running on h has finished.
func (r *Registry[T]) Remove(h Handle) (T, bool) {
	r.mu.Lock()
	e, ok := r.entries[h]
	if ok {
		delete(r.entries, h)
	}
	r.mu.Unlock()

	if !ok {
		var zero T
		return zero, false
	}
	e.retire()
	r.notify(Event{Type: EventDropped, Handle: h, Value: e.value})
	return e.value, true
}

// Len returns the number of live handles.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Each visits live entries in handle order until fn returns false.
func (r *Registry[T]) Each(fn func(Handle, T) bool) {
	r.mu.Lock()
	handles := r.sortedHandles()
	values := make([]T, len(handles))
	for i, h := range handles {
		values[i] = r.entries[h].value
	}
	r.mu.Unlock()

	for i, h := range handles {
		if !fn(h, values[i]) {
			return
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (r *Registry[T]) Subscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer.
func (r *Registry[T]) Unsubscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

// Close drops every entry in handle order and stops accepting inserts.
// Values implementing io.Closer are closed; their errors are combined.
func (r *Registry[T]) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	handles := r.sortedHandles()
	entries := make([]*entry[T], len(handles))
	for i, h := range handles {
		entries[i] = r.entries[h]
	}
	r.entries = make(map[Handle]*entry[T])
	r.mu.Unlock()

	var err error
	for i, h := range handles {
		e := entries[i]
		e.retire()
		if c, ok := any(e.value).(io.Closer); ok {
			err = multierr.Append(err, c.Close())
		}
		r.notify(Event{Type: EventDropped, Handle: h, Value: e.value})
	}
	return err
}

func (r *Registry[T]) sortedHandles() []Handle {
	handles := make([]Handle, 0, len(r.entries))
	for h := range r.entries {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	return handles
}

func (r *Registry[T]) notify(e Event) {
	r.obsMu.RLock()
	defer r.obsMu.RUnlock()
	for _, o := range r.observers {
		o.OnResourceEvent(e)
	}
}
