package resource

import (
	"fmt"
	"sync"

	"github.com/wippyai/wasm-functions/errors"
)

// Table is a host-side resource table. Entries are typed, and an entry
// created from parents pins each of them with a borrow until it is dropped,
// so a parent can never be dropped out from under a derived resource.
type Table struct {
	entries   []entry
	freeList  []Handle
	observers []Observer
	mu        sync.Mutex
	obsMu     sync.RWMutex
	closed    bool
}

type entry struct {
	value       any
	typ         Type
	parents     []Handle
	borrowCount uint32
	valid       bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// Insert stores value and returns its handle. Every parent must be live;
// each gains one borrow that Drop returns.
func (t *Table) Insert(typ Type, value any, parents ...Handle) (Handle, error) {
	t.mu.Lock()

	if t.closed {
		t.mu.Unlock()
		return 0, ErrClosed
	}
	for _, p := range parents {
		if _, err := t.lookup(p); err != nil {
			t.mu.Unlock()
			return 0, err
		}
	}
	for _, p := range parents {
		t.entries[p-1].borrowCount++
	}

	e := entry{
		typ:     typ,
		value:   value,
		parents: parents,
		valid:   true,
	}

	var handle Handle
	if n := len(t.freeList); n > 0 {
		handle = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[handle-1] = e
	} else {
		t.entries = append(t.entries, e)
		handle = Handle(len(t.entries))
	}
	t.mu.Unlock()

	for _, p := range parents {
		t.notify(Event{Event: EventBorrowed, Handle: p})
	}
	t.notify(Event{Event: EventCreated, Handle: handle, Type: typ, Value: value})
	return handle, nil
}

// Get returns the value for handle if it is live and of type typ.
func (t *Table) Get(handle Handle, typ Type) (any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, err := t.lookup(handle)
	if err != nil {
		return nil, err
	}
	if e.typ != typ {
		return nil, errors.InvalidInput(errors.PhaseLifetime, "handle %d is %s, not %s", handle, e.typ, typ)
	}
	return e.value, nil
}

// Lookup is Get with the value asserted to T.
func Lookup[T any](t *Table, handle Handle, typ Type) (T, error) {
	var zero T
	v, err := t.Get(handle, typ)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, errors.Internal(errors.PhaseLifetime, fmt.Sprintf("handle %d holds %T", handle, v), nil)
	}
	return out, nil
}

// Drop removes handle, returns its parents' borrows and calls Drop on the
// value if it implements Dropper. It fails while other entries borrow it.
func (t *Table) Drop(handle Handle, typ Type) error {
	t.mu.Lock()

	e, err := t.lookup(handle)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	if e.typ != typ {
		t.mu.Unlock()
		return errors.InvalidInput(errors.PhaseLifetime, "handle %d is %s, not %s", handle, e.typ, typ)
	}
	if e.borrowCount > 0 {
		t.mu.Unlock()
		return ErrOutstandingBorrow
	}

	value, parents := e.value, e.parents
	*e = entry{}
	t.freeList = append(t.freeList, handle)

	for _, p := range parents {
		if pe, err := t.lookup(p); err == nil && pe.borrowCount > 0 {
			pe.borrowCount--
		}
	}
	t.mu.Unlock()

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}
	for _, p := range parents {
		t.notify(Event{Event: EventBorrowReturned, Handle: p})
	}
	t.notify(Event{Event: EventDropped, Handle: handle, Type: typ, Value: value})
	return nil
}

// Borrows returns the number of live entries derived from handle.
func (t *Table) Borrows(handle Handle) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, err := t.lookup(handle)
	if err != nil {
		return 0
	}
	return int(e.borrowCount)
}

// Len returns the number of live entries.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	count := 0
	for _, e := range t.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Close drops every live entry regardless of borrows and rejects further
// inserts. It is used when an invocation ends without the guest releasing
// everything it created.
func (t *Table) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	entries := t.entries
	t.entries = nil
	t.freeList = nil
	t.mu.Unlock()

	for i := len(entries) - 1; i >= 0; i-- {
		if !entries[i].valid {
			continue
		}
		if d, ok := entries[i].value.(Dropper); ok {
			d.Drop()
		}
		t.notify(Event{Event: EventDropped, Handle: Handle(i + 1), Type: entries[i].typ, Value: entries[i].value})
	}
	return nil
}

// lookup requires t.mu.
func (t *Table) lookup(handle Handle) (*entry, error) {
	if t.closed {
		return nil, ErrClosed
	}
	if handle == 0 || int(handle) > len(t.entries) {
		return nil, ErrInvalidHandle
	}
	e := &t.entries[handle-1]
	if !e.valid {
		return nil, ErrReleased
	}
	return e, nil
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
