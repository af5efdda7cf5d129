package resource

import (
	"context"
	"sync"

	"github.com/wippyai/wasm-functions/errors"
)

// State is the lifecycle position of an Owner.
type State uint8

const (
	StateUninitialized State = iota
	StateConstructed
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConstructed:
		return "constructed"
	case StateReleased:
		return "released"
	}
	return "unknown"
}

// BuildFunc issues the single host construction call. parents holds the
// parents' handles in the order they were passed to Construct.
type BuildFunc func(ctx context.Context, parents []Handle) (Handle, error)

// DropFunc tells the host a handle is no longer used.
type DropFunc func(ctx context.Context, h Handle) error

// Owner exclusively owns one host resource handle on the guest side.
//
// An Owner built from parents holds a borrow on each of them until it is
// released, and an Owner with live borrows refuses to release. Using or
// deriving from a released Owner fails with ErrReleased.
type Owner struct {
	drop    DropFunc
	parents []*Owner
	typ     Type
	handle  Handle
	borrows int
	state   State
	mu      sync.Mutex
}

// Construct borrows every parent, issues build and returns the new Owner.
// On failure the parents' borrows are returned and nothing needs releasing.
func Construct(ctx context.Context, typ Type, build BuildFunc, drop DropFunc, parents ...*Owner) (*Owner, error) {
	handles := make([]Handle, 0, len(parents))
	for i, p := range parents {
		h, err := p.acquire()
		if err != nil {
			unpin(parents[:i])
			return nil, err
		}
		handles = append(handles, h)
	}

	h, err := build(ctx, handles)
	if err != nil {
		unpin(parents)
		return nil, err
	}
	if h == 0 {
		unpin(parents)
		return nil, errors.New(errors.PhaseLifetime, errors.KindInternal).
			Detail("host returned an invalid %s handle", typ).
			Build()
	}

	return &Owner{
		typ:     typ,
		handle:  h,
		state:   StateConstructed,
		parents: parents,
		drop:    drop,
	}, nil
}

// Adopt takes ownership of a handle the host created as the result of
// another call, such as a response stream returned by a pipeline.
func Adopt(typ Type, h Handle, drop DropFunc, parents ...*Owner) (*Owner, error) {
	return Construct(context.Background(), typ, func(context.Context, []Handle) (Handle, error) {
		return h, nil
	}, drop, parents...)
}

// Type returns the resource type.
func (o *Owner) Type() Type { return o.typ }

// State returns the current lifecycle state.
func (o *Owner) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Handle returns the host token. It fails once the Owner is released.
func (o *Owner) Handle() (Handle, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateConstructed {
		return 0, ErrReleased
	}
	return o.handle, nil
}

// Borrow pins the Owner for the duration of one call that passes its
// handle by reference. The returned func returns the borrow and is safe to
// call more than once.
func (o *Owner) Borrow() (Handle, func(), error) {
	h, err := o.acquire()
	if err != nil {
		return 0, func() {}, err
	}
	var once sync.Once
	return h, func() { once.Do(o.unacquire) }, nil
}

// Borrows returns the number of outstanding borrows.
func (o *Owner) Borrows() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.borrows
}

// Release notifies the host exactly once and returns the parents'
// borrows. It fails with ErrOutstandingBorrow while derived resources are
// alive. Releasing again is a no-op.
func (o *Owner) Release(ctx context.Context) error {
	o.mu.Lock()
	if o.state != StateConstructed {
		o.mu.Unlock()
		return nil
	}
	if o.borrows > 0 {
		o.mu.Unlock()
		return ErrOutstandingBorrow
	}
	h, parents := o.handle, o.parents
	o.state = StateReleased
	o.parents = nil
	o.mu.Unlock()

	var err error
	if o.drop != nil {
		err = o.drop(ctx, h)
	}
	unpin(parents)
	return err
}

// Close releases with a background context, for use with defer.
func (o *Owner) Close() error {
	return o.Release(context.Background())
}

func (o *Owner) acquire() (Handle, error) {
	if o == nil {
		return 0, ErrReleased
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateConstructed {
		return 0, ErrReleased
	}
	o.borrows++
	return o.handle, nil
}

func (o *Owner) unacquire() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.borrows > 0 {
		o.borrows--
	}
}

func unpin(owners []*Owner) {
	for _, p := range owners {
		p.unacquire()
	}
}
