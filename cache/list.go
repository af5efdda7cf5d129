package cache

import (
	"context"
	"time"

	"github.com/wippyai/wasm-functions/bindings"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/errors"
)

// PushOption configures a list push.
type PushOption func(*contract.ListPush)

// WithTTL sets the list's time to live.
func WithTTL(ttl time.Duration) PushOption {
	return func(p *contract.ListPush) { p.TTLMillis = SaturateTTL(ttl) }
}

// RefreshTTL resets the TTL of an existing list on push.
func RefreshTTL() PushOption {
	return func(p *contract.ListPush) { p.RefreshTTL = true }
}

// TruncateTo trims the opposite end of the list down to n elements.
func TruncateTo(n uint32) PushOption {
	return func(p *contract.ListPush) { p.TruncateTo = n }
}

// Popped is an element removed from a list.
type Popped struct {
	Value []byte
	// Length is the list length after the pop.
	Length uint32
}

// PushFront prepends value and returns the new list length.
func (c *Client) PushFront(ctx context.Context, name, value []byte, opts ...PushOption) (uint32, error) {
	h, err := bindings.Require(c.list, capability)
	if err != nil {
		return 0, err
	}
	n, err := h.ListPushFront(ctx, pushRequest(name, value, opts))
	if err != nil {
		return 0, errors.Host(capability, "list-push-front", err)
	}
	return n, nil
}

// PushBack appends value and returns the new list length.
func (c *Client) PushBack(ctx context.Context, name, value []byte, opts ...PushOption) (uint32, error) {
	h, err := bindings.Require(c.list, capability)
	if err != nil {
		return 0, err
	}
	n, err := h.ListPushBack(ctx, pushRequest(name, value, opts))
	if err != nil {
		return 0, errors.Host(capability, "list-push-back", err)
	}
	return n, nil
}

// PopFront removes the first element. ok is false if the list is missing
// or empty.
func (c *Client) PopFront(ctx context.Context, name []byte) (Popped, bool, error) {
	h, err := bindings.Require(c.list, capability)
	if err != nil {
		return Popped{}, false, err
	}
	resp, err := h.ListPopFront(ctx, name)
	if err != nil {
		return Popped{}, false, errors.Host(capability, "list-pop-front", err)
	}
	return popped(resp, "list-pop-front")
}

// PopBack removes the last element. ok is false if the list is missing or
// empty.
func (c *Client) PopBack(ctx context.Context, name []byte) (Popped, bool, error) {
	h, err := bindings.Require(c.list, capability)
	if err != nil {
		return Popped{}, false, err
	}
	resp, err := h.ListPopBack(ctx, name)
	if err != nil {
		return Popped{}, false, errors.Host(capability, "list-pop-back", err)
	}
	return popped(resp, "list-pop-back")
}

func pushRequest(name, value []byte, opts []PushOption) contract.ListPush {
	req := contract.ListPush{Name: name, Value: value}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

func popped(resp contract.PopResponse, op string) (Popped, bool, error) {
	switch resp.Kind {
	case contract.PopFound:
		return Popped{Value: resp.Value, Length: resp.ListLength}, true, nil
	case contract.PopMissing:
		return Popped{}, false, nil
	}
	return Popped{}, false, errors.New(errors.PhaseDecode, errors.KindMalformed).
		Capability(capability, op).
		Detail("unknown pop-response discriminant %d", resp.Kind).
		Build()
}
