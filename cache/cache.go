// Package cache reads and writes the key-value cache and its lists.
//
// Get reports a missing key as a NotFound error; Lookup reports it as
// found=false. Every call is a single host call with no retries.
package cache

import (
	"context"
	"time"

	"github.com/wippyai/wasm-functions/bindings"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/encoding"
	"github.com/wippyai/wasm-functions/errors"
)

const capability = "cache"

// Client calls the cache capabilities of one set of bindings.
type Client struct {
	scalar contract.CacheScalar
	list   contract.CacheList
}

// New returns a client over b.
func New(b *contract.Bindings) *Client {
	return &Client{scalar: b.CacheScalar, list: b.CacheList}
}

// Default returns a client over the installed bindings.
func Default() *Client {
	return New(bindings.Current())
}

// Lookup returns the value for key and whether it exists.
func (c *Client) Lookup(ctx context.Context, key []byte) ([]byte, bool, error) {
	h, err := bindings.Require(c.scalar, capability)
	if err != nil {
		return nil, false, err
	}
	v, ok, err := h.Get(ctx, key)
	if err != nil {
		return nil, false, errors.Host(capability, "get", err)
	}
	return v, ok, nil
}

// Get returns the value for key, or a NotFound error if it is missing.
func (c *Client) Get(ctx context.Context, key []byte) ([]byte, error) {
	v, ok, err := c.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.PhaseHost, errors.KindNotFound).
			Capability(capability, "get").
			Detail("key %q not found", key).
			Build()
	}
	return v, nil
}

// Set stores value under key for ttl.
func (c *Client) Set(ctx context.Context, key, value []byte, ttl time.Duration) error {
	h, err := bindings.Require(c.scalar, capability)
	if err != nil {
		return err
	}
	return errors.Host(capability, "set", h.Set(ctx, key, value, SaturateTTL(ttl)))
}

// GetAs is Get followed by codec.Decode.
func GetAs[T any](ctx context.Context, c *Client, key []byte, codec encoding.Codec[T]) (T, error) {
	var zero T
	data, err := c.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	return codec.Decode(data)
}

// LookupAs is Lookup followed by codec.Decode.
func LookupAs[T any](ctx context.Context, c *Client, key []byte, codec encoding.Codec[T]) (T, bool, error) {
	var zero T
	data, ok, err := c.Lookup(ctx, key)
	if err != nil || !ok {
		return zero, ok, err
	}
	v, err := codec.Decode(data)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// SetAs encodes v with codec and stores it.
func SetAs[T any](ctx context.Context, c *Client, key []byte, v T, codec encoding.Codec[T], ttl time.Duration) error {
	data, err := codec.Encode(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}

// SaturateTTL converts ttl to whole milliseconds, clamping negatives to zero.
func SaturateTTL(ttl time.Duration) uint64 {
	if ttl <= 0 {
		return 0
	}
	return uint64(ttl.Milliseconds())
}

// Get calls Get on the default client.
func Get(ctx context.Context, key []byte) ([]byte, error) {
	return Default().Get(ctx, key)
}

// Lookup calls Lookup on the default client.
func Lookup(ctx context.Context, key []byte) ([]byte, bool, error) {
	return Default().Lookup(ctx, key)
}

// Set calls Set on the default client.
func Set(ctx context.Context, key, value []byte, ttl time.Duration) error {
	return Default().Set(ctx, key, value, ttl)
}
