// Package redis talks to a Redis or Valkey server through the host.
//
// Replies are streams: Pipe returns a ResponseStream with one element per
// command, read lazily one host call at a time. Nested (bulk) replies are
// streams of their own and are only read if the caller descends into them.
package redis

import (
	"context"
	"strconv"

	"github.com/wippyai/wasm-functions/bindings"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/errors"
	"github.com/wippyai/wasm-functions/resource"
)

const capability = "redis"

// Client is a connection resource on the host.
type Client struct {
	redis contract.Redis
	owner *resource.Owner
}

// NewClient connects to address ("redis://host:port") on the installed
// bindings.
func NewClient(ctx context.Context, address string) (*Client, error) {
	return NewClientWith(ctx, bindings.Current(), address)
}

func NewClientWith(ctx context.Context, b *contract.Bindings, address string) (*Client, error) {
	h, err := bindings.Require(b.Redis, capability)
	if err != nil {
		return nil, err
	}
	conn := contract.RedisConnection{Kind: contract.RedisBasicConnection, Address: address}
	owner, err := resource.Construct(ctx, resource.TypeRedisClient,
		func(ctx context.Context, _ []resource.Handle) (resource.Handle, error) {
			ch, err := h.ConstructorClient(ctx, conn)
			return ch, errors.Host(capability, "client", err)
		},
		func(ctx context.Context, self resource.Handle) error {
			return errors.Host(capability, "drop-client", h.ResourceDropClient(ctx, self))
		},
	)
	if err != nil {
		return nil, err
	}
	return &Client{redis: h, owner: owner}, nil
}

// Pipe sends cmds as one pipeline and returns the reply stream.
func (c *Client) Pipe(ctx context.Context, cmds ...Command) (*ResponseStream, error) {
	if len(cmds) == 0 {
		return nil, errors.New(errors.PhaseEncode, errors.KindMalformed).
			Capability(capability, "pipe").
			Detail("pipeline needs at least one command").
			Build()
	}
	self, done, err := c.owner.Borrow()
	if err != nil {
		return nil, err
	}
	defer done()

	h, err := c.redis.MethodClientPipe(ctx, self, wireCommands(cmds))
	if err != nil {
		return nil, errors.Host(capability, "pipe", err)
	}
	return adoptStream(c.redis, c.owner, h)
}

// first runs cmd and returns its single reply, closing the stream. ok is
// false if the host returned an empty stream.
func (c *Client) first(ctx context.Context, cmd Command) (Value, bool, error) {
	rs, err := c.Pipe(ctx, cmd)
	if err != nil {
		return Value{}, false, err
	}
	v, ok, err := rs.Next(ctx)
	if cerr := rs.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Value{}, false, err
	}
	return v, ok, nil
}

// Lookup returns the value of key and whether it exists. Integer replies
// are returned in decimal.
func (c *Client) Lookup(ctx context.Context, key []byte) ([]byte, bool, error) {
	v, ok, err := c.first(ctx, GetCommand(key))
	if err != nil || !ok {
		return nil, false, err
	}
	switch v.Kind {
	case KindNil:
		return nil, false, nil
	case KindData:
		return v.Data, true, nil
	case KindInt:
		return strconv.AppendInt(nil, v.Int, 10), true, nil
	case KindBulk:
		v.Bulk.Close()
	}
	return nil, false, unexpected("get", v)
}

// Get returns the value of key, or a NotFound error if it is missing.
func (c *Client) Get(ctx context.Context, key []byte) ([]byte, error) {
	data, ok, err := c.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.PhaseHost, errors.KindNotFound).
			Capability(capability, "get").
			Detail("key %q not found", key).
			Build()
	}
	return data, nil
}

// Set stores value under key. With IfExists or IfNotExists, an unmet
// condition is a FailedPrecondition error.
func (c *Client) Set(ctx context.Context, key, value []byte, opts ...SetOption) error {
	cmd, conditional := setCommand(key, value, opts)
	v, ok, err := c.first(ctx, cmd)
	if err != nil {
		return err
	}
	switch {
	case ok && v.Kind == KindOkay:
		return nil
	case ok && v.Kind == KindNil && conditional:
		return errors.New(errors.PhaseHost, errors.KindFailedPrecondition).
			Capability(capability, "set").
			Detail("set condition not met for key %q", key).
			Build()
	case !ok:
		return errors.New(errors.PhaseDecode, errors.KindMalformed).
			Capability(capability, "set").
			Detail("empty response").
			Build()
	}
	if v.Kind == KindBulk {
		v.Bulk.Close()
	}
	return unexpected("set", v)
}

// Delete removes keys and returns how many existed.
func (c *Client) Delete(ctx context.Context, keys ...[]byte) (int64, error) {
	v, ok, err := c.first(ctx, DelCommand(keys...))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.New(errors.PhaseDecode, errors.KindMalformed).
			Capability(capability, "del").
			Detail("empty response").
			Build()
	}
	if v.Kind == KindInt {
		return v.Int, nil
	}
	if v.Kind == KindBulk {
		v.Bulk.Close()
	}
	return 0, unexpected("del", v)
}

// Release drops the connection. It fails with resource.ErrOutstandingBorrow
// while any response stream from this client is open.
func (c *Client) Release(ctx context.Context) error { return c.owner.Release(ctx) }

func (c *Client) Close() error { return c.owner.Close() }
