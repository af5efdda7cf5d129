// Package spawn starts fire-and-forget invocations of other functions.
//
// A nil error means the host accepted the request; the spawned function's
// outcome is never reported back.
package spawn

import (
	"context"

	"github.com/wippyai/wasm-functions/bindings"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/encoding"
	"github.com/wippyai/wasm-functions/errors"
)

const capability = "spawn"

type Client struct {
	spawn contract.Spawn
}

func New(b *contract.Bindings) *Client {
	return &Client{spawn: b.Spawn}
}

func Default() *Client {
	return New(bindings.Current())
}

// Spawn asks the host to run function with payload.
func (c *Client) Spawn(ctx context.Context, function string, payload []byte) error {
	h, err := bindings.Require(c.spawn, capability)
	if err != nil {
		return err
	}
	if function == "" {
		return errors.New(errors.PhaseEncode, errors.KindMalformed).
			Capability(capability, "spawn-function").
			Detail("function name cannot be empty").
			Build()
	}
	return errors.Host(capability, "spawn-function", h.SpawnFunction(ctx, function, payload))
}

// SpawnAs encodes v with codec and spawns function with the result.
func SpawnAs[T any](ctx context.Context, c *Client, function string, v T, codec encoding.Codec[T]) error {
	payload, err := codec.Encode(v)
	if err != nil {
		return err
	}
	return c.Spawn(ctx, function, payload)
}

// SpawnJSON is SpawnAs with the JSON codec.
func SpawnJSON[T any](ctx context.Context, c *Client, function string, v T) error {
	return SpawnAs(ctx, c, function, v, encoding.JSON[T]())
}

// Spawn calls Spawn on the default client.
func Spawn(ctx context.Context, function string, payload []byte) error {
	return Default().Spawn(ctx, function, payload)
}
