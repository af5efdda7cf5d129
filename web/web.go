// Package web exposes host support for web functions.
package web

import (
	"context"

	"github.com/wippyai/wasm-functions/bindings"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/encoding"
	"github.com/wippyai/wasm-functions/errors"
)

const capability = "web-function-support"

type Client struct {
	support contract.WebSupport
}

func New(b *contract.Bindings) *Client {
	return &Client{support: b.WebSupport}
}

func Default() *Client {
	return New(bindings.Current())
}

// TokenMetadata returns the metadata attached to the caller's API token.
// ok is false when the token carries none.
func (c *Client) TokenMetadata(ctx context.Context) (string, bool, error) {
	h, err := bindings.Require(c.support, capability)
	if err != nil {
		return "", false, err
	}
	md, ok, err := h.TokenMetadata(ctx)
	if err != nil {
		return "", false, errors.Host(capability, "token-metadata", err)
	}
	return md, ok, nil
}

// TokenMetadataAs decodes the token metadata as JSON into T.
func TokenMetadataAs[T any](ctx context.Context, c *Client) (T, bool, error) {
	var zero T
	md, ok, err := c.TokenMetadata(ctx)
	if err != nil || !ok {
		return zero, ok, err
	}
	v, err := encoding.JSON[T]().Decode([]byte(md))
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// TokenMetadata calls TokenMetadata on the default client.
func TokenMetadata(ctx context.Context) (string, bool, error) {
	return Default().TokenMetadata(ctx)
}
