// Package s3 reads and writes objects through the host's S3 client.
package s3

import (
	"context"

	"github.com/wippyai/wasm-functions/aws/auth"
	"github.com/wippyai/wasm-functions/bindings"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/data"
	"github.com/wippyai/wasm-functions/encoding"
	"github.com/wippyai/wasm-functions/errors"
	"github.com/wippyai/wasm-functions/resource"
)

const capability = "aws-s3"

// Client is an S3 client resource borrowing a credentials provider.
type Client struct {
	s3       contract.S3
	bindings *contract.Bindings
	owner    *resource.Owner
}

func NewClient(ctx context.Context, provider *auth.Provider) (*Client, error) {
	return NewClientWith(ctx, bindings.Current(), provider)
}

func NewClientWith(ctx context.Context, b *contract.Bindings, provider *auth.Provider) (*Client, error) {
	h, err := bindings.Require(b.S3, capability)
	if err != nil {
		return nil, err
	}
	owner, err := provider.Derive(ctx, resource.TypeS3Client, capability, h.ConstructorClient, h.ResourceDropClient)
	if err != nil {
		return nil, err
	}
	return &Client{s3: h, bindings: b, owner: owner}, nil
}

// Lookup returns the object body and whether the object exists.
func (c *Client) Lookup(ctx context.Context, bucket, key string) ([]byte, bool, error) {
	self, done, err := c.owner.Borrow()
	if err != nil {
		return nil, false, err
	}
	defer done()

	body, ok, err := c.s3.MethodClientGetObject(ctx, self, bucket, key)
	if err != nil {
		return nil, false, errors.Host(capability, "get", err)
	}
	return body, ok, nil
}

// Get returns the object body, or a NotFound error when it does not exist.
func (c *Client) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	body, ok, err := c.Lookup(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.PhaseHost, errors.KindNotFound).
			Capability(capability, "get").
			Detail("object s3://%s/%s not found", bucket, key).
			Build()
	}
	return body, nil
}

// GetData returns the object body as it was handed over, inline or as a
// host buffer to read in chunks. The caller must drain or close it.
func (c *Client) GetData(ctx context.Context, bucket, key string) (*data.Data, bool, error) {
	self, done, err := c.owner.Borrow()
	if err != nil {
		return nil, false, err
	}
	defer done()

	d, ok, err := c.s3.MethodClientGetObjectData(ctx, self, bucket, key)
	if err != nil {
		return nil, false, errors.Host(capability, "get-data", err)
	}
	if !ok {
		return nil, false, nil
	}
	body, err := data.NewWith(c.bindings, d)
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

// Put stores body under bucket/key.
func (c *Client) Put(ctx context.Context, bucket, key string, body []byte) error {
	self, done, err := c.owner.Borrow()
	if err != nil {
		return err
	}
	defer done()
	return errors.Host(capability, "put", c.s3.MethodClientPutObject(ctx, self, bucket, key, body))
}

// GetAs is Get followed by codec.Decode.
func GetAs[T any](ctx context.Context, c *Client, bucket, key string, codec encoding.Codec[T]) (T, error) {
	var zero T
	body, err := c.Get(ctx, bucket, key)
	if err != nil {
		return zero, err
	}
	return codec.Decode(body)
}

// PutAs encodes v with codec and stores it.
func PutAs[T any](ctx context.Context, c *Client, bucket, key string, v T, codec encoding.Codec[T]) error {
	body, err := codec.Encode(v)
	if err != nil {
		return err
	}
	return c.Put(ctx, bucket, key, body)
}

func (c *Client) Release(ctx context.Context) error { return c.owner.Release(ctx) }

func (c *Client) Close() error { return c.owner.Close() }
