// Package secrets reads values from AWS Secrets Manager through the host,
// optionally caching them in the function's cache.
package secrets

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-functions/aws/auth"
	"github.com/wippyai/wasm-functions/bindings"
	"github.com/wippyai/wasm-functions/cache"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/encoding"
	"github.com/wippyai/wasm-functions/errors"
	"github.com/wippyai/wasm-functions/resource"
)

const capability = "aws-secrets"

// Request selects a secret and optionally a version.
type Request struct {
	SecretID     string
	VersionID    string
	VersionStage string
}

// Client is a Secrets Manager client resource borrowing a credentials
// provider.
type Client struct {
	secrets  contract.Secrets
	owner    *resource.Owner
	cache    *cache.Client
	logger   *zap.Logger
	cacheTTL time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithCache keeps fetched secrets in the cache for ttl, keyed by secret
// id. Cache failures are logged and never fail a lookup.
func WithCache(c *cache.Client, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.cacheTTL = ttl
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

func NewClient(ctx context.Context, provider *auth.Provider, opts ...Option) (*Client, error) {
	return NewClientWith(ctx, bindings.Current(), provider, opts...)
}

func NewClientWith(ctx context.Context, b *contract.Bindings, provider *auth.Provider, opts ...Option) (*Client, error) {
	h, err := bindings.Require(b.Secrets, capability)
	if err != nil {
		return nil, err
	}
	owner, err := provider.Derive(ctx, resource.TypeSecretsClient, capability, h.ConstructorClient, h.ResourceDropClient)
	if err != nil {
		return nil, err
	}
	c := &Client{secrets: h, owner: owner, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the secret's bytes. String secrets are returned as their
// UTF-8 bytes.
func (c *Client) Get(ctx context.Context, req Request) ([]byte, error) {
	if req.SecretID == "" {
		return nil, errors.New(errors.PhaseEncode, errors.KindMalformed).
			Capability(capability, "get-secret-value").
			Detail("secret id cannot be empty").
			Build()
	}

	key := []byte(req.SecretID)
	if c.cache != nil {
		v, ok, err := c.cache.Lookup(ctx, key)
		switch {
		case err != nil:
			c.logger.Debug("secret cache lookup failed", zap.String("secret", req.SecretID), zap.Error(err))
		case ok:
			return v, nil
		default:
			c.logger.Debug("secret cache miss", zap.String("secret", req.SecretID))
		}
	}

	v, err := c.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, v, c.cacheTTL); err != nil {
			c.logger.Debug("failed to cache secret", zap.String("secret", req.SecretID), zap.Error(err))
		}
	}
	return v, nil
}

// GetString returns the secret decoded as UTF-8 text.
func (c *Client) GetString(ctx context.Context, id string) (string, error) {
	return GetAs(ctx, c, Request{SecretID: id}, encoding.String())
}

// GetAs is Get followed by codec.Decode.
func GetAs[T any](ctx context.Context, c *Client, req Request, codec encoding.Codec[T]) (T, error) {
	var zero T
	v, err := c.Get(ctx, req)
	if err != nil {
		return zero, err
	}
	return codec.Decode(v)
}

func (c *Client) fetch(ctx context.Context, req Request) ([]byte, error) {
	self, done, err := c.owner.Borrow()
	if err != nil {
		return nil, err
	}
	defer done()

	out, err := c.secrets.MethodClientGetSecretValue(ctx, self, contract.GetSecretValueRequest{
		SecretID:     req.SecretID,
		VersionID:    req.VersionID,
		VersionStage: req.VersionStage,
	})
	if err != nil {
		return nil, errors.Host(capability, "get-secret-value", err)
	}
	switch out.Kind {
	case contract.SecretBytes:
		return out.Bytes, nil
	case contract.SecretString:
		return []byte(out.String), nil
	}
	return nil, errors.New(errors.PhaseDecode, errors.KindMalformed).
		Capability(capability, "get-secret-value").
		Detail("unknown secret-value discriminant %d", out.Kind).
		Build()
}

func (c *Client) Release(ctx context.Context) error { return c.owner.Release(ctx) }

func (c *Client) Close() error { return c.owner.Close() }
