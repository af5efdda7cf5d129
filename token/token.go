// Package token vends disposable, scoped API keys through the host.
//
// A token carries either super-user rights or an explicit list of
// grants over caches, topics and functions:
//
//	tok, err := token.Default().Generate(ctx, time.Hour, token.Explicit(
//		token.Cache(token.CacheReadOnly, token.Name("users"), token.KeyPrefix([]byte("user:"))),
//		token.Topic(token.TopicReadWrite, token.All(), token.Prefix("chat.")),
//	))
package token

import (
	"context"
	"math"
	"time"

	"github.com/wippyai/wasm-functions/bindings"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/errors"
)

const capability = "token"

const (
	CacheReadWrite = contract.CacheRoleReadWrite
	CacheReadOnly  = contract.CacheRoleReadOnly
	CacheWriteOnly = contract.CacheRoleWriteOnly

	TopicReadWrite = contract.TopicRoleReadWrite
	TopicReadOnly  = contract.TopicRoleReadOnly
	TopicWriteOnly = contract.TopicRoleWriteOnly
)

// All selects every cache, topic or function.
func All() contract.Selector { return contract.Selector{Kind: contract.SelectAll} }

// Name selects one cache, topic or function by name.
func Name(name string) contract.Selector {
	return contract.Selector{Kind: contract.SelectName, Name: name}
}

// Prefix selects topics or functions by name prefix. Caches cannot be
// selected by prefix.
func Prefix(prefix string) contract.Selector {
	return contract.Selector{Kind: contract.SelectPrefix, Name: prefix}
}

func AllItems() contract.ItemSelector { return contract.ItemSelector{Kind: contract.SelectAll} }

func Key(key []byte) contract.ItemSelector {
	return contract.ItemSelector{Kind: contract.SelectName, Key: key}
}

func KeyPrefix(prefix []byte) contract.ItemSelector {
	return contract.ItemSelector{Kind: contract.SelectPrefix, Key: prefix}
}

// Cache grants role over the items of the selected caches.
func Cache(role contract.CacheRole, cache contract.Selector, items contract.ItemSelector) contract.Permission {
	return contract.Permission{
		Kind:  contract.PermitCache,
		Cache: contract.CachePermission{Role: role, Cache: cache, Item: items},
	}
}

// Topic grants role over the selected topics of the selected caches.
func Topic(role contract.TopicRole, cache, topic contract.Selector) contract.Permission {
	return contract.Permission{
		Kind:  contract.PermitTopic,
		Topic: contract.TopicPermission{Role: role, Cache: cache, Topic: topic},
	}
}

// Function grants invoke on the selected functions of the selected caches.
func Function(cache, function contract.Selector) contract.Permission {
	return contract.Permission{
		Kind:     contract.PermitFunction,
		Function: contract.FunctionPermission{Role: contract.FunctionRoleInvoke, Cache: cache, Function: function},
	}
}

func SuperUser() contract.Permissions { return contract.Permissions{SuperUser: true} }

func Explicit(grants ...contract.Permission) contract.Permissions {
	return contract.Permissions{Explicit: grants}
}

// Token is a vended key.
type Token struct {
	APIKey     string
	Endpoint   string
	ValidUntil time.Time
}

// Expired reports whether the token is no longer valid at now.
func (t Token) Expired(now time.Time) bool { return !now.Before(t.ValidUntil) }

type Option func(*contract.TokenRequest)

// WithTokenID tags the token so it can be identified in the host's logs.
func WithTokenID(id string) Option {
	return func(r *contract.TokenRequest) { r.TokenID = &id }
}

type Client struct {
	token contract.Token
}

func New(b *contract.Bindings) *Client {
	return &Client{token: b.Token}
}

func Default() *Client {
	return New(bindings.Current())
}

// Generate asks the host for a key valid for validFor, rounded down to
// whole seconds.
func (c *Client) Generate(ctx context.Context, validFor time.Duration, perms contract.Permissions, opts ...Option) (Token, error) {
	h, err := bindings.Require(c.token, capability)
	if err != nil {
		return Token{}, err
	}
	secs := validFor / time.Second
	if secs < 1 || secs > math.MaxUint32 {
		return Token{}, errors.New(errors.PhaseEncode, errors.KindMalformed).
			Capability(capability, "generate-disposable-token").
			Detail("validity %s out of range", validFor).
			Build()
	}
	if !perms.SuperUser && len(perms.Explicit) == 0 {
		return Token{}, errors.New(errors.PhaseEncode, errors.KindMalformed).
			Capability(capability, "generate-disposable-token").
			Detail("no permissions granted").
			Build()
	}

	req := contract.TokenRequest{ValidForSeconds: uint32(secs), Permissions: perms}
	for _, opt := range opts {
		opt(&req)
	}
	tok, err := h.GenerateDisposableToken(ctx, req)
	if err != nil {
		return Token{}, errors.Host(capability, "generate-disposable-token", err)
	}
	return Token{
		APIKey:     tok.APIKey,
		Endpoint:   tok.Endpoint,
		ValidUntil: time.Unix(int64(tok.ValidUntil), 0),
	}, nil
}

// Generate calls Generate on the default client.
func Generate(ctx context.Context, validFor time.Duration, perms contract.Permissions, opts ...Option) (Token, error) {
	return Default().Generate(ctx, validFor, perms, opts...)
}
