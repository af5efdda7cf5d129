package token_test

import (
	"context"
	"testing"
	"time"

	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/devhost"
	"github.com/wippyai/wasm-functions/errors"
	"github.com/wippyai/wasm-functions/token"
)

var epoch = time.Unix(1_700_000_000, 0)

func newHost(t *testing.T, cfg devhost.TokenConfig) *devhost.Host {
	t.Helper()
	h, err := devhost.New(
		devhost.WithConfig(&devhost.Config{Token: cfg}),
		devhost.WithClock(func() time.Time { return epoch }),
	)
	if err != nil {
		t.Fatalf("devhost.New: %v", err)
	}
	return h
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	h := newHost(t, devhost.TokenConfig{Endpoint: "cache.example.com"})
	c := token.New(h.Bindings())

	perms := token.Explicit(
		token.Cache(token.CacheReadOnly, token.Name("users"), token.KeyPrefix([]byte("user:"))),
		token.Topic(token.TopicReadWrite, token.All(), token.Prefix("chat.")),
		token.Function(token.Name("default"), token.Name("resize")),
	)
	tok, err := c.Generate(ctx, time.Hour+500*time.Millisecond, perms, token.WithTokenID("session-42"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if tok.APIKey == "" || tok.Endpoint != "cache.example.com" {
		t.Errorf("token = %+v", tok)
	}
	if want := epoch.Add(time.Hour); !tok.ValidUntil.Equal(want) {
		t.Errorf("ValidUntil = %v, want %v", tok.ValidUntil, want)
	}
	if tok.Expired(epoch) || !tok.Expired(epoch.Add(time.Hour)) {
		t.Error("Expired disagrees with ValidUntil")
	}

	issued := h.Token.Issued()
	if len(issued) != 1 {
		t.Fatalf("issued %d tokens", len(issued))
	}
	if issued[0].TokenID == nil || *issued[0].TokenID != "session-42" {
		t.Errorf("token id = %v", issued[0].TokenID)
	}
	if got := issued[0].Permissions.Explicit; len(got) != 3 || got[2].Function.Role != contract.FunctionRoleInvoke {
		t.Errorf("permissions = %+v", got)
	}
}

func TestGenerate_Errors(t *testing.T) {
	readAll := token.Explicit(token.Cache(token.CacheReadWrite, token.All(), token.AllItems()))

	tests := []struct {
		name     string
		cfg      devhost.TokenConfig
		validFor time.Duration
		perms    contract.Permissions
		want     errors.Kind
	}{
		{"sub-second validity", devhost.TokenConfig{}, time.Millisecond, readAll, errors.KindMalformed},
		{"validity too long", devhost.TokenConfig{}, 200 * 365 * 24 * time.Hour, readAll, errors.KindMalformed},
		{"no grants", devhost.TokenConfig{}, time.Minute, token.Explicit(), errors.KindMalformed},
		{"super user refused", devhost.TokenConfig{}, time.Minute, token.SuperUser(), errors.KindPermissionDenied},
		{"cache by prefix", devhost.TokenConfig{}, time.Minute,
			token.Explicit(token.Cache(token.CacheReadOnly, token.Prefix("u"), token.AllItems())), errors.KindMalformed},
		{"empty topic name", devhost.TokenConfig{}, time.Minute,
			token.Explicit(token.Topic(token.TopicReadOnly, token.All(), token.Name(""))), errors.KindMalformed},
		{"unknown role", devhost.TokenConfig{}, time.Minute,
			token.Explicit(token.Cache(contract.CacheRoleCount, token.All(), token.AllItems())), errors.KindMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHost(t, tt.cfg)
			_, err := token.New(h.Bindings()).Generate(context.Background(), tt.validFor, tt.perms)
			if !errors.IsKind(err, tt.want) {
				t.Errorf("Generate = %v, want %v", err, tt.want)
			}
			if n := len(h.Token.Issued()); n != 0 {
				t.Errorf("issued %d tokens on error", n)
			}
		})
	}
}

func TestGenerate_SuperUserAndLimit(t *testing.T) {
	ctx := context.Background()
	h := newHost(t, devhost.TokenConfig{AllowSuperUser: true, Limit: 1})
	c := token.New(h.Bindings())

	tok, err := c.Generate(ctx, time.Minute, token.SuperUser())
	if err != nil {
		t.Fatalf("Generate super user: %v", err)
	}
	if tok.Endpoint != devhost.DefaultTokenEndpoint {
		t.Errorf("Endpoint = %q", tok.Endpoint)
	}
	if _, err := c.Generate(ctx, time.Minute, token.SuperUser()); !errors.IsKind(err, errors.KindLimitExceeded) {
		t.Errorf("second Generate = %v, want LimitExceeded", err)
	}
}

func TestGenerate_NoCapability(t *testing.T) {
	_, err := token.New(&contract.Bindings{}).Generate(context.Background(), time.Minute, token.SuperUser())
	if !errors.IsKind(err, errors.KindFailedPrecondition) {
		t.Errorf("Generate = %v, want FailedPrecondition", err)
	}
}
