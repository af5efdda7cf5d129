package web_test

import (
	"context"
	"testing"

	"github.com/wippyai/wasm-functions/devhost"
	"github.com/wippyai/wasm-functions/errors"
	"github.com/wippyai/wasm-functions/web"
)

func TestTokenMetadata(t *testing.T) {
	ctx := context.Background()
	h, err := devhost.New()
	if err != nil {
		t.Fatalf("devhost.New: %v", err)
	}
	c := web.New(h.Bindings())

	if md, ok, err := c.TokenMetadata(ctx); err != nil || ok || md != "" {
		t.Fatalf("TokenMetadata without metadata = %q, %v, %v", md, ok, err)
	}

	md := `{"tenant":"acme","tier":3}`
	h.Web.SetTokenMetadata(&md)

	type claims struct {
		Tenant string `json:"tenant"`
		Tier   int    `json:"tier"`
	}
	got, ok, err := web.TokenMetadataAs[claims](ctx, c)
	if err != nil || !ok {
		t.Fatalf("TokenMetadataAs = %v, %v", ok, err)
	}
	if got.Tenant != "acme" || got.Tier != 3 {
		t.Errorf("claims = %+v", got)
	}

	bad := "not json"
	h.Web.SetTokenMetadata(&bad)
	if _, _, err := web.TokenMetadataAs[claims](ctx, c); !errors.IsKind(err, errors.KindMalformed) {
		t.Errorf("TokenMetadataAs invalid = %v, want Malformed", err)
	}
}
