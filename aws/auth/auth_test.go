package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/wippyai/wasm-functions/aws/auth"
	"github.com/wippyai/wasm-functions/aws/s3"
	"github.com/wippyai/wasm-functions/devhost"
	"github.com/wippyai/wasm-functions/environment"
	ferrors "github.com/wippyai/wasm-functions/errors"
	"github.com/wippyai/wasm-functions/resource"
)

var creds = auth.Credentials{AccessKeyID: "AKID", SecretAccessKey: "secret"}

func TestProvider_PinnedByClient(t *testing.T) {
	ctx := context.Background()
	h, err := devhost.New()
	if err != nil {
		t.Fatalf("devhost.New: %v", err)
	}
	b := h.Bindings()

	p, err := auth.New(b).NewProvider(ctx, "us-east-1", creds)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	c, err := s3.NewClientWith(ctx, b, p)
	if err != nil {
		t.Fatalf("s3.NewClientWith: %v", err)
	}

	if err := p.Release(ctx); !errors.Is(err, resource.ErrOutstandingBorrow) {
		t.Fatalf("Release with live client = %v, want ErrOutstandingBorrow", err)
	}
	if h.Resources() != 2 {
		t.Fatalf("host resources = %d, want provider and client", h.Resources())
	}

	// The client still works after the refused release.
	if err := c.Put(ctx, "bucket", "k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := c.Release(ctx); err != nil {
		t.Fatalf("client Release: %v", err)
	}
	if err := p.Release(ctx); err != nil {
		t.Fatalf("provider Release: %v", err)
	}
	if h.Resources() != 0 {
		t.Errorf("host resources = %d, want 0", h.Resources())
	}

	if _, err := s3.NewClientWith(ctx, b, p); !errors.Is(err, resource.ErrReleased) {
		t.Errorf("client from released provider = %v, want ErrReleased", err)
	}
}

func TestNewProvider_Errors(t *testing.T) {
	h, err := devhost.New(devhost.WithConfig(&devhost.Config{
		Credentials: []devhost.Credential{{AccessKeyID: "AKID", SecretAccessKey: "secret"}},
	}))
	if err != nil {
		t.Fatalf("devhost.New: %v", err)
	}
	c := auth.New(h.Bindings())

	tests := []struct {
		name   string
		region string
		creds  auth.Credentials
		want   ferrors.Kind
	}{
		{name: "empty region", region: "", creds: creds, want: ferrors.KindMalformed},
		{name: "unset", region: "us-east-1", creds: auth.Credentials{AccessKeyID: auth.Unset, SecretAccessKey: auth.Unset}, want: ferrors.KindUnauthorized},
		{name: "wrong secret", region: "us-east-1", creds: auth.Credentials{AccessKeyID: "AKID", SecretAccessKey: "nope"}, want: ferrors.KindUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.NewProvider(context.Background(), tt.region, tt.creds)
			if !ferrors.IsKind(err, tt.want) {
				t.Errorf("NewProvider = %v, want %v", err, tt.want)
			}
		})
	}
	if h.Resources() != 0 {
		t.Errorf("failed constructions left %d resources", h.Resources())
	}
}

func TestCredentialsFromEnvironment(t *testing.T) {
	v := environment.FromPairs([][2]string{
		{"PROD_AWS_ACCESS_KEY_ID", "AKPROD"},
		{"PROD_AWS_SECRET_ACCESS_KEY", "s3cr3t"},
		{"AWS_ACCESS_KEY_ID", "AKDEFAULT"},
	})

	if got := auth.CredentialsFromEnvironment(v, "PROD_"); got.AccessKeyID != "AKPROD" || got.SecretAccessKey != "s3cr3t" {
		t.Errorf("PROD_ = %+v", got)
	}
	if got := auth.CredentialsFromEnvironment(v, ""); got.AccessKeyID != "AKDEFAULT" || got.SecretAccessKey != auth.Unset {
		t.Errorf("default = %+v", got)
	}
}
