// Package auth creates AWS credentials providers on the host.
package auth

import (
	"context"

	"github.com/wippyai/wasm-functions/bindings"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/environment"
	"github.com/wippyai/wasm-functions/errors"
	"github.com/wippyai/wasm-functions/resource"
)

const capability = "aws-auth"

// Unset is used for credential fields missing from the environment.
const Unset = "UNSET"

// Credentials is a static access key pair.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// CredentialsFromEnvironment reads <prefix>AWS_ACCESS_KEY_ID and
// <prefix>AWS_SECRET_ACCESS_KEY. Missing values are set to Unset, which
// the host will reject as unauthorized.
func CredentialsFromEnvironment(v *environment.Values, prefix string) Credentials {
	return Credentials{
		AccessKeyID:     v.String(prefix+"AWS_ACCESS_KEY_ID", Unset),
		SecretAccessKey: v.String(prefix+"AWS_SECRET_ACCESS_KEY", Unset),
	}
}

// Provider is a host credentials provider. Service clients borrow it, so
// it cannot be released while any of them is alive.
type Provider struct {
	owner  *resource.Owner
	region string
}

type Client struct {
	auth contract.AWSAuth
}

func New(b *contract.Bindings) *Client {
	return &Client{auth: b.AWSAuth}
}

func Default() *Client {
	return New(bindings.Current())
}

// NewProvider creates a provider for region from static credentials.
func (c *Client) NewProvider(ctx context.Context, region string, creds Credentials) (*Provider, error) {
	h, err := bindings.Require(c.auth, capability)
	if err != nil {
		return nil, err
	}
	if region == "" {
		return nil, errors.New(errors.PhaseEncode, errors.KindMalformed).
			Capability(capability, "provider").
			Detail("region cannot be empty").
			Build()
	}

	authorization := contract.Authorization{
		Kind: contract.AuthorizationHardcoded,
		Hardcoded: contract.Credentials{
			AccessKeyID:     creds.AccessKeyID,
			SecretAccessKey: creds.SecretAccessKey,
		},
	}
	owner, err := resource.Construct(ctx, resource.TypeCredentialsProvider,
		func(ctx context.Context, _ []resource.Handle) (resource.Handle, error) {
			ph, err := h.Provider(ctx, authorization, region)
			return ph, errors.Host(capability, "provider", err)
		},
		func(ctx context.Context, self resource.Handle) error {
			return errors.Host(capability, "drop-credentials-provider", h.ResourceDropCredentialsProvider(ctx, self))
		},
	)
	if err != nil {
		return nil, err
	}
	return &Provider{owner: owner, region: region}, nil
}

// NewProvider calls NewProvider on the default client.
func NewProvider(ctx context.Context, region string, creds Credentials) (*Provider, error) {
	return Default().NewProvider(ctx, region, creds)
}

// Region returns the region the provider was created for.
func (p *Provider) Region() string { return p.region }

// Owner exposes the provider's lifetime so service clients can borrow it.
func (p *Provider) Owner() *resource.Owner { return p.owner }

// Release drops the provider on the host. It fails with
// resource.ErrOutstandingBorrow while clients built from it are alive.
func (p *Provider) Release(ctx context.Context) error {
	return p.owner.Release(ctx)
}

func (p *Provider) Close() error { return p.owner.Close() }

// Derive constructs a service client resource that borrows p until the
// client is released. construct and drop are the service's host calls.
func (p *Provider) Derive(
	ctx context.Context,
	typ resource.Type,
	service string,
	construct func(ctx context.Context, provider resource.Handle) (resource.Handle, error),
	drop func(ctx context.Context, self resource.Handle) error,
) (*resource.Owner, error) {
	return resource.Construct(ctx, typ,
		func(ctx context.Context, parents []resource.Handle) (resource.Handle, error) {
			h, err := construct(ctx, parents[0])
			return h, errors.Host(service, "client", err)
		},
		func(ctx context.Context, self resource.Handle) error {
			return errors.Host(service, "drop-client", drop(ctx, self))
		},
		p.owner,
	)
}
