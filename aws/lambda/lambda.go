// Package lambda invokes AWS Lambda functions synchronously through the host.
package lambda

import (
	"context"
	"strings"

	"github.com/wippyai/wasm-functions/aws/auth"
	"github.com/wippyai/wasm-functions/bindings"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/encoding"
	"github.com/wippyai/wasm-functions/errors"
	"github.com/wippyai/wasm-functions/resource"
)

const capability = "aws-lambda"

// Name identifies a function and an optional version or alias.
type Name struct {
	Function  string
	Qualifier string
}

// ParseName splits "function:qualifier". A name without a colon has no
// qualifier; ARNs are passed through whole.
func ParseName(s string) Name {
	if strings.HasPrefix(s, "arn:") {
		return Name{Function: s}
	}
	if fn, q, ok := strings.Cut(s, ":"); ok {
		return Name{Function: fn, Qualifier: q}
	}
	return Name{Function: s}
}

// Response is the result of a synchronous invocation.
type Response struct {
	Payload    []byte
	StatusCode int32
}

type Client struct {
	lambda contract.Lambda
	owner  *resource.Owner
}

func NewClient(ctx context.Context, provider *auth.Provider) (*Client, error) {
	return NewClientWith(ctx, bindings.Current(), provider)
}

func NewClientWith(ctx context.Context, b *contract.Bindings, provider *auth.Provider) (*Client, error) {
	h, err := bindings.Require(b.Lambda, capability)
	if err != nil {
		return nil, err
	}
	owner, err := provider.Derive(ctx, resource.TypeLambdaClient, capability, h.ConstructorClient, h.ResourceDropClient)
	if err != nil {
		return nil, err
	}
	return &Client{lambda: h, owner: owner}, nil
}

// Invoke calls the function with payload and waits for its response.
func (c *Client) Invoke(ctx context.Context, name Name, payload []byte) (Response, error) {
	if name.Function == "" {
		return Response{}, errors.New(errors.PhaseEncode, errors.KindMalformed).
			Capability(capability, "invoke").
			Detail("function name cannot be empty").
			Build()
	}
	self, done, err := c.owner.Borrow()
	if err != nil {
		return Response{}, err
	}
	defer done()

	out, err := c.lambda.MethodClientInvoke(ctx, self, contract.InvokeRequest{
		FunctionName: name.Function,
		Qualifier:    name.Qualifier,
		Payload:      payload,
	})
	if err != nil {
		return Response{}, errors.Host(capability, "invoke", err)
	}
	return Response{StatusCode: out.StatusCode, Payload: out.Payload}, nil
}

// InvokeJSON encodes req as JSON, invokes the function and decodes the
// response payload into Resp.
func InvokeJSON[Req, Resp any](ctx context.Context, c *Client, name Name, req Req) (Resp, int32, error) {
	var zero Resp
	payload, err := encoding.JSON[Req]().Encode(req)
	if err != nil {
		return zero, 0, err
	}
	out, err := c.Invoke(ctx, name, payload)
	if err != nil {
		return zero, 0, err
	}
	resp, err := encoding.JSON[Resp]().Decode(out.Payload)
	if err != nil {
		return zero, out.StatusCode, err
	}
	return resp, out.StatusCode, nil
}

func (c *Client) Release(ctx context.Context) error { return c.owner.Release(ctx) }

func (c *Client) Close() error { return c.owner.Close() }
