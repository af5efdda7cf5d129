package wire

import (
	"context"

	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/errors"
)

// Transport delivers one encoded call and returns the encoded reply.
type Transport func(ctx context.Context, request []byte) ([]byte, error)

// Client issues capability calls over a Transport.
type Client struct {
	transport Transport
}

func NewClient(t Transport) *Client {
	return &Client{transport: t}
}

// Call invokes the contract method named method (its Go name) in
// namespace. Results are decoded into the pointers in results. A typed
// fault is returned as the namespace's capability error.
func (c *Client) Call(ctx context.Context, namespace, method string, results []any, args ...any) error {
	fn := contract.WITName(namespace, method)
	encoded, err := encodeAll(args)
	if err != nil {
		return err
	}
	request, err := Marshal(Call{Namespace: namespace, Function: fn, Args: encoded})
	if err != nil {
		return err
	}
	data, err := c.transport(ctx, request)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.New(errors.PhaseTransport, errors.KindInternal).
			Capability(namespace, fn).
			Cause(err).
			Build()
	}

	var reply Reply
	if err := Unmarshal(data, &reply); err != nil {
		return err
	}
	switch {
	case reply.Fault != nil:
		fault, err := contract.FaultFor(namespace, reply.Fault.Code, reply.Fault.Message)
		if err != nil {
			return errors.New(errors.PhaseTransport, errors.KindOther).
				Capability(namespace, fn).
				Cause(err).
				Build()
		}
		return fault
	case reply.Error != "":
		return errors.New(errors.PhaseTransport, errors.KindInternal).
			Capability(namespace, fn).
			Detail("%s", reply.Error).
			Build()
	}

	if len(reply.Results) != len(results) {
		return errors.New(errors.PhaseTransport, errors.KindMalformed).
			Capability(namespace, fn).
			Detail("expected %d results, got %d", len(results), len(reply.Results)).
			Build()
	}
	for i, r := range reply.Results {
		if err := Unmarshal(r, results[i]); err != nil {
			return err
		}
	}
	return nil
}

// NewBindings returns bindings whose every capability calls through t.
func NewBindings(t Transport) *contract.Bindings {
	c := NewClient(t)
	return &contract.Bindings{
		CacheScalar: cacheScalar{c},
		CacheList:   cacheList{c},
		Topic:       topic{c},
		AWSAuth:     awsAuth{c},
		DDB:         ddb{c},
		S3:          s3{c},
		Secrets:     secrets{c},
		Lambda:      lambda{c},
		HTTP:        httpClient{c},
		Redis:       redis{c},
		Spawn:       spawn{c},
		WebSupport:  webSupport{c},
		Environment: environment{c},
		Logging:     logging{c},
		Token:       token{c},
		Bytes:       buffers{c},
	}
}
