// Package httpclient issues outbound HTTP requests through the host.
//
// Any response the remote produces, including 4xx and 5xx, is returned as
// a Response; only failures to reach the remote are errors.
package httpclient

import (
	"context"
	"strings"

	"github.com/wippyai/wasm-functions/aws/auth"
	"github.com/wippyai/wasm-functions/bindings"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/encoding"
	"github.com/wippyai/wasm-functions/errors"
)

const capability = "http"

// Method is one of the verbs the host supports.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPut    Method = "PUT"
	MethodPost   Method = "POST"
	MethodDelete Method = "DELETE"
)

// Response is what the remote returned.
type Response struct {
	Headers []contract.Header
	Body    []byte
	Status  uint16
}

// Header returns the first value of the named header, matched
// case-insensitively.
func (r *Response) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// Success reports a 2xx status.
func (r *Response) Success() bool { return r.Status >= 200 && r.Status < 300 }

// Decode decodes the body with codec. The error carries the status so
// that an unexpected error page is easy to recognise.
func Decode[T any](r *Response, codec encoding.Codec[T]) (T, error) {
	v, err := codec.Decode(r.Body)
	if err != nil {
		var zero T
		return zero, errors.New(errors.PhaseDecode, errors.KindMalformed).
			Capability(capability, "decode").
			Detail("status: %d failed to decode body", r.Status).
			Cause(err).
			Build()
	}
	return v, nil
}

// DecodeJSON is Decode with the JSON codec.
func DecodeJSON[T any](r *Response) (T, error) {
	return Decode(r, encoding.JSON[T]())
}

// Option adjusts an outgoing request.
type Option func(*request)

type request struct {
	provider *auth.Provider
	service  string
	headers  []contract.Header
}

// WithHeader adds a request header. It may be repeated.
func WithHeader(name, value string) Option {
	return func(r *request) { r.headers = append(r.headers, contract.Header{Name: name, Value: value}) }
}

// WithContentType sets the Content-Type header.
func WithContentType(ct string) Option {
	return WithHeader("Content-Type", ct)
}

// WithSigV4 signs the request for service in the provider's region. The
// provider is borrowed for the duration of the call.
func WithSigV4(provider *auth.Provider, service string) Option {
	return func(r *request) {
		r.provider = provider
		r.service = service
	}
}

type Client struct {
	http contract.HTTP
}

func New(b *contract.Bindings) *Client {
	return &Client{http: b.HTTP}
}

func Default() *Client {
	return New(bindings.Current())
}

func (c *Client) Get(ctx context.Context, url string, opts ...Option) (*Response, error) {
	return c.Do(ctx, MethodGet, url, nil, opts...)
}

func (c *Client) Put(ctx context.Context, url string, body []byte, opts ...Option) (*Response, error) {
	return c.Do(ctx, MethodPut, url, body, opts...)
}

func (c *Client) Post(ctx context.Context, url string, body []byte, opts ...Option) (*Response, error) {
	return c.Do(ctx, MethodPost, url, body, opts...)
}

func (c *Client) Delete(ctx context.Context, url string, opts ...Option) (*Response, error) {
	return c.Do(ctx, MethodDelete, url, nil, opts...)
}

// PostJSON encodes v as the JSON body of a POST.
func PostJSON[T any](ctx context.Context, c *Client, url string, v T, opts ...Option) (*Response, error) {
	codec := encoding.JSON[T]()
	body, err := codec.Encode(v)
	if err != nil {
		return nil, err
	}
	return c.Post(ctx, url, body, append([]Option{WithContentType(codec.ContentType())}, opts...)...)
}

// PutJSON encodes v as the JSON body of a PUT.
func PutJSON[T any](ctx context.Context, c *Client, url string, v T, opts ...Option) (*Response, error) {
	codec := encoding.JSON[T]()
	body, err := codec.Encode(v)
	if err != nil {
		return nil, err
	}
	return c.Put(ctx, url, body, append([]Option{WithContentType(codec.ContentType())}, opts...)...)
}

// Do issues one request with method.
func (c *Client) Do(ctx context.Context, method Method, url string, body []byte, opts ...Option) (*Response, error) {
	h, err := bindings.Require(c.http, capability)
	if err != nil {
		return nil, err
	}

	var r request
	for _, opt := range opts {
		opt(&r)
	}
	req := contract.HTTPRequest{URL: url, Headers: r.headers, Body: body}

	if r.provider != nil {
		ph, done, err := r.provider.Owner().Borrow()
		if err != nil {
			return nil, err
		}
		defer done()
		req.Authorization = contract.HTTPAuthorization{
			Kind: contract.HTTPAuthorizationSigV4,
			SigV4: contract.SigV4{
				Provider: ph,
				Region:   r.provider.Region(),
				Service:  r.service,
			},
		}
	}

	var call func(context.Context, contract.HTTPRequest) (contract.HTTPResponse, error)
	switch method {
	case MethodGet:
		call = h.Get
	case MethodPut:
		call = h.Put
	case MethodPost:
		call = h.Post
	case MethodDelete:
		call = h.Delete
	default:
		return nil, errors.New(errors.PhaseEncode, errors.KindMalformed).
			Capability(capability, string(method)).
			Detail("unsupported method %q", method).
			Build()
	}

	resp, err := call(ctx, req)
	if err != nil {
		return nil, errors.Host(capability, strings.ToLower(string(method)), err)
	}
	return &Response{Status: resp.Status, Headers: resp.Headers, Body: resp.Body}, nil
}

// Get calls Get on the default client.
func Get(ctx context.Context, url string, opts ...Option) (*Response, error) {
	return Default().Get(ctx, url, opts...)
}

// Post calls Post on the default client.
func Post(ctx context.Context, url string, body []byte, opts ...Option) (*Response, error) {
	return Default().Post(ctx, url, body, opts...)
}
