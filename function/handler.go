package function

import (
	"context"

	"github.com/wippyai/wasm-functions/encoding"
)

// WebHandler serves one web invocation.
type WebHandler func(ctx context.Context, req *Request) (*Response, error)

// SpawnHandler serves one spawned invocation. It has no result.
type SpawnHandler func(ctx context.Context, payload []byte) error

// Bytes passes the raw body to fn.
func Bytes(fn func(ctx context.Context, req *Request, body []byte) (*Response, error)) WebHandler {
	return Decode(encoding.Bytes(), fn)
}

// String requires the body to be UTF-8 before calling fn.
func String(fn func(ctx context.Context, req *Request, body string) (*Response, error)) WebHandler {
	return Decode(encoding.String(), fn)
}

// Decode decodes the body with codec and calls fn with the value.
// fn is never called when decoding fails.
func Decode[T any](codec encoding.Codec[T], fn func(ctx context.Context, req *Request, v T) (*Response, error)) WebHandler {
	return func(ctx context.Context, req *Request) (*Response, error) {
		v, err := codec.Decode(req.Body)
		if err != nil {
			return nil, err
		}
		return fn(ctx, req, v)
	}
}

// JSON decodes the body as Req and encodes the result of fn as a JSON
// response with status 200.
func JSON[Req, Resp any](fn func(ctx context.Context, req Req) (Resp, error)) WebHandler {
	return Decode(encoding.JSON[Req](), func(ctx context.Context, _ *Request, v Req) (*Response, error) {
		out, err := fn(ctx, v)
		if err != nil {
			return nil, err
		}
		return JSONBody(out)
	})
}

// SpawnJSON decodes the spawn payload as T before calling fn.
func SpawnJSON[T any](fn func(ctx context.Context, v T) error) SpawnHandler {
	codec := encoding.JSON[T]()
	return func(ctx context.Context, payload []byte) error {
		v, err := codec.Decode(payload)
		if err != nil {
			return err
		}
		return fn(ctx, v)
	}
}
