// Package encoding converts between guest values and the byte payloads
// capabilities carry.
//
// A Codec pairs an encoder and a decoder for one Go type. Adapters take a
// Codec wherever the original call deals in bytes, so a handler can store
// JSON documents in the cache or read a secret as a string without extra
// conversion code:
//
//	user, ok, err := cache.GetAs(ctx, key, encoding.JSON[User]())
package encoding

import (
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"

	"github.com/wippyai/wasm-functions/errors"
)

// Codec converts T to and from bytes.
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(data []byte) (T, error)
	// ContentType is the media type of encoded values.
	ContentType() string
}

var api = jsoniter.ConfigCompatibleWithStandardLibrary

// API returns the JSON configuration shared by the module.
func API() jsoniter.API { return api }

// Bytes passes payloads through unchanged.
func Bytes() Codec[[]byte] { return bytesCodec{} }

type bytesCodec struct{}

func (bytesCodec) Encode(v []byte) ([]byte, error)    { return v, nil }
func (bytesCodec) Decode(data []byte) ([]byte, error) { return data, nil }
func (bytesCodec) ContentType() string                { return "application/octet-stream" }

// String requires payloads to be valid UTF-8.
func String() Codec[string] { return stringCodec{} }

type stringCodec struct{}

func (stringCodec) Encode(v string) ([]byte, error) { return []byte(v), nil }

func (stringCodec) Decode(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.InvalidInput(errors.PhaseDecode, "payload is not valid UTF-8")
	}
	return string(data), nil
}

func (stringCodec) ContentType() string { return "text/plain; charset=utf-8" }

// JSON encodes T as a JSON document.
func JSON[T any]() Codec[T] { return jsonCodec[T]{} }

type jsonCodec[T any] struct{}

func (jsonCodec[T]) Encode(v T) ([]byte, error) {
	data, err := api.Marshal(v)
	if err != nil {
		return nil, errors.Malformed(errors.PhaseEncode, "failed to encode json", err)
	}
	return data, nil
}

func (jsonCodec[T]) Decode(data []byte) (T, error) {
	var v T
	if err := api.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, errors.Malformed(errors.PhaseDecode, "failed to decode json", err)
	}
	return v, nil
}

func (jsonCodec[T]) ContentType() string { return "application/json; charset=utf-8" }
