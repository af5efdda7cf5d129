package redis

import (
	"fmt"
	"strconv"

	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/encoding"
	"github.com/wippyai/wasm-functions/errors"
)

// Kind discriminates Value.
type Kind = contract.RedisValueKind

const (
	KindNil    = contract.RedisNil
	KindInt    = contract.RedisInt
	KindData   = contract.RedisData
	KindBulk   = contract.RedisBulk
	KindStatus = contract.RedisStatus
	KindOkay   = contract.RedisOkay
)

// Value is one reply element. A Bulk value is a nested stream that the
// caller may traverse or Close; it is never read eagerly.
type Value struct {
	Bulk   *ResponseStream
	Status string
	Data   []byte
	Int    int64
	Kind   Kind
}

func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindInt:
		return "int(" + strconv.FormatInt(v.Int, 10) + ")"
	case KindData:
		return fmt.Sprintf("data(%d bytes)", len(v.Data))
	case KindBulk:
		return "bulk"
	case KindStatus:
		return "status(" + v.Status + ")"
	case KindOkay:
		return "okay"
	}
	return v.Kind.String()
}

// Bytes returns the payload of a Data value.
func (v Value) Bytes() ([]byte, error) {
	if v.Kind != KindData {
		return nil, unexpected("extract", v)
	}
	return v.Data, nil
}

// Extract decodes a Data value with codec.
func Extract[T any](v Value, codec encoding.Codec[T]) (T, error) {
	var zero T
	data, err := v.Bytes()
	if err != nil {
		return zero, err
	}
	return codec.Decode(data)
}

// unexpected reports a reply of the wrong shape. Status replies carry the
// server's message and map to FailedPrecondition like response errors do.
func unexpected(op string, v Value) *errors.Error {
	if v.Kind == KindStatus {
		return errors.New(errors.PhaseHost, errors.KindFailedPrecondition).
			Capability(capability, op).
			Detail("status message returned from redis: %s", v.Status).
			Build()
	}
	return errors.New(errors.PhaseDecode, errors.KindMalformed).
		Capability(capability, op).
		Detail("unexpected %s response", v).
		Build()
}
