package wire

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/wasm-functions/errors"
)

// Call is the request envelope.
type Call struct {
	_         struct{} `cbor:",toarray"`
	Namespace string
	Function  string
	Args      []cbor.RawMessage
}

// Fault is a capability error on the wire.
type Fault struct {
	_       struct{} `cbor:",toarray"`
	Code    uint8
	Message string
}

// Reply is the response envelope. At most one of Fault and Error is set.
type Reply struct {
	_       struct{} `cbor:",toarray"`
	Results []cbor.RawMessage
	Fault   *Fault
	Error   string
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = (cbor.DecOptions{MaxArrayElements: 1 << 20}).DecMode(); err != nil {
		panic(err)
	}
}

// Marshal encodes v with the envelope's encoding options.
func Marshal(v any) ([]byte, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, errors.Malformed(errors.PhaseTransport, "failed to encode cbor", err)
	}
	return data, nil
}

// Unmarshal decodes data into v.
func Unmarshal(data []byte, v any) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return errors.Malformed(errors.PhaseTransport, "failed to decode cbor", err)
	}
	return nil
}

func encodeAll(values []any) ([]cbor.RawMessage, error) {
	out := make([]cbor.RawMessage, len(values))
	for i, v := range values {
		data, err := Marshal(v)
		if err != nil {
			return nil, err
		}
		out[i] = data
	}
	return out, nil
}
