package contract

import "context"

type BytesErrorKind uint8

const (
	BytesMalformed BytesErrorKind = iota
	BytesOther

	BytesErrorKindCount
)

var bytesErrorNames = [...]string{
	BytesMalformed: "malformed",
	BytesOther:     "other",
}

var _ = [1]struct{}{}[len(bytesErrorNames)-int(BytesErrorKindCount)]

func (k BytesErrorKind) String() string     { return enumName(bytesErrorNames[:], uint8(k)) }
func (k BytesErrorKind) Capability() string { return "bytes" }

type BytesError = Failure[BytesErrorKind]

type DataKind uint8

const (
	DataValue DataKind = iota
	DataBuffer

	DataKindCount
)

var dataNames = [...]string{
	DataValue:  "value",
	DataBuffer: "buffer",
}

var _ = [1]struct{}{}[len(dataNames)-int(DataKindCount)]

func (k DataKind) String() string { return enumName(dataNames[:], uint8(k)) }

// Data is value(bytes) | buffer(buffer). A buffer value owns a new
// buffer handle.
type Data struct {
	_      struct{} `cbor:",toarray"`
	Kind   DataKind
	Value  []byte
	Buffer Handle
}

// Bytes is functions:host/bytes. A buffer is a host-side byte sequence
// read front to back; read returns at most max bytes and reports false
// once the buffer is exhausted.
type Bytes interface {
	MethodBufferRemaining(ctx context.Context, self Handle) (uint64, error)
	MethodBufferRead(ctx context.Context, self Handle, max uint32) ([]byte, bool, error)
	ResourceDropBuffer(ctx context.Context, self Handle) error
}
