package devhost

import (
	"context"
	"sync"

	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/resource"
)

// InlineDataLimit is the largest payload handed to a function inline;
// anything larger is served through a buffer.
const InlineDataLimit = 64 << 10

type buffer struct {
	data []byte
	pos  int
}

// Bytes serves buffers out of the shared resource table.
type Bytes struct {
	table *resource.Table
	mu    sync.Mutex
}

// data wraps body as inline data or, past InlineDataLimit, as a new
// buffer owned by the caller.
func (b *Bytes) data(body []byte) (contract.Data, error) {
	if len(body) <= InlineDataLimit {
		return contract.Data{Kind: contract.DataValue, Value: body}, nil
	}
	h, err := b.table.Insert(resource.TypeBuffer, &buffer{data: body})
	if err != nil {
		return contract.Data{}, err
	}
	return contract.Data{Kind: contract.DataBuffer, Buffer: h}, nil
}

func (b *Bytes) lookup(self contract.Handle) (*buffer, error) {
	buf, err := resource.Lookup[*buffer](b.table, self, resource.TypeBuffer)
	if err != nil {
		return nil, fail(contract.BytesMalformed, "invalid buffer handle %d: %v", self, err)
	}
	return buf, nil
}

func (b *Bytes) MethodBufferRemaining(_ context.Context, self contract.Handle) (uint64, error) {
	buf, err := b.lookup(self)
	if err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return uint64(len(buf.data) - buf.pos), nil
}

func (b *Bytes) MethodBufferRead(_ context.Context, self contract.Handle, max uint32) ([]byte, bool, error) {
	buf, err := b.lookup(self)
	if err != nil {
		return nil, false, err
	}
	if max == 0 {
		return nil, false, fail(contract.BytesMalformed, "read size must be positive")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if buf.pos >= len(buf.data) {
		return nil, false, nil
	}
	end := min(buf.pos+int(max), len(buf.data))
	chunk := buf.data[buf.pos:end]
	buf.pos = end
	return chunk, true, nil
}

func (b *Bytes) ResourceDropBuffer(_ context.Context, self contract.Handle) error {
	if err := b.table.Drop(self, resource.TypeBuffer); err != nil {
		return fail(contract.BytesMalformed, "drop buffer %d: %v", self, err)
	}
	return nil
}
