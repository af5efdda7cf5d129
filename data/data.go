// Package data reads payloads the host hands over either inline or as a
// buffer resource.
//
// A buffer is read front to back in chunks, one host call per chunk, and
// dropped as soon as its end is observed or the Data is closed. Inline
// payloads read the same way without touching the host.
package data

import (
	"context"
	"iter"
	"math"
	"sync"
	"sync/atomic"

	"github.com/wippyai/wasm-functions/bindings"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/errors"
	"github.com/wippyai/wasm-functions/resource"
	"github.com/wippyai/wasm-functions/stream"
)

const capability = "bytes"

// ChunkSize is the default number of bytes asked for per read.
const ChunkSize = 16 << 10

// Data is a payload that may live on the host.
type Data struct {
	bytes   contract.Bytes
	owner   *resource.Owner
	value   []byte
	pos     int
	chunk   atomic.Uint32
	s       *stream.Stream[[]byte]
	dropErr error
	mu      sync.Mutex
}

// FromBytes wraps an inline payload.
func FromBytes(b []byte) *Data {
	d := &Data{value: b}
	d.chunk.Store(ChunkSize)
	d.s = stream.New(d.fetchInline)
	return d
}

// New takes ownership of d using the installed bindings.
func New(d contract.Data, parents ...*resource.Owner) (*Data, error) {
	return NewWith(bindings.Current(), d, parents...)
}

// NewWith takes ownership of d. A buffer is adopted as a resource
// borrowing parents, and needs the bytes capability bound.
func NewWith(b *contract.Bindings, d contract.Data, parents ...*resource.Owner) (*Data, error) {
	switch d.Kind {
	case contract.DataValue:
		return FromBytes(d.Value), nil
	case contract.DataBuffer:
	default:
		return nil, errors.New(errors.PhaseDecode, errors.KindMalformed).
			Capability(capability, "data").
			Detail("unknown data discriminant %d", d.Kind).
			Build()
	}

	h, err := bindings.Require(b.Bytes, capability)
	if err != nil {
		return nil, err
	}
	owner, err := resource.Adopt(resource.TypeBuffer, d.Buffer,
		func(ctx context.Context, self resource.Handle) error {
			return errors.Host(capability, "drop-buffer", h.ResourceDropBuffer(ctx, self))
		},
		parents...,
	)
	if err != nil {
		return nil, err
	}
	out := &Data{bytes: h, owner: owner}
	out.chunk.Store(ChunkSize)
	out.s = stream.New(out.fetchBuffer).OnDone(out.release)
	return out, nil
}

func (d *Data) fetchInline(context.Context) ([]byte, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pos >= len(d.value) {
		return nil, false, nil
	}
	end := min(d.pos+int(d.chunk.Load()), len(d.value))
	chunk := d.value[d.pos:end]
	d.pos = end
	return chunk, true, nil
}

func (d *Data) fetchBuffer(ctx context.Context) ([]byte, bool, error) {
	self, done, err := d.owner.Borrow()
	if err != nil {
		return nil, false, err
	}
	defer done()

	chunk, ok, err := d.bytes.MethodBufferRead(ctx, self, d.chunk.Load())
	if err != nil {
		return nil, false, errors.Host(capability, "buffer.read", err)
	}
	return chunk, ok, nil
}

func (d *Data) release() {
	err := d.owner.Release(context.Background())
	d.mu.Lock()
	d.dropErr = err
	d.mu.Unlock()
}

// Inline returns the payload when it was handed over inline.
func (d *Data) Inline() ([]byte, bool) {
	if d.owner != nil {
		return nil, false
	}
	return d.value, true
}

// Remaining returns how many bytes are left to read.
func (d *Data) Remaining(ctx context.Context) (uint64, error) {
	if d.s.Done() {
		return 0, nil
	}
	if d.owner == nil {
		d.mu.Lock()
		defer d.mu.Unlock()
		return uint64(len(d.value) - d.pos), nil
	}
	self, done, err := d.owner.Borrow()
	if err != nil {
		return 0, err
	}
	defer done()
	n, err := d.bytes.MethodBufferRemaining(ctx, self)
	if err != nil {
		return 0, errors.Host(capability, "buffer.remaining", err)
	}
	return n, nil
}

// Next returns the next chunk; ok is false at the end and stays false.
func (d *Data) Next(ctx context.Context) ([]byte, bool, error) {
	return d.s.Next(ctx)
}

// All ranges over the remaining chunks.
func (d *Data) All(ctx context.Context) iter.Seq2[[]byte, error] {
	return d.s.All(ctx)
}

// Bytes reads everything that is left and closes d.
func (d *Data) Bytes(ctx context.Context) ([]byte, error) {
	if v, ok := d.Inline(); ok && d.s.Pulls() == 0 {
		d.s.Stop()
		return v, nil
	}
	n, err := d.Remaining(ctx)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.chunk.Store(uint32(min(max(n, ChunkSize), math.MaxUint32)))

	out := make([]byte, 0, n)
	for chunk, err := range d.s.All(ctx) {
		if err != nil {
			d.Close()
			return out, err
		}
		out = append(out, chunk...)
	}
	return out, d.Close()
}

// Pulls returns how many reads were issued.
func (d *Data) Pulls() int { return d.s.Pulls() }

// Done reports whether the payload has been fully read or closed.
func (d *Data) Done() bool { return d.s.Done() }

// Close abandons the rest of the payload and drops the buffer. It is
// idempotent and returns the error from dropping the handle, if any.
func (d *Data) Close() error {
	d.s.Stop()
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropErr
}
