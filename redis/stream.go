package redis

import (
	"context"
	"iter"
	"sync"

	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/errors"
	"github.com/wippyai/wasm-functions/resource"
	"github.com/wippyai/wasm-functions/stream"
)

// ResponseStream is the lazily-read reply to a pipeline, or a nested bulk
// reply. Each Next is one host call; the host handle is dropped as soon as
// the end is observed or the stream is closed.
//
// A stream borrows the client that produced it, so the client cannot be
// released while any of its streams, nested ones included, is open.
type ResponseStream struct {
	redis   contract.Redis
	client  *resource.Owner
	owner   *resource.Owner
	s       *stream.Stream[Value]
	dropErr error
	mu      sync.Mutex
}

func adoptStream(r contract.Redis, client *resource.Owner, h contract.Handle) (*ResponseStream, error) {
	owner, err := resource.Adopt(resource.TypeResponseStream, h,
		func(ctx context.Context, self resource.Handle) error {
			return errors.Host(capability, "drop-response-stream", r.ResourceDropResponseStream(ctx, self))
		},
		client,
	)
	if err != nil {
		return nil, err
	}
	rs := &ResponseStream{redis: r, client: client, owner: owner}
	rs.s = stream.New(rs.fetch).OnDone(rs.release)
	return rs, nil
}

func (rs *ResponseStream) fetch(ctx context.Context) (Value, bool, error) {
	self, done, err := rs.owner.Borrow()
	if err != nil {
		return Value{}, false, err
	}
	defer done()

	rv, ok, err := rs.redis.MethodResponseStreamNext(ctx, self)
	if err != nil {
		return Value{}, false, errors.Host(capability, "response-stream.next", err)
	}
	if !ok {
		return Value{}, false, nil
	}
	return rs.convert(rv)
}

func (rs *ResponseStream) convert(rv contract.RedisValue) (Value, bool, error) {
	switch rv.Kind {
	case contract.RedisNil, contract.RedisOkay:
		return Value{Kind: rv.Kind}, true, nil
	case contract.RedisInt:
		return Value{Kind: rv.Kind, Int: rv.Int}, true, nil
	case contract.RedisData:
		return Value{Kind: rv.Kind, Data: rv.Data}, true, nil
	case contract.RedisStatus:
		return Value{Kind: rv.Kind, Status: rv.Status}, true, nil
	case contract.RedisBulk:
		nested, err := adoptStream(rs.redis, rs.client, rv.Bulk)
		if err != nil {
			return Value{}, false, err
		}
		return Value{Kind: rv.Kind, Bulk: nested}, true, nil
	}
	return Value{}, false, errors.New(errors.PhaseDecode, errors.KindMalformed).
		Capability(capability, "response-stream.next").
		Detail("unknown value discriminant %d", rv.Kind).
		Build()
}

func (rs *ResponseStream) release() {
	err := rs.owner.Release(context.Background())
	rs.mu.Lock()
	rs.dropErr = err
	rs.mu.Unlock()
}

// Next returns the next value; ok is false at the end and stays false.
func (rs *ResponseStream) Next(ctx context.Context) (Value, bool, error) {
	return rs.s.Next(ctx)
}

// All ranges over the remaining values.
func (rs *ResponseStream) All(ctx context.Context) iter.Seq2[Value, error] {
	return rs.s.All(ctx)
}

// Pulls returns how many next calls were sent to the host.
func (rs *ResponseStream) Pulls() int { return rs.s.Pulls() }

// Done reports whether the stream has ended or been closed.
func (rs *ResponseStream) Done() bool { return rs.s.Done() }

// Close abandons the rest of the stream and drops the host handle. Nested
// streams already handed out stay open until closed or drained. Close is
// idempotent and returns the error from dropping the handle, if any.
func (rs *ResponseStream) Close() error {
	rs.s.Stop()
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.dropErr
}

// Collect drains the stream. Nested bulk values are drained recursively
// into Flat.Items; the returned tree holds no open handles.
func (rs *ResponseStream) Collect(ctx context.Context) ([]Flat, error) {
	var out []Flat
	for v, err := range rs.All(ctx) {
		if err != nil {
			rs.Close()
			return out, err
		}
		f, err := flatten(ctx, v)
		if err != nil {
			rs.Close()
			return out, err
		}
		out = append(out, f)
	}
	return out, rs.Close()
}

// Flat is a fully-read Value.
type Flat struct {
	Status string
	Data   []byte
	Items  []Flat
	Int    int64
	Kind   Kind
}

func flatten(ctx context.Context, v Value) (Flat, error) {
	f := Flat{Kind: v.Kind, Int: v.Int, Data: v.Data, Status: v.Status}
	if v.Kind == KindBulk {
		items, err := v.Bulk.Collect(ctx)
		if err != nil {
			return f, err
		}
		f.Items = items
	}
	return f, nil
}
