package function

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/http/httpguts"

	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/encoding"
	"github.com/wippyai/wasm-functions/errors"
)

// State is the position of an invocation in the dispatcher.
type State uint8

const (
	StateReceived State = iota
	StateDecoding
	StateHandling
	StateEncoding
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateDecoding:
		return "decoding"
	case StateHandling:
		return "handling"
	case StateEncoding:
		return "encoding"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

type invocation struct {
	id    string
	entry string
	state State
	log   *zap.Logger
}

func begin(entry string) *invocation {
	inv := &invocation{
		id:    uuid.NewString(),
		entry: entry,
		log:   Logger(),
	}
	inv.log.Debug("invocation state",
		zap.String("id", inv.id),
		zap.String("entry", entry),
		zap.Stringer("state", StateReceived))
	return inv
}

func (inv *invocation) advance(s State) {
	inv.state = s
	inv.log.Debug("invocation state",
		zap.String("id", inv.id),
		zap.String("entry", inv.entry),
		zap.Stringer("state", s))
}

// InvokeWeb runs the web handler for req and always returns a response.
func (r *Registry) InvokeWeb(ctx context.Context, req contract.WebRequest) contract.WebResponse {
	return r.invokeWeb(ctx, func(inv *invocation) (*Request, error) {
		return decodeRequest(inv.id, req)
	})
}

// InvokeWebPayload is InvokeWeb for a request still in its wire form.
// A payload unmarshal rejects is answered with 400 without calling the
// handler.
func (r *Registry) InvokeWebPayload(ctx context.Context, payload []byte, unmarshal func(data []byte, v any) error) contract.WebResponse {
	return r.invokeWeb(ctx, func(inv *invocation) (*Request, error) {
		var req contract.WebRequest
		if err := unmarshal(payload, &req); err != nil {
			if errors.IsKind(err, errors.KindMalformed) {
				return nil, err
			}
			return nil, errors.Malformed(errors.PhaseDecode, "invalid web request payload", err)
		}
		return decodeRequest(inv.id, req)
	})
}

func (r *Registry) invokeWeb(ctx context.Context, decode func(*invocation) (*Request, error)) contract.WebResponse {
	web, _ := r.seal()
	inv := begin("web")

	inv.advance(StateDecoding)
	in, err := decode(inv)
	if err != nil {
		return inv.finish(failure(err))
	}
	if web == nil {
		return inv.finish(failure(errors.New(errors.PhaseDispatch, errors.KindInternal).
			Detail("no web handler registered").
			Build()))
	}

	inv.advance(StateHandling)
	resp, err := web(ctx, in)
	if err != nil {
		inv.log.Debug("handler failed", zap.String("id", inv.id), zap.Error(err))
		return inv.finish(failure(err))
	}
	if resp == nil {
		resp = NoContent()
	}
	return inv.finish(resp)
}

func (inv *invocation) finish(resp *Response) contract.WebResponse {
	inv.advance(StateEncoding)
	out, err := encodeResponse(resp)
	if err != nil {
		inv.log.Warn("response could not be encoded", zap.String("id", inv.id), zap.Error(err))
		out = plain(http.StatusInternalServerError, err.Error())
	}
	inv.advance(StateCompleted)
	return out
}

// InvokeSpawn runs the spawn handler. A Malformed failure is reported as
// a request error, every other failure as internal.
func (r *Registry) InvokeSpawn(ctx context.Context, payload []byte) *contract.InvocationError {
	_, spawn := r.seal()
	inv := begin("spawn")

	inv.advance(StateDecoding)
	if spawn == nil {
		inv.advance(StateEncoding)
		inv.advance(StateCompleted)
		return &contract.InvocationError{Kind: contract.InvocationInternal, Message: "no spawn handler registered"}
	}

	inv.advance(StateHandling)
	err := spawn(ctx, payload)

	inv.advance(StateEncoding)
	defer inv.advance(StateCompleted)
	if err == nil {
		return nil
	}
	inv.log.Debug("handler failed", zap.String("id", inv.id), zap.Error(err))
	kind := contract.InvocationInternal
	if errors.IsKind(err, errors.KindMalformed) {
		kind = contract.InvocationRequestError
	}
	return &contract.InvocationError{Kind: kind, Message: err.Error()}
}

func decodeRequest(id string, req contract.WebRequest) (*Request, error) {
	for _, h := range req.Headers {
		if !httpguts.ValidHeaderFieldName(h.Name) {
			return nil, errors.InvalidInput(errors.PhaseDecode, "invalid request header name %q", h.Name)
		}
	}
	return &Request{
		ID:      id,
		Body:    req.Body,
		Headers: req.Headers,
		Query:   req.Query,
	}, nil
}

func encodeResponse(resp *Response) (contract.WebResponse, error) {
	if resp.Status < 100 || resp.Status > 999 {
		return contract.WebResponse{}, errors.InvalidInput(errors.PhaseEncode, "invalid status code %d", resp.Status)
	}
	for _, h := range resp.Headers {
		if !httpguts.ValidHeaderFieldName(h.Name) {
			return contract.WebResponse{}, errors.InvalidInput(errors.PhaseEncode, "invalid response header name %q", h.Name)
		}
		if !httpguts.ValidHeaderFieldValue(h.Value) {
			return contract.WebResponse{}, errors.InvalidInput(errors.PhaseEncode, "invalid value for response header %q", h.Name)
		}
	}
	return contract.WebResponse{
		Status:  uint16(resp.Status),
		Headers: resp.Headers,
		Body:    resp.Body,
	}, nil
}

// failure renders a handler or decoding error as a response. A value
// the function itself could not encode is its own fault, never the
// caller's.
func failure(err error) *Response {
	var he *HTTPError
	if errors.As(err, &he) {
		return Status(he.Status, []byte(he.Message)).
			WithHeader("Content-Type", encoding.String().ContentType())
	}
	status := errors.Status(errors.KindOf(err))
	var e *errors.Error
	if errors.As(err, &e) && e.Phase == errors.PhaseEncode {
		status = http.StatusInternalServerError
	}
	return Status(status, []byte(err.Error())).
		WithHeader("Content-Type", encoding.String().ContentType())
}

func plain(status int, msg string) contract.WebResponse {
	return contract.WebResponse{
		Status:  uint16(status),
		Headers: []contract.Header{{Name: "Content-Type", Value: encoding.String().ContentType()}},
		Body:    []byte(msg),
	}
}
