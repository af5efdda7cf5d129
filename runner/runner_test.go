package runner_test

import (
	"context"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/wasm-functions/abi"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/devhost"
	"github.com/wippyai/wasm-functions/errors"
	"github.com/wippyai/wasm-functions/internal/wasmbuild"
	"github.com/wippyai/wasm-functions/runner"
	"github.com/wippyai/wasm-functions/wire"
)

const (
	callAt  = 1024
	replyAt = 2048
	respAt  = 4096
	errAt   = 6144
	heapAt  = 8192
)

var (
	i32 = wasmbuild.I32
	i64 = wasmbuild.I64
)

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := wire.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return data
}

// fixture builds a guest that, on every web call, publishes "hello" to
// topic "events" through the host and answers 200 "pong". Its spawn entry
// rejects empty payloads. A nil web body makes the web entry trap.
func fixture(t *testing.T, web *wasmbuild.Code) []byte {
	t.Helper()
	call := wire.Call{
		Namespace: contract.NamespaceTopic,
		Function:  contract.WITName(contract.NamespaceTopic, "Publish"),
		Args:      []cbor.RawMessage{mustMarshal(t, "events"), mustMarshal(t, "hello")},
	}
	callBytes := mustMarshal(t, call)
	resp := mustMarshal(t, contract.WebResponse{Status: 200, Body: []byte("pong")})
	ierr := mustMarshal(t, &contract.InvocationError{Kind: contract.InvocationRequestError, Message: "empty payload"})

	if web == nil {
		web = wasmbuild.NewCode().Unreachable()
	} else {
		web.I32Const(callAt).I32Const(int32(len(callBytes))).Call(0).Drop().
			I32Const(replyAt).Call(1).
			I64Const(int64(abi.Pack(respAt, uint32(len(resp)))))
	}

	m := &wasmbuild.Module{
		Imports: []wasmbuild.Import{
			{Module: abi.Module, Name: abi.ImportCall, Type: wasmbuild.FuncType{Params: []wasmbuild.ValType{i32, i32}, Results: []wasmbuild.ValType{i32}}},
			{Module: abi.Module, Name: abi.ImportReply, Type: wasmbuild.FuncType{Params: []wasmbuild.ValType{i32}}},
		},
		Funcs: []wasmbuild.Func{
			{
				Export: abi.ExportAlloc,
				Type:   wasmbuild.FuncType{Params: []wasmbuild.ValType{i32}, Results: []wasmbuild.ValType{i32}},
				Body:   wasmbuild.NewCode().GlobalGet(0).GlobalGet(0).LocalGet(0).I32Add().GlobalSet(0),
			},
			{
				Export: abi.ExportFree,
				Type:   wasmbuild.FuncType{Params: []wasmbuild.ValType{i32}},
			},
			{
				Export: abi.ExportWeb,
				Type:   wasmbuild.FuncType{Params: []wasmbuild.ValType{i32, i32}, Results: []wasmbuild.ValType{i64}},
				Body:   web,
			},
			{
				Export: abi.ExportSpawn,
				Type:   wasmbuild.FuncType{Params: []wasmbuild.ValType{i32, i32}, Results: []wasmbuild.ValType{i64}},
				Body: wasmbuild.NewCode().LocalGet(1).I32Eqz().If(i64).
					I64Const(int64(abi.Pack(errAt, uint32(len(ierr))))).
					Else().
					I64Const(0).
					End(),
			},
		},
		MemoryPages: 1,
		Globals:     []int32{heapAt},
		Data: []wasmbuild.Segment{
			{Offset: callAt, Bytes: callBytes},
			{Offset: respAt, Bytes: resp},
			{Offset: errAt, Bytes: ierr},
		},
	}
	return m.Encode()
}

func newRunner(t *testing.T, wasm []byte) (*devhost.Host, *runner.Runner) {
	t.Helper()
	ctx := context.Background()
	h, err := devhost.New()
	if err != nil {
		t.Fatalf("devhost.New: %v", err)
	}
	r, err := runner.New(ctx, wasm, h.Bindings(), nil)
	if err != nil {
		t.Fatalf("runner.New: %v", err)
	}
	t.Cleanup(func() { _ = r.Close(ctx) })
	return h, r
}

func TestInvokeWeb(t *testing.T) {
	ctx := context.Background()
	h, r := newRunner(t, fixture(t, wasmbuild.NewCode()))

	resp, err := r.InvokeWeb(ctx, contract.WebRequest{Body: []byte("ping")})
	if err != nil {
		t.Fatalf("InvokeWeb: %v", err)
	}
	if resp.Status != 200 || string(resp.Body) != "pong" {
		t.Errorf("response = %d %q", resp.Status, resp.Body)
	}
	if msgs := h.Topics.Messages("events"); len(msgs) != 1 || msgs[0] != "hello" {
		t.Errorf("published = %q", msgs)
	}
	if r.HostCalls() != 1 {
		t.Errorf("host calls = %d, want 1", r.HostCalls())
	}

	want := []string{contract.ExportSpawnInvoke, contract.ExportWebInvoke}
	got := r.Entries()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Entries = %v, want %v", got, want)
	}
}

func TestInvokeSpawn(t *testing.T) {
	ctx := context.Background()
	_, r := newRunner(t, fixture(t, wasmbuild.NewCode()))

	if err := r.InvokeSpawn(ctx, []byte(`{"id":1}`)); err != nil {
		t.Errorf("InvokeSpawn: %v", err)
	}
	err := r.InvokeSpawn(ctx, nil)
	if !errors.IsKind(err, errors.KindMalformed) {
		t.Errorf("InvokeSpawn empty = %v, want Malformed", err)
	}
}

func TestInvokeWeb_Trap(t *testing.T) {
	_, r := newRunner(t, fixture(t, nil))
	_, err := r.InvokeWeb(context.Background(), contract.WebRequest{})
	if !errors.IsKind(err, errors.KindInternal) {
		t.Errorf("InvokeWeb trap = %v, want Internal", err)
	}
}

func TestNew_Rejects(t *testing.T) {
	ctx := context.Background()
	h, err := devhost.New()
	if err != nil {
		t.Fatal(err)
	}
	noEntries := (&wasmbuild.Module{Funcs: []wasmbuild.Func{
		{Export: abi.ExportAlloc, Type: wasmbuild.FuncType{Params: []wasmbuild.ValType{i32}, Results: []wasmbuild.ValType{i32}}, Body: wasmbuild.NewCode().I32Const(0)},
		{Export: abi.ExportFree, Type: wasmbuild.FuncType{Params: []wasmbuild.ValType{i32}}},
	}}).Encode()

	tests := []struct {
		name string
		wasm []byte
	}{
		{"garbage", []byte("not wasm")},
		{"no allocator", (&wasmbuild.Module{}).Encode()},
		{"no entry points", noEntries},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runner.New(ctx, tt.wasm, h.Bindings(), nil); !errors.IsKind(err, errors.KindMalformed) {
				t.Errorf("New = %v, want Malformed", err)
			}
		})
	}
}
