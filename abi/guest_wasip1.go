//go:build wasip1

package abi

import (
	"context"
	"net/http"
	"sync"
	"unsafe"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-functions/bindings"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/errors"
	"github.com/wippyai/wasm-functions/funclog"
	"github.com/wippyai/wasm-functions/function"
	"github.com/wippyai/wasm-functions/wire"
)

//go:wasmimport functions call
func hostCall(ptr, size uint32) uint32

//go:wasmimport functions reply
func hostReply(ptr uint32)

var (
	mu     sync.Mutex
	pinned = make(map[uint32][]byte)
)

func init() {
	b := wire.NewBindings(transport)
	if err := bindings.Install(b); err != nil {
		panic(err)
	}
	function.SetLogger(zap.New(funclog.NewCore(b.Logging, zapcore.InfoLevel)))
}

func pointer(b []byte) uint32 {
	return uint32(uintptr(unsafe.Pointer(unsafe.SliceData(b))))
}

// pin keeps b reachable until the host frees it.
func pin(b []byte) uint32 {
	if cap(b) == 0 {
		b = make([]byte, 0, 1)
	}
	p := pointer(b)
	mu.Lock()
	pinned[p] = b
	mu.Unlock()
	return p
}

// take claims a host-filled buffer.
func take(ptr, size uint32) []byte {
	mu.Lock()
	defer mu.Unlock()
	b, ok := pinned[ptr]
	if !ok || int(size) > cap(b) {
		return nil
	}
	delete(pinned, ptr)
	return b[:size]
}

//go:wasmexport functions_alloc
func alloc(size uint32) uint32 {
	return pin(make([]byte, size))
}

//go:wasmexport functions_free
func free(ptr uint32) {
	mu.Lock()
	delete(pinned, ptr)
	mu.Unlock()
}

func transport(_ context.Context, request []byte) ([]byte, error) {
	n := hostCall(pointer(request), uint32(len(request)))
	if n == 0 {
		return nil, errors.New(errors.PhaseTransport, errors.KindInternal).
			Detail("host returned an empty reply").
			Build()
	}
	reply := make([]byte, n)
	hostReply(pointer(reply))
	return reply, nil
}

func result(v any) uint64 {
	out, err := wire.Marshal(v)
	if err != nil {
		out, _ = wire.Marshal(contract.WebResponse{Status: http.StatusInternalServerError})
	}
	return Pack(pin(out), uint32(len(out)))
}

//go:wasmexport functions_web
func web(ptr, size uint32) uint64 {
	return result(function.InvokeWebPayload(context.Background(), take(ptr, size), wire.Unmarshal))
}

//go:wasmexport functions_spawn
func spawn(ptr, size uint32) uint64 {
	if ierr := function.InvokeSpawn(context.Background(), take(ptr, size)); ierr != nil {
		return result(ierr)
	}
	return 0
}
