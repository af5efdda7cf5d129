package runner

import (
	"bytes"
	"context"
	"io"
	"slices"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-functions/abi"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/errors"
	"github.com/wippyai/wasm-functions/wire"
)

// Config holds runner settings.
type Config struct {
	// MemoryLimitPages caps guest memory in 64KiB pages. 0 keeps the wazero default.
	MemoryLimitPages uint32
	Stdout           io.Writer
	Stderr           io.Writer
	Logger           *zap.Logger
}

// Runner owns one wazero runtime and one guest instance.
type Runner struct {
	runtime wazero.Runtime
	module  api.Module
	server  *wire.Server
	logger  *zap.Logger

	alloc api.Function
	free  api.Function
	web   api.Function
	spawn api.Function

	mu      sync.Mutex
	pending []byte
	calls   int
}

// New compiles and instantiates wasm with b as its capabilities.
func New(ctx context.Context, wasm []byte, b *contract.Bindings, cfg *Config) (*Runner, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	server := wire.NewServer(wire.WithLogger(logger))
	if err := server.RegisterBindings(b); err != nil {
		return nil, err
	}

	rtCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		rtCfg = rtCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, rtCfg)
	r := &Runner{runtime: rt, server: server, logger: logger}

	if err := r.instantiate(ctx, wasm, cfg); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	return r, nil
}

func (r *Runner) instantiate(ctx context.Context, wasm []byte, cfg *Config) error {
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r.runtime); err != nil {
		return errors.Internal(errors.PhaseDispatch, "instantiate wasi", err)
	}

	_, err := r.runtime.NewHostModuleBuilder(abi.Module).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(r.hostCall),
			[]api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
			[]api.ValueType{api.ValueTypeI32}).
		Export(abi.ImportCall).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(r.hostReply),
			[]api.ValueType{api.ValueTypeI32}, nil).
		Export(abi.ImportReply).
		Instantiate(ctx)
	if err != nil {
		return errors.Internal(errors.PhaseDispatch, "instantiate host module", err)
	}

	compiled, err := r.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return errors.Malformed(errors.PhaseDecode, "compile guest module", err)
	}
	exports := compiled.ExportedFunctions()
	for _, name := range []string{abi.ExportAlloc, abi.ExportFree} {
		if _, ok := exports[name]; !ok {
			return errors.InvalidInput(errors.PhaseDecode, "guest does not export %s", name)
		}
	}
	_, hasWeb := exports[abi.ExportWeb]
	_, hasSpawn := exports[abi.ExportSpawn]
	if !hasWeb && !hasSpawn {
		return errors.InvalidInput(errors.PhaseDecode, "guest exports no entry point")
	}

	modCfg := wazero.NewModuleConfig().
		WithName("guest").
		WithStartFunctions().
		WithSysWalltime().
		WithSysNanotime()
	if cfg.Stdout != nil {
		modCfg = modCfg.WithStdout(cfg.Stdout)
	}
	if cfg.Stderr != nil {
		modCfg = modCfg.WithStderr(cfg.Stderr)
	}
	mod, err := r.runtime.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		return errors.Internal(errors.PhaseDispatch, "instantiate guest", err)
	}
	r.module = mod

	if initFn := mod.ExportedFunction("_initialize"); initFn != nil {
		if _, err := initFn.Call(ctx); err != nil {
			return errors.Internal(errors.PhaseDispatch, "initialize guest", err)
		}
	}

	r.alloc = mod.ExportedFunction(abi.ExportAlloc)
	r.free = mod.ExportedFunction(abi.ExportFree)
	r.web = mod.ExportedFunction(abi.ExportWeb)
	r.spawn = mod.ExportedFunction(abi.ExportSpawn)
	return nil
}

// hostCall runs one envelope and holds the reply for hostReply.
// A zero result tells the guest the call could not be delivered.
func (r *Runner) hostCall(ctx context.Context, m api.Module, stack []uint64) {
	ptr, size := api.DecodeU32(stack[0]), api.DecodeU32(stack[1])
	request, ok := m.Memory().Read(ptr, size)
	if !ok {
		r.logger.Warn("host call outside guest memory", zap.Uint32("ptr", ptr), zap.Uint32("len", size))
		stack[0] = 0
		return
	}
	reply, err := r.server.Handle(ctx, bytes.Clone(request))
	if err != nil {
		r.logger.Warn("host call reply could not be encoded", zap.Error(err))
		stack[0] = 0
		return
	}
	r.calls++
	r.pending = reply
	stack[0] = api.EncodeU32(uint32(len(reply)))
}

func (r *Runner) hostReply(_ context.Context, m api.Module, stack []uint64) {
	ptr := api.DecodeU32(stack[0])
	if !m.Memory().Write(ptr, r.pending) {
		r.logger.Warn("host reply outside guest memory", zap.Uint32("ptr", ptr))
	}
	r.pending = nil
}

// Entries lists the interface-level entry points the guest exports.
func (r *Runner) Entries() []string {
	var out []string
	for name, export := range abi.Entries {
		if r.module.ExportedFunction(export) != nil {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// HostCalls reports how many capability calls the guest has made.
func (r *Runner) HostCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// InvokeWeb runs the guest's web entry point.
func (r *Runner) InvokeWeb(ctx context.Context, req contract.WebRequest) (contract.WebResponse, error) {
	if r.web == nil {
		return contract.WebResponse{}, errors.NotFound(errors.PhaseDispatch, "web entry point")
	}
	input, err := wire.Marshal(req)
	if err != nil {
		return contract.WebResponse{}, err
	}
	out, err := r.invoke(ctx, r.web, input)
	if err != nil {
		return contract.WebResponse{}, err
	}
	var resp contract.WebResponse
	if err := wire.Unmarshal(out, &resp); err != nil {
		return contract.WebResponse{}, err
	}
	return resp, nil
}

// InvokeSpawn runs the guest's spawn entry point. A reported invocation
// error is returned as a unified error.
func (r *Runner) InvokeSpawn(ctx context.Context, payload []byte) error {
	if r.spawn == nil {
		return errors.NotFound(errors.PhaseDispatch, "spawn entry point")
	}
	out, err := r.invoke(ctx, r.spawn, payload)
	if err != nil || out == nil {
		return err
	}
	var ierr contract.InvocationError
	if err := wire.Unmarshal(out, &ierr); err != nil {
		return err
	}
	return errors.FromInvocation(&ierr, "spawned")
}

func (r *Runner) invoke(ctx context.Context, fn api.Function, input []byte) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.alloc.Call(ctx, api.EncodeU32(uint32(len(input))))
	if err != nil {
		return nil, errors.Internal(errors.PhaseDispatch, "guest alloc", err)
	}
	ptr := api.DecodeU32(res[0])
	if !r.module.Memory().Write(ptr, input) {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "guest buffer %#x out of range", ptr)
	}

	res, err = fn.Call(ctx, api.EncodeU32(ptr), api.EncodeU32(uint32(len(input))))
	if err != nil {
		return nil, errors.Internal(errors.PhaseDispatch, "guest trapped", err)
	}
	if res[0] == 0 {
		return nil, nil
	}
	outPtr, outLen := abi.Unpack(res[0])
	out, ok := r.module.Memory().Read(outPtr, outLen)
	if !ok {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "guest result %#x+%d out of range", outPtr, outLen)
	}
	out = bytes.Clone(out)
	if _, err := r.free.Call(ctx, api.EncodeU32(outPtr)); err != nil {
		r.logger.Warn("guest free failed", zap.Error(err))
	}
	return out, nil
}

// Close releases the guest and the runtime.
func (r *Runner) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}
