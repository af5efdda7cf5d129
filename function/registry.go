package function

import (
	"context"
	"sync"

	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/errors"
)

var (
	// ErrAlreadyRegistered is returned when an entry point kind already has a handler.
	ErrAlreadyRegistered = errors.New(errors.PhaseDispatch, errors.KindFailedPrecondition).
				Detail("handler already registered").
				Build()
	// ErrRegistrationClosed is returned by registrations after the first invocation.
	ErrRegistrationClosed = errors.New(errors.PhaseDispatch, errors.KindFailedPrecondition).
				Detail("registration closed after first invocation").
				Build()
)

// Registry holds the handlers for one guest.
type Registry struct {
	mu     sync.Mutex
	web    WebHandler
	spawn  SpawnHandler
	sealed bool
}

func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterWeb binds h to the web entry point.
func (r *Registry) RegisterWeb(h WebHandler) error {
	if h == nil {
		return errors.InvalidInput(errors.PhaseDispatch, "web handler cannot be nil")
	}
	return r.register(func() bool {
		if r.web != nil {
			return false
		}
		r.web = h
		return true
	})
}

// RegisterSpawn binds h to the spawn entry point.
func (r *Registry) RegisterSpawn(h SpawnHandler) error {
	if h == nil {
		return errors.InvalidInput(errors.PhaseDispatch, "spawn handler cannot be nil")
	}
	return r.register(func() bool {
		if r.spawn != nil {
			return false
		}
		r.spawn = h
		return true
	})
}

func (r *Registry) register(set func() bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return ErrRegistrationClosed
	}
	if !set() {
		return ErrAlreadyRegistered
	}
	return nil
}

// seal closes registration and returns the registered handlers.
func (r *Registry) seal() (WebHandler, SpawnHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
	return r.web, r.spawn
}

// Entries reports which entry points have handlers.
func (r *Registry) Entries() (web, spawn bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.web != nil, r.spawn != nil
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by Web, Spawn and the
// exported entry points.
func Default() *Registry {
	return defaultRegistry
}

// Web registers h on the default registry. It panics on a second
// registration or after the first invocation.
func Web(h WebHandler) {
	if err := defaultRegistry.RegisterWeb(h); err != nil {
		panic(err)
	}
}

// Spawn registers h on the default registry, panicking like Web.
func Spawn(h SpawnHandler) {
	if err := defaultRegistry.RegisterSpawn(h); err != nil {
		panic(err)
	}
}

// InvokeWeb runs the default registry's web handler.
func InvokeWeb(ctx context.Context, req contract.WebRequest) contract.WebResponse {
	return defaultRegistry.InvokeWeb(ctx, req)
}

// InvokeWebPayload runs the default registry's web handler on a payload
// still in its wire form.
func InvokeWebPayload(ctx context.Context, payload []byte, unmarshal func(data []byte, v any) error) contract.WebResponse {
	return defaultRegistry.InvokeWebPayload(ctx, payload, unmarshal)
}

// InvokeSpawn runs the default registry's spawn handler.
func InvokeSpawn(ctx context.Context, payload []byte) *contract.InvocationError {
	return defaultRegistry.InvokeSpawn(ctx, payload)
}
