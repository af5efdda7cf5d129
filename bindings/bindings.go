// Package bindings holds the capability bindings of the running function.
//
// The guest bootstrap installs the host-backed bindings once before the
// first invocation; adapters read them through Current. Tests install a
// dev host with Replace.
package bindings

import (
	"sync"

	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/errors"
)

var (
	mu        sync.RWMutex
	current   = &contract.Bindings{}
	installed bool
)

// ErrAlreadyInstalled is returned by a second Install.
var ErrAlreadyInstalled = errors.New(errors.PhaseDispatch, errors.KindFailedPrecondition).
	Detail("capability bindings already installed").
	Build()

// Install sets the process-wide bindings. It may be called once.
func Install(b *contract.Bindings) error {
	if b == nil {
		return errors.InvalidInput(errors.PhaseDispatch, "bindings cannot be nil")
	}
	mu.Lock()
	defer mu.Unlock()
	if installed {
		return ErrAlreadyInstalled
	}
	current = b
	installed = true
	return nil
}

// Replace swaps the bindings regardless of Install and returns a func that
// restores the previous state.
func Replace(b *contract.Bindings) (restore func()) {
	mu.Lock()
	prev, prevInstalled := current, installed
	current, installed = b, true
	mu.Unlock()

	return func() {
		mu.Lock()
		current, installed = prev, prevInstalled
		mu.Unlock()
	}
}

// Current returns the installed bindings, or empty bindings if none are
// installed. The result is never nil.
func Current() *contract.Bindings {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Require returns capability, or a FailedPrecondition error naming it when
// the host does not provide it.
func Require[T any](capability T, name string) (T, error) {
	if any(capability) == nil {
		return capability, errors.New(errors.PhaseHost, errors.KindFailedPrecondition).
			Capability(name, "").
			Detail("capability not provided by host").
			Build()
	}
	return capability, nil
}
