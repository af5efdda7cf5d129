// Package runner hosts a wasip1 function module on wazero.
//
// The runner instantiates WASI preview1 and the "functions" host module,
// whose call/reply imports feed wire envelopes to a wire.Server over the
// capability bindings it was given. Invocations are serialised: a guest
// instance handles one entry point call at a time.
package runner
