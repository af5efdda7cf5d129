// Package abi is the core-wasm calling convention between a wasip1 guest
// and its host.
//
// The host provides module "functions" with two imports:
//
//	call(ptr, len u32) -> u32   send one wire.Call envelope, return the reply length
//	reply(ptr u32)              copy the pending reply into guest memory
//
// The guest exports:
//
//	functions_alloc(size u32) -> u32        buffer for the host to fill
//	functions_free(ptr u32)                 release a buffer returned by the guest
//	functions_web(ptr, len u32) -> u64      WebRequest in, packed WebResponse out
//	functions_spawn(ptr, len u32) -> u64    payload in, 0 or packed InvocationError out
//
// A buffer passed to an entry point belongs to the guest from then on.
// Packed results hold the pointer in the high 32 bits and the length in
// the low 32 bits; the host frees them with functions_free once read.
//
// Importing this package from a wasip1 guest installs the capability
// bindings and the host logging core.
package abi
