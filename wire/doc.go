// Package wire carries capability calls between a function and a host
// that run in different processes or sandboxes.
//
// A call is one CBOR envelope naming the namespace and WIT function, with
// the arguments encoded as an array. The reply carries the results, a
// typed capability fault (namespace-relative discriminant plus message),
// or a transport error string.
//
// Server dispatches envelopes to any implementation of the contract
// interfaces by reflection; Client implements every contract interface
// on top of a Transport, so NewBindings gives a function the same
// *contract.Bindings it would get in-process.
package wire
