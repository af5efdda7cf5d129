// Package errors provides the unified error taxonomy for wasm-functions.
//
// Every capability reports failures with its own closed set of kinds (see
// package contract). This package maps each of those onto one Kind so a
// handler can branch on a single enumeration regardless of which
// capability failed. Mappings are fixed tables: the same capability kind
// always yields the same unified Kind, and the host's message is kept in
// Detail for diagnostics only.
//
// Errors carry a Phase (where the failure happened) and a Kind:
//
//	err := errors.New(errors.PhaseLifetime, errors.KindFailedPrecondition).
//		Capability("aws-ddb", "client").
//		Detail("credentials provider already released").
//		Build()
//
// Adapters convert raw host results with Host:
//
//	if err := host.Set(ctx, key, value, ttl); err != nil {
//		return errors.Host("cache", "set", err)
//	}
//
// Match on kind with errors.Is or IsKind:
//
//	if errors.IsKind(err, errors.KindNotFound) { ... }
//	if errors.Is(err, &errors.Error{Kind: errors.KindTimeout}) { ... }
package errors
