package contract

import "context"

// WebSupport is functions:host/web-function-support.
type WebSupport interface {
	// TokenMetadata returns the metadata attached to the caller's token, if any.
	TokenMetadata(ctx context.Context) (string, bool, error)
}

// WebRequest is the payload of the web entry point.
type WebRequest struct {
	_       struct{} `cbor:",toarray"`
	Body    []byte
	Headers []Header
	Query   []Header
}

// WebResponse is what the web entry point returns to the host.
type WebResponse struct {
	_       struct{} `cbor:",toarray"`
	Status  uint16
	Headers []Header
	Body    []byte
}

type InvocationErrorKind uint8

const (
	InvocationRequestError InvocationErrorKind = iota
	InvocationInternal

	InvocationErrorKindCount
)

var invocationErrorNames = [...]string{
	InvocationRequestError: "request-error",
	InvocationInternal:     "internal",
}

var _ = [1]struct{}{}[len(invocationErrorNames)-int(InvocationErrorKindCount)]

func (k InvocationErrorKind) String() string     { return enumName(invocationErrorNames[:], uint8(k)) }
func (k InvocationErrorKind) Capability() string { return "spawn-entry" }

// InvocationError is returned by the spawn entry point.
type InvocationError = Failure[InvocationErrorKind]

// Entry names exported by guests.
const (
	ExportWebInvoke   = "functions:guest/web.invoke@" + Version
	ExportSpawnInvoke = "functions:guest/spawn.spawned@" + Version
)
