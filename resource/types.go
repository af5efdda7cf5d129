package resource

import (
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/errors"
)

// Handle is an opaque reference to a resource in a table.
// Handle 0 is reserved and always invalid.
type Handle = contract.Handle

// Type names a resource type, e.g. "aws-auth/credentials-provider".
type Type string

const (
	TypeCredentialsProvider Type = "aws-auth/credentials-provider"
	TypeDDBClient           Type = "aws-ddb/client"
	TypeS3Client            Type = "aws-s3/client"
	TypeSecretsClient       Type = "aws-secrets/client"
	TypeLambdaClient        Type = "aws-lambda/client"
	TypeRedisClient         Type = "redis/client"
	TypeResponseStream      Type = "redis/response-stream"
	TypeBuffer              Type = "bytes/buffer"
)

// EventType identifies a resource lifecycle notification.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
	EventBorrowed
	EventBorrowReturned
)

func (e EventType) String() string {
	switch e {
	case EventCreated:
		return "created"
	case EventDropped:
		return "dropped"
	case EventBorrowed:
		return "borrowed"
	case EventBorrowReturned:
		return "borrow-returned"
	}
	return "unknown"
}

// Event represents a resource lifecycle event.
type Event struct {
	Value  any
	Type   Type
	Handle Handle
	Event  EventType
}

// Observer receives notifications about resource lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnResourceEvent(e Event) { f(e) }

// Dropper is optionally implemented by resource values that need cleanup.
type Dropper interface {
	Drop()
}

// Lifetime violations. Both are FailedPrecondition errors and are
// distinguished by detail, so errors.Is tells them apart.
var (
	ErrReleased = errors.New(errors.PhaseLifetime, errors.KindFailedPrecondition).
			Detail("resource already released").
			Build()
	ErrOutstandingBorrow = errors.New(errors.PhaseLifetime, errors.KindFailedPrecondition).
				Detail("cannot drop resource with outstanding borrows").
				Build()
	ErrInvalidHandle = errors.New(errors.PhaseLifetime, errors.KindMalformed).
				Detail("invalid resource handle").
				Build()
	ErrClosed = errors.New(errors.PhaseLifetime, errors.KindFailedPrecondition).
			Detail("resource table closed").
			Build()
)
