package contract

import "context"

// CacheErrorKind enumerates cache-scalar and cache-list failures.
type CacheErrorKind uint8

const (
	CacheInvalidArgument CacheErrorKind = iota
	CacheAuthenticationFailed
	CachePermissionDenied
	CacheNotFound
	CacheLimitExceeded
	CacheTimeout
	CacheCancelled
	CacheFailedPrecondition
	CacheServerUnavailable
	CacheInternal
	CacheUnknown

	CacheErrorKindCount
)

var cacheErrorNames = [...]string{
	CacheInvalidArgument:      "invalid-argument",
	CacheAuthenticationFailed: "authentication-failed",
	CachePermissionDenied:     "permission-denied",
	CacheNotFound:             "cache-not-found",
	CacheLimitExceeded:        "limit-exceeded",
	CacheTimeout:              "timeout",
	CacheCancelled:            "cancelled",
	CacheFailedPrecondition:   "failed-precondition",
	CacheServerUnavailable:    "server-unavailable",
	CacheInternal:             "internal",
	CacheUnknown:              "unknown",
}

var _ = [1]struct{}{}[len(cacheErrorNames)-int(CacheErrorKindCount)]

func (k CacheErrorKind) String() string     { return enumName(cacheErrorNames[:], uint8(k)) }
func (k CacheErrorKind) Capability() string { return "cache" }

// CacheError is returned by both cache namespaces.
type CacheError = Failure[CacheErrorKind]

// CacheScalar is functions:host/cache-scalar.
type CacheScalar interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key []byte) ([]byte, bool, error)
	Set(ctx context.Context, key, value []byte, ttlMillis uint64) error
}

// PopKind discriminates PopResponse.
type PopKind uint8

const (
	PopFound PopKind = iota
	PopMissing

	PopKindCount
)

// PopResponse is found{value, list-length} or missing.
type PopResponse struct {
	_          struct{} `cbor:",toarray"`
	Kind       PopKind
	Value      []byte
	ListLength uint32
}

// ListPush carries the options shared by both push directions.
type ListPush struct {
	_          struct{} `cbor:",toarray"`
	Name       []byte
	Value      []byte
	TTLMillis  uint64
	RefreshTTL bool
	// TruncateTo trims the opposite end down to this length; 0 leaves the list unbounded.
	TruncateTo uint32
}

// CacheList is functions:host/cache-list.
type CacheList interface {
	ListPushFront(ctx context.Context, req ListPush) (uint32, error)
	ListPushBack(ctx context.Context, req ListPush) (uint32, error)
	ListPopFront(ctx context.Context, name []byte) (PopResponse, error)
	ListPopBack(ctx context.Context, name []byte) (PopResponse, error)
}

func enumName(names []string, v uint8) string {
	if int(v) < len(names) {
		return names[v]
	}
	return "unknown-case"
}
