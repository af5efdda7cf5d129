package contract

import "context"

type TokenErrorKind uint8

const (
	TokenInvalidArgument TokenErrorKind = iota
	TokenPermissionDenied
	TokenLimitExceeded
	TokenInternal

	TokenErrorKindCount
)

var tokenErrorNames = [...]string{
	TokenInvalidArgument:  "invalid-argument",
	TokenPermissionDenied: "permission-denied",
	TokenLimitExceeded:    "limit-exceeded",
	TokenInternal:         "internal-error",
}

var _ = [1]struct{}{}[len(tokenErrorNames)-int(TokenErrorKindCount)]

func (k TokenErrorKind) String() string     { return enumName(tokenErrorNames[:], uint8(k)) }
func (k TokenErrorKind) Capability() string { return "token" }

type TokenError = Failure[TokenErrorKind]

// SelectorKind discriminates the selectors used in permissions.
type SelectorKind uint8

const (
	SelectAll SelectorKind = iota
	SelectName
	SelectPrefix

	SelectorKindCount
)

var selectorNames = [...]string{
	SelectAll:    "all",
	SelectName:   "name",
	SelectPrefix: "prefix",
}

var _ = [1]struct{}{}[len(selectorNames)-int(SelectorKindCount)]

func (k SelectorKind) String() string { return enumName(selectorNames[:], uint8(k)) }

// Selector is all | name(string) | prefix(string). Caches accept only
// all and name.
type Selector struct {
	_    struct{} `cbor:",toarray"`
	Kind SelectorKind
	Name string
}

// ItemSelector is all-items | key(bytes) | key-prefix(bytes).
type ItemSelector struct {
	_    struct{} `cbor:",toarray"`
	Kind SelectorKind
	Key  []byte
}

type CacheRole uint8

const (
	CacheRoleNone CacheRole = iota
	CacheRoleReadWrite
	CacheRoleReadOnly
	CacheRoleWriteOnly

	CacheRoleCount
)

type TopicRole uint8

const (
	TopicRoleNone TopicRole = iota
	TopicRoleReadWrite
	TopicRoleReadOnly
	TopicRoleWriteOnly

	TopicRoleCount
)

type FunctionRole uint8

const (
	FunctionRoleNone FunctionRole = iota
	FunctionRoleInvoke

	FunctionRoleCount
)

type CachePermission struct {
	_     struct{} `cbor:",toarray"`
	Role  CacheRole
	Cache Selector
	Item  ItemSelector
}

type TopicPermission struct {
	_     struct{} `cbor:",toarray"`
	Role  TopicRole
	Cache Selector
	Topic Selector
}

type FunctionPermission struct {
	_        struct{} `cbor:",toarray"`
	Role     FunctionRole
	Cache    Selector
	Function Selector
}

type PermissionKind uint8

const (
	PermitCache PermissionKind = iota
	PermitTopic
	PermitFunction

	PermissionKindCount
)

var permissionNames = [...]string{
	PermitCache:    "cache-permissions",
	PermitTopic:    "topic-permissions",
	PermitFunction: "function-permissions",
}

var _ = [1]struct{}{}[len(permissionNames)-int(PermissionKindCount)]

func (k PermissionKind) String() string { return enumName(permissionNames[:], uint8(k)) }

// Permission is one explicit grant; only the field named by Kind is set.
type Permission struct {
	_        struct{} `cbor:",toarray"`
	Kind     PermissionKind
	Cache    CachePermission
	Topic    TopicPermission
	Function FunctionPermission
}

// Permissions is super-user | explicit(list<permission>).
type Permissions struct {
	_         struct{} `cbor:",toarray"`
	SuperUser bool
	Explicit  []Permission
}

type TokenRequest struct {
	_               struct{} `cbor:",toarray"`
	ValidForSeconds uint32
	Permissions     Permissions
	TokenID         *string
}

// DisposableToken is a scoped API key. ValidUntil is in epoch seconds.
type DisposableToken struct {
	_          struct{} `cbor:",toarray"`
	APIKey     string
	Endpoint   string
	ValidUntil uint64
}

// Token is functions:host/token.
type Token interface {
	GenerateDisposableToken(ctx context.Context, req TokenRequest) (DisposableToken, error)
}
