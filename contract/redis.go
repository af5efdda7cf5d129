package contract

import "context"

type RedisErrorKind uint8

const (
	RedisUnauthorized RedisErrorKind = iota
	RedisMalformed
	RedisTimeout
	RedisConnectionFailed
	RedisResponseError
	RedisOther

	RedisErrorKindCount
)

var redisErrorNames = [...]string{
	RedisUnauthorized:     "unauthorized",
	RedisMalformed:        "malformed",
	RedisTimeout:          "timeout",
	RedisConnectionFailed: "connection-failed",
	RedisResponseError:    "response-error",
	RedisOther:            "other",
}

var _ = [1]struct{}{}[len(redisErrorNames)-int(RedisErrorKindCount)]

func (k RedisErrorKind) String() string     { return enumName(redisErrorNames[:], uint8(k)) }
func (k RedisErrorKind) Capability() string { return "redis" }

type RedisError = Failure[RedisErrorKind]

type RedisConnectionKind uint8

const (
	RedisBasicConnection RedisConnectionKind = iota

	RedisConnectionKindCount
)

// RedisConnection is basic-connection(string).
type RedisConnection struct {
	_       struct{} `cbor:",toarray"`
	Kind    RedisConnectionKind
	Address string
}

type RedisCommand struct {
	_         struct{} `cbor:",toarray"`
	Command   string
	Arguments [][]byte
}

// RedisValueKind discriminates RedisValue.
type RedisValueKind uint8

const (
	RedisNil RedisValueKind = iota
	RedisInt
	RedisData
	RedisBulk
	RedisStatus
	RedisOkay

	RedisValueKindCount
)

var redisValueNames = [...]string{
	RedisNil:    "nil",
	RedisInt:    "int",
	RedisData:   "data",
	RedisBulk:   "bulk",
	RedisStatus: "status",
	RedisOkay:   "okay",
}

var _ = [1]struct{}{}[len(redisValueNames)-int(RedisValueKindCount)]

func (k RedisValueKind) String() string { return enumName(redisValueNames[:], uint8(k)) }

// RedisValue is nil | int(s64) | data(bytes) | bulk(response-stream) |
// status(string) | okay. A bulk value owns a new response-stream handle.
type RedisValue struct {
	_      struct{} `cbor:",toarray"`
	Kind   RedisValueKind
	Int    int64
	Data   []byte
	Bulk   Handle
	Status string
}

// Redis is functions:host/redis. Client and response-stream are resources;
// next reports false once the stream is exhausted.
type Redis interface {
	ConstructorClient(ctx context.Context, conn RedisConnection) (Handle, error)
	MethodClientPipe(ctx context.Context, self Handle, commands []RedisCommand) (Handle, error)
	MethodResponseStreamNext(ctx context.Context, self Handle) (RedisValue, bool, error)
	ResourceDropClient(ctx context.Context, self Handle) error
	ResourceDropResponseStream(ctx context.Context, self Handle) error
}
