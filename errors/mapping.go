package errors

import (
	stderrors "errors"

	"github.com/wippyai/wasm-functions/contract"
)

// Each table is indexed by a capability's error discriminant. The
// assertion after each table fails to compile when the contract gains or
// loses a case without the table being updated.

var cacheKinds = [...]Kind{
	contract.CacheInvalidArgument:      KindMalformed,
	contract.CacheAuthenticationFailed: KindUnauthorized,
	contract.CachePermissionDenied:     KindPermissionDenied,
	contract.CacheNotFound:             KindNotFound,
	contract.CacheLimitExceeded:        KindLimitExceeded,
	contract.CacheTimeout:              KindTimeout,
	contract.CacheCancelled:            KindCancelled,
	contract.CacheFailedPrecondition:   KindFailedPrecondition,
	contract.CacheServerUnavailable:    KindInternal,
	contract.CacheInternal:             KindInternal,
	contract.CacheUnknown:              KindOther,
}

var _ = [1]struct{}{}[len(cacheKinds)-int(contract.CacheErrorKindCount)]

var topicKinds = [...]Kind{
	contract.TopicInvalidArgument:      KindMalformed,
	contract.TopicAuthenticationFailed: KindUnauthorized,
	contract.TopicPermissionDenied:     KindPermissionDenied,
	contract.TopicNotFound:             KindNotFound,
	contract.TopicLimitExceeded:        KindLimitExceeded,
	contract.TopicTimeout:              KindTimeout,
	contract.TopicInternal:             KindInternal,
	contract.TopicUnknown:              KindOther,
}

var _ = [1]struct{}{}[len(topicKinds)-int(contract.TopicErrorKindCount)]

var authKinds = [...]Kind{
	contract.AuthUnauthorized: KindUnauthorized,
	contract.AuthMalformed:    KindMalformed,
	contract.AuthOther:        KindOther,
}

var _ = [1]struct{}{}[len(authKinds)-int(contract.AuthErrorKindCount)]

var ddbKinds = [...]Kind{
	contract.DDBUnauthorized:    KindUnauthorized,
	contract.DDBMalformed:       KindMalformed,
	contract.DDBConditionFailed: KindFailedPrecondition,
	contract.DDBOther:           KindOther,
}

var _ = [1]struct{}{}[len(ddbKinds)-int(contract.DDBErrorKindCount)]

var s3Kinds = [...]Kind{
	contract.S3Unauthorized: KindUnauthorized,
	contract.S3Malformed:    KindMalformed,
	contract.S3NotFound:     KindNotFound,
	contract.S3Other:        KindOther,
}

var _ = [1]struct{}{}[len(s3Kinds)-int(contract.S3ErrorKindCount)]

var secretsKinds = [...]Kind{
	contract.SecretsUnauthorized: KindUnauthorized,
	contract.SecretsMalformed:    KindMalformed,
	contract.SecretsNotFound:     KindNotFound,
	contract.SecretsOther:        KindOther,
}

var _ = [1]struct{}{}[len(secretsKinds)-int(contract.SecretsErrorKindCount)]

var lambdaKinds = [...]Kind{
	contract.LambdaUnauthorized:     KindUnauthorized,
	contract.LambdaMalformed:        KindMalformed,
	contract.LambdaFunctionNotFound: KindNotFound,
	contract.LambdaOther:            KindOther,
}

var _ = [1]struct{}{}[len(lambdaKinds)-int(contract.LambdaErrorKindCount)]

var httpKinds = [...]Kind{
	contract.HTTPInvalidURL:   KindMalformed,
	contract.HTTPUnauthorized: KindUnauthorized,
	contract.HTTPTimeout:      KindTimeout,
	contract.HTTPOther:        KindOther,
}

var _ = [1]struct{}{}[len(httpKinds)-int(contract.HTTPErrorKindCount)]

var redisKinds = [...]Kind{
	contract.RedisUnauthorized:     KindUnauthorized,
	contract.RedisMalformed:        KindMalformed,
	contract.RedisTimeout:          KindTimeout,
	contract.RedisConnectionFailed: KindInternal,
	contract.RedisResponseError:    KindFailedPrecondition,
	contract.RedisOther:            KindOther,
}

var _ = [1]struct{}{}[len(redisKinds)-int(contract.RedisErrorKindCount)]

var spawnKinds = [...]Kind{
	contract.SpawnFunctionNotFound: KindNotFound,
	contract.SpawnFailed:           KindInternal,
	contract.SpawnLimit:            KindLimitExceeded,
}

var _ = [1]struct{}{}[len(spawnKinds)-int(contract.SpawnErrorKindCount)]

var logKinds = [...]Kind{
	contract.LogUnauthorized: KindUnauthorized,
	contract.LogMalformed:    KindMalformed,
	contract.LogOther:        KindOther,
}

var _ = [1]struct{}{}[len(logKinds)-int(contract.LogErrorKindCount)]

var tokenKinds = [...]Kind{
	contract.TokenInvalidArgument:  KindMalformed,
	contract.TokenPermissionDenied: KindPermissionDenied,
	contract.TokenLimitExceeded:    KindLimitExceeded,
	contract.TokenInternal:         KindInternal,
}

var _ = [1]struct{}{}[len(tokenKinds)-int(contract.TokenErrorKindCount)]

var bytesKinds = [...]Kind{
	contract.BytesMalformed: KindMalformed,
	contract.BytesOther:     KindOther,
}

var _ = [1]struct{}{}[len(bytesKinds)-int(contract.BytesErrorKindCount)]

var invocationKinds = [...]Kind{
	contract.InvocationRequestError: KindMalformed,
	contract.InvocationInternal:     KindInternal,
}

var _ = [1]struct{}{}[len(invocationKinds)-int(contract.InvocationErrorKindCount)]

func lookup[K contract.KindEnum](table []Kind, f *contract.Failure[K], op string) *Error {
	kind := KindOther
	if int(f.Kind) < len(table) {
		kind = table[f.Kind]
	}
	return &Error{
		Phase:      PhaseHost,
		Kind:       kind,
		Capability: f.Kind.Capability(),
		Op:         op,
		Detail:     f.Kind.String() + detailSuffix(f.Message),
		Cause:      f,
	}
}

func detailSuffix(msg string) string {
	if msg == "" {
		return ""
	}
	return ": " + msg
}

func FromCache(e *contract.CacheError, op string) *Error     { return lookup(cacheKinds[:], e, op) }
func FromTopic(e *contract.TopicError, op string) *Error     { return lookup(topicKinds[:], e, op) }
func FromAuth(e *contract.AuthError, op string) *Error       { return lookup(authKinds[:], e, op) }
func FromDDB(e *contract.DDBError, op string) *Error         { return lookup(ddbKinds[:], e, op) }
func FromS3(e *contract.S3Error, op string) *Error           { return lookup(s3Kinds[:], e, op) }
func FromSecrets(e *contract.SecretsError, op string) *Error { return lookup(secretsKinds[:], e, op) }
func FromLambda(e *contract.LambdaError, op string) *Error   { return lookup(lambdaKinds[:], e, op) }
func FromHTTP(e *contract.HTTPError, op string) *Error       { return lookup(httpKinds[:], e, op) }
func FromRedis(e *contract.RedisError, op string) *Error     { return lookup(redisKinds[:], e, op) }
func FromSpawn(e *contract.SpawnError, op string) *Error     { return lookup(spawnKinds[:], e, op) }
func FromLog(e *contract.LogError, op string) *Error         { return lookup(logKinds[:], e, op) }
func FromToken(e *contract.TokenError, op string) *Error     { return lookup(tokenKinds[:], e, op) }
func FromBytes(e *contract.BytesError, op string) *Error     { return lookup(bytesKinds[:], e, op) }

func FromInvocation(e *contract.InvocationError, op string) *Error {
	return lookup(invocationKinds[:], e, op)
}

// Host converts whatever a capability call returned into a unified error.
// Typed capability failures go through that capability's table; transport
// and context failures are classified here. A nil err returns nil.
func Host(capability, op string, err error) error {
	if err == nil {
		return nil
	}

	var (
		cache   *contract.CacheError
		topic   *contract.TopicError
		auth    *contract.AuthError
		ddb     *contract.DDBError
		s3      *contract.S3Error
		secrets *contract.SecretsError
		lambda  *contract.LambdaError
		http    *contract.HTTPError
		redis   *contract.RedisError
		spawn   *contract.SpawnError
		logErr  *contract.LogError
		token   *contract.TokenError
		buf     *contract.BytesError
		unified *Error
	)
	switch {
	case stderrors.As(err, &unified):
		return unified
	case stderrors.As(err, &cache):
		return FromCache(cache, op)
	case stderrors.As(err, &topic):
		return FromTopic(topic, op)
	case stderrors.As(err, &auth):
		return FromAuth(auth, op)
	case stderrors.As(err, &ddb):
		return FromDDB(ddb, op)
	case stderrors.As(err, &s3):
		return FromS3(s3, op)
	case stderrors.As(err, &secrets):
		return FromSecrets(secrets, op)
	case stderrors.As(err, &lambda):
		return FromLambda(lambda, op)
	case stderrors.As(err, &http):
		return FromHTTP(http, op)
	case stderrors.As(err, &redis):
		return FromRedis(redis, op)
	case stderrors.As(err, &spawn):
		return FromSpawn(spawn, op)
	case stderrors.As(err, &logErr):
		return FromLog(logErr, op)
	case stderrors.As(err, &token):
		return FromToken(token, op)
	case stderrors.As(err, &buf):
		return FromBytes(buf, op)
	}

	return &Error{
		Phase:      PhaseTransport,
		Kind:       contextKind(err),
		Capability: capability,
		Op:         op,
		Detail:     "host call failed",
		Cause:      err,
	}
}
