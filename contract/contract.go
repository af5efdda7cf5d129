package contract

import "fmt"

// Version is the interface version shared by every namespace below.
const Version = "1.0.0"

const (
	NamespaceCacheScalar = "functions:host/cache-scalar@" + Version
	NamespaceCacheList   = "functions:host/cache-list@" + Version
	NamespaceTopic       = "functions:host/topic@" + Version
	NamespaceAWSAuth     = "functions:host/aws-auth@" + Version
	NamespaceAWSDDB      = "functions:host/aws-ddb@" + Version
	NamespaceAWSS3       = "functions:host/aws-s3@" + Version
	NamespaceAWSSecrets  = "functions:host/aws-secrets@" + Version
	NamespaceAWSLambda   = "functions:host/aws-lambda@" + Version
	NamespaceHTTP        = "functions:host/http@" + Version
	NamespaceRedis       = "functions:host/redis@" + Version
	NamespaceSpawn       = "functions:host/spawn@" + Version
	NamespaceWebSupport  = "functions:host/web-function-support@" + Version
	NamespaceEnvironment = "functions:host/environment@" + Version
	NamespaceLogging     = "functions:host/logging@" + Version
	NamespaceToken       = "functions:host/token@" + Version
	NamespaceBytes       = "functions:host/bytes@" + Version
)

// Namespaces lists every capability namespace in a stable order.
func Namespaces() []string {
	return []string{
		NamespaceCacheScalar,
		NamespaceCacheList,
		NamespaceTopic,
		NamespaceAWSAuth,
		NamespaceAWSDDB,
		NamespaceAWSS3,
		NamespaceAWSSecrets,
		NamespaceAWSLambda,
		NamespaceHTTP,
		NamespaceRedis,
		NamespaceSpawn,
		NamespaceWebSupport,
		NamespaceEnvironment,
		NamespaceLogging,
		NamespaceToken,
		NamespaceBytes,
	}
}

// Handle is an opaque token for host-side state. Zero is never valid.
type Handle uint32

// Header is a name/value pair used for HTTP headers and query parameters.
type Header struct {
	_     struct{} `cbor:",toarray"`
	Name  string
	Value string
}

// KindEnum is satisfied by every capability error-kind enumeration.
type KindEnum interface {
	~uint8
	String() string
	Capability() string
}

// Failure is the wire shape of a capability error: a closed kind plus the
// host's detail message.
type Failure[K KindEnum] struct {
	_       struct{} `cbor:",toarray"`
	Kind    K
	Message string
}

func (f *Failure[K]) Error() string {
	if f.Message == "" {
		return f.Kind.Capability() + ": " + f.Kind.String()
	}
	return f.Kind.Capability() + ": " + f.Kind.String() + ": " + f.Message
}

// Code returns the kind discriminant.
func (f *Failure[K]) Code() uint8 { return uint8(f.Kind) }

// Detail returns the host message.
func (f *Failure[K]) Detail() string { return f.Message }

// Fault is implemented by every capability error so transports can carry
// them without knowing the concrete type.
type Fault interface {
	error
	Code() uint8
	Detail() string
}

// FaultFor rebuilds the typed capability error for a namespace from its
// discriminant and message. Unknown namespaces and out-of-range codes
// return an error describing the mismatch.
func FaultFor(namespace string, code uint8, message string) (Fault, error) {
	switch namespace {
	case NamespaceCacheScalar, NamespaceCacheList:
		return failure(CacheErrorKind(code), CacheErrorKindCount, message)
	case NamespaceTopic:
		return failure(TopicErrorKind(code), TopicErrorKindCount, message)
	case NamespaceAWSAuth:
		return failure(AuthErrorKind(code), AuthErrorKindCount, message)
	case NamespaceAWSDDB:
		return failure(DDBErrorKind(code), DDBErrorKindCount, message)
	case NamespaceAWSS3:
		return failure(S3ErrorKind(code), S3ErrorKindCount, message)
	case NamespaceAWSSecrets:
		return failure(SecretsErrorKind(code), SecretsErrorKindCount, message)
	case NamespaceAWSLambda:
		return failure(LambdaErrorKind(code), LambdaErrorKindCount, message)
	case NamespaceHTTP:
		return failure(HTTPErrorKind(code), HTTPErrorKindCount, message)
	case NamespaceRedis:
		return failure(RedisErrorKind(code), RedisErrorKindCount, message)
	case NamespaceSpawn:
		return failure(SpawnErrorKind(code), SpawnErrorKindCount, message)
	case NamespaceLogging:
		return failure(LogErrorKind(code), LogErrorKindCount, message)
	case NamespaceToken:
		return failure(TokenErrorKind(code), TokenErrorKindCount, message)
	case NamespaceBytes:
		return failure(BytesErrorKind(code), BytesErrorKindCount, message)
	}
	return nil, fmt.Errorf("namespace %q has no error variant", namespace)
}

func failure[K KindEnum](k, count K, message string) (Fault, error) {
	if k >= count {
		return nil, fmt.Errorf("%s error discriminant %d out of range (max %d)", k.Capability(), uint8(k), uint8(count)-1)
	}
	return &Failure[K]{Kind: k, Message: message}, nil
}

// Bindings is the full set of capabilities available to a function.
// A nil field means the host does not provide that capability.
type Bindings struct {
	CacheScalar CacheScalar
	CacheList   CacheList
	Topic       Topic
	AWSAuth     AWSAuth
	DDB         DDB
	S3          S3
	Secrets     Secrets
	Lambda      Lambda
	HTTP        HTTP
	Redis       Redis
	Spawn       Spawn
	WebSupport  WebSupport
	Environment Environment
	Logging     Logging
	Token       Token
	Bytes       Bytes
}
