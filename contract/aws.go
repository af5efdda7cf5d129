package contract

import "context"

// AuthErrorKind enumerates aws-auth failures.
type AuthErrorKind uint8

const (
	AuthUnauthorized AuthErrorKind = iota
	AuthMalformed
	AuthOther

	AuthErrorKindCount
)

var authErrorNames = [...]string{
	AuthUnauthorized: "unauthorized",
	AuthMalformed:    "malformed",
	AuthOther:        "other",
}

var _ = [1]struct{}{}[len(authErrorNames)-int(AuthErrorKindCount)]

func (k AuthErrorKind) String() string     { return enumName(authErrorNames[:], uint8(k)) }
func (k AuthErrorKind) Capability() string { return "aws-auth" }

type AuthError = Failure[AuthErrorKind]

// Credentials are a static AWS access key pair.
type Credentials struct {
	_               struct{} `cbor:",toarray"`
	AccessKeyID     string
	SecretAccessKey string
}

type AuthorizationKind uint8

const (
	AuthorizationHardcoded AuthorizationKind = iota

	AuthorizationKindCount
)

// Authorization selects how a credentials provider obtains credentials.
type Authorization struct {
	_         struct{} `cbor:",toarray"`
	Kind      AuthorizationKind
	Hardcoded Credentials
}

// AWSAuth is functions:host/aws-auth. The returned handle is a
// credentials-provider resource that service clients borrow.
type AWSAuth interface {
	Provider(ctx context.Context, auth Authorization, region string) (Handle, error)
	ResourceDropCredentialsProvider(ctx context.Context, self Handle) error
}

// DDBErrorKind enumerates aws-ddb failures.
type DDBErrorKind uint8

const (
	DDBUnauthorized DDBErrorKind = iota
	DDBMalformed
	DDBConditionFailed
	DDBOther

	DDBErrorKindCount
)

var ddbErrorNames = [...]string{
	DDBUnauthorized:    "unauthorized",
	DDBMalformed:       "malformed",
	DDBConditionFailed: "condition-failed",
	DDBOther:           "other",
}

var _ = [1]struct{}{}[len(ddbErrorNames)-int(DDBErrorKindCount)]

func (k DDBErrorKind) String() string     { return enumName(ddbErrorNames[:], uint8(k)) }
func (k DDBErrorKind) Capability() string { return "aws-ddb" }

type DDBError = Failure[DDBErrorKind]

// KeyValueKind discriminates KeyValue.
type KeyValueKind uint8

const (
	KeyValueS KeyValueKind = iota
	KeyValueN
	KeyValueB

	KeyValueKindCount
)

// KeyValue is one key attribute value: s(string) | n(string) | b(string).
// B holds standard base64 without padding.
type KeyValue struct {
	_    struct{} `cbor:",toarray"`
	Kind KeyValueKind
	S    string
	N    string
	B    string
}

// KeyAttribute names one part of a primary key.
type KeyAttribute struct {
	_     struct{} `cbor:",toarray"`
	Name  string
	Value KeyValue
}

// Item carries a document as an embedded DynamoDB JSON string.
type Item struct {
	_    struct{} `cbor:",toarray"`
	JSON string
}

type GetItemRequest struct {
	_              struct{} `cbor:",toarray"`
	TableName      string
	Key            []KeyAttribute
	ConsistentRead bool
}

type GetItemResponse struct {
	_     struct{} `cbor:",toarray"`
	Found bool
	Item  Item
}

// Condition guards a put with a condition expression.
type Condition struct {
	_          struct{} `cbor:",toarray"`
	Expression string
	Names      []Header
	// Values is a DynamoDB JSON object of expression attribute values.
	Values string
}

type PutItemRequest struct {
	_         struct{} `cbor:",toarray"`
	TableName string
	Item      Item
	Condition *Condition
}

// DDB is functions:host/aws-ddb.
type DDB interface {
	ConstructorClient(ctx context.Context, provider Handle) (Handle, error)
	MethodClientGetItem(ctx context.Context, self Handle, req GetItemRequest) (GetItemResponse, error)
	MethodClientPutItem(ctx context.Context, self Handle, req PutItemRequest) error
	ResourceDropClient(ctx context.Context, self Handle) error
}

type S3ErrorKind uint8

const (
	S3Unauthorized S3ErrorKind = iota
	S3Malformed
	S3NotFound
	S3Other

	S3ErrorKindCount
)

var s3ErrorNames = [...]string{
	S3Unauthorized: "unauthorized",
	S3Malformed:    "malformed",
	S3NotFound:     "not-found",
	S3Other:        "other",
}

var _ = [1]struct{}{}[len(s3ErrorNames)-int(S3ErrorKindCount)]

func (k S3ErrorKind) String() string     { return enumName(s3ErrorNames[:], uint8(k)) }
func (k S3ErrorKind) Capability() string { return "aws-s3" }

type S3Error = Failure[S3ErrorKind]

// S3 is functions:host/aws-s3. A missing object is reported as found=false,
// not as an error. get-object-data may leave a large body on the host as a
// functions:host/bytes buffer.
type S3 interface {
	ConstructorClient(ctx context.Context, provider Handle) (Handle, error)
	MethodClientGetObject(ctx context.Context, self Handle, bucket, key string) ([]byte, bool, error)
	MethodClientGetObjectData(ctx context.Context, self Handle, bucket, key string) (Data, bool, error)
	MethodClientPutObject(ctx context.Context, self Handle, bucket, key string, body []byte) error
	ResourceDropClient(ctx context.Context, self Handle) error
}

type SecretsErrorKind uint8

const (
	SecretsUnauthorized SecretsErrorKind = iota
	SecretsMalformed
	SecretsNotFound
	SecretsOther

	SecretsErrorKindCount
)

var secretsErrorNames = [...]string{
	SecretsUnauthorized: "unauthorized",
	SecretsMalformed:    "malformed",
	SecretsNotFound:     "not-found",
	SecretsOther:        "other",
}

var _ = [1]struct{}{}[len(secretsErrorNames)-int(SecretsErrorKindCount)]

func (k SecretsErrorKind) String() string     { return enumName(secretsErrorNames[:], uint8(k)) }
func (k SecretsErrorKind) Capability() string { return "aws-secrets" }

type SecretsError = Failure[SecretsErrorKind]

type GetSecretValueRequest struct {
	_            struct{} `cbor:",toarray"`
	SecretID     string
	VersionID    string
	VersionStage string
}

type SecretValueKind uint8

const (
	SecretBytes SecretValueKind = iota
	SecretString

	SecretValueKindCount
)

// SecretValue is secret-bytes(bytes) | secret-string(string).
type SecretValue struct {
	_      struct{} `cbor:",toarray"`
	Kind   SecretValueKind
	Bytes  []byte
	String string
}

// Secrets is functions:host/aws-secrets.
type Secrets interface {
	ConstructorClient(ctx context.Context, provider Handle) (Handle, error)
	MethodClientGetSecretValue(ctx context.Context, self Handle, req GetSecretValueRequest) (SecretValue, error)
	ResourceDropClient(ctx context.Context, self Handle) error
}

type LambdaErrorKind uint8

const (
	LambdaUnauthorized LambdaErrorKind = iota
	LambdaMalformed
	LambdaFunctionNotFound
	LambdaOther

	LambdaErrorKindCount
)

var lambdaErrorNames = [...]string{
	LambdaUnauthorized:     "unauthorized",
	LambdaMalformed:        "malformed",
	LambdaFunctionNotFound: "function-not-found",
	LambdaOther:            "other",
}

var _ = [1]struct{}{}[len(lambdaErrorNames)-int(LambdaErrorKindCount)]

func (k LambdaErrorKind) String() string     { return enumName(lambdaErrorNames[:], uint8(k)) }
func (k LambdaErrorKind) Capability() string { return "aws-lambda" }

type LambdaError = Failure[LambdaErrorKind]

type InvokeRequest struct {
	_            struct{} `cbor:",toarray"`
	FunctionName string
	Qualifier    string
	Payload      []byte
}

type InvokeResponse struct {
	_          struct{} `cbor:",toarray"`
	StatusCode int32
	Payload    []byte
}

// Lambda is functions:host/aws-lambda; invocations are request/response.
type Lambda interface {
	ConstructorClient(ctx context.Context, provider Handle) (Handle, error)
	MethodClientInvoke(ctx context.Context, self Handle, req InvokeRequest) (InvokeResponse, error)
	ResourceDropClient(ctx context.Context, self Handle) error
}
