package wire

import (
	"context"

	"github.com/wippyai/wasm-functions/contract"
)

var (
	_ contract.CacheScalar = cacheScalar{}
	_ contract.CacheList   = cacheList{}
	_ contract.Topic       = topic{}
	_ contract.AWSAuth     = awsAuth{}
	_ contract.DDB         = ddb{}
	_ contract.S3          = s3{}
	_ contract.Secrets     = secrets{}
	_ contract.Lambda      = lambda{}
	_ contract.HTTP        = httpClient{}
	_ contract.Redis       = redis{}
	_ contract.Spawn       = spawn{}
	_ contract.WebSupport  = webSupport{}
	_ contract.Environment = environment{}
	_ contract.Logging     = logging{}
	_ contract.Token       = token{}
	_ contract.Bytes       = buffers{}
)

type cacheScalar struct{ c *Client }

func (s cacheScalar) Get(ctx context.Context, key []byte) (v []byte, ok bool, err error) {
	err = s.c.Call(ctx, contract.NamespaceCacheScalar, "Get", []any{&v, &ok}, key)
	return v, ok, err
}

func (s cacheScalar) Set(ctx context.Context, key, value []byte, ttlMillis uint64) error {
	return s.c.Call(ctx, contract.NamespaceCacheScalar, "Set", nil, key, value, ttlMillis)
}

type cacheList struct{ c *Client }

func (s cacheList) ListPushFront(ctx context.Context, req contract.ListPush) (n uint32, err error) {
	err = s.c.Call(ctx, contract.NamespaceCacheList, "ListPushFront", []any{&n}, req)
	return n, err
}

func (s cacheList) ListPushBack(ctx context.Context, req contract.ListPush) (n uint32, err error) {
	err = s.c.Call(ctx, contract.NamespaceCacheList, "ListPushBack", []any{&n}, req)
	return n, err
}

func (s cacheList) ListPopFront(ctx context.Context, name []byte) (resp contract.PopResponse, err error) {
	err = s.c.Call(ctx, contract.NamespaceCacheList, "ListPopFront", []any{&resp}, name)
	return resp, err
}

func (s cacheList) ListPopBack(ctx context.Context, name []byte) (resp contract.PopResponse, err error) {
	err = s.c.Call(ctx, contract.NamespaceCacheList, "ListPopBack", []any{&resp}, name)
	return resp, err
}

type topic struct{ c *Client }

func (s topic) Publish(ctx context.Context, topic, value string) error {
	return s.c.Call(ctx, contract.NamespaceTopic, "Publish", nil, topic, value)
}

type awsAuth struct{ c *Client }

func (s awsAuth) Provider(ctx context.Context, auth contract.Authorization, region string) (h contract.Handle, err error) {
	err = s.c.Call(ctx, contract.NamespaceAWSAuth, "Provider", []any{&h}, auth, region)
	return h, err
}

func (s awsAuth) ResourceDropCredentialsProvider(ctx context.Context, self contract.Handle) error {
	return s.c.Call(ctx, contract.NamespaceAWSAuth, "ResourceDropCredentialsProvider", nil, self)
}

type ddb struct{ c *Client }

func (s ddb) ConstructorClient(ctx context.Context, provider contract.Handle) (h contract.Handle, err error) {
	err = s.c.Call(ctx, contract.NamespaceAWSDDB, "ConstructorClient", []any{&h}, provider)
	return h, err
}

func (s ddb) MethodClientGetItem(ctx context.Context, self contract.Handle, req contract.GetItemRequest) (resp contract.GetItemResponse, err error) {
	err = s.c.Call(ctx, contract.NamespaceAWSDDB, "MethodClientGetItem", []any{&resp}, self, req)
	return resp, err
}

func (s ddb) MethodClientPutItem(ctx context.Context, self contract.Handle, req contract.PutItemRequest) error {
	return s.c.Call(ctx, contract.NamespaceAWSDDB, "MethodClientPutItem", nil, self, req)
}

func (s ddb) ResourceDropClient(ctx context.Context, self contract.Handle) error {
	return s.c.Call(ctx, contract.NamespaceAWSDDB, "ResourceDropClient", nil, self)
}

type s3 struct{ c *Client }

func (s s3) ConstructorClient(ctx context.Context, provider contract.Handle) (h contract.Handle, err error) {
	err = s.c.Call(ctx, contract.NamespaceAWSS3, "ConstructorClient", []any{&h}, provider)
	return h, err
}

func (s s3) MethodClientGetObject(ctx context.Context, self contract.Handle, bucket, key string) (body []byte, found bool, err error) {
	err = s.c.Call(ctx, contract.NamespaceAWSS3, "MethodClientGetObject", []any{&body, &found}, self, bucket, key)
	return body, found, err
}

func (s s3) MethodClientGetObjectData(ctx context.Context, self contract.Handle, bucket, key string) (data contract.Data, found bool, err error) {
	err = s.c.Call(ctx, contract.NamespaceAWSS3, "MethodClientGetObjectData", []any{&data, &found}, self, bucket, key)
	return data, found, err
}

func (s s3) MethodClientPutObject(ctx context.Context, self contract.Handle, bucket, key string, body []byte) error {
	return s.c.Call(ctx, contract.NamespaceAWSS3, "MethodClientPutObject", nil, self, bucket, key, body)
}

func (s s3) ResourceDropClient(ctx context.Context, self contract.Handle) error {
	return s.c.Call(ctx, contract.NamespaceAWSS3, "ResourceDropClient", nil, self)
}

type secrets struct{ c *Client }

func (s secrets) ConstructorClient(ctx context.Context, provider contract.Handle) (h contract.Handle, err error) {
	err = s.c.Call(ctx, contract.NamespaceAWSSecrets, "ConstructorClient", []any{&h}, provider)
	return h, err
}

func (s secrets) MethodClientGetSecretValue(ctx context.Context, self contract.Handle, req contract.GetSecretValueRequest) (v contract.SecretValue, err error) {
	err = s.c.Call(ctx, contract.NamespaceAWSSecrets, "MethodClientGetSecretValue", []any{&v}, self, req)
	return v, err
}

func (s secrets) ResourceDropClient(ctx context.Context, self contract.Handle) error {
	return s.c.Call(ctx, contract.NamespaceAWSSecrets, "ResourceDropClient", nil, self)
}

type lambda struct{ c *Client }

func (s lambda) ConstructorClient(ctx context.Context, provider contract.Handle) (h contract.Handle, err error) {
	err = s.c.Call(ctx, contract.NamespaceAWSLambda, "ConstructorClient", []any{&h}, provider)
	return h, err
}

func (s lambda) MethodClientInvoke(ctx context.Context, self contract.Handle, req contract.InvokeRequest) (resp contract.InvokeResponse, err error) {
	err = s.c.Call(ctx, contract.NamespaceAWSLambda, "MethodClientInvoke", []any{&resp}, self, req)
	return resp, err
}

func (s lambda) ResourceDropClient(ctx context.Context, self contract.Handle) error {
	return s.c.Call(ctx, contract.NamespaceAWSLambda, "ResourceDropClient", nil, self)
}

type httpClient struct{ c *Client }

func (s httpClient) do(ctx context.Context, method string, req contract.HTTPRequest) (resp contract.HTTPResponse, err error) {
	err = s.c.Call(ctx, contract.NamespaceHTTP, method, []any{&resp}, req)
	return resp, err
}

func (s httpClient) Get(ctx context.Context, req contract.HTTPRequest) (contract.HTTPResponse, error) {
	return s.do(ctx, "Get", req)
}

func (s httpClient) Put(ctx context.Context, req contract.HTTPRequest) (contract.HTTPResponse, error) {
	return s.do(ctx, "Put", req)
}

func (s httpClient) Post(ctx context.Context, req contract.HTTPRequest) (contract.HTTPResponse, error) {
	return s.do(ctx, "Post", req)
}

func (s httpClient) Delete(ctx context.Context, req contract.HTTPRequest) (contract.HTTPResponse, error) {
	return s.do(ctx, "Delete", req)
}

type redis struct{ c *Client }

func (s redis) ConstructorClient(ctx context.Context, conn contract.RedisConnection) (h contract.Handle, err error) {
	err = s.c.Call(ctx, contract.NamespaceRedis, "ConstructorClient", []any{&h}, conn)
	return h, err
}

func (s redis) MethodClientPipe(ctx context.Context, self contract.Handle, commands []contract.RedisCommand) (h contract.Handle, err error) {
	err = s.c.Call(ctx, contract.NamespaceRedis, "MethodClientPipe", []any{&h}, self, commands)
	return h, err
}

func (s redis) MethodResponseStreamNext(ctx context.Context, self contract.Handle) (v contract.RedisValue, ok bool, err error) {
	err = s.c.Call(ctx, contract.NamespaceRedis, "MethodResponseStreamNext", []any{&v, &ok}, self)
	return v, ok, err
}

func (s redis) ResourceDropClient(ctx context.Context, self contract.Handle) error {
	return s.c.Call(ctx, contract.NamespaceRedis, "ResourceDropClient", nil, self)
}

func (s redis) ResourceDropResponseStream(ctx context.Context, self contract.Handle) error {
	return s.c.Call(ctx, contract.NamespaceRedis, "ResourceDropResponseStream", nil, self)
}

type spawn struct{ c *Client }

func (s spawn) SpawnFunction(ctx context.Context, name string, payload []byte) error {
	return s.c.Call(ctx, contract.NamespaceSpawn, "SpawnFunction", nil, name, payload)
}

type webSupport struct{ c *Client }

func (s webSupport) TokenMetadata(ctx context.Context) (md string, ok bool, err error) {
	err = s.c.Call(ctx, contract.NamespaceWebSupport, "TokenMetadata", []any{&md, &ok})
	return md, ok, err
}

type environment struct{ c *Client }

func (s environment) GetEnvironment(ctx context.Context) (pairs [][2]string, err error) {
	err = s.c.Call(ctx, contract.NamespaceEnvironment, "GetEnvironment", []any{&pairs})
	return pairs, err
}

type logging struct{ c *Client }

func (s logging) Configure(ctx context.Context, destinations []contract.LogDestination) error {
	return s.c.Call(ctx, contract.NamespaceLogging, "Configure", nil, destinations)
}

func (s logging) Log(ctx context.Context, level contract.LogLevel, message string) error {
	return s.c.Call(ctx, contract.NamespaceLogging, "Log", nil, level, message)
}

type token struct{ c *Client }

func (s token) GenerateDisposableToken(ctx context.Context, req contract.TokenRequest) (tok contract.DisposableToken, err error) {
	err = s.c.Call(ctx, contract.NamespaceToken, "GenerateDisposableToken", []any{&tok}, req)
	return tok, err
}

type buffers struct{ c *Client }

func (s buffers) MethodBufferRemaining(ctx context.Context, self contract.Handle) (n uint64, err error) {
	err = s.c.Call(ctx, contract.NamespaceBytes, "MethodBufferRemaining", []any{&n}, self)
	return n, err
}

func (s buffers) MethodBufferRead(ctx context.Context, self contract.Handle, max uint32) (chunk []byte, ok bool, err error) {
	err = s.c.Call(ctx, contract.NamespaceBytes, "MethodBufferRead", []any{&chunk, &ok}, self, max)
	return chunk, ok, err
}

func (s buffers) ResourceDropBuffer(ctx context.Context, self contract.Handle) error {
	return s.c.Call(ctx, contract.NamespaceBytes, "ResourceDropBuffer", nil, self)
}
