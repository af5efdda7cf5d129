package devhost

import (
	"context"
	"strings"
	"sync"

	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/errors"
	"github.com/wippyai/wasm-functions/resource"
)

// Auth issues credentials providers. When credentials are configured only
// those pairs are accepted; otherwise any non-empty pair except the UNSET
// placeholder is.
type Auth struct {
	table   *resource.Table
	allowed map[contract.Credentials]bool
}

type provider struct {
	region string
	creds  contract.Credentials
}

// awsClient is the host state of every AWS service client.
type awsClient struct {
	region   string
	provider resource.Handle
}

func newAuth(table *resource.Table, creds []Credential) *Auth {
	a := &Auth{table: table}
	if len(creds) > 0 {
		a.allowed = make(map[contract.Credentials]bool, len(creds))
		for _, c := range creds {
			a.allowed[contract.Credentials{AccessKeyID: c.AccessKeyID, SecretAccessKey: c.SecretAccessKey}] = true
		}
	}
	return a
}

func (a *Auth) Provider(_ context.Context, auth contract.Authorization, region string) (contract.Handle, error) {
	if auth.Kind != contract.AuthorizationHardcoded {
		return 0, fail(contract.AuthMalformed, "unsupported authorization kind %d", auth.Kind)
	}
	if region == "" || strings.ContainsAny(region, " /") {
		return 0, fail(contract.AuthMalformed, "invalid region %q", region)
	}
	c := auth.Hardcoded
	if c.AccessKeyID == "" || c.SecretAccessKey == "" || c.AccessKeyID == "UNSET" || c.SecretAccessKey == "UNSET" {
		return 0, fail(contract.AuthUnauthorized, "credentials are not set")
	}
	if a.allowed != nil && !a.allowed[contract.Credentials{AccessKeyID: c.AccessKeyID, SecretAccessKey: c.SecretAccessKey}] {
		return 0, fail(contract.AuthUnauthorized, "unknown access key %s", c.AccessKeyID)
	}

	h, err := a.table.Insert(resource.TypeCredentialsProvider, &provider{region: region, creds: c})
	if err != nil {
		return 0, fail(contract.AuthOther, "%v", err)
	}
	return h, nil
}

func (a *Auth) ResourceDropCredentialsProvider(_ context.Context, self contract.Handle) error {
	if err := a.table.Drop(self, resource.TypeCredentialsProvider); err != nil {
		if errors.Is(err, resource.ErrOutstandingBorrow) {
			return fail(contract.AuthOther, "credentials provider %d has %d live clients", self, a.table.Borrows(self))
		}
		return fail(contract.AuthMalformed, "drop credentials provider %d: %v", self, err)
	}
	return nil
}

func lookupProvider(table *resource.Table, h contract.Handle) (*provider, error) {
	return resource.Lookup[*provider](table, h, resource.TypeCredentialsProvider)
}

func constructClient[K contract.KindEnum](table *resource.Table, typ resource.Type, providerHandle contract.Handle, bad K) (contract.Handle, error) {
	p, err := lookupProvider(table, providerHandle)
	if err != nil {
		return 0, fail(bad, "invalid credentials provider %d: %v", providerHandle, err)
	}
	h, err := table.Insert(typ, &awsClient{region: p.region, provider: providerHandle}, providerHandle)
	if err != nil {
		return 0, fail(bad, "%v", err)
	}
	return h, nil
}

func lookupClient[K contract.KindEnum](table *resource.Table, typ resource.Type, self contract.Handle, bad K) (*awsClient, error) {
	c, err := resource.Lookup[*awsClient](table, self, typ)
	if err != nil {
		return nil, fail(bad, "invalid %s handle %d: %v", typ, self, err)
	}
	return c, nil
}

func dropClient[K contract.KindEnum](table *resource.Table, typ resource.Type, self contract.Handle, bad K) error {
	if err := table.Drop(self, typ); err != nil {
		return fail(bad, "drop %s %d: %v", typ, self, err)
	}
	return nil
}

// S3 stores objects in memory. Objects can be seeded with "bucket/key"
// config entries.
type S3 struct {
	table   *resource.Table
	bytes   *Bytes
	objects map[string]map[string][]byte
	mu      sync.Mutex
}

func newS3(table *resource.Table, bytes *Bytes, seed map[string]string) *S3 {
	s := &S3{table: table, bytes: bytes, objects: make(map[string]map[string][]byte)}
	for path, body := range seed {
		bucket, key, _ := strings.Cut(path, "/")
		s.put(bucket, key, []byte(body))
	}
	return s
}

func (s *S3) put(bucket, key string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects[bucket] == nil {
		s.objects[bucket] = make(map[string][]byte)
	}
	s.objects[bucket][key] = body
}

func (s *S3) ConstructorClient(_ context.Context, provider contract.Handle) (contract.Handle, error) {
	return constructClient(s.table, resource.TypeS3Client, provider, contract.S3Malformed)
}

func (s *S3) MethodClientGetObject(_ context.Context, self contract.Handle, bucket, key string) ([]byte, bool, error) {
	if _, err := lookupClient(s.table, resource.TypeS3Client, self, contract.S3Malformed); err != nil {
		return nil, false, err
	}
	if bucket == "" || key == "" {
		return nil, false, fail(contract.S3Malformed, "bucket and key are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.objects[bucket][key]
	return body, ok, nil
}

// MethodClientGetObjectData returns bodies over InlineDataLimit as a
// buffer the caller must drop.
func (s *S3) MethodClientGetObjectData(ctx context.Context, self contract.Handle, bucket, key string) (contract.Data, bool, error) {
	body, ok, err := s.MethodClientGetObject(ctx, self, bucket, key)
	if err != nil || !ok {
		return contract.Data{}, ok, err
	}
	d, err := s.bytes.data(body)
	if err != nil {
		return contract.Data{}, false, fail(contract.S3Other, "buffer %s/%s: %v", bucket, key, err)
	}
	return d, true, nil
}

func (s *S3) MethodClientPutObject(_ context.Context, self contract.Handle, bucket, key string, body []byte) error {
	if _, err := lookupClient(s.table, resource.TypeS3Client, self, contract.S3Malformed); err != nil {
		return err
	}
	if bucket == "" || key == "" {
		return fail(contract.S3Malformed, "bucket and key are required")
	}
	s.put(bucket, key, append([]byte(nil), body...))
	return nil
}

func (s *S3) ResourceDropClient(_ context.Context, self contract.Handle) error {
	return dropClient(s.table, resource.TypeS3Client, self, contract.S3Malformed)
}

// Secrets serves string secrets by id.
type Secrets struct {
	table   *resource.Table
	secrets map[string]contract.SecretValue
	mu      sync.Mutex
}

func newSecrets(table *resource.Table, seed map[string]string) *Secrets {
	s := &Secrets{table: table, secrets: make(map[string]contract.SecretValue, len(seed))}
	for id, v := range seed {
		s.secrets[id] = contract.SecretValue{Kind: contract.SecretString, String: v}
	}
	return s
}

// Put stores a secret.
func (s *Secrets) Put(id string, v contract.SecretValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[id] = v
}

func (s *Secrets) ConstructorClient(_ context.Context, provider contract.Handle) (contract.Handle, error) {
	return constructClient(s.table, resource.TypeSecretsClient, provider, contract.SecretsMalformed)
}

func (s *Secrets) MethodClientGetSecretValue(_ context.Context, self contract.Handle, req contract.GetSecretValueRequest) (contract.SecretValue, error) {
	if _, err := lookupClient(s.table, resource.TypeSecretsClient, self, contract.SecretsMalformed); err != nil {
		return contract.SecretValue{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.secrets[req.SecretID]
	if !ok {
		return contract.SecretValue{}, fail(contract.SecretsNotFound, "secrets manager can't find the specified secret %q", req.SecretID)
	}
	return v, nil
}

func (s *Secrets) ResourceDropClient(_ context.Context, self contract.Handle) error {
	return dropClient(s.table, resource.TypeSecretsClient, self, contract.SecretsMalformed)
}

// LambdaFunc answers an invocation.
type LambdaFunc func(ctx context.Context, name, qualifier string, payload []byte) (int32, []byte, error)

// Lambda answers invocations from canned responses keyed by "name" or
// "name:qualifier", then from a LambdaFunc.
type Lambda struct {
	table  *resource.Table
	canned map[string]LambdaResponse
	run    LambdaFunc
}

func newLambda(table *resource.Table, canned map[string]LambdaResponse, run LambdaFunc) *Lambda {
	return &Lambda{table: table, canned: canned, run: run}
}

func (l *Lambda) ConstructorClient(_ context.Context, provider contract.Handle) (contract.Handle, error) {
	return constructClient(l.table, resource.TypeLambdaClient, provider, contract.LambdaMalformed)
}

func (l *Lambda) MethodClientInvoke(ctx context.Context, self contract.Handle, req contract.InvokeRequest) (contract.InvokeResponse, error) {
	if _, err := lookupClient(l.table, resource.TypeLambdaClient, self, contract.LambdaMalformed); err != nil {
		return contract.InvokeResponse{}, err
	}
	if req.FunctionName == "" {
		return contract.InvokeResponse{}, fail(contract.LambdaMalformed, "function name is required")
	}

	name := req.FunctionName
	if req.Qualifier != "" {
		if r, ok := l.canned[name+":"+req.Qualifier]; ok {
			return canned(r), nil
		}
	}
	if r, ok := l.canned[name]; ok {
		return canned(r), nil
	}
	if l.run == nil {
		return contract.InvokeResponse{}, fail(contract.LambdaFunctionNotFound, "function not found: %s", name)
	}

	status, payload, err := l.run(ctx, name, req.Qualifier, req.Payload)
	if err != nil {
		return contract.InvokeResponse{}, fail(contract.LambdaOther, "%v", err)
	}
	return contract.InvokeResponse{StatusCode: status, Payload: payload}, nil
}

func (l *Lambda) ResourceDropClient(_ context.Context, self contract.Handle) error {
	return dropClient(l.table, resource.TypeLambdaClient, self, contract.LambdaMalformed)
}

func canned(r LambdaResponse) contract.InvokeResponse {
	status := r.StatusCode
	if status == 0 {
		status = 200
	}
	return contract.InvokeResponse{StatusCode: status, Payload: []byte(r.Payload)}
}
