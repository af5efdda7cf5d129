package devhost

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/resource"
)

func newHost(t *testing.T, opts ...Option) *Host {
	t.Helper()
	h, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func failureKind[K contract.KindEnum](t *testing.T, err error) K {
	t.Helper()
	var f *contract.Failure[K]
	if !errors.As(err, &f) {
		t.Fatalf("error %v (%T) is not a %T", err, err, f)
	}
	return f.Kind
}

var creds = contract.Authorization{
	Kind:      contract.AuthorizationHardcoded,
	Hardcoded: contract.Credentials{AccessKeyID: "AKID", SecretAccessKey: "secret"},
}

func TestCache_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	h := newHost(t, WithClock(func() time.Time { return now }))

	if err := h.Cache.Set(ctx, []byte("k"), []byte("v"), 1000); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok, err := h.Cache.Get(ctx, []byte("k")); err != nil || !ok || string(v) != "v" {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}

	now = now.Add(time.Second)
	if _, ok, err := h.Cache.Get(ctx, []byte("k")); err != nil || ok {
		t.Fatalf("Get after expiry = %v, %v; want miss", ok, err)
	}
	if h.Cache.Len() != 0 {
		t.Errorf("Len = %d, want 0", h.Cache.Len())
	}
}

func TestCache_EmptyKey(t *testing.T) {
	h := newHost(t)
	_, _, err := h.Cache.Get(context.Background(), nil)
	if k := failureKind[contract.CacheErrorKind](t, err); k != contract.CacheInvalidArgument {
		t.Errorf("kind = %v, want invalid-argument", k)
	}
}

func TestCache_ListTruncate(t *testing.T) {
	ctx := context.Background()
	h := newHost(t)

	for _, v := range []string{"a", "b", "c"} {
		if _, err := h.Cache.ListPushBack(ctx, contract.ListPush{Name: []byte("l"), Value: []byte(v), TruncateTo: 2}); err != nil {
			t.Fatalf("ListPushBack(%s): %v", v, err)
		}
	}

	resp, err := h.Cache.ListPopFront(ctx, []byte("l"))
	if err != nil {
		t.Fatalf("ListPopFront: %v", err)
	}
	if resp.Kind != contract.PopFound || string(resp.Value) != "b" || resp.ListLength != 1 {
		t.Errorf("pop = %+v, want b with 1 left", resp)
	}
}

func TestAuth_Provider(t *testing.T) {
	ctx := context.Background()
	h := newHost(t, WithConfig(&Config{Credentials: []Credential{{AccessKeyID: "AKID", SecretAccessKey: "secret"}}}))

	tests := []struct {
		name   string
		auth   contract.Authorization
		region string
		want   contract.AuthErrorKind
		ok     bool
	}{
		{name: "configured pair", auth: creds, region: "us-west-2", ok: true},
		{name: "empty region", auth: creds, region: "", want: contract.AuthMalformed},
		{
			name:   "unset placeholder",
			auth:   contract.Authorization{Hardcoded: contract.Credentials{AccessKeyID: "UNSET", SecretAccessKey: "UNSET"}},
			region: "us-west-2",
			want:   contract.AuthUnauthorized,
		},
		{
			name:   "unknown key",
			auth:   contract.Authorization{Hardcoded: contract.Credentials{AccessKeyID: "other", SecretAccessKey: "secret"}},
			region: "us-west-2",
			want:   contract.AuthUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handle, err := h.Auth.Provider(ctx, tt.auth, tt.region)
			if tt.ok {
				if err != nil || handle == 0 {
					t.Fatalf("Provider = %d, %v", handle, err)
				}
				return
			}
			if k := failureKind[contract.AuthErrorKind](t, err); k != tt.want {
				t.Errorf("kind = %v, want %v", k, tt.want)
			}
		})
	}
}

func TestAuth_ProviderPinnedByClient(t *testing.T) {
	ctx := context.Background()
	h := newHost(t)

	p, err := h.Auth.Provider(ctx, creds, "us-east-1")
	if err != nil {
		t.Fatalf("Provider: %v", err)
	}
	c, err := h.S3.ConstructorClient(ctx, p)
	if err != nil {
		t.Fatalf("ConstructorClient: %v", err)
	}

	err = h.Auth.ResourceDropCredentialsProvider(ctx, p)
	if k := failureKind[contract.AuthErrorKind](t, err); k != contract.AuthOther {
		t.Errorf("drop with live client: kind = %v, want other", k)
	}

	if err := h.S3.ResourceDropClient(ctx, c); err != nil {
		t.Fatalf("ResourceDropClient: %v", err)
	}
	if err := h.Auth.ResourceDropCredentialsProvider(ctx, p); err != nil {
		t.Fatalf("drop after client: %v", err)
	}
	if h.Resources() != 0 {
		t.Errorf("Resources = %d, want 0", h.Resources())
	}
}

func TestS3_RoundTrip(t *testing.T) {
	ctx := context.Background()
	h := newHost(t, WithConfig(&Config{Objects: map[string]string{"bucket/seeded": "hello"}}))

	p, _ := h.Auth.Provider(ctx, creds, "us-east-1")
	c, err := h.S3.ConstructorClient(ctx, p)
	if err != nil {
		t.Fatalf("ConstructorClient: %v", err)
	}

	if body, ok, err := h.S3.MethodClientGetObject(ctx, c, "bucket", "seeded"); err != nil || !ok || string(body) != "hello" {
		t.Fatalf("GetObject seeded = %q, %v, %v", body, ok, err)
	}
	if _, ok, err := h.S3.MethodClientGetObject(ctx, c, "bucket", "missing"); err != nil || ok {
		t.Fatalf("GetObject missing = %v, %v", ok, err)
	}
	if err := h.S3.MethodClientPutObject(ctx, c, "bucket", "new", []byte("x")); err != nil {
		t.Fatalf("PutObject: %v", err)
	}
	if body, ok, _ := h.S3.MethodClientGetObject(ctx, c, "bucket", "new"); !ok || string(body) != "x" {
		t.Errorf("GetObject new = %q, %v", body, ok)
	}

	_, _, err = h.S3.MethodClientGetObject(ctx, c+100, "bucket", "seeded")
	if k := failureKind[contract.S3ErrorKind](t, err); k != contract.S3Malformed {
		t.Errorf("bad handle kind = %v, want malformed", k)
	}
}

func TestS3_ObjectDataBuffer(t *testing.T) {
	ctx := context.Background()
	large := strings.Repeat("z", InlineDataLimit+3)
	h := newHost(t, WithConfig(&Config{Objects: map[string]string{
		"bucket/small": "hi",
		"bucket/large": large,
	}}))
	p, _ := h.Auth.Provider(ctx, creds, "us-east-1")
	c, _ := h.S3.ConstructorClient(ctx, p)

	d, ok, err := h.S3.MethodClientGetObjectData(ctx, c, "bucket", "small")
	if err != nil || !ok || d.Kind != contract.DataValue || string(d.Value) != "hi" {
		t.Fatalf("small = %+v, %v, %v", d, ok, err)
	}

	before := h.Resources()
	d, ok, err = h.S3.MethodClientGetObjectData(ctx, c, "bucket", "large")
	if err != nil || !ok || d.Kind != contract.DataBuffer {
		t.Fatalf("large = %+v, %v, %v", d, ok, err)
	}
	if h.Resources() != before+1 {
		t.Errorf("Resources = %d, want %d", h.Resources(), before+1)
	}

	if n, err := h.Bytes.MethodBufferRemaining(ctx, d.Buffer); err != nil || n != uint64(len(large)) {
		t.Errorf("Remaining = %d, %v", n, err)
	}
	chunk, ok, err := h.Bytes.MethodBufferRead(ctx, d.Buffer, InlineDataLimit)
	if err != nil || !ok || len(chunk) != InlineDataLimit {
		t.Fatalf("first read = %d bytes, %v, %v", len(chunk), ok, err)
	}
	chunk, ok, _ = h.Bytes.MethodBufferRead(ctx, d.Buffer, InlineDataLimit)
	if !ok || string(chunk) != "zzz" {
		t.Errorf("second read = %q, %v", chunk, ok)
	}
	if _, ok, err := h.Bytes.MethodBufferRead(ctx, d.Buffer, 1); ok || err != nil {
		t.Errorf("read at end = %v, %v", ok, err)
	}

	_, _, err = h.Bytes.MethodBufferRead(ctx, d.Buffer, 0)
	if k := failureKind[contract.BytesErrorKind](t, err); k != contract.BytesMalformed {
		t.Errorf("zero read kind = %v, want malformed", k)
	}
	if err := h.Bytes.ResourceDropBuffer(ctx, d.Buffer); err != nil {
		t.Fatalf("ResourceDropBuffer: %v", err)
	}
	_, err = h.Bytes.MethodBufferRemaining(ctx, d.Buffer)
	if k := failureKind[contract.BytesErrorKind](t, err); k != contract.BytesMalformed {
		t.Errorf("dropped handle kind = %v, want malformed", k)
	}
	if h.Resources() != before {
		t.Errorf("Resources = %d after drop, want %d", h.Resources(), before)
	}
}

func TestToken_Validation(t *testing.T) {
	ctx := context.Background()
	h := newHost(t, WithClock(func() time.Time { return time.Unix(100, 0) }))
	read := contract.Permissions{Explicit: []contract.Permission{{
		Kind:  contract.PermitCache,
		Cache: contract.CachePermission{Role: contract.CacheRoleReadOnly, Cache: contract.Selector{Kind: contract.SelectName, Name: "c"}},
	}}}

	tok, err := h.Token.GenerateDisposableToken(ctx, contract.TokenRequest{ValidForSeconds: 60, Permissions: read})
	if err != nil || tok.ValidUntil != 160 || tok.Endpoint != DefaultTokenEndpoint {
		t.Fatalf("token = %+v, %v", tok, err)
	}

	tests := []struct {
		name string
		req  contract.TokenRequest
		want contract.TokenErrorKind
	}{
		{"zero validity", contract.TokenRequest{Permissions: read}, contract.TokenInvalidArgument},
		{"super user", contract.TokenRequest{ValidForSeconds: 1, Permissions: contract.Permissions{SuperUser: true}}, contract.TokenPermissionDenied},
		{"unknown permission kind", contract.TokenRequest{ValidForSeconds: 1, Permissions: contract.Permissions{
			Explicit: []contract.Permission{{Kind: contract.PermissionKindCount}},
		}}, contract.TokenInvalidArgument},
		{"empty item key", contract.TokenRequest{ValidForSeconds: 1, Permissions: contract.Permissions{
			Explicit: []contract.Permission{{Kind: contract.PermitCache, Cache: contract.CachePermission{Item: contract.ItemSelector{Kind: contract.SelectName}}}},
		}}, contract.TokenInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Token.GenerateDisposableToken(ctx, tt.req)
			if k := failureKind[contract.TokenErrorKind](t, err); k != tt.want {
				t.Errorf("kind = %v, want %v", k, tt.want)
			}
		})
	}
}

func TestSecrets_NotFound(t *testing.T) {
	ctx := context.Background()
	h := newHost(t, WithConfig(&Config{Secrets: map[string]string{"db": "pw"}}))

	p, _ := h.Auth.Provider(ctx, creds, "us-east-1")
	c, err := h.Secrets.ConstructorClient(ctx, p)
	if err != nil {
		t.Fatalf("ConstructorClient: %v", err)
	}

	v, err := h.Secrets.MethodClientGetSecretValue(ctx, c, contract.GetSecretValueRequest{SecretID: "db"})
	if err != nil || v.Kind != contract.SecretString || v.String != "pw" {
		t.Fatalf("GetSecretValue = %+v, %v", v, err)
	}
	_, err = h.Secrets.MethodClientGetSecretValue(ctx, c, contract.GetSecretValueRequest{SecretID: "nope"})
	if k := failureKind[contract.SecretsErrorKind](t, err); k != contract.SecretsNotFound {
		t.Errorf("kind = %v, want not-found", k)
	}
}

func TestLambda_Invoke(t *testing.T) {
	ctx := context.Background()
	h := newHost(t,
		WithConfig(&Config{Lambdas: map[string]LambdaResponse{
			"greet":      {Payload: "hi"},
			"greet:beta": {Payload: "hey", StatusCode: 202},
		}}),
		WithLambdaFunc(func(_ context.Context, name, _ string, payload []byte) (int32, []byte, error) {
			if name != "echo" {
				return 0, nil, errors.New("no such function")
			}
			return 200, payload, nil
		}),
	)

	p, _ := h.Auth.Provider(ctx, creds, "us-east-1")
	c, err := h.Lambda.ConstructorClient(ctx, p)
	if err != nil {
		t.Fatalf("ConstructorClient: %v", err)
	}

	tests := []struct {
		req    contract.InvokeRequest
		body   string
		status int32
	}{
		{req: contract.InvokeRequest{FunctionName: "greet"}, body: "hi", status: 200},
		{req: contract.InvokeRequest{FunctionName: "greet", Qualifier: "beta"}, body: "hey", status: 202},
		{req: contract.InvokeRequest{FunctionName: "greet", Qualifier: "prod"}, body: "hi", status: 200},
		{req: contract.InvokeRequest{FunctionName: "echo", Payload: []byte("ping")}, body: "ping", status: 200},
	}
	for _, tt := range tests {
		resp, err := h.Lambda.MethodClientInvoke(ctx, c, tt.req)
		if err != nil {
			t.Fatalf("Invoke(%s:%s): %v", tt.req.FunctionName, tt.req.Qualifier, err)
		}
		if string(resp.Payload) != tt.body || resp.StatusCode != tt.status {
			t.Errorf("Invoke(%s:%s) = %d %q, want %d %q", tt.req.FunctionName, tt.req.Qualifier, resp.StatusCode, resp.Payload, tt.status, tt.body)
		}
	}
}

func TestLambda_NotFoundWithoutFunc(t *testing.T) {
	ctx := context.Background()
	h := newHost(t)
	p, _ := h.Auth.Provider(ctx, creds, "us-east-1")
	c, _ := h.Lambda.ConstructorClient(ctx, p)

	_, err := h.Lambda.MethodClientInvoke(ctx, c, contract.InvokeRequest{FunctionName: "missing"})
	if k := failureKind[contract.LambdaErrorKind](t, err); k != contract.LambdaFunctionNotFound {
		t.Errorf("kind = %v, want function-not-found", k)
	}
}

func TestHTTP_Methods(t *testing.T) {
	var gotMethod, gotBody, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		b := new(strings.Builder)
		_, _ = io.Copy(b, r.Body)
		gotBody = b.String()
		w.Header().Set("X-Reply", "yes")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	defer srv.Close()

	ctx := context.Background()
	h := newHost(t, WithHTTPClient(srv.Client()))

	resp, err := h.HTTP.Post(ctx, contract.HTTPRequest{URL: srv.URL + "/brew", Body: []byte("coffee")})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if resp.Status != http.StatusTeapot || string(resp.Body) != "short and stout" {
		t.Errorf("resp = %d %q", resp.Status, resp.Body)
	}
	if gotMethod != http.MethodPost || gotBody != "coffee" || gotAuth != "" {
		t.Errorf("server saw %s %q auth=%q", gotMethod, gotBody, gotAuth)
	}

	var found bool
	for _, hdr := range resp.Headers {
		if hdr.Name == "X-Reply" && hdr.Value == "yes" {
			found = true
		}
	}
	if !found {
		t.Errorf("headers = %v, want X-Reply", resp.Headers)
	}
}

func TestHTTP_SigV4(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	ctx := context.Background()
	h := newHost(t, WithHTTPClient(srv.Client()))
	p, err := h.Auth.Provider(ctx, creds, "eu-west-1")
	if err != nil {
		t.Fatalf("Provider: %v", err)
	}

	_, err = h.HTTP.Get(ctx, contract.HTTPRequest{
		URL: srv.URL,
		Authorization: contract.HTTPAuthorization{
			Kind:  contract.HTTPAuthorizationSigV4,
			SigV4: contract.SigV4{Provider: p, Service: "execute-api"},
		},
	})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !strings.HasPrefix(gotAuth, "AWS4-HMAC-SHA256 Credential=AKID/") || !strings.Contains(gotAuth, "/eu-west-1/execute-api/") {
		t.Errorf("Authorization = %q", gotAuth)
	}

	_, err = h.HTTP.Get(ctx, contract.HTTPRequest{
		URL: srv.URL,
		Authorization: contract.HTTPAuthorization{
			Kind:  contract.HTTPAuthorizationSigV4,
			SigV4: contract.SigV4{Provider: p + 50, Service: "execute-api"},
		},
	})
	if k := failureKind[contract.HTTPErrorKind](t, err); k != contract.HTTPUnauthorized {
		t.Errorf("bad provider kind = %v, want unauthorized", k)
	}
}

func TestHTTP_InvalidURL(t *testing.T) {
	h := newHost(t)
	for _, u := range []string{"", "ftp://example.com", "http://", "::nope"} {
		_, err := h.HTTP.Get(context.Background(), contract.HTTPRequest{URL: u})
		if k := failureKind[contract.HTTPErrorKind](t, err); k != contract.HTTPInvalidURL {
			t.Errorf("Get(%q) kind = %v, want invalid-url", u, k)
		}
	}
}

func TestHTTP_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := srv.Client()
	client.Timeout = 50 * time.Millisecond
	h := newHost(t, WithHTTPClient(client))

	_, err := h.HTTP.Get(context.Background(), contract.HTTPRequest{URL: srv.URL})
	if k := failureKind[contract.HTTPErrorKind](t, err); k != contract.HTTPTimeout {
		t.Errorf("kind = %v, want timeout", k)
	}
}

func TestHTTP_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.URL.Query().Get("body")))
	}))
	defer srv.Close()

	h := newHost(t, WithHTTPClient(srv.Client()))
	h.HTTP.limit = 8

	resp, err := h.HTTP.Get(context.Background(), contract.HTTPRequest{URL: srv.URL + "?body=12345678"})
	if err != nil || string(resp.Body) != "12345678" {
		t.Fatalf("Get at limit = %q, %v", resp.Body, err)
	}

	_, err = h.HTTP.Get(context.Background(), contract.HTTPRequest{URL: srv.URL + "?body=123456789"})
	if k := failureKind[contract.HTTPErrorKind](t, err); k != contract.HTTPOther {
		t.Errorf("kind = %v, want other", k)
	}
}

func TestConfig_Parse(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
environment:
  STAGE: dev
tables:
  - name: users
    hash_key: id
lambdas:
  greet:
    payload: hi
http_timeout: 5s
`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Environment["STAGE"] != "dev" || len(cfg.Tables) != 1 || cfg.Lambdas["greet"].Payload != "hi" || cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := ParseConfig([]byte("tables:\n  - name: users\n")); err == nil {
		t.Error("table without hash_key accepted")
	}
}

func TestHost_ResourceEvents(t *testing.T) {
	ctx := context.Background()
	h := newHost(t)

	var created, dropped int
	h.Table().Subscribe(resource.ObserverFunc(func(e resource.Event) {
		switch e.Event {
		case resource.EventCreated:
			created++
		case resource.EventDropped:
			dropped++
		}
	}))

	p, _ := h.Auth.Provider(ctx, creds, "us-east-1")
	_ = h.Auth.ResourceDropCredentialsProvider(ctx, p)
	if created != 1 || dropped != 1 {
		t.Errorf("created=%d dropped=%d, want 1 and 1", created, dropped)
	}
}
