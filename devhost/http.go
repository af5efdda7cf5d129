package devhost

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"

	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/errors"
	"github.com/wippyai/wasm-functions/resource"
)

// MaxResponseBody caps the response body read from a remote.
const MaxResponseBody = 16 << 20

// HTTP performs real outbound requests. Every response, including non-2xx,
// is returned to the caller.
type HTTP struct {
	table  *resource.Table
	client *http.Client
	signer *v4.Signer
	clock  func() time.Time
	limit  int64
}

func newHTTP(table *resource.Table, client *http.Client, clock func() time.Time) *HTTP {
	return &HTTP{table: table, client: client, signer: v4.NewSigner(), clock: clock, limit: MaxResponseBody}
}

func (h *HTTP) Get(ctx context.Context, req contract.HTTPRequest) (contract.HTTPResponse, error) {
	return h.do(ctx, http.MethodGet, req)
}

func (h *HTTP) Put(ctx context.Context, req contract.HTTPRequest) (contract.HTTPResponse, error) {
	return h.do(ctx, http.MethodPut, req)
}

func (h *HTTP) Post(ctx context.Context, req contract.HTTPRequest) (contract.HTTPResponse, error) {
	return h.do(ctx, http.MethodPost, req)
}

func (h *HTTP) Delete(ctx context.Context, req contract.HTTPRequest) (contract.HTTPResponse, error) {
	return h.do(ctx, http.MethodDelete, req)
}

func (h *HTTP) do(ctx context.Context, method string, req contract.HTTPRequest) (contract.HTTPResponse, error) {
	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return contract.HTTPResponse{}, fail(contract.HTTPInvalidURL, "invalid url %q", req.URL)
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	r, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return contract.HTTPResponse{}, fail(contract.HTTPInvalidURL, "%v", err)
	}
	for _, hdr := range req.Headers {
		r.Header.Add(hdr.Name, hdr.Value)
	}

	if req.Authorization.Kind == contract.HTTPAuthorizationSigV4 {
		if err := h.sign(ctx, r, req.Body, req.Authorization.SigV4); err != nil {
			return contract.HTTPResponse{}, err
		}
	}

	resp, err := h.client.Do(r)
	if err != nil {
		if timedOut(err) {
			return contract.HTTPResponse{}, fail(contract.HTTPTimeout, "%s %s: %v", method, req.URL, err)
		}
		return contract.HTTPResponse{}, fail(contract.HTTPOther, "%s %s: %v", method, req.URL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, h.limit+1))
	if err != nil {
		return contract.HTTPResponse{}, fail(contract.HTTPOther, "read body: %v", err)
	}
	if int64(len(data)) > h.limit {
		return contract.HTTPResponse{}, fail(contract.HTTPOther, "%s %s: response body exceeds %d bytes", method, req.URL, h.limit)
	}

	out := contract.HTTPResponse{Status: uint16(resp.StatusCode), Body: data}
	for name, values := range resp.Header {
		for _, v := range values {
			out.Headers = append(out.Headers, contract.Header{Name: name, Value: v})
		}
	}
	return out, nil
}

func (h *HTTP) sign(ctx context.Context, r *http.Request, body []byte, auth contract.SigV4) error {
	p, err := lookupProvider(h.table, auth.Provider)
	if err != nil {
		return fail(contract.HTTPUnauthorized, "invalid credentials provider %d: %v", auth.Provider, err)
	}
	region := auth.Region
	if region == "" {
		region = p.region
	}
	if auth.Service == "" {
		return fail(contract.HTTPUnauthorized, "sigv4 requires a service name")
	}

	sum := sha256.Sum256(body)
	creds := aws.Credentials{AccessKeyID: p.creds.AccessKeyID, SecretAccessKey: p.creds.SecretAccessKey}
	if err := h.signer.SignHTTP(ctx, creds, r, hex.EncodeToString(sum[:]), auth.Service, region, h.clock()); err != nil {
		return fail(contract.HTTPUnauthorized, "sign request: %v", err)
	}
	return nil
}

func timedOut(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
