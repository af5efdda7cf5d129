package contract

import "context"

type HTTPErrorKind uint8

const (
	HTTPInvalidURL HTTPErrorKind = iota
	HTTPUnauthorized
	HTTPTimeout
	HTTPOther

	HTTPErrorKindCount
)

var httpErrorNames = [...]string{
	HTTPInvalidURL:   "invalid-url",
	HTTPUnauthorized: "unauthorized",
	HTTPTimeout:      "timeout",
	HTTPOther:        "other",
}

var _ = [1]struct{}{}[len(httpErrorNames)-int(HTTPErrorKindCount)]

func (k HTTPErrorKind) String() string     { return enumName(httpErrorNames[:], uint8(k)) }
func (k HTTPErrorKind) Capability() string { return "http" }

type HTTPError = Failure[HTTPErrorKind]

type HTTPAuthorizationKind uint8

const (
	HTTPAuthorizationNone HTTPAuthorizationKind = iota
	HTTPAuthorizationSigV4

	HTTPAuthorizationKindCount
)

// SigV4 signs a request with a borrowed credentials provider.
type SigV4 struct {
	_        struct{} `cbor:",toarray"`
	Provider Handle
	Region   string
	Service  string
}

// HTTPAuthorization is none | aws-sigv4(sigv4).
type HTTPAuthorization struct {
	_     struct{} `cbor:",toarray"`
	Kind  HTTPAuthorizationKind
	SigV4 SigV4
}

type HTTPRequest struct {
	_             struct{} `cbor:",toarray"`
	URL           string
	Headers       []Header
	Body          []byte
	Authorization HTTPAuthorization
}

// HTTPResponse is any response the remote produced, including non-2xx.
type HTTPResponse struct {
	_       struct{} `cbor:",toarray"`
	Status  uint16
	Headers []Header
	Body    []byte
}

// HTTP is functions:host/http.
type HTTP interface {
	Get(ctx context.Context, req HTTPRequest) (HTTPResponse, error)
	Put(ctx context.Context, req HTTPRequest) (HTTPResponse, error)
	Post(ctx context.Context, req HTTPRequest) (HTTPResponse, error)
	Delete(ctx context.Context, req HTTPRequest) (HTTPResponse, error)
}
