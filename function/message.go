package function

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/encoding"
)

// Request is the decoded web invocation handed to a handler.
type Request struct {
	// ID identifies the invocation in logs.
	ID      string
	Body    []byte
	Headers []contract.Header
	Query   []contract.Header
}

// Header returns the first header named name, compared case-insensitively.
func (r *Request) Header(name string) (string, bool) {
	return first(r.Headers, name, true)
}

// QueryValue returns the first query parameter named name.
func (r *Request) QueryValue(name string) (string, bool) {
	return first(r.Query, name, false)
}

func first(pairs []contract.Header, name string, fold bool) (string, bool) {
	for _, p := range pairs {
		if p.Name == name || (fold && strings.EqualFold(p.Name, name)) {
			return p.Value, true
		}
	}
	return "", false
}

// Response is what a web handler returns.
type Response struct {
	Status  int
	Headers []contract.Header
	Body    []byte
}

// WithHeader appends a header and returns r.
func (r *Response) WithHeader(name, value string) *Response {
	r.Headers = append(r.Headers, contract.Header{Name: name, Value: value})
	return r
}

// Status builds a response with an explicit status and no headers.
func Status(code int, body []byte) *Response {
	return &Response{Status: code, Body: body}
}

// OK returns body as application/octet-stream with status 200.
func OK(body []byte) *Response {
	return Status(http.StatusOK, body).WithHeader("Content-Type", encoding.Bytes().ContentType())
}

// Text returns s as text/plain with status 200.
func Text(s string) *Response {
	return Status(http.StatusOK, []byte(s)).WithHeader("Content-Type", encoding.String().ContentType())
}

// JSONBody encodes v as the body of a 200 response.
func JSONBody[T any](v T) (*Response, error) {
	codec := encoding.JSON[T]()
	body, err := codec.Encode(v)
	if err != nil {
		return nil, err
	}
	return Status(http.StatusOK, body).WithHeader("Content-Type", codec.ContentType()), nil
}

// NoContent is an empty 204 response.
func NoContent() *Response {
	return Status(http.StatusNoContent, nil)
}

// HTTPError lets a handler choose the exact failure response.
type HTTPError struct {
	Status  int
	Message string
}

// Errorf returns an *HTTPError with a formatted message.
func Errorf(status int, format string, args ...any) *HTTPError {
	return &HTTPError{Status: status, Message: fmt.Sprintf(format, args...)}
}

func (e *HTTPError) Error() string {
	return http.StatusText(e.Status) + ": " + e.Message
}
