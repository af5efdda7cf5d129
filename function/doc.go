// Package function binds guest handlers to the entry points the host calls.
//
// A guest registers at most one web handler and one spawn handler, usually
// from an init function:
//
//	func init() {
//		function.Web(function.Bytes(func(ctx context.Context, req *function.Request, body []byte) (*function.Response, error) {
//			return function.OK([]byte("pong")), nil
//		}))
//	}
//
// Registration closes on the first invocation. Each invocation moves
// through Received, Decoding, Handling, Encoding and Completed; the
// transitions are logged at debug level under a per-invocation id.
//
// Handler errors are rendered into the response: a *HTTPError keeps its
// status and body, anything else is classified with errors.KindOf and
// errors.Status. A response the dispatcher cannot encode is reported as
// a Malformed error with status 500. Panics are not recovered.
package function
