package errors

import (
	"context"
	stderrors "errors"
	"net/http"
)

// StatusClientClosedRequest is the non-standard status for cancelled calls.
const StatusClientClosedRequest = 499

var statuses = [...]int{
	KindUnauthorized:       http.StatusUnauthorized,
	KindMalformed:          http.StatusBadRequest,
	KindNotFound:           http.StatusNotFound,
	KindTimeout:            http.StatusGatewayTimeout,
	KindPermissionDenied:   http.StatusForbidden,
	KindLimitExceeded:      http.StatusTooManyRequests,
	KindFailedPrecondition: http.StatusPreconditionFailed,
	KindCancelled:          StatusClientClosedRequest,
	KindInternal:           http.StatusInternalServerError,
	KindOther:              http.StatusInternalServerError,
}

var _ = [1]struct{}{}[len(statuses)-int(kindCount)]

// Status returns the HTTP status a web function reports for kind.
func Status(kind Kind) int {
	if kind < kindCount {
		return statuses[kind]
	}
	return http.StatusInternalServerError
}

func contextKind(err error) Kind {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case stderrors.Is(err, context.Canceled):
		return KindCancelled
	}
	return KindInternal
}
