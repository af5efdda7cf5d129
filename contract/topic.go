package contract

import "context"

type TopicErrorKind uint8

const (
	TopicInvalidArgument TopicErrorKind = iota
	TopicAuthenticationFailed
	TopicPermissionDenied
	TopicNotFound
	TopicLimitExceeded
	TopicTimeout
	TopicInternal
	TopicUnknown

	TopicErrorKindCount
)

var topicErrorNames = [...]string{
	TopicInvalidArgument:      "invalid-argument",
	TopicAuthenticationFailed: "authentication-failed",
	TopicPermissionDenied:     "permission-denied",
	TopicNotFound:             "topic-not-found",
	TopicLimitExceeded:        "limit-exceeded",
	TopicTimeout:              "timeout",
	TopicInternal:             "internal",
	TopicUnknown:              "unknown",
}

var _ = [1]struct{}{}[len(topicErrorNames)-int(TopicErrorKindCount)]

func (k TopicErrorKind) String() string     { return enumName(topicErrorNames[:], uint8(k)) }
func (k TopicErrorKind) Capability() string { return "topic" }

type TopicError = Failure[TopicErrorKind]

// Topic is functions:host/topic.
type Topic interface {
	Publish(ctx context.Context, topic, value string) error
}
