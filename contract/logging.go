package contract

import "context"

type LogErrorKind uint8

const (
	LogUnauthorized LogErrorKind = iota
	LogMalformed
	LogOther

	LogErrorKindCount
)

var logErrorNames = [...]string{
	LogUnauthorized: "unauthorized",
	LogMalformed:    "malformed",
	LogOther:        "other",
}

var _ = [1]struct{}{}[len(logErrorNames)-int(LogErrorKindCount)]

func (k LogErrorKind) String() string     { return enumName(logErrorNames[:], uint8(k)) }
func (k LogErrorKind) Capability() string { return "logging" }

type LogError = Failure[LogErrorKind]

type LogLevel uint8

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	// LevelOff is only meaningful as a system log filter.
	LevelOff
)

type LogDestinationKind uint8

const (
	LogToTopic LogDestinationKind = iota
	LogToCloudWatch

	LogDestinationKindCount
)

// LogDestination is topic(name) | cloudwatch{iam-role-arn, log-group},
// plus the level the host's own system logs are filtered at before they
// reach it.
type LogDestination struct {
	_           struct{} `cbor:",toarray"`
	Kind        LogDestinationKind
	Topic       string
	IAMRoleARN  string
	LogGroup    string
	SystemLevel LogLevel
}

// Logging is functions:host/logging. Log is best effort and only fails on
// transport errors.
type Logging interface {
	Configure(ctx context.Context, destinations []LogDestination) error
	Log(ctx context.Context, level LogLevel, message string) error
}
