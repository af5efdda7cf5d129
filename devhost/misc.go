package devhost

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-functions/contract"
)

// Web serves the caller's token metadata.
type Web struct {
	metadata *string
	mu       sync.Mutex
}

func (w *Web) TokenMetadata(context.Context) (string, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.metadata == nil {
		return "", false, nil
	}
	return *w.metadata, true, nil
}

// SetTokenMetadata changes the metadata; nil removes it.
func (w *Web) SetTokenMetadata(md *string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.metadata = md
}

// Env serves the configured environment, sorted by name.
type Env struct {
	pairs [][2]string
}

func newEnv(m map[string]string) *Env {
	pairs := make([][2]string, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, [2]string{k, v})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })
	return &Env{pairs: pairs}
}

func (e *Env) GetEnvironment(context.Context) ([][2]string, error) {
	return e.pairs, nil
}

// LogLine is one line a function logged.
type LogLine struct {
	Message string
	Level   contract.LogLevel
}

// Logging keeps every line and echoes it to the host logger.
type Logging struct {
	logger       *zap.Logger
	destinations []contract.LogDestination
	lines        []LogLine
	mu           sync.Mutex
}

func newLogging(logger *zap.Logger) *Logging {
	return &Logging{logger: logger.Named("function")}
}

func (l *Logging) Configure(_ context.Context, destinations []contract.LogDestination) error {
	for _, d := range destinations {
		if d.SystemLevel > contract.LevelOff {
			return fail(contract.LogMalformed, "unknown system log level %d", d.SystemLevel)
		}
		switch d.Kind {
		case contract.LogToTopic:
			if d.Topic == "" {
				return fail(contract.LogMalformed, "topic destination needs a topic name")
			}
		case contract.LogToCloudWatch:
			if d.IAMRoleARN == "" || d.LogGroup == "" {
				return fail(contract.LogUnauthorized, "cloudwatch destination needs a role and a log group")
			}
		default:
			return fail(contract.LogMalformed, "unknown destination kind %d", d.Kind)
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.destinations = append([]contract.LogDestination(nil), destinations...)
	return nil
}

func (l *Logging) Log(_ context.Context, level contract.LogLevel, message string) error {
	l.mu.Lock()
	l.lines = append(l.lines, LogLine{Level: level, Message: message})
	l.mu.Unlock()

	if ce := l.logger.Check(zapLevel(level), message); ce != nil {
		ce.Write()
	}
	return nil
}

// Lines returns everything logged so far.
func (l *Logging) Lines() []LogLine {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogLine(nil), l.lines...)
}

// Destinations returns the last configured destinations.
func (l *Logging) Destinations() []contract.LogDestination {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]contract.LogDestination(nil), l.destinations...)
}

func zapLevel(l contract.LogLevel) zapcore.Level {
	switch l {
	case contract.LevelDebug:
		return zapcore.DebugLevel
	case contract.LevelInfo:
		return zapcore.InfoLevel
	case contract.LevelWarn:
		return zapcore.WarnLevel
	}
	return zapcore.ErrorLevel
}
