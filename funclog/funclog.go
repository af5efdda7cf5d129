// Package funclog sends a function's logs to the host logging capability.
//
// NewLogger returns an ordinary *zap.Logger whose entries are encoded on
// the guest and handed to the host one line at a time:
//
//	if err := funclog.Configure(ctx, funclog.Topic("logs")); err != nil {
//		return err
//	}
//	logger, err := funclog.NewLogger(bindings.Current(), zapcore.InfoLevel)
package funclog

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-functions/bindings"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/errors"
)

const capability = "logging"

// Topic sends logs to a pub/sub topic. System logs are filtered at info.
func Topic(name string) contract.LogDestination {
	return contract.LogDestination{Kind: contract.LogToTopic, Topic: name, SystemLevel: contract.LevelInfo}
}

// CloudWatch sends logs to a CloudWatch log group using the given role.
// System logs are filtered at info.
func CloudWatch(iamRoleARN, logGroup string) contract.LogDestination {
	return contract.LogDestination{
		Kind:        contract.LogToCloudWatch,
		IAMRoleARN:  iamRoleARN,
		LogGroup:    logGroup,
		SystemLevel: contract.LevelInfo,
	}
}

// WithSystemLevel returns d with the host's system logs filtered at level.
// contract.LevelOff keeps them out of d entirely.
func WithSystemLevel(d contract.LogDestination, level zapcore.Level) contract.LogDestination {
	d.SystemLevel = systemLevel(level)
	return d
}

// Configure selects where the host delivers logs.
func Configure(ctx context.Context, destinations ...contract.LogDestination) error {
	return ConfigureWith(ctx, bindings.Current(), destinations...)
}

func ConfigureWith(ctx context.Context, b *contract.Bindings, destinations ...contract.LogDestination) error {
	h, err := bindings.Require(b.Logging, capability)
	if err != nil {
		return err
	}
	if len(destinations) == 0 {
		return errors.New(errors.PhaseEncode, errors.KindMalformed).
			Capability(capability, "configure").
			Detail("at least one destination is required").
			Build()
	}
	return errors.Host(capability, "configure", h.Configure(ctx, destinations))
}

// NewLogger returns a logger writing to b's logging capability.
func NewLogger(b *contract.Bindings, level zapcore.LevelEnabler, opts ...zap.Option) (*zap.Logger, error) {
	h, err := bindings.Require(b.Logging, capability)
	if err != nil {
		return nil, err
	}
	return zap.New(NewCore(h, level), opts...), nil
}

// NewCore returns a zapcore.Core that encodes entries as JSON and passes
// each one to host.Log.
func NewCore(host contract.Logging, level zapcore.LevelEnabler) zapcore.Core {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return &core{
		LevelEnabler: level,
		host:         host,
		enc:          zapcore.NewJSONEncoder(cfg),
	}
}

type core struct {
	zapcore.LevelEnabler
	host contract.Logging
	enc  zapcore.Encoder
}

func (c *core) With(fields []zapcore.Field) zapcore.Core {
	clone := &core{LevelEnabler: c.LevelEnabler, host: c.host, enc: c.enc.Clone()}
	for _, f := range fields {
		f.AddTo(clone.enc)
	}
	return clone
}

func (c *core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	line := strings.TrimRight(buf.String(), "\n")
	buf.Free()
	return errors.Host(capability, "log", c.host.Log(context.Background(), hostLevel(ent.Level), line))
}

func (c *core) Sync() error { return nil }

func systemLevel(l zapcore.Level) contract.LogLevel {
	if l > zapcore.ErrorLevel {
		return contract.LevelOff
	}
	return hostLevel(l)
}

func hostLevel(l zapcore.Level) contract.LogLevel {
	switch {
	case l <= zapcore.DebugLevel:
		return contract.LevelDebug
	case l == zapcore.InfoLevel:
		return contract.LevelInfo
	case l == zapcore.WarnLevel:
		return contract.LevelWarn
	}
	return contract.LevelError
}
