package funclog_test

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/devhost"
	"github.com/wippyai/wasm-functions/encoding"
	"github.com/wippyai/wasm-functions/errors"
	"github.com/wippyai/wasm-functions/funclog"
)

func TestLogger(t *testing.T) {
	h, err := devhost.New()
	if err != nil {
		t.Fatalf("devhost.New: %v", err)
	}
	logger, err := funclog.NewLogger(h.Bindings(), zapcore.InfoLevel)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	logger.Debug("dropped")
	logger.With(zap.String("request", "r1")).Info("handled", zap.Int("status", 200))
	logger.Warn("slow")
	logger.Error("failed")

	lines := h.Logging.Lines()
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	wantLevels := []contract.LogLevel{contract.LevelInfo, contract.LevelWarn, contract.LevelError}
	for i, l := range lines {
		if l.Level != wantLevels[i] {
			t.Errorf("line %d level = %v, want %v", i, l.Level, wantLevels[i])
		}
		if strings.HasSuffix(l.Message, "\n") {
			t.Errorf("line %d ends with a newline", i)
		}
	}

	var entry map[string]any
	if err := encoding.API().UnmarshalFromString(lines[0].Message, &entry); err != nil {
		t.Fatalf("line is not json: %v", err)
	}
	if entry["msg"] != "handled" || entry["request"] != "r1" || entry["status"] != float64(200) {
		t.Errorf("entry = %v", entry)
	}
}

func TestConfigure(t *testing.T) {
	ctx := context.Background()
	h, err := devhost.New()
	if err != nil {
		t.Fatalf("devhost.New: %v", err)
	}
	b := h.Bindings()

	if err := funclog.ConfigureWith(ctx, b, funclog.Topic("logs"), funclog.CloudWatch("arn:aws:iam::1:role/logs", "fn")); err != nil {
		t.Fatalf("ConfigureWith: %v", err)
	}
	if n := len(h.Logging.Destinations()); n != 2 {
		t.Errorf("destinations = %d, want 2", n)
	}

	tests := []struct {
		name  string
		dests []contract.LogDestination
		want  errors.Kind
	}{
		{name: "none", want: errors.KindMalformed},
		{name: "empty topic", dests: []contract.LogDestination{funclog.Topic("")}, want: errors.KindMalformed},
		{name: "no role", dests: []contract.LogDestination{funclog.CloudWatch("", "fn")}, want: errors.KindUnauthorized},
		{name: "bad system level", dests: []contract.LogDestination{{Kind: contract.LogToTopic, Topic: "t", SystemLevel: 9}}, want: errors.KindMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := funclog.ConfigureWith(ctx, b, tt.dests...); !errors.IsKind(err, tt.want) {
				t.Errorf("ConfigureWith = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWithSystemLevel(t *testing.T) {
	tests := []struct {
		level zapcore.Level
		want  contract.LogLevel
	}{
		{zapcore.DebugLevel, contract.LevelDebug},
		{zapcore.InfoLevel, contract.LevelInfo},
		{zapcore.WarnLevel, contract.LevelWarn},
		{zapcore.ErrorLevel, contract.LevelError},
		{zapcore.FatalLevel, contract.LevelOff},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			d := funclog.WithSystemLevel(funclog.Topic("logs"), tt.level)
			if d.SystemLevel != tt.want || d.Topic != "logs" {
				t.Errorf("destination = %+v, want system level %d", d, tt.want)
			}
		})
	}

	if d := funclog.CloudWatch("arn", "group"); d.SystemLevel != contract.LevelInfo {
		t.Errorf("default system level = %d, want info", d.SystemLevel)
	}

	h, err := devhost.New()
	if err != nil {
		t.Fatalf("devhost.New: %v", err)
	}
	quiet := funclog.WithSystemLevel(funclog.Topic("logs"), zapcore.FatalLevel)
	if err := funclog.ConfigureWith(context.Background(), h.Bindings(), quiet); err != nil {
		t.Fatalf("ConfigureWith: %v", err)
	}
	if got := h.Logging.Destinations()[0].SystemLevel; got != contract.LevelOff {
		t.Errorf("stored system level = %d, want off", got)
	}
}

func TestNewLogger_WithoutHost(t *testing.T) {
	if _, err := funclog.NewLogger(&contract.Bindings{}, zapcore.InfoLevel); !errors.IsKind(err, errors.KindFailedPrecondition) {
		t.Errorf("NewLogger = %v, want FailedPrecondition", err)
	}
}
