package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-functions/devhost"
	"github.com/wippyai/wasm-functions/runner"
)

// session is one dev host plus the guest running against it.
type session struct {
	host   *devhost.Host
	runner *runner.Runner
	logger *zap.Logger
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

func openSession(ctx context.Context, flags *globalFlags, wasmPath string) (*session, error) {
	logger, err := newLogger(flags.verbose)
	if err != nil {
		return nil, err
	}

	cfg := &devhost.Config{}
	if flags.config != "" {
		if cfg, err = devhost.LoadConfig(flags.config); err != nil {
			return nil, err
		}
	}

	wasm, err := os.ReadFile(wasmPath)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}

	s := &session{logger: logger}
	// Spawns re-enter the same module through its spawn entry point.
	spawnFn := func(ctx context.Context, name string, payload []byte) error {
		logger.Info("running spawned function", zap.String("function", name))
		return s.runner.InvokeSpawn(ctx, payload)
	}

	s.host, err = devhost.New(
		devhost.WithConfig(cfg),
		devhost.WithLogger(logger),
		devhost.WithSpawnFunc(spawnFn),
	)
	if err != nil {
		return nil, err
	}
	s.runner, err = runner.New(ctx, wasm, s.host.Bindings(), &runner.Config{
		Stdout: os.Stderr,
		Stderr: os.Stderr,
		Logger: logger,
	})
	if err != nil {
		_ = s.host.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) Close(ctx context.Context) error {
	err := s.runner.Close(ctx)
	if cerr := s.host.Close(); err == nil {
		err = cerr
	}
	_ = s.logger.Sync()
	return err
}
