package devhost

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-functions/contract"
)

// SpawnFunc runs a spawned function. Its error is logged, never returned to
// the caller, since spawns are fire-and-forget.
type SpawnFunc func(ctx context.Context, name string, payload []byte) error

// Spawned is one accepted spawn request.
type Spawned struct {
	ID      uuid.UUID
	Name    string
	Payload []byte
}

// Spawn accepts spawn requests for the configured function names (any
// name when none are configured), up to an optional limit.
type Spawn struct {
	known   map[string]bool
	run     SpawnFunc
	logger  *zap.Logger
	spawned []Spawned
	limit   int
	mu      sync.Mutex
}

func newSpawn(functions []string, limit int, run SpawnFunc, logger *zap.Logger) *Spawn {
	s := &Spawn{run: run, logger: logger, limit: limit}
	if len(functions) > 0 {
		s.known = make(map[string]bool, len(functions))
		for _, f := range functions {
			s.known[f] = true
		}
	}
	return s
}

func (s *Spawn) SpawnFunction(ctx context.Context, name string, payload []byte) error {
	if s.known != nil && !s.known[name] {
		return fail(contract.SpawnFunctionNotFound, "function %q not found", name)
	}

	s.mu.Lock()
	if s.limit > 0 && len(s.spawned) >= s.limit {
		s.mu.Unlock()
		return fail(contract.SpawnLimit, "spawn limit of %d reached", s.limit)
	}
	rec := Spawned{ID: uuid.New(), Name: name, Payload: append([]byte(nil), payload...)}
	s.spawned = append(s.spawned, rec)
	s.mu.Unlock()

	s.logger.Debug("spawn accepted", zap.Stringer("id", rec.ID), zap.String("function", name))
	if s.run == nil {
		return nil
	}
	go func() {
		if err := s.run(context.WithoutCancel(ctx), name, rec.Payload); err != nil {
			s.logger.Warn("spawned function failed",
				zap.Stringer("id", rec.ID), zap.String("function", name), zap.Error(err))
		}
	}()
	return nil
}

// Spawned returns the accepted requests in order.
func (s *Spawn) Spawned() []Spawned {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Spawned(nil), s.spawned...)
}
