package contract

import "context"

type SpawnErrorKind uint8

const (
	SpawnFunctionNotFound SpawnErrorKind = iota
	SpawnFailed
	SpawnLimit

	SpawnErrorKindCount
)

var spawnErrorNames = [...]string{
	SpawnFunctionNotFound: "function-not-found",
	SpawnFailed:           "spawn-failed",
	SpawnLimit:            "limit",
}

var _ = [1]struct{}{}[len(spawnErrorNames)-int(SpawnErrorKindCount)]

func (k SpawnErrorKind) String() string     { return enumName(spawnErrorNames[:], uint8(k)) }
func (k SpawnErrorKind) Capability() string { return "spawn" }

type SpawnError = Failure[SpawnErrorKind]

// Spawn is functions:host/spawn. A successful call is an acknowledgement
// only; the spawned function runs later and its result is not observable.
type Spawn interface {
	SpawnFunction(ctx context.Context, name string, payload []byte) error
}
