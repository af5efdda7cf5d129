package contract

import "context"

// Environment is functions:host/environment.
type Environment interface {
	GetEnvironment(ctx context.Context) ([][2]string, error)
}
