package resource

import (
	"context"
	"sync"

	"github.com/wippyai/wasm-functions/errors"
)

// Releaser is anything holding host resources that can be released.
type Releaser interface {
	Release(ctx context.Context) error
}

// Scope releases what is registered with it in reverse order, so derived
// resources go before the resources they borrow.
//
//	var s resource.Scope
//	defer s.Close(ctx)
//	creds, err := auth.NewProvider(ctx, "us-east-1", keys)
//	...
//	s.Add(creds)
type Scope struct {
	items []Releaser
	mu    sync.Mutex
}

// Add registers r.
func (s *Scope) Add(r Releaser) {
	if r == nil {
		return
	}
	s.mu.Lock()
	s.items = append(s.items, r)
	s.mu.Unlock()
}

// Close releases everything registered, newest first, and reports every
// failure.
func (s *Scope) Close(ctx context.Context) error {
	s.mu.Lock()
	items := s.items
	s.items = nil
	s.mu.Unlock()

	var errs []error
	for i := len(items) - 1; i >= 0; i-- {
		if err := items[i].Release(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
