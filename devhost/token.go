package devhost

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wippyai/wasm-functions/contract"
)

// DefaultTokenEndpoint is the endpoint handed out when none is configured.
const DefaultTokenEndpoint = "cache.localhost"

// Token vends random API keys. It validates permissions the way a real
// vending service does but grants nothing: keys are only remembered so
// tests can inspect them.
type Token struct {
	endpoint  string
	superUser bool
	limit     int
	clock     func() time.Time
	issued    []Issued
	mu        sync.Mutex
}

// Issued records one vended token.
type Issued struct {
	Token       contract.DisposableToken
	Permissions contract.Permissions
	TokenID     *string
}

func newToken(cfg TokenConfig, clock func() time.Time) *Token {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultTokenEndpoint
	}
	return &Token{endpoint: endpoint, superUser: cfg.AllowSuperUser, limit: cfg.Limit, clock: clock}
}

func (t *Token) GenerateDisposableToken(_ context.Context, req contract.TokenRequest) (contract.DisposableToken, error) {
	if req.ValidForSeconds == 0 {
		return contract.DisposableToken{}, fail(contract.TokenInvalidArgument, "valid-for must be at least one second")
	}
	if err := t.checkPermissions(req.Permissions); err != nil {
		return contract.DisposableToken{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.limit > 0 && len(t.issued) >= t.limit {
		return contract.DisposableToken{}, fail(contract.TokenLimitExceeded, "token limit of %d reached", t.limit)
	}
	tok := contract.DisposableToken{
		APIKey:     uuid.NewString(),
		Endpoint:   t.endpoint,
		ValidUntil: uint64(t.clock().Unix()) + uint64(req.ValidForSeconds),
	}
	t.issued = append(t.issued, Issued{Token: tok, Permissions: req.Permissions, TokenID: req.TokenID})
	return tok, nil
}

func (t *Token) checkPermissions(p contract.Permissions) error {
	if p.SuperUser {
		if !t.superUser {
			return fail(contract.TokenPermissionDenied, "super-user tokens are not allowed")
		}
		return nil
	}
	if len(p.Explicit) == 0 {
		return fail(contract.TokenInvalidArgument, "explicit permissions need at least one grant")
	}
	for i, g := range p.Explicit {
		switch g.Kind {
		case contract.PermitCache:
			if g.Cache.Role >= contract.CacheRoleCount {
				return fail(contract.TokenInvalidArgument, "permission %d: unknown cache role %d", i, g.Cache.Role)
			}
			if err := checkSelector(i, g.Cache.Cache, false); err != nil {
				return err
			}
			if g.Cache.Item.Kind >= contract.SelectorKindCount {
				return fail(contract.TokenInvalidArgument, "permission %d: unknown item selector %d", i, g.Cache.Item.Kind)
			}
			if g.Cache.Item.Kind != contract.SelectAll && len(g.Cache.Item.Key) == 0 {
				return fail(contract.TokenInvalidArgument, "permission %d: empty item key", i)
			}
		case contract.PermitTopic:
			if g.Topic.Role >= contract.TopicRoleCount {
				return fail(contract.TokenInvalidArgument, "permission %d: unknown topic role %d", i, g.Topic.Role)
			}
			if err := checkSelector(i, g.Topic.Cache, false); err != nil {
				return err
			}
			if err := checkSelector(i, g.Topic.Topic, true); err != nil {
				return err
			}
		case contract.PermitFunction:
			if g.Function.Role >= contract.FunctionRoleCount {
				return fail(contract.TokenInvalidArgument, "permission %d: unknown function role %d", i, g.Function.Role)
			}
			if err := checkSelector(i, g.Function.Cache, false); err != nil {
				return err
			}
			if err := checkSelector(i, g.Function.Function, true); err != nil {
				return err
			}
		default:
			return fail(contract.TokenInvalidArgument, "permission %d: unknown kind %d", i, g.Kind)
		}
	}
	return nil
}

func checkSelector(i int, s contract.Selector, prefix bool) error {
	switch {
	case s.Kind >= contract.SelectorKindCount:
		return fail(contract.TokenInvalidArgument, "permission %d: unknown selector %d", i, s.Kind)
	case s.Kind == contract.SelectPrefix && !prefix:
		return fail(contract.TokenInvalidArgument, "permission %d: caches cannot be selected by prefix", i)
	case s.Kind != contract.SelectAll && s.Name == "":
		return fail(contract.TokenInvalidArgument, "permission %d: empty %s selector", i, s.Kind)
	}
	return nil
}

// Issued returns every token vended so far.
func (t *Token) Issued() []Issued {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Issued(nil), t.issued...)
}
