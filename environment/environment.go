// Package environment reads the name/value pairs the host configured for
// the function and converts them to typed values.
package environment

import (
	"context"
	"sort"
	"time"

	"github.com/spf13/cast"

	"github.com/wippyai/wasm-functions/bindings"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/errors"
)

const capability = "environment"

type Client struct {
	env contract.Environment
}

func New(b *contract.Bindings) *Client {
	return &Client{env: b.Environment}
}

func Default() *Client {
	return New(bindings.Current())
}

// Load fetches every configured pair in one host call.
func (c *Client) Load(ctx context.Context) (*Values, error) {
	h, err := bindings.Require(c.env, capability)
	if err != nil {
		return nil, err
	}
	pairs, err := h.GetEnvironment(ctx)
	if err != nil {
		return nil, errors.Host(capability, "get-environment", err)
	}
	return FromPairs(pairs), nil
}

// Load calls Load on the default client.
func Load(ctx context.Context) (*Values, error) {
	return Default().Load(ctx)
}

// Values is an immutable snapshot of the environment. When a name appears
// more than once the last value wins.
type Values struct {
	m map[string]string
}

func FromPairs(pairs [][2]string) *Values {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p[0]] = p[1]
	}
	return &Values{m: m}
}

// Lookup returns the raw value of name.
func (v *Values) Lookup(name string) (string, bool) {
	s, ok := v.m[name]
	return s, ok
}

// Names returns every name in sorted order.
func (v *Values) Names() []string {
	names := make([]string, 0, len(v.m))
	for k := range v.m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of distinct names.
func (v *Values) Len() int { return len(v.m) }

// String returns the value of name or def when unset.
func (v *Values) String(name, def string) string {
	if s, ok := v.m[name]; ok {
		return s
	}
	return def
}

// Required returns the value of name, or a FailedPrecondition error when
// it is unset or empty.
func (v *Values) Required(name string) (string, error) {
	if s := v.m[name]; s != "" {
		return s, nil
	}
	return "", errors.New(errors.PhaseHost, errors.KindFailedPrecondition).
		Capability(capability, "required").
		Detail("environment variable %s is not set", name).
		Build()
}

// Int parses name as an integer, returning def when unset.
func (v *Values) Int(name string, def int) (int, error) {
	return convert(v, name, def, cast.ToIntE)
}

// Bool parses name as a boolean, returning def when unset.
func (v *Values) Bool(name string, def bool) (bool, error) {
	return convert(v, name, def, cast.ToBoolE)
}

// Duration parses name as a duration ("1m30s", or a plain integer of
// nanoseconds), returning def when unset.
func (v *Values) Duration(name string, def time.Duration) (time.Duration, error) {
	return convert(v, name, def, cast.ToDurationE)
}

// Float parses name as a float64, returning def when unset.
func (v *Values) Float(name string, def float64) (float64, error) {
	return convert(v, name, def, cast.ToFloat64E)
}

func convert[T any](v *Values, name string, def T, conv func(any) (T, error)) (T, error) {
	s, ok := v.m[name]
	if !ok {
		return def, nil
	}
	out, err := conv(s)
	if err != nil {
		return def, errors.New(errors.PhaseDecode, errors.KindMalformed).
			Capability(capability, "parse").
			Detail("invalid value %q for %s", s, name).
			Cause(err).
			Build()
	}
	return out, nil
}
