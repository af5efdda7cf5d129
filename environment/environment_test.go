package environment_test

import (
	"context"
	"testing"
	"time"

	"github.com/wippyai/wasm-functions/devhost"
	"github.com/wippyai/wasm-functions/environment"
	"github.com/wippyai/wasm-functions/errors"
)

func TestLoad(t *testing.T) {
	h, err := devhost.New(devhost.WithConfig(&devhost.Config{Environment: map[string]string{
		"STAGE":   "dev",
		"WORKERS": "4",
		"DEBUG":   "true",
		"TIMEOUT": "1m30s",
		"RATIO":   "0.25",
	}}))
	if err != nil {
		t.Fatalf("devhost.New: %v", err)
	}

	v, err := environment.New(h.Bindings()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v.Len() != 5 {
		t.Fatalf("Len = %d, want 5", v.Len())
	}
	if names := v.Names(); names[0] != "DEBUG" || names[4] != "WORKERS" {
		t.Errorf("Names = %v", names)
	}
	if s := v.String("STAGE", "prod"); s != "dev" {
		t.Errorf("STAGE = %q", s)
	}
	if n, err := v.Int("WORKERS", 1); err != nil || n != 4 {
		t.Errorf("WORKERS = %d, %v", n, err)
	}
	if b, err := v.Bool("DEBUG", false); err != nil || !b {
		t.Errorf("DEBUG = %v, %v", b, err)
	}
	if d, err := v.Duration("TIMEOUT", 0); err != nil || d != 90*time.Second {
		t.Errorf("TIMEOUT = %v, %v", d, err)
	}
	if f, err := v.Float("RATIO", 0); err != nil || f != 0.25 {
		t.Errorf("RATIO = %v, %v", f, err)
	}
}

func TestValues_Defaults(t *testing.T) {
	v := environment.FromPairs([][2]string{{"A", "1"}, {"A", "2"}, {"EMPTY", ""}, {"FLAG", "yes please"}})

	if s, _ := v.Lookup("A"); s != "2" {
		t.Errorf("A = %q, want last value", s)
	}
	if n, err := v.Int("MISSING", 7); err != nil || n != 7 {
		t.Errorf("MISSING = %d, %v", n, err)
	}
	if _, err := v.Required("EMPTY"); !errors.IsKind(err, errors.KindFailedPrecondition) {
		t.Errorf("Required(EMPTY) = %v, want FailedPrecondition", err)
	}
	if s, err := v.Required("A"); err != nil || s != "2" {
		t.Errorf("Required(A) = %q, %v", s, err)
	}
	b, err := v.Bool("FLAG", true)
	if !errors.IsKind(err, errors.KindMalformed) {
		t.Errorf("Bool(FLAG) = %v, want Malformed", err)
	}
	if !b {
		t.Error("Bool(FLAG) should return the default on error")
	}
}
