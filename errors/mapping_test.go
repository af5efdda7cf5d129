package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/wippyai/wasm-functions/contract"
)

// every capability kind maps, and maps the same way each time
func TestMapping_TotalAndDeterministic(t *testing.T) {
	type mapper func(code uint8) *Error

	capabilities := []struct {
		name  string
		count int
		fn    mapper
	}{
		{"cache", int(contract.CacheErrorKindCount), func(c uint8) *Error {
			return FromCache(&contract.CacheError{Kind: contract.CacheErrorKind(c)}, "op")
		}},
		{"topic", int(contract.TopicErrorKindCount), func(c uint8) *Error {
			return FromTopic(&contract.TopicError{Kind: contract.TopicErrorKind(c)}, "op")
		}},
		{"aws-auth", int(contract.AuthErrorKindCount), func(c uint8) *Error {
			return FromAuth(&contract.AuthError{Kind: contract.AuthErrorKind(c)}, "op")
		}},
		{"aws-ddb", int(contract.DDBErrorKindCount), func(c uint8) *Error {
			return FromDDB(&contract.DDBError{Kind: contract.DDBErrorKind(c)}, "op")
		}},
		{"aws-s3", int(contract.S3ErrorKindCount), func(c uint8) *Error {
			return FromS3(&contract.S3Error{Kind: contract.S3ErrorKind(c)}, "op")
		}},
		{"aws-secrets", int(contract.SecretsErrorKindCount), func(c uint8) *Error {
			return FromSecrets(&contract.SecretsError{Kind: contract.SecretsErrorKind(c)}, "op")
		}},
		{"aws-lambda", int(contract.LambdaErrorKindCount), func(c uint8) *Error {
			return FromLambda(&contract.LambdaError{Kind: contract.LambdaErrorKind(c)}, "op")
		}},
		{"http", int(contract.HTTPErrorKindCount), func(c uint8) *Error {
			return FromHTTP(&contract.HTTPError{Kind: contract.HTTPErrorKind(c)}, "op")
		}},
		{"redis", int(contract.RedisErrorKindCount), func(c uint8) *Error {
			return FromRedis(&contract.RedisError{Kind: contract.RedisErrorKind(c)}, "op")
		}},
		{"spawn", int(contract.SpawnErrorKindCount), func(c uint8) *Error {
			return FromSpawn(&contract.SpawnError{Kind: contract.SpawnErrorKind(c)}, "op")
		}},
		{"logging", int(contract.LogErrorKindCount), func(c uint8) *Error {
			return FromLog(&contract.LogError{Kind: contract.LogErrorKind(c)}, "op")
		}},
		{"token", int(contract.TokenErrorKindCount), func(c uint8) *Error {
			return FromToken(&contract.TokenError{Kind: contract.TokenErrorKind(c)}, "op")
		}},
		{"bytes", int(contract.BytesErrorKindCount), func(c uint8) *Error {
			return FromBytes(&contract.BytesError{Kind: contract.BytesErrorKind(c)}, "op")
		}},
	}

	for _, cp := range capabilities {
		t.Run(cp.name, func(t *testing.T) {
			for code := 0; code < cp.count; code++ {
				first := cp.fn(uint8(code))
				if first.Kind >= kindCount {
					t.Fatalf("code %d mapped to invalid kind %d", code, first.Kind)
				}
				if first.Capability != cp.name {
					t.Errorf("code %d capability = %q, want %q", code, first.Capability, cp.name)
				}
				for i := 0; i < 3; i++ {
					if again := cp.fn(uint8(code)); again.Kind != first.Kind {
						t.Fatalf("code %d mapped to %v then %v", code, first.Kind, again.Kind)
					}
				}
			}
		})
	}
}

// the tables agree with the variant descriptors the contract publishes
func TestMapping_CoversDescribedCases(t *testing.T) {
	counts := map[string]int{
		"error":         len(cacheKinds),
		"topic-error":   len(topicKinds),
		"auth-error":    len(authKinds),
		"ddb-error":     len(ddbKinds),
		"s3-error":      len(s3Kinds),
		"secrets-error": len(secretsKinds),
		"lambda-error":  len(lambdaKinds),
		"http-error":    len(httpKinds),
		"redis-error":   len(redisKinds),
		"spawn-error":   len(spawnKinds),
		"log-error":     len(logKinds),
		"token-error":   len(tokenKinds),
		"bytes-error":   len(bytesKinds),
	}

	for _, d := range contract.Describe() {
		want, ok := counts[d.Name]
		if !ok {
			continue
		}
		if got := len(d.Cases()); got != want {
			t.Errorf("%s %s: %d cases described, %d mapped", d.Namespace, d.Name, got, want)
		}
		delete(counts, d.Name)
	}
	for name := range counts {
		t.Errorf("no descriptor for %s", name)
	}
}

func TestMapping_Specific(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"cache not found", &contract.CacheError{Kind: contract.CacheNotFound}, KindNotFound},
		{"cache server unavailable", &contract.CacheError{Kind: contract.CacheServerUnavailable}, KindInternal},
		{"cache unknown", &contract.CacheError{Kind: contract.CacheUnknown}, KindOther},
		{"ddb condition", &contract.DDBError{Kind: contract.DDBConditionFailed}, KindFailedPrecondition},
		{"redis response", &contract.RedisError{Kind: contract.RedisResponseError}, KindFailedPrecondition},
		{"spawn limit", &contract.SpawnError{Kind: contract.SpawnLimit}, KindLimitExceeded},
		{"spawn not found", &contract.SpawnError{Kind: contract.SpawnFunctionNotFound}, KindNotFound},
		{"http invalid url", &contract.HTTPError{Kind: contract.HTTPInvalidURL}, KindMalformed},
		{"auth unauthorized", &contract.AuthError{Kind: contract.AuthUnauthorized}, KindUnauthorized},
		{"token permission denied", &contract.TokenError{Kind: contract.TokenPermissionDenied}, KindPermissionDenied},
		{"token limit", &contract.TokenError{Kind: contract.TokenLimitExceeded}, KindLimitExceeded},
		{"bytes malformed", &contract.BytesError{Kind: contract.BytesMalformed}, KindMalformed},
		{"wrapped capability error", fmt.Errorf("wire: %w", &contract.TopicError{Kind: contract.TopicLimitExceeded}), KindLimitExceeded},
		{"transport deadline", context.DeadlineExceeded, KindTimeout},
		{"transport failure", errors.New("pipe closed"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Host("test", "op", tt.err)
			if KindOf(got) != tt.want {
				t.Errorf("Host(%v) kind = %v, want %v", tt.err, KindOf(got), tt.want)
			}
		})
	}
}

func TestMapping_PreservesDetail(t *testing.T) {
	src := &contract.CacheError{Kind: contract.CacheLimitExceeded, Message: "item too large"}
	err := FromCache(src, "set")

	if err.Detail != "limit-exceeded: item too large" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Op != "set" {
		t.Errorf("Op = %q", err.Op)
	}

	var back *contract.CacheError
	if !errors.As(err, &back) || back != src {
		t.Error("capability error not reachable through Unwrap")
	}
}

func TestMapping_OutOfRangeIsOther(t *testing.T) {
	err := FromRedis(&contract.RedisError{Kind: contract.RedisErrorKind(250)}, "pipe")
	if err.Kind != KindOther {
		t.Errorf("Kind = %v, want other", err.Kind)
	}
}

func TestHost_Nil(t *testing.T) {
	if err := Host("cache", "get", nil); err != nil {
		t.Errorf("Host(nil) = %v", err)
	}
}

func TestHost_PassesUnifiedThrough(t *testing.T) {
	orig := NotFound(PhaseHost, "thing")
	if got := Host("cache", "get", orig); got != orig {
		t.Errorf("Host rewrapped a unified error: %v", got)
	}
}
