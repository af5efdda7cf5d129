// Package devhost is an in-memory implementation of every host capability,
// for running and testing functions locally.
//
// Resources (credentials providers, service clients, response streams,
// buffers)
// live in one resource.Table, so the dev host enforces the same borrow
// rules a production host does: a provider with live clients, or a redis
// client with open streams, cannot be dropped.
package devhost

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/resource"
)

// Host bundles every capability over shared state.
type Host struct {
	Cache    *Cache
	Topics   *Topics
	Auth     *Auth
	DDB      *DDB
	S3       *S3
	Secrets  *Secrets
	Lambda   *Lambda
	HTTP     *HTTP
	Redis    *Redis
	Spawn    *Spawn
	Web      *Web
	Env      *Env
	Logging  *Logging
	Token    *Token
	Bytes    *Bytes
	table    *resource.Table
	logger   *zap.Logger
	clock    func() time.Time
	cfg      Config
	client   *http.Client
	spawnFn  SpawnFunc
	lambdaFn LambdaFunc
}

// Option configures a Host.
type Option func(*Host)

// WithConfig seeds the host from cfg.
func WithConfig(cfg *Config) Option {
	return func(h *Host) {
		if cfg != nil {
			h.cfg = *cfg
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// WithClock replaces time.Now for TTL handling.
func WithClock(now func() time.Time) Option {
	return func(h *Host) { h.clock = now }
}

// WithHTTPClient sets the client used for outbound HTTP.
func WithHTTPClient(c *http.Client) Option {
	return func(h *Host) { h.client = c }
}

// WithSpawnFunc runs fn for every accepted spawn.
func WithSpawnFunc(fn SpawnFunc) Option {
	return func(h *Host) { h.spawnFn = fn }
}

// WithLambdaFunc answers lambda invocations that have no canned response.
func WithLambdaFunc(fn LambdaFunc) Option {
	return func(h *Host) { h.lambdaFn = fn }
}

// New builds a host. Without options it is empty and accepts everything.
func New(opts ...Option) (*Host, error) {
	h := &Host{
		table:  resource.NewTable(),
		logger: zap.NewNop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.client == nil {
		timeout := h.cfg.HTTPTimeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		h.client = &http.Client{Timeout: timeout}
	}

	h.Cache = newCache(h.clock)
	for k, v := range h.cfg.Cache {
		h.Cache.seed([]byte(k), []byte(v))
	}
	h.Topics = newTopics(h.logger)
	h.Auth = newAuth(h.table, h.cfg.Credentials)

	ddb, err := newDDB(h.table, h.cfg.Tables)
	if err != nil {
		return nil, err
	}
	h.DDB = ddb
	h.Bytes = &Bytes{table: h.table}
	h.S3 = newS3(h.table, h.Bytes, h.cfg.Objects)
	h.Secrets = newSecrets(h.table, h.cfg.Secrets)
	h.Lambda = newLambda(h.table, h.cfg.Lambdas, h.lambdaFn)
	h.HTTP = newHTTP(h.table, h.client, h.clock)
	h.Redis = newRedis(h.table, h.cfg.Redis)
	h.Spawn = newSpawn(h.cfg.Functions, h.cfg.SpawnLimit, h.spawnFn, h.logger)
	h.Web = &Web{metadata: h.cfg.TokenMetadata}
	h.Env = newEnv(h.cfg.Environment)
	h.Logging = newLogging(h.logger)
	h.Token = newToken(h.cfg.Token, h.clock)
	return h, nil
}

// Bindings returns contract bindings backed by this host.
func (h *Host) Bindings() *contract.Bindings {
	return &contract.Bindings{
		CacheScalar: h.Cache,
		CacheList:   h.Cache,
		Topic:       h.Topics,
		AWSAuth:     h.Auth,
		DDB:         h.DDB,
		S3:          h.S3,
		Secrets:     h.Secrets,
		Lambda:      h.Lambda,
		HTTP:        h.HTTP,
		Redis:       h.Redis,
		Spawn:       h.Spawn,
		WebSupport:  h.Web,
		Environment: h.Env,
		Logging:     h.Logging,
		Token:       h.Token,
		Bytes:       h.Bytes,
	}
}

// Resources returns the number of live host resources.
func (h *Host) Resources() int { return h.table.Len() }

// Table exposes the resource table, e.g. to subscribe to lifecycle events.
func (h *Host) Table() *resource.Table { return h.table }

// Close drops every remaining resource.
func (h *Host) Close() error { return h.table.Close() }

func fail[K contract.KindEnum](kind K, format string, args ...any) error {
	return &contract.Failure[K]{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

var (
	_ contract.CacheScalar = (*Cache)(nil)
	_ contract.CacheList   = (*Cache)(nil)
	_ contract.Topic       = (*Topics)(nil)
	_ contract.AWSAuth     = (*Auth)(nil)
	_ contract.DDB         = (*DDB)(nil)
	_ contract.S3          = (*S3)(nil)
	_ contract.Secrets     = (*Secrets)(nil)
	_ contract.Lambda      = (*Lambda)(nil)
	_ contract.HTTP        = (*HTTP)(nil)
	_ contract.Redis       = (*Redis)(nil)
	_ contract.Spawn       = (*Spawn)(nil)
	_ contract.WebSupport  = (*Web)(nil)
	_ contract.Environment = (*Env)(nil)
	_ contract.Logging     = (*Logging)(nil)
	_ contract.Token       = (*Token)(nil)
	_ contract.Bytes       = (*Bytes)(nil)
)
