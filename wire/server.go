package wire

import (
	"context"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/errors"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

type hostFunc struct {
	fn     reflect.Value
	params []reflect.Type
}

// Server dispatches call envelopes to registered capability implementations.
type Server struct {
	mu     sync.RWMutex
	funcs  map[string]map[string]*hostFunc
	logger *zap.Logger
}

type ServerOption func(*Server)

func WithLogger(l *zap.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		funcs:  make(map[string]map[string]*hostFunc),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register exposes impl under namespace. impl must implement the
// namespace's contract interface; every interface method is bound under
// its WIT function name.
func (s *Server) Register(namespace string, impl any) error {
	if namespace == "" {
		return errors.InvalidInput(errors.PhaseTransport, "namespace cannot be empty")
	}
	iface, ok := contract.InterfaceOf(namespace)
	if !ok {
		return errors.InvalidInput(errors.PhaseTransport, "unknown namespace %q", namespace)
	}
	rv := reflect.ValueOf(impl)
	if !rv.IsValid() || !rv.Type().Implements(iface) {
		return errors.InvalidInput(errors.PhaseTransport, "%T does not implement %s", impl, iface)
	}

	funcs := make(map[string]*hostFunc, iface.NumMethod())
	for i := 0; i < iface.NumMethod(); i++ {
		m := iface.Method(i)
		fn := rv.MethodByName(m.Name)
		ft := fn.Type()
		if ft.NumIn() == 0 || ft.In(0) != contextType || ft.NumOut() == 0 || ft.Out(ft.NumOut()-1) != errorType {
			return errors.InvalidInput(errors.PhaseTransport, "%s.%s must take a context and return an error", namespace, m.Name)
		}
		params := make([]reflect.Type, ft.NumIn()-1)
		for j := range params {
			params[j] = ft.In(j + 1)
		}
		funcs[contract.WITName(namespace, m.Name)] = &hostFunc{fn: fn, params: params}
	}

	s.mu.Lock()
	s.funcs[namespace] = funcs
	s.mu.Unlock()
	return nil
}

// RegisterBindings registers every capability b provides.
func (s *Server) RegisterBindings(b *contract.Bindings) error {
	impls := map[string]any{
		contract.NamespaceCacheScalar: b.CacheScalar,
		contract.NamespaceCacheList:   b.CacheList,
		contract.NamespaceTopic:       b.Topic,
		contract.NamespaceAWSAuth:     b.AWSAuth,
		contract.NamespaceAWSDDB:      b.DDB,
		contract.NamespaceAWSS3:       b.S3,
		contract.NamespaceAWSSecrets:  b.Secrets,
		contract.NamespaceAWSLambda:   b.Lambda,
		contract.NamespaceHTTP:        b.HTTP,
		contract.NamespaceRedis:       b.Redis,
		contract.NamespaceSpawn:       b.Spawn,
		contract.NamespaceWebSupport:  b.WebSupport,
		contract.NamespaceEnvironment: b.Environment,
		contract.NamespaceLogging:     b.Logging,
		contract.NamespaceToken:       b.Token,
		contract.NamespaceBytes:       b.Bytes,
	}
	for _, ns := range contract.Namespaces() {
		impl := impls[ns]
		if isNil(impl) {
			continue
		}
		if err := s.Register(ns, impl); err != nil {
			return err
		}
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Functions returns the number of bound functions in namespace.
func (s *Server) Functions(namespace string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.funcs[namespace])
}

// Handle decodes one call envelope, runs it and encodes the reply.
// The returned error is only set when the reply itself cannot be encoded.
func (s *Server) Handle(ctx context.Context, request []byte) ([]byte, error) {
	var call Call
	if err := Unmarshal(request, &call); err != nil {
		return Marshal(Reply{Error: err.Error()})
	}
	return Marshal(s.Serve(ctx, call))
}

// Serve runs a decoded call.
func (s *Server) Serve(ctx context.Context, call Call) Reply {
	s.mu.RLock()
	hf := s.funcs[call.Namespace][call.Function]
	s.mu.RUnlock()
	if hf == nil {
		return Reply{Error: "unknown function " + call.Namespace + "#" + call.Function}
	}
	if len(call.Args) != len(hf.params) {
		return Reply{Error: errors.InvalidInput(errors.PhaseTransport,
			"%s expects %d arguments, got %d", call.Function, len(hf.params), len(call.Args)).Error()}
	}

	in := make([]reflect.Value, 0, len(hf.params)+1)
	in = append(in, reflect.ValueOf(ctx))
	for i, t := range hf.params {
		arg := reflect.New(t)
		if err := Unmarshal(call.Args[i], arg.Interface()); err != nil {
			return Reply{Error: err.Error()}
		}
		in = append(in, arg.Elem())
	}

	out := hf.fn.Call(in)
	last := out[len(out)-1]
	if !last.IsNil() {
		err := last.Interface().(error)
		s.logger.Debug("host call failed",
			zap.String("namespace", call.Namespace),
			zap.String("function", call.Function),
			zap.Error(err))
		var fault contract.Fault
		if errors.As(err, &fault) {
			return Reply{Fault: &Fault{Code: fault.Code(), Message: fault.Detail()}}
		}
		return Reply{Error: err.Error()}
	}

	values := make([]any, len(out)-1)
	for i := range values {
		values[i] = out[i].Interface()
	}
	results, err := encodeAll(values)
	if err != nil {
		return Reply{Error: err.Error()}
	}
	return Reply{Results: results}
}

// Loopback is a Transport that calls s directly.
func Loopback(s *Server) Transport {
	return func(ctx context.Context, request []byte) ([]byte, error) {
		return s.Handle(ctx, request)
	}
}
