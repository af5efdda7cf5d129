// Package functions is the guest-side toolkit for writing serverless
// functions as WebAssembly modules, plus the tooling to run them locally.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	functions/
//	├── function/        Entry point registration and invocation dispatch
//	├── contract/        Host capability contracts, records and fault codes
//	├── errors/          Unified error kinds and HTTP status mapping
//	├── encoding/        Codecs for typed payloads (JSON, CBOR, string, bytes)
//	├── resource/        Owned and borrowed handles for host resources
//	├── stream/          Pull-based streams over host resources
//	├── bindings/        Installed capability set for the running guest
//	├── cache/           Key/value and list cache client
//	├── topics/          Topic publishing client
//	├── spawn/           Fire-and-forget function spawning
//	├── web/             Web function support (token metadata)
//	├── token/           Disposable scoped API keys
//	├── data/            Inline or host-buffered payloads
//	├── environment/     Typed environment configuration
//	├── aws/             Auth, DynamoDB, S3, Lambda and Secrets clients
//	├── redis/           Redis command client
//	├── httpclient/      Streaming outbound HTTP client
//	├── funclog/         Structured logging into the host log sink
//	├── wire/            CBOR call envelope, client and server
//	├── abi/             Core WebAssembly import/export conventions
//	├── runner/          wazero host for compiled guests
//	└── devhost/         In-memory host for tests and local runs
//
// # Quick Start
//
// Register a handler and build for wasip1:
//
//	import _ "github.com/wippyai/wasm-functions/abi"
//
//	func init() {
//		function.Web(function.String(func(ctx context.Context, req *function.Request, body string) (*function.Response, error) {
//			return function.Text("hello " + body), nil
//		}))
//	}
//
//	func main() {}
//
// Run it against the dev host:
//
//	functions-dev invoke hello.wasm -d world
//
// # Testing Without WebAssembly
//
// Handlers are plain Go functions. Tests install a devhost.Host and call
// the registry directly:
//
//	host, _ := devhost.New()
//	bindings.Install(host.Bindings())
//	resp := registry.InvokeWeb(ctx, contract.WebRequest{Body: []byte("ping")})
//
// # Thread Safety
//
// Clients and the dev host are safe for concurrent use. A Runner serializes
// invocations because a guest instance has a single linear memory.
package functions
