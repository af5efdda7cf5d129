package contract

import (
	"reflect"
	"slices"
	"strings"
	"unicode"
)

var interfaces = map[string]reflect.Type{
	NamespaceCacheScalar: reflect.TypeFor[CacheScalar](),
	NamespaceCacheList:   reflect.TypeFor[CacheList](),
	NamespaceTopic:       reflect.TypeFor[Topic](),
	NamespaceAWSAuth:     reflect.TypeFor[AWSAuth](),
	NamespaceAWSDDB:      reflect.TypeFor[DDB](),
	NamespaceAWSS3:       reflect.TypeFor[S3](),
	NamespaceAWSSecrets:  reflect.TypeFor[Secrets](),
	NamespaceAWSLambda:   reflect.TypeFor[Lambda](),
	NamespaceHTTP:        reflect.TypeFor[HTTP](),
	NamespaceRedis:       reflect.TypeFor[Redis](),
	NamespaceSpawn:       reflect.TypeFor[Spawn](),
	NamespaceWebSupport:  reflect.TypeFor[WebSupport](),
	NamespaceEnvironment: reflect.TypeFor[Environment](),
	NamespaceLogging:     reflect.TypeFor[Logging](),
	NamespaceToken:       reflect.TypeFor[Token](),
	NamespaceBytes:       reflect.TypeFor[Bytes](),
}

// resources lists the resource types per namespace, longest first where
// one name prefixes another.
var resources = map[string][]string{
	NamespaceAWSAuth:    {"credentials-provider"},
	NamespaceAWSDDB:     {"client"},
	NamespaceAWSS3:      {"client"},
	NamespaceAWSSecrets: {"client"},
	NamespaceAWSLambda:  {"client"},
	NamespaceRedis:      {"response-stream", "client"},
	NamespaceBytes:      {"buffer"},
}

// InterfaceOf returns the Go interface type for a namespace.
func InterfaceOf(namespace string) (reflect.Type, bool) {
	t, ok := interfaces[namespace]
	return t, ok
}

// Functions returns the sorted WIT function names a namespace declares.
func Functions(namespace string) []string {
	t, ok := interfaces[namespace]
	if !ok {
		return nil
	}
	names := make([]string, 0, t.NumMethod())
	for i := 0; i < t.NumMethod(); i++ {
		names = append(names, WITName(namespace, t.Method(i).Name))
	}
	slices.Sort(names)
	return names
}

// WITName converts a Go method name to its WIT function name:
//
//	ConstructorClient               -> [constructor]client
//	MethodResponseStreamNext        -> [method]response-stream.next
//	ResourceDropCredentialsProvider -> [resource-drop]credentials-provider
//	ListPushFront                   -> list-push-front
func WITName(namespace, method string) string {
	switch {
	case strings.HasPrefix(method, "Constructor"):
		return "[constructor]" + toKebabCase(strings.TrimPrefix(method, "Constructor"))
	case strings.HasPrefix(method, "ResourceDrop"):
		return "[resource-drop]" + toKebabCase(strings.TrimPrefix(method, "ResourceDrop"))
	case strings.HasPrefix(method, "Method"):
		rest := toKebabCase(strings.TrimPrefix(method, "Method"))
		for _, res := range resources[namespace] {
			if name, ok := strings.CutPrefix(rest, res+"-"); ok {
				return "[method]" + res + "." + name
			}
		}
		return "[method]" + rest
	}
	return toKebabCase(method)
}

// initialisms split adjacent acronyms in one capital run.
var initialisms = []string{"HTTP", "JSON", "AWS", "API", "DDB", "TTL", "URI", "URL", "XML", "ID"}

// toKebabCase converts PascalCase to kebab-case.
// Acronyms stay together and known ones are split apart:
// GetHTTPURL -> get-http-url, TTLMillis -> ttl-millis.
func toKebabCase(s string) string {
	if len(s) == 0 {
		return ""
	}

	runes := []rune(s)
	var result strings.Builder

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if !unicode.IsUpper(r) {
			result.WriteRune(r)
			continue
		}

		end := i + 1
		for end < len(runes) && unicode.IsUpper(runes[end]) {
			end++
		}
		// the last capital of a run starts the next word
		if end > i+1 && end < len(runes) && unicode.IsLower(runes[end]) {
			end--
		}

		for j, word := range splitRun(string(runes[i:end])) {
			if i > 0 || j > 0 {
				result.WriteByte('-')
			}
			result.WriteString(strings.ToLower(word))
		}
		i = end - 1
	}
	return result.String()
}

// splitRun breaks a run of capitals into known initialisms. Whatever no
// initialism prefixes is kept as one word.
func splitRun(run string) []string {
	var words []string
	for run != "" {
		n := 0
		for _, in := range initialisms {
			if len(in) > n && strings.HasPrefix(run, in) {
				n = len(in)
			}
		}
		if n == 0 || n == len(run) {
			return append(words, run)
		}
		words = append(words, run[:n])
		run = run[n:]
	}
	return words
}
