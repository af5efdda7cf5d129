package devhost

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/resource"
)

// Redis is an in-memory server that understands a small command set:
// GET SET DEL EXISTS INCR LPUSH RPUSH LRANGE MGET PING ECHO.
// Each connection address has its own keyspace.
type Redis struct {
	table   *resource.Table
	allowed map[string]bool
	spaces  map[string]*keyspace
	mu      sync.Mutex
}

type keyspace struct {
	strings map[string][]byte
	lists   map[string][][]byte
}

type redisClient struct {
	space   *keyspace
	address string
}

// reply is one value of a pipe response; bulk replies carry items.
type reply struct {
	status string
	data   []byte
	items  []reply
	n      int64
	kind   contract.RedisValueKind
}

type responseStream struct {
	values []reply
	client contract.Handle
	pos    int
}

func newRedis(table *resource.Table, addrs []string) *Redis {
	r := &Redis{table: table, spaces: make(map[string]*keyspace)}
	if len(addrs) > 0 {
		r.allowed = make(map[string]bool, len(addrs))
		for _, a := range addrs {
			r.allowed[a] = true
		}
	}
	return r
}

func (r *Redis) ConstructorClient(_ context.Context, conn contract.RedisConnection) (contract.Handle, error) {
	if conn.Kind != contract.RedisBasicConnection {
		return 0, fail(contract.RedisMalformed, "unsupported connection kind %d", conn.Kind)
	}
	u, err := url.Parse(conn.Address)
	if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") || u.Host == "" {
		return 0, fail(contract.RedisMalformed, "invalid redis address %q", conn.Address)
	}
	if r.allowed != nil && !r.allowed[conn.Address] {
		return 0, fail(contract.RedisConnectionFailed, "connection refused: %s", u.Host)
	}

	r.mu.Lock()
	space, ok := r.spaces[conn.Address]
	if !ok {
		space = &keyspace{strings: make(map[string][]byte), lists: make(map[string][][]byte)}
		r.spaces[conn.Address] = space
	}
	r.mu.Unlock()

	h, err := r.table.Insert(resource.TypeRedisClient, &redisClient{space: space, address: conn.Address})
	if err != nil {
		return 0, fail(contract.RedisOther, "%v", err)
	}
	return h, nil
}

func (r *Redis) MethodClientPipe(_ context.Context, self contract.Handle, commands []contract.RedisCommand) (contract.Handle, error) {
	c, err := resource.Lookup[*redisClient](r.table, self, resource.TypeRedisClient)
	if err != nil {
		return 0, fail(contract.RedisMalformed, "invalid client handle %d: %v", self, err)
	}
	if len(commands) == 0 {
		return 0, fail(contract.RedisMalformed, "empty pipe")
	}

	r.mu.Lock()
	values := make([]reply, 0, len(commands))
	for _, cmd := range commands {
		v, err := c.space.exec(cmd)
		if err != nil {
			r.mu.Unlock()
			return 0, err
		}
		values = append(values, v)
	}
	r.mu.Unlock()

	return r.openStream(self, values)
}

func (r *Redis) openStream(client contract.Handle, values []reply) (contract.Handle, error) {
	h, err := r.table.Insert(resource.TypeResponseStream, &responseStream{values: values, client: client}, client)
	if err != nil {
		return 0, fail(contract.RedisOther, "%v", err)
	}
	return h, nil
}

func (r *Redis) MethodResponseStreamNext(_ context.Context, self contract.Handle) (contract.RedisValue, bool, error) {
	s, err := resource.Lookup[*responseStream](r.table, self, resource.TypeResponseStream)
	if err != nil {
		return contract.RedisValue{}, false, fail(contract.RedisMalformed, "invalid response stream handle %d: %v", self, err)
	}

	r.mu.Lock()
	if s.pos >= len(s.values) {
		r.mu.Unlock()
		return contract.RedisValue{}, false, nil
	}
	v := s.values[s.pos]
	s.pos++
	r.mu.Unlock()

	out := contract.RedisValue{Kind: v.kind, Int: v.n, Data: v.data, Status: v.status}
	if v.kind == contract.RedisBulk {
		if out.Bulk, err = r.openStream(s.client, v.items); err != nil {
			return contract.RedisValue{}, false, err
		}
	}
	return out, true, nil
}

func (r *Redis) ResourceDropClient(_ context.Context, self contract.Handle) error {
	if err := r.table.Drop(self, resource.TypeRedisClient); err != nil {
		return fail(contract.RedisOther, "drop client %d: %v", self, err)
	}
	return nil
}

func (r *Redis) ResourceDropResponseStream(_ context.Context, self contract.Handle) error {
	if err := r.table.Drop(self, resource.TypeResponseStream); err != nil {
		return fail(contract.RedisOther, "drop response stream %d: %v", self, err)
	}
	return nil
}

func okay() reply                   { return reply{kind: contract.RedisOkay} }
func nilReply() reply               { return reply{kind: contract.RedisNil} }
func intReply(n int64) reply        { return reply{kind: contract.RedisInt, n: n} }
func dataReply(b []byte) reply      { return reply{kind: contract.RedisData, data: b} }
func statusReply(s string) reply    { return reply{kind: contract.RedisStatus, status: s} }
func bulkReply(items []reply) reply { return reply{kind: contract.RedisBulk, items: items} }

func wrongType() error {
	return fail(contract.RedisResponseError, "WRONGTYPE Operation against a key holding the wrong kind of value")
}

func arity(name string) error {
	return fail(contract.RedisResponseError, "ERR wrong number of arguments for '%s' command", strings.ToLower(name))
}

func (k *keyspace) exec(cmd contract.RedisCommand) (reply, error) {
	name := strings.ToUpper(cmd.Command)
	args := cmd.Arguments

	switch name {
	case "PING":
		if len(args) == 1 {
			return dataReply(args[0]), nil
		}
		return statusReply("PONG"), nil

	case "ECHO":
		if len(args) != 1 {
			return reply{}, arity(name)
		}
		return dataReply(args[0]), nil

	case "GET":
		if len(args) != 1 {
			return reply{}, arity(name)
		}
		return k.get(string(args[0]))

	case "MGET":
		if len(args) == 0 {
			return reply{}, arity(name)
		}
		items := make([]reply, 0, len(args))
		for _, key := range args {
			v, ok := k.strings[string(key)]
			if !ok {
				items = append(items, nilReply())
				continue
			}
			items = append(items, dataReply(v))
		}
		return bulkReply(items), nil

	case "SET":
		return k.set(args)

	case "DEL", "EXISTS":
		if len(args) == 0 {
			return reply{}, arity(name)
		}
		var n int64
		for _, key := range args {
			key := string(key)
			_, isString := k.strings[key]
			_, isList := k.lists[key]
			if !isString && !isList {
				continue
			}
			n++
			if name == "DEL" {
				delete(k.strings, key)
				delete(k.lists, key)
			}
		}
		return intReply(n), nil

	case "INCR":
		if len(args) != 1 {
			return reply{}, arity(name)
		}
		key := string(args[0])
		if _, ok := k.lists[key]; ok {
			return reply{}, wrongType()
		}
		var n int64
		if v, ok := k.strings[key]; ok {
			var err error
			if n, err = strconv.ParseInt(string(v), 10, 64); err != nil {
				return reply{}, fail(contract.RedisResponseError, "ERR value is not an integer or out of range")
			}
		}
		n++
		k.strings[key] = strconv.AppendInt(nil, n, 10)
		return intReply(n), nil

	case "LPUSH", "RPUSH":
		if len(args) < 2 {
			return reply{}, arity(name)
		}
		key := string(args[0])
		if _, ok := k.strings[key]; ok {
			return reply{}, wrongType()
		}
		list := k.lists[key]
		for _, v := range args[1:] {
			v = append([]byte(nil), v...)
			if name == "LPUSH" {
				list = append([][]byte{v}, list...)
			} else {
				list = append(list, v)
			}
		}
		k.lists[key] = list
		return intReply(int64(len(list))), nil

	case "LRANGE":
		if len(args) != 3 {
			return reply{}, arity(name)
		}
		if _, ok := k.strings[string(args[0])]; ok {
			return reply{}, wrongType()
		}
		start, err1 := strconv.Atoi(string(args[1]))
		stop, err2 := strconv.Atoi(string(args[2]))
		if err1 != nil || err2 != nil {
			return reply{}, fail(contract.RedisResponseError, "ERR value is not an integer or out of range")
		}
		list := k.lists[string(args[0])]
		start, stop = clampRange(start, stop, len(list))
		items := make([]reply, 0, stop-start)
		for _, v := range list[start:stop] {
			items = append(items, dataReply(v))
		}
		return bulkReply(items), nil
	}
	return reply{}, fail(contract.RedisResponseError, "ERR unknown command '%s'", cmd.Command)
}

func (k *keyspace) get(key string) (reply, error) {
	if _, ok := k.lists[key]; ok {
		return reply{}, wrongType()
	}
	v, ok := k.strings[key]
	if !ok {
		return nilReply(), nil
	}
	return dataReply(v), nil
}

func (k *keyspace) set(args [][]byte) (reply, error) {
	if len(args) < 2 {
		return reply{}, arity("SET")
	}
	key := string(args[0])
	var nx, xx bool
	for _, opt := range args[2:] {
		switch strings.ToUpper(string(opt)) {
		case "NX":
			nx = true
		case "XX":
			xx = true
		default:
			return reply{}, fail(contract.RedisResponseError, "ERR syntax error")
		}
	}
	if nx && xx {
		return reply{}, fail(contract.RedisResponseError, "ERR syntax error")
	}

	_, isString := k.strings[key]
	_, isList := k.lists[key]
	exists := isString || isList
	if (nx && exists) || (xx && !exists) {
		return nilReply(), nil
	}
	delete(k.lists, key)
	k.strings[key] = append([]byte(nil), args[1]...)
	return okay(), nil
}

// clampRange converts inclusive redis indexes, possibly negative, to a
// half-open slice range.
func clampRange(start, stop, n int) (int, int) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	start = max(start, 0)
	stop = min(stop+1, n)
	if start >= stop {
		return 0, 0
	}
	return start, stop
}
