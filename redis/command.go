package redis

import (
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/encoding"
)

// Command is one command in a pipeline.
type Command struct {
	Name string
	Args [][]byte
}

// NewCommand builds an arbitrary command.
func NewCommand(name string, args ...[]byte) Command {
	return Command{Name: name, Args: args}
}

// With returns c with args appended.
func (c Command) With(args ...[]byte) Command {
	out := make([][]byte, 0, len(c.Args)+len(args))
	out = append(out, c.Args...)
	out = append(out, args...)
	return Command{Name: c.Name, Args: out}
}

// WithStrings returns c with string args appended.
func (c Command) WithStrings(args ...string) Command {
	bs := make([][]byte, len(args))
	for i, a := range args {
		bs[i] = []byte(a)
	}
	return c.With(bs...)
}

// WithValue appends v encoded with codec.
func WithValue[T any](c Command, v T, codec encoding.Codec[T]) (Command, error) {
	data, err := codec.Encode(v)
	if err != nil {
		return c, err
	}
	return c.With(data), nil
}

// GetCommand is GET key.
func GetCommand(key []byte) Command {
	return NewCommand("get", key)
}

// SetOption adds a condition to SET.
type SetOption func(*setConfig)

type setConfig struct {
	existence string
}

// IfExists only sets the key if it already exists (XX).
func IfExists() SetOption {
	return func(c *setConfig) { c.existence = "XX" }
}

// IfNotExists only sets the key if it does not exist yet (NX).
func IfNotExists() SetOption {
	return func(c *setConfig) { c.existence = "NX" }
}

// SetCommand is SET key value, with an optional existence condition.
func SetCommand(key, value []byte, opts ...SetOption) Command {
	cmd, _ := setCommand(key, value, opts)
	return cmd
}

func setCommand(key, value []byte, opts []SetOption) (Command, bool) {
	var cfg setConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	cmd := NewCommand("set", key, value)
	if cfg.existence != "" {
		cmd = cmd.WithStrings(cfg.existence)
	}
	return cmd, cfg.existence != ""
}

// DelCommand is DEL key [key ...].
func DelCommand(keys ...[]byte) Command {
	return NewCommand("del", keys...)
}

func wireCommands(cmds []Command) []contract.RedisCommand {
	out := make([]contract.RedisCommand, len(cmds))
	for i, c := range cmds {
		out[i] = contract.RedisCommand{Command: c.Name, Arguments: c.Args}
	}
	return out
}
