package ddb

import (
	"strconv"

	"github.com/wippyai/wasm-functions/contract"
)

// KeyValue is a key attribute value: a string, a number or bytes.
type KeyValue struct {
	v contract.KeyValue
}

func KeyString(s string) KeyValue {
	return KeyValue{v: contract.KeyValue{Kind: contract.KeyValueS, S: s}}
}

func KeyNumber(n int64) KeyValue {
	return KeyValue{v: contract.KeyValue{Kind: contract.KeyValueN, N: strconv.FormatInt(n, 10)}}
}

func KeyBinary(b []byte) KeyValue {
	return KeyValue{v: contract.KeyValue{Kind: contract.KeyValueB, B: binary.EncodeToString(b)}}
}

// Key is a primary key: a hash key, optionally with a range key.
type Key struct {
	attrs []contract.KeyAttribute
}

// Hash returns a key made of a single hash attribute.
func Hash(name string, value KeyValue) Key {
	return Key{attrs: []contract.KeyAttribute{{Name: name, Value: value.v}}}
}

// HashRange returns a composite key.
func HashRange(hashName string, hashValue KeyValue, rangeName string, rangeValue KeyValue) Key {
	return Key{attrs: []contract.KeyAttribute{
		{Name: hashName, Value: hashValue.v},
		{Name: rangeName, Value: rangeValue.v},
	}}
}

// Attributes returns the key in wire form.
func (k Key) Attributes() []contract.KeyAttribute { return k.attrs }
