package ddb

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/wippyai/wasm-functions/encoding"
	"github.com/wippyai/wasm-functions/errors"
)

// binary is the base64 flavour DynamoDB JSON uses on the host.
var binary = base64.StdEncoding.WithPadding(base64.NoPadding)

// AttributeKind is the DynamoDB type tag of an AttributeValue.
type AttributeKind uint8

const (
	KindB AttributeKind = iota
	KindBOOL
	KindBS
	KindL
	KindM
	KindN
	KindNS
	KindNULL
	KindS
	KindSS

	attributeKindCount
)

var attributeTags = [...]string{
	KindB:    "B",
	KindBOOL: "BOOL",
	KindBS:   "BS",
	KindL:    "L",
	KindM:    "M",
	KindN:    "N",
	KindNS:   "NS",
	KindNULL: "NULL",
	KindS:    "S",
	KindSS:   "SS",
}

var _ = [1]struct{}{}[len(attributeTags)-int(attributeKindCount)]

func (k AttributeKind) String() string {
	if k < attributeKindCount {
		return attributeTags[k]
	}
	return fmt.Sprintf("AttributeKind(%d)", uint8(k))
}

// AttributeValue is one value in DynamoDB JSON form, e.g. {"S": "bob"}.
type AttributeValue struct {
	m       map[string]AttributeValue
	str     string
	strs    []string
	list    []AttributeValue
	Kind    AttributeKind
	boolean bool
}

func String(s string) AttributeValue { return AttributeValue{Kind: KindS, str: s} }

func Number(n int64) AttributeValue {
	return AttributeValue{Kind: KindN, str: strconv.FormatInt(n, 10)}
}

// NumberString holds a number in its decimal text form without parsing it.
func NumberString(n string) AttributeValue { return AttributeValue{Kind: KindN, str: n} }

func Binary(b []byte) AttributeValue {
	return AttributeValue{Kind: KindB, str: binary.EncodeToString(b)}
}

func Bool(b bool) AttributeValue { return AttributeValue{Kind: KindBOOL, boolean: b} }

func Null() AttributeValue { return AttributeValue{Kind: KindNULL, boolean: true} }

func List(values ...AttributeValue) AttributeValue {
	return AttributeValue{Kind: KindL, list: values}
}

func Map(m map[string]AttributeValue) AttributeValue {
	return AttributeValue{Kind: KindM, m: m}
}

func StringSet(values ...string) AttributeValue {
	return AttributeValue{Kind: KindSS, strs: values}
}

func NumberSet(values ...int64) AttributeValue {
	strs := make([]string, len(values))
	for i, n := range values {
		strs[i] = strconv.FormatInt(n, 10)
	}
	return AttributeValue{Kind: KindNS, strs: strs}
}

func BinarySet(values ...[]byte) AttributeValue {
	strs := make([]string, len(values))
	for i, b := range values {
		strs[i] = binary.EncodeToString(b)
	}
	return AttributeValue{Kind: KindBS, strs: strs}
}

func (v AttributeValue) mismatch(want string) error {
	return errors.InvalidInput(errors.PhaseDecode, "attribute is %s, not %s", v.Kind, want)
}

func (v AttributeValue) AsString() (string, error) {
	if v.Kind != KindS {
		return "", v.mismatch("a string")
	}
	return v.str, nil
}

func (v AttributeValue) AsInt() (int64, error) {
	if v.Kind != KindN {
		return 0, v.mismatch("a number")
	}
	n, err := strconv.ParseInt(v.str, 10, 64)
	if err != nil {
		return 0, errors.Malformed(errors.PhaseDecode, "invalid number "+strconv.Quote(v.str), err)
	}
	return n, nil
}

// AsNumber returns the decimal text of an N value.
func (v AttributeValue) AsNumber() (string, error) {
	if v.Kind != KindN {
		return "", v.mismatch("a number")
	}
	return v.str, nil
}

func (v AttributeValue) AsBinary() ([]byte, error) {
	if v.Kind != KindB {
		return nil, v.mismatch("binary")
	}
	b, err := binary.DecodeString(v.str)
	if err != nil {
		return nil, errors.Malformed(errors.PhaseDecode, "invalid base64", err)
	}
	return b, nil
}

func (v AttributeValue) AsBool() (bool, error) {
	if v.Kind != KindBOOL {
		return false, v.mismatch("a bool")
	}
	return v.boolean, nil
}

func (v AttributeValue) AsList() ([]AttributeValue, error) {
	if v.Kind != KindL {
		return nil, v.mismatch("a list")
	}
	return v.list, nil
}

func (v AttributeValue) AsMap() (map[string]AttributeValue, error) {
	if v.Kind != KindM {
		return nil, v.mismatch("a map")
	}
	return v.m, nil
}

// AsStrings returns the members of an SS, NS or BS value as stored.
func (v AttributeValue) AsStrings() ([]string, error) {
	switch v.Kind {
	case KindSS, KindNS, KindBS:
		return v.strs, nil
	}
	return nil, v.mismatch("a set")
}

func (v AttributeValue) IsNull() bool { return v.Kind == KindNULL }

func (v AttributeValue) payload() any {
	switch v.Kind {
	case KindB, KindN, KindS:
		return v.str
	case KindBOOL, KindNULL:
		return v.boolean
	case KindBS, KindNS, KindSS:
		if v.strs == nil {
			return []string{}
		}
		return v.strs
	case KindL:
		if v.list == nil {
			return []AttributeValue{}
		}
		return v.list
	case KindM:
		if v.m == nil {
			return map[string]AttributeValue{}
		}
		return v.m
	}
	return nil
}

func (v AttributeValue) MarshalJSON() ([]byte, error) {
	if v.Kind >= attributeKindCount {
		return nil, errors.InvalidInput(errors.PhaseEncode, "unknown attribute kind %d", uint8(v.Kind))
	}
	return encoding.API().Marshal(map[string]any{attributeTags[v.Kind]: v.payload()})
}

func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	var raw map[string]jsoniter.RawMessage
	if err := encoding.API().Unmarshal(data, &raw); err != nil {
		return errors.Malformed(errors.PhaseDecode, "attribute value is not an object", err)
	}
	if len(raw) != 1 {
		tags := make([]string, 0, len(raw))
		for k := range raw {
			tags = append(tags, k)
		}
		sort.Strings(tags)
		return errors.InvalidInput(errors.PhaseDecode, "attribute value needs exactly one type tag, got %v", tags)
	}

	for tag, body := range raw {
		kind, ok := kindOf(tag)
		if !ok {
			return errors.InvalidInput(errors.PhaseDecode, "unknown attribute type %q", tag)
		}
		out := AttributeValue{Kind: kind}
		var err error
		switch kind {
		case KindB, KindN, KindS:
			err = encoding.API().Unmarshal(body, &out.str)
		case KindBOOL, KindNULL:
			err = encoding.API().Unmarshal(body, &out.boolean)
		case KindBS, KindNS, KindSS:
			err = encoding.API().Unmarshal(body, &out.strs)
		case KindL:
			err = encoding.API().Unmarshal(body, &out.list)
		case KindM:
			err = encoding.API().Unmarshal(body, &out.m)
		}
		if err != nil {
			return errors.Malformed(errors.PhaseDecode, "invalid "+tag+" attribute", err)
		}
		*v = out
	}
	return nil
}

func kindOf(tag string) (AttributeKind, bool) {
	for i, t := range attributeTags {
		if t == tag {
			return AttributeKind(i), true
		}
	}
	return 0, false
}

// Item is a document in DynamoDB JSON form.
type Item map[string]AttributeValue

// ItemMarshaler converts a value into an Item.
type ItemMarshaler interface {
	MarshalItem() (Item, error)
}

// ItemUnmarshaler fills a value from an Item.
type ItemUnmarshaler interface {
	UnmarshalItem(Item) error
}

// Attribute returns the named attribute or a NotFound error.
func (it Item) Attribute(name string) (AttributeValue, error) {
	v, ok := it[name]
	if !ok {
		return AttributeValue{}, errors.NotFound(errors.PhaseDecode, "attribute "+strconv.Quote(name))
	}
	return v, nil
}

// ParseItem decodes an Item from DynamoDB JSON.
func ParseItem(s string) (Item, error) {
	var it Item
	if err := encoding.API().UnmarshalFromString(s, &it); err != nil {
		return nil, errors.Malformed(errors.PhaseDecode, "failed to deserialize host json as item", err)
	}
	return it, nil
}

// JSON encodes the item as DynamoDB JSON.
func (it Item) JSON() (string, error) {
	if it == nil {
		it = Item{}
	}
	s, err := encoding.API().MarshalToString(map[string]AttributeValue(it))
	if err != nil {
		return "", errors.Malformed(errors.PhaseEncode, "failed to serialize item as json", err)
	}
	return s, nil
}
