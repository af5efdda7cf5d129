package ddb_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/wippyai/wasm-functions/aws/auth"
	"github.com/wippyai/wasm-functions/aws/ddb"
	"github.com/wippyai/wasm-functions/devhost"
	"github.com/wippyai/wasm-functions/errors"
)

type user struct {
	ID    string
	Email string
	Age   int64
}

func (u user) MarshalItem() (ddb.Item, error) {
	return ddb.Item{"id": ddb.String(u.ID), "email": ddb.String(u.Email), "age": ddb.Number(u.Age)}, nil
}

func (u *user) UnmarshalItem(it ddb.Item) error {
	var err error
	get := func(name string) ddb.AttributeValue {
		v, e := it.Attribute(name)
		if e != nil && err == nil {
			err = e
		}
		return v
	}
	id, email, age := get("id"), get("email"), get("age")
	if err != nil {
		return err
	}
	if u.ID, err = id.AsString(); err != nil {
		return err
	}
	if u.Email, err = email.AsString(); err != nil {
		return err
	}
	u.Age, err = age.AsInt()
	return err
}

func newClient(t *testing.T) *ddb.Client {
	t.Helper()
	ctx := context.Background()
	h, err := devhost.New(devhost.WithConfig(&devhost.Config{Tables: []devhost.Table{
		{Name: "users", HashKey: "id"},
		{Name: "blobs", HashKey: "digest", RangeKey: "part"},
	}}))
	if err != nil {
		t.Fatalf("devhost.New: %v", err)
	}
	p, err := auth.New(h.Bindings()).NewProvider(ctx, "us-east-1", auth.Credentials{AccessKeyID: "AKID", SecretAccessKey: "secret"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	c, err := ddb.NewClientWith(ctx, h.Bindings(), p)
	if err != nil {
		t.Fatalf("NewClientWith: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
		_ = p.Close()
	})
	return c
}

func TestPutGet_Marshalers(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	in := user{ID: "u1", Email: "ada@example.com", Age: 36}
	if err := c.PutItemFrom(ctx, "users", in); err != nil {
		t.Fatalf("PutItemFrom: %v", err)
	}

	var out user
	ok, err := c.GetItemInto(ctx, "users", ddb.Hash("id", ddb.KeyString("u1")), &out, ddb.ConsistentRead())
	if err != nil || !ok {
		t.Fatalf("GetItemInto = %v, %v", ok, err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}

	ok, err = c.GetItemInto(ctx, "users", ddb.Hash("id", ddb.KeyString("u2")), &out)
	if err != nil || ok {
		t.Errorf("GetItemInto missing = %v, %v", ok, err)
	}
}

func TestPutGet_BinaryRangeKey(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)
	digest := []byte{0xde, 0xad, 0xbe, 0xef, 0x01}

	item := ddb.Item{
		"digest": ddb.Binary(digest),
		"part":   ddb.Number(2),
		"data":   ddb.Binary([]byte("chunk")),
		"meta":   ddb.Map(map[string]ddb.AttributeValue{"tags": ddb.StringSet("a", "b"), "gone": ddb.Null()}),
	}
	if err := c.PutItem(ctx, "blobs", item); err != nil {
		t.Fatalf("PutItem: %v", err)
	}

	got, ok, err := c.GetItem(ctx, "blobs", ddb.HashRange("digest", ddb.KeyBinary(digest), "part", ddb.KeyNumber(2)))
	if err != nil || !ok {
		t.Fatalf("GetItem = %v, %v", ok, err)
	}
	data, err := got["data"].AsBinary()
	if err != nil || !bytes.Equal(data, []byte("chunk")) {
		t.Errorf("data = %q, %v", data, err)
	}
	meta, err := got["meta"].AsMap()
	if err != nil || !meta["gone"].IsNull() {
		t.Errorf("meta = %v, %v", meta, err)
	}
	if tags, _ := meta["tags"].AsStrings(); len(tags) != 2 {
		t.Errorf("tags = %v", tags)
	}
}

func TestPutItem_Condition(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)
	onlyNew := ddb.WithCondition(ddb.Condition{
		Expression: "attribute_not_exists(#pk)",
		Names:      map[string]string{"#pk": "id"},
	})

	if err := c.PutItemFrom(ctx, "users", user{ID: "u1"}, onlyNew); err != nil {
		t.Fatalf("first put: %v", err)
	}
	err := c.PutItemFrom(ctx, "users", user{ID: "u1"}, onlyNew)
	if !errors.IsKind(err, errors.KindFailedPrecondition) {
		t.Errorf("second put = %v, want FailedPrecondition", err)
	}

	ifAge := ddb.WithCondition(ddb.Condition{
		Expression: "age = :age",
		Values:     ddb.Item{":age": ddb.Number(0)},
	})
	if err := c.PutItemFrom(ctx, "users", user{ID: "u1", Age: 1}, ifAge); err != nil {
		t.Errorf("versioned put: %v", err)
	}
}

func TestPutItem_UnknownTable(t *testing.T) {
	c := newClient(t)
	err := c.PutItem(context.Background(), "nope", ddb.Item{"id": ddb.String("x")})
	if !errors.IsKind(err, errors.KindMalformed) {
		t.Errorf("PutItem unknown table = %v, want Malformed", err)
	}
}

func TestAttributeValue_JSON(t *testing.T) {
	it := ddb.Item{
		"name": ddb.String("arthur"),
		"age":  ddb.Number(23),
		"raw":  ddb.Binary([]byte{0xff}),
		"tags": ddb.StringSet("a", "b"),
		"ok":   ddb.Bool(true),
	}
	s, err := it.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	want := `{"age":{"N":"23"},"name":{"S":"arthur"},"ok":{"BOOL":true},"raw":{"B":"/w"},"tags":{"SS":["a","b"]}}`
	if s != want {
		t.Errorf("JSON =\n%s\nwant\n%s", s, want)
	}

	parsed, err := ddb.ParseItem(s)
	if err != nil {
		t.Fatalf("ParseItem: %v", err)
	}
	if n, err := parsed["age"].AsInt(); err != nil || n != 23 {
		t.Errorf("age = %d, %v", n, err)
	}
	if _, err := parsed["age"].AsString(); !errors.IsKind(err, errors.KindMalformed) {
		t.Errorf("AsString on N = %v, want Malformed", err)
	}
	if _, err := parsed.Attribute("missing"); !errors.IsKind(err, errors.KindNotFound) {
		t.Errorf("Attribute(missing) = %v, want NotFound", err)
	}
}

func TestParseItem_Invalid(t *testing.T) {
	for _, s := range []string{
		`{"a":{"S":"x","N":"1"}}`,
		`{"a":{"Q":"x"}}`,
		`{"a":{}}`,
		`{"a":"plain"}`,
		`[`,
	} {
		if _, err := ddb.ParseItem(s); !errors.IsKind(err, errors.KindMalformed) {
			t.Errorf("ParseItem(%s) = %v, want Malformed", s, err)
		}
	}
}
