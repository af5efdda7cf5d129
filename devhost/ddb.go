package devhost

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/hashicorp/go-memdb"

	"github.com/wippyai/wasm-functions/aws/ddb"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/resource"
)

const itemsTable = "items"

var ddbSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		itemsTable: {
			Name: itemsTable,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:   "id",
					Unique: true,
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "Table"},
							&memdb.StringFieldIndex{Field: "Key"},
						},
					},
				},
				"table": {
					Name:    "table",
					Indexer: &memdb.StringFieldIndex{Field: "Table"},
				},
			},
		},
	},
}

type storedItem struct {
	Table string
	Key   string
	JSON  string
}

// DDB is a document store over go-memdb. Only tables declared in the
// config exist; each item is keyed by the canonical form of its primary
// key attributes.
type DDB struct {
	table  *resource.Table
	db     *memdb.MemDB
	tables map[string]Table
}

func newDDB(table *resource.Table, tables []Table) (*DDB, error) {
	db, err := memdb.NewMemDB(ddbSchema)
	if err != nil {
		return nil, err
	}
	d := &DDB{table: table, db: db, tables: make(map[string]Table, len(tables))}
	for _, t := range tables {
		d.tables[t.Name] = t
	}
	return d, nil
}

// Items returns the number of items stored in name.
func (d *DDB) Items(name string) int {
	txn := d.db.Txn(false)
	it, err := txn.Get(itemsTable, "table", name)
	if err != nil {
		return 0
	}
	n := 0
	for obj := it.Next(); obj != nil; obj = it.Next() {
		n++
	}
	return n
}

func (d *DDB) ConstructorClient(_ context.Context, provider contract.Handle) (contract.Handle, error) {
	return constructClient(d.table, resource.TypeDDBClient, provider, contract.DDBMalformed)
}

func (d *DDB) MethodClientGetItem(_ context.Context, self contract.Handle, req contract.GetItemRequest) (contract.GetItemResponse, error) {
	if _, err := lookupClient(d.table, resource.TypeDDBClient, self, contract.DDBMalformed); err != nil {
		return contract.GetItemResponse{}, err
	}
	schema, err := d.schema(req.TableName)
	if err != nil {
		return contract.GetItemResponse{}, err
	}
	key, err := schema.keyFromAttributes(req.Key)
	if err != nil {
		return contract.GetItemResponse{}, err
	}

	obj, err := d.db.Txn(false).First(itemsTable, "id", req.TableName, key)
	if err != nil {
		return contract.GetItemResponse{}, fail(contract.DDBOther, "%v", err)
	}
	if obj == nil {
		return contract.GetItemResponse{}, nil
	}
	return contract.GetItemResponse{Found: true, Item: contract.Item{JSON: obj.(*storedItem).JSON}}, nil
}

func (d *DDB) MethodClientPutItem(_ context.Context, self contract.Handle, req contract.PutItemRequest) error {
	if _, err := lookupClient(d.table, resource.TypeDDBClient, self, contract.DDBMalformed); err != nil {
		return err
	}
	schema, err := d.schema(req.TableName)
	if err != nil {
		return err
	}
	item, err := ddb.ParseItem(req.Item.JSON)
	if err != nil {
		return fail(contract.DDBMalformed, "invalid item: %v", err)
	}
	key, err := schema.keyFromItem(item)
	if err != nil {
		return err
	}

	txn := d.db.Txn(true)
	defer txn.Abort()

	if req.Condition != nil {
		existing, err := txn.First(itemsTable, "id", req.TableName, key)
		if err != nil {
			return fail(contract.DDBOther, "%v", err)
		}
		var current ddb.Item
		if existing != nil {
			if current, err = ddb.ParseItem(existing.(*storedItem).JSON); err != nil {
				return fail(contract.DDBOther, "stored item: %v", err)
			}
		}
		if err := checkCondition(*req.Condition, current); err != nil {
			return err
		}
	}

	if err := txn.Insert(itemsTable, &storedItem{Table: req.TableName, Key: key, JSON: req.Item.JSON}); err != nil {
		return fail(contract.DDBOther, "%v", err)
	}
	txn.Commit()
	return nil
}

func (d *DDB) ResourceDropClient(_ context.Context, self contract.Handle) error {
	return dropClient(d.table, resource.TypeDDBClient, self, contract.DDBMalformed)
}

func (d *DDB) schema(name string) (Table, error) {
	t, ok := d.tables[name]
	if !ok {
		return Table{}, fail(contract.DDBMalformed, "requested resource not found: table %q", name)
	}
	return t, nil
}

func (t Table) keyNames() []string {
	if t.RangeKey == "" {
		return []string{t.HashKey}
	}
	return []string{t.HashKey, t.RangeKey}
}

func (t Table) keyFromAttributes(attrs []contract.KeyAttribute) (string, error) {
	names := t.keyNames()
	if len(attrs) != len(names) {
		return "", fail(contract.DDBMalformed, "table %q expects key %v, got %d attributes", t.Name, names, len(attrs))
	}
	parts := make([]string, len(names))
	for i, name := range names {
		var found bool
		for _, a := range attrs {
			if a.Name != name {
				continue
			}
			part, err := keyPart(a.Value)
			if err != nil {
				return "", err
			}
			parts[i], found = part, true
		}
		if !found {
			return "", fail(contract.DDBMalformed, "missing key attribute %q", name)
		}
	}
	return strings.Join(parts, "|"), nil
}

func (t Table) keyFromItem(item ddb.Item) (string, error) {
	names := t.keyNames()
	parts := make([]string, len(names))
	for i, name := range names {
		v, ok := item[name]
		if !ok {
			return "", fail(contract.DDBMalformed, "item is missing key attribute %q", name)
		}
		var err error
		switch v.Kind {
		case ddb.KindS:
			s, _ := v.AsString()
			parts[i] = "S:" + s
		case ddb.KindN:
			n, _ := v.AsNumber()
			parts[i] = "N:" + n
		case ddb.KindB:
			var b []byte
			b, err = v.AsBinary()
			parts[i] = "B:" + hex.EncodeToString(b)
		default:
			return "", fail(contract.DDBMalformed, "key attribute %q has type %s", name, v.Kind)
		}
		if err != nil {
			return "", fail(contract.DDBMalformed, "key attribute %q: %v", name, err)
		}
	}
	return strings.Join(parts, "|"), nil
}

func keyPart(v contract.KeyValue) (string, error) {
	switch v.Kind {
	case contract.KeyValueS:
		return "S:" + v.S, nil
	case contract.KeyValueN:
		return "N:" + v.N, nil
	case contract.KeyValueB:
		b, err := base64.RawStdEncoding.DecodeString(v.B)
		if err != nil {
			return "", fail(contract.DDBMalformed, "invalid binary key: %v", err)
		}
		return "B:" + hex.EncodeToString(b), nil
	}
	return "", fail(contract.DDBMalformed, "unknown key value kind %d", v.Kind)
}

// checkCondition evaluates clauses joined by AND. Supported clauses are
// attribute_exists(a), attribute_not_exists(a), a = :v and a <> :v.
func checkCondition(cond contract.Condition, current ddb.Item) error {
	names := make(map[string]string, len(cond.Names))
	for _, h := range cond.Names {
		names[h.Name] = h.Value
	}
	var values ddb.Item
	if cond.Values != "" {
		var err error
		if values, err = ddb.ParseItem(cond.Values); err != nil {
			return fail(contract.DDBMalformed, "invalid expression attribute values: %v", err)
		}
	}
	resolve := func(ref string) (string, error) {
		ref = strings.TrimSpace(ref)
		if !strings.HasPrefix(ref, "#") {
			return ref, nil
		}
		name, ok := names[ref]
		if !ok {
			return "", fail(contract.DDBMalformed, "undefined expression attribute name %s", ref)
		}
		return name, nil
	}

	for _, clause := range strings.Split(cond.Expression, " AND ") {
		clause = strings.TrimSpace(clause)
		var ok bool
		switch {
		case strings.HasPrefix(clause, "attribute_exists(") && strings.HasSuffix(clause, ")"):
			name, err := resolve(clause[len("attribute_exists(") : len(clause)-1])
			if err != nil {
				return err
			}
			_, ok = current[name]
		case strings.HasPrefix(clause, "attribute_not_exists(") && strings.HasSuffix(clause, ")"):
			name, err := resolve(clause[len("attribute_not_exists(") : len(clause)-1])
			if err != nil {
				return err
			}
			_, exists := current[name]
			ok = !exists
		default:
			op := " = "
			if strings.Contains(clause, " <> ") {
				op = " <> "
			}
			left, right, found := strings.Cut(clause, op)
			if !found {
				return fail(contract.DDBMalformed, "unsupported condition %q", clause)
			}
			name, err := resolve(left)
			if err != nil {
				return err
			}
			want, has := values[strings.TrimSpace(right)]
			if !has {
				return fail(contract.DDBMalformed, "undefined expression attribute value %s", strings.TrimSpace(right))
			}
			got, exists := current[name]
			equal := exists && sameValue(got, want)
			ok = equal == (op == " = ")
		}
		if !ok {
			return fail(contract.DDBConditionFailed, "the conditional request failed")
		}
	}
	return nil
}

func sameValue(a, b ddb.AttributeValue) bool {
	x, err1 := a.MarshalJSON()
	y, err2 := b.MarshalJSON()
	return err1 == nil && err2 == nil && string(x) == string(y)
}
