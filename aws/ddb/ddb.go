// Package ddb reads and writes DynamoDB items through the host.
//
// Items cross the boundary as DynamoDB JSON strings:
//
//	{"name": {"S": "arthur"}, "age": {"N": "23"}, "tags": {"SS": ["a", "b"]}}
package ddb

import (
	"context"
	"sort"

	"github.com/wippyai/wasm-functions/aws/auth"
	"github.com/wippyai/wasm-functions/bindings"
	"github.com/wippyai/wasm-functions/contract"
	"github.com/wippyai/wasm-functions/errors"
	"github.com/wippyai/wasm-functions/resource"
)

const capability = "aws-ddb"

// Client is a DynamoDB client resource. It borrows its credentials
// provider until released.
type Client struct {
	ddb   contract.DDB
	owner *resource.Owner
}

// NewClient creates a client on the installed bindings.
func NewClient(ctx context.Context, provider *auth.Provider) (*Client, error) {
	return NewClientWith(ctx, bindings.Current(), provider)
}

// NewClientWith creates a client on b.
func NewClientWith(ctx context.Context, b *contract.Bindings, provider *auth.Provider) (*Client, error) {
	h, err := bindings.Require(b.DDB, capability)
	if err != nil {
		return nil, err
	}
	owner, err := provider.Derive(ctx, resource.TypeDDBClient, capability, h.ConstructorClient, h.ResourceDropClient)
	if err != nil {
		return nil, err
	}
	return &Client{ddb: h, owner: owner}, nil
}

// GetOption adjusts a get-item request.
type GetOption func(*contract.GetItemRequest)

// ConsistentRead requests a strongly consistent read.
func ConsistentRead() GetOption {
	return func(r *contract.GetItemRequest) { r.ConsistentRead = true }
}

// GetItem reads the item stored under key. ok is false when there is none.
func (c *Client) GetItem(ctx context.Context, table string, key Key, opts ...GetOption) (Item, bool, error) {
	self, done, err := c.owner.Borrow()
	if err != nil {
		return nil, false, err
	}
	defer done()

	req := contract.GetItemRequest{TableName: table, Key: key.Attributes()}
	for _, opt := range opts {
		opt(&req)
	}
	resp, err := c.ddb.MethodClientGetItem(ctx, self, req)
	if err != nil {
		return nil, false, errors.Host(capability, "get-item", err)
	}
	if !resp.Found {
		return nil, false, nil
	}
	it, err := ParseItem(resp.Item.JSON)
	if err != nil {
		return nil, false, err
	}
	return it, true, nil
}

// GetItemInto reads the item under key into dst.
func (c *Client) GetItemInto(ctx context.Context, table string, key Key, dst ItemUnmarshaler, opts ...GetOption) (bool, error) {
	it, ok, err := c.GetItem(ctx, table, key, opts...)
	if err != nil || !ok {
		return ok, err
	}
	return true, dst.UnmarshalItem(it)
}

// PutOption adjusts a put-item request.
type PutOption func(*putConfig)

type putConfig struct {
	condition *Condition
}

// Condition guards a put. Values are referenced from Expression as
// ":name" placeholders, Names as "#name".
type Condition struct {
	Names      map[string]string
	Values     Item
	Expression string
}

// WithCondition makes the put fail with a FailedPrecondition error when
// the condition does not hold.
func WithCondition(cond Condition) PutOption {
	return func(p *putConfig) { p.condition = &cond }
}

// PutItem stores item in table, replacing any item with the same key.
func (c *Client) PutItem(ctx context.Context, table string, item Item, opts ...PutOption) error {
	var cfg putConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	body, err := item.JSON()
	if err != nil {
		return err
	}
	req := contract.PutItemRequest{TableName: table, Item: contract.Item{JSON: body}}
	if cfg.condition != nil {
		cond, err := cfg.condition.wire()
		if err != nil {
			return err
		}
		req.Condition = &cond
	}

	self, done, err := c.owner.Borrow()
	if err != nil {
		return err
	}
	defer done()
	return errors.Host(capability, "put-item", c.ddb.MethodClientPutItem(ctx, self, req))
}

// PutItemFrom marshals src and stores it.
func (c *Client) PutItemFrom(ctx context.Context, table string, src ItemMarshaler, opts ...PutOption) error {
	it, err := src.MarshalItem()
	if err != nil {
		return err
	}
	return c.PutItem(ctx, table, it, opts...)
}

// Release drops the client and returns its borrow on the provider.
func (c *Client) Release(ctx context.Context) error { return c.owner.Release(ctx) }

func (c *Client) Close() error { return c.owner.Close() }

func (c Condition) wire() (contract.Condition, error) {
	values, err := c.Values.JSON()
	if err != nil {
		return contract.Condition{}, err
	}
	names := make([]contract.Header, 0, len(c.Names))
	for k, v := range c.Names {
		names = append(names, contract.Header{Name: k, Value: v})
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Name < names[j].Name })
	return contract.Condition{Expression: c.Expression, Names: names, Values: values}, nil
}
