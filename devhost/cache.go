package devhost

import (
	"context"
	"sync"
	"time"

	"github.com/wippyai/wasm-functions/contract"
)

// MaxItemSize is the largest value the dev cache stores.
const MaxItemSize = 5 << 20

// Cache is an in-memory cache with per-item TTLs. A TTL of zero means the
// item never expires.
type Cache struct {
	items map[string]cacheItem
	lists map[string]*cacheList
	now   func() time.Time
	mu    sync.Mutex
}

type cacheItem struct {
	expires time.Time
	value   []byte
}

type cacheList struct {
	expires time.Time
	values  [][]byte
}

func newCache(now func() time.Time) *Cache {
	return &Cache{
		items: make(map[string]cacheItem),
		lists: make(map[string]*cacheList),
		now:   now,
	}
}

func (c *Cache) seed(key, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[string(key)] = cacheItem{value: value}
}

func (c *Cache) expiry(ttlMillis uint64) time.Time {
	if ttlMillis == 0 {
		return time.Time{}
	}
	return c.now().Add(time.Duration(ttlMillis) * time.Millisecond)
}

func (c *Cache) expired(t time.Time) bool {
	return !t.IsZero() && !c.now().Before(t)
}

func (c *Cache) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	if len(key) == 0 {
		return nil, false, fail(contract.CacheInvalidArgument, "key must not be empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[string(key)]
	if !ok {
		return nil, false, nil
	}
	if c.expired(it.expires) {
		delete(c.items, string(key))
		return nil, false, nil
	}
	return it.value, true, nil
}

func (c *Cache) Set(_ context.Context, key, value []byte, ttlMillis uint64) error {
	if len(key) == 0 {
		return fail(contract.CacheInvalidArgument, "key must not be empty")
	}
	if len(key)+len(value) > MaxItemSize {
		return fail(contract.CacheLimitExceeded, "item size %d exceeds %d bytes", len(key)+len(value), MaxItemSize)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[string(key)] = cacheItem{value: value, expires: c.expiry(ttlMillis)}
	return nil
}

func (c *Cache) ListPushFront(_ context.Context, req contract.ListPush) (uint32, error) {
	return c.push(req, true)
}

func (c *Cache) ListPushBack(_ context.Context, req contract.ListPush) (uint32, error) {
	return c.push(req, false)
}

func (c *Cache) push(req contract.ListPush, front bool) (uint32, error) {
	if len(req.Name) == 0 {
		return 0, fail(contract.CacheInvalidArgument, "list name must not be empty")
	}
	if len(req.Value) > MaxItemSize {
		return 0, fail(contract.CacheLimitExceeded, "value size %d exceeds %d bytes", len(req.Value), MaxItemSize)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	name := string(req.Name)
	l, ok := c.lists[name]
	if ok && c.expired(l.expires) {
		delete(c.lists, name)
		ok = false
	}
	if !ok {
		l = &cacheList{expires: c.expiry(req.TTLMillis)}
		c.lists[name] = l
	} else if req.RefreshTTL {
		l.expires = c.expiry(req.TTLMillis)
	}

	if front {
		l.values = append([][]byte{req.Value}, l.values...)
	} else {
		l.values = append(l.values, req.Value)
	}

	if n := int(req.TruncateTo); n > 0 && len(l.values) > n {
		if front {
			l.values = l.values[:n]
		} else {
			l.values = l.values[len(l.values)-n:]
		}
	}
	return uint32(len(l.values)), nil
}

func (c *Cache) ListPopFront(_ context.Context, name []byte) (contract.PopResponse, error) {
	return c.pop(name, true)
}

func (c *Cache) ListPopBack(_ context.Context, name []byte) (contract.PopResponse, error) {
	return c.pop(name, false)
}

func (c *Cache) pop(name []byte, front bool) (contract.PopResponse, error) {
	if len(name) == 0 {
		return contract.PopResponse{}, fail(contract.CacheInvalidArgument, "list name must not be empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.lists[string(name)]
	if !ok || c.expired(l.expires) || len(l.values) == 0 {
		delete(c.lists, string(name))
		return contract.PopResponse{Kind: contract.PopMissing}, nil
	}

	var v []byte
	if front {
		v, l.values = l.values[0], l.values[1:]
	} else {
		v, l.values = l.values[len(l.values)-1], l.values[:len(l.values)-1]
	}
	n := len(l.values)
	if n == 0 {
		delete(c.lists, string(name))
	}
	return contract.PopResponse{Kind: contract.PopFound, Value: v, ListLength: uint32(n)}, nil
}

// Len returns the number of live scalar items.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		if !c.expired(it.expires) {
			n++
		}
	}
	return n
}
