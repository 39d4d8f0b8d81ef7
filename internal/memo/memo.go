// Package memo caches the results of deterministic operations per owning object.
//
// Every wrapper that memoizes (item resolver, section wrapper, catalog facade)
// owns its own Cache. Entries are keyed by operation name plus argument values
// and never expire; they are dropped only through Clear or ClearAll.
package memo

import (
	"fmt"
	"strings"

	"github.com/patrickmn/go-cache"
)

// keySep separates the operation name from its encoded arguments.
const keySep = "\x00"

// Cache holds memoized results for one owner.
type Cache struct {
	items *cache.Cache
}

// New returns an empty cache with no expiration and no janitor.
func New() *Cache {
	return &Cache{items: cache.New(cache.NoExpiration, 0)}
}

// Get returns the stored result of op for args, computing and storing it on a miss.
// Errors from compute are returned as-is and nothing is stored, so the next call
// computes again.
func Get[T any](c *Cache, op string, compute func() (T, error), args ...any) (T, error) {
	key := Key(op, args...)
	if v, ok := c.items.Get(key); ok {
		t, _ := v.(T)
		return t, nil
	}

	v, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	c.items.Set(key, v, cache.NoExpiration)
	return v, nil
}

// Value is Get for computations that cannot fail.
func Value[T any](c *Cache, op string, compute func() T, args ...any) T {
	v, _ := Get(c, op, func() (T, error) { return compute(), nil }, args...)
	return v
}

// Key encodes an operation and its arguments. Arguments are formatted with %#v
// so that 1 and "1" land on different keys.
func Key(op string, args ...any) string {
	if len(args) == 0 {
		return op
	}
	var b strings.Builder
	b.WriteString(op)
	for _, a := range args {
		b.WriteString(keySep)
		fmt.Fprintf(&b, "%#v", a)
	}
	return b.String()
}

// Clear drops every stored result of op, across all argument values.
func (c *Cache) Clear(op string) {
	prefix := op + keySep
	for k := range c.items.Items() {
		if k == op || strings.HasPrefix(k, prefix) {
			c.items.Delete(k)
		}
	}
}

// ClearAll drops everything the owner has cached.
func (c *Cache) ClearAll() {
	c.items.Flush()
}

// Len returns the number of stored results.
func (c *Cache) Len() int {
	return c.items.ItemCount()
}
