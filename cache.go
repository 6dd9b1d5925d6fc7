package relic

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Cache is the result-cache backend of read scopes. Keys are prefixed
// with the queried table name, so write commits can invalidate all
// entries of the tables they touched.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
	DeletePrefix(prefix string)
	Clear()
}

// MemoryCache is an in-process Cache implementation. It is safe for
// concurrent use and never evicts on its own; entries live until a
// write invalidates their table prefix or Clear is called.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryCache returns an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

// Get returns the cached value for key.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Set stores the value under key.
func (c *MemoryCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Delete removes the entry for key.
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// DeletePrefix removes all entries whose key starts with prefix.
func (c *MemoryCache) DeletePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// Clear removes all entries.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cachedRows is the encoded payload of one cached result set.
type cachedRows struct {
	Columns []string `msgpack:"c"`
	Rows    [][]any  `msgpack:"r"`
}

func encodeRows(p *cachedRows) ([]byte, error) {
	return msgpack.Marshal(p)
}

func decodeRows(data []byte) (*cachedRows, error) {
	p := &cachedRows{}
	if err := msgpack.Unmarshal(data, p); err != nil {
		return nil, err
	}
	return p, nil
}

// cacheKey builds the cache key of a compiled query. The table prefix
// is terminated with a NUL so table names never collide on prefixes.
func cacheKey(table, query string, args []any) string {
	var sb strings.Builder
	sb.WriteString(table)
	sb.WriteByte(0)
	sb.WriteString(query)
	sb.WriteByte(0)
	fmt.Fprintf(&sb, "%v", args)
	return sb.String()
}

func tablePrefix(table string) string {
	return table + "\x00"
}

// cacheLookup returns the payload only when every key is present. A
// multi-table query is stored once per table; a missing copy means one
// of its tables was written since the entry was stored.
func cacheLookup(c Cache, keys []string) ([]byte, bool) {
	var data []byte
	for i, key := range keys {
		v, ok := c.Get(key)
		if !ok {
			return nil, false
		}
		if i == 0 {
			data = v
		}
	}
	return data, true
}
