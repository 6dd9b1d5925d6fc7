package relic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	t.Parallel()
	c := NewMemoryCache()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", []byte("1"))
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestMemoryCacheDeletePrefix(t *testing.T) {
	t.Parallel()
	c := NewMemoryCache()
	c.Set(cacheKey("users", "SELECT 1", nil), []byte("x"))
	c.Set(cacheKey("users", "SELECT 2", nil), []byte("y"))
	c.Set(cacheKey("pets", "SELECT 1", nil), []byte("z"))
	require.Equal(t, 3, c.Len())

	c.DeletePrefix(tablePrefix("users"))
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get(cacheKey("pets", "SELECT 1", nil))
	assert.True(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCacheKeyNoPrefixCollision(t *testing.T) {
	t.Parallel()
	// "user" must not invalidate "users" entries.
	c := NewMemoryCache()
	c.Set(cacheKey("users", "SELECT 1", nil), []byte("x"))
	c.DeletePrefix(tablePrefix("user"))
	assert.Equal(t, 1, c.Len())
}

func TestCacheKeyDistinguishesBinds(t *testing.T) {
	t.Parallel()
	k1 := cacheKey("users", "SELECT * WHERE id = ?", []any{1})
	k2 := cacheKey("users", "SELECT * WHERE id = ?", []any{2})
	assert.NotEqual(t, k1, k2)
}

func TestEncodeDecodeRows(t *testing.T) {
	t.Parallel()
	in := &cachedRows{
		Columns: []string{"id", "name", "blob"},
		Rows: [][]any{
			{int64(1), "Bob", []byte{0x1, 0x2}},
			{int64(2), "Alice", nil},
		},
	}
	data, err := encodeRows(in)
	require.NoError(t, err)

	out, err := decodeRows(data)
	require.NoError(t, err)
	assert.Equal(t, in.Columns, out.Columns)
	require.Len(t, out.Rows, 2)

	cur := cursorFromCache(out)
	require.True(t, cur.Next())
	id, err := ValueAt[int64](cur, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	name, err := ValueAt[string](cur, 1)
	require.NoError(t, err)
	assert.Equal(t, "Bob", name)
	blob, err := ValueAt[[]byte](cur, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1, 0x2}, blob)
}

func TestEncodeDecodeRowsIntegerWidths(t *testing.T) {
	t.Parallel()
	// msgpack stores non-negative integers in unsigned wire formats and
	// decodes them back at exact width, so cached reads see uint8,
	// uint16, uint32 and uint64 values.
	in := &cachedRows{
		Columns: []string{"v"},
		Rows:    [][]any{{int64(200)}, {int64(1000)}, {int64(70000)}, {int64(5000000000)}},
	}
	data, err := encodeRows(in)
	require.NoError(t, err)
	out, err := decodeRows(data)
	require.NoError(t, err)

	cur := cursorFromCache(out)
	for _, want := range []int64{200, 1000, 70000, 5000000000} {
		require.True(t, cur.Next())
		got, err := ValueAt[int64](cur, 0)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.False(t, cur.Next())
}

func TestCacheLookupRequiresAllKeys(t *testing.T) {
	t.Parallel()
	c := NewMemoryCache()
	keys := []string{
		cacheKey("users", "SELECT 1", nil),
		cacheKey("pets", "SELECT 1", nil),
	}
	_, ok := cacheLookup(c, keys)
	assert.False(t, ok)

	c.Set(keys[0], []byte("x"))
	c.Set(keys[1], []byte("x"))
	data, ok := cacheLookup(c, keys)
	require.True(t, ok)
	assert.Equal(t, []byte("x"), data)

	// Invalidating either table breaks the lookup.
	c.DeletePrefix(tablePrefix("pets"))
	_, ok = cacheLookup(c, keys)
	assert.False(t, ok)
}

func TestDecodeRowsGarbage(t *testing.T) {
	t.Parallel()
	_, err := decodeRows([]byte("not msgpack"))
	require.Error(t, err)
}
