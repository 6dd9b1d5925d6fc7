package relic

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/relic/schema"
)

func TestConvert(t *testing.T) {
	t.Parallel()
	id := uuid.New()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("int64", func(t *testing.T) {
		t.Parallel()
		v, err := convert[int64](int64(7))
		require.NoError(t, err)
		assert.Equal(t, int64(7), v)
		v, err = convert[int64](int(7))
		require.NoError(t, err)
		assert.Equal(t, int64(7), v)
		v, err = convert[int64](uint64(7))
		require.NoError(t, err)
		assert.Equal(t, int64(7), v)
		// The cache decodes non-negative integers at exact unsigned width.
		v, err = convert[int64](uint8(200))
		require.NoError(t, err)
		assert.Equal(t, int64(200), v)
		v, err = convert[int64](uint16(1000))
		require.NoError(t, err)
		assert.Equal(t, int64(1000), v)
		v, err = convert[int64](uint32(70000))
		require.NoError(t, err)
		assert.Equal(t, int64(70000), v)
	})

	t.Run("int", func(t *testing.T) {
		t.Parallel()
		v, err := convert[int](int64(7))
		require.NoError(t, err)
		assert.Equal(t, 7, v)
		v, err = convert[int](uint16(1000))
		require.NoError(t, err)
		assert.Equal(t, 1000, v)
		v, err = convert[int](uint32(70000))
		require.NoError(t, err)
		assert.Equal(t, 70000, v)
	})

	t.Run("float64", func(t *testing.T) {
		t.Parallel()
		v, err := convert[float64](float32(1.5))
		require.NoError(t, err)
		assert.Equal(t, float64(1.5), v)
		v, err = convert[float64](int64(2))
		require.NoError(t, err)
		assert.Equal(t, float64(2), v)
	})

	t.Run("string", func(t *testing.T) {
		t.Parallel()
		v, err := convert[string]([]byte("hi"))
		require.NoError(t, err)
		assert.Equal(t, "hi", v)
	})

	t.Run("bool", func(t *testing.T) {
		t.Parallel()
		v, err := convert[bool](int64(1))
		require.NoError(t, err)
		assert.True(t, v)
		v, err = convert[bool](int64(0))
		require.NoError(t, err)
		assert.False(t, v)
	})

	t.Run("time", func(t *testing.T) {
		t.Parallel()
		v, err := convert[time.Time](now)
		require.NoError(t, err)
		assert.Equal(t, now, v)
		v, err = convert[time.Time]("2026-08-30 12:00:00")
		require.NoError(t, err)
		assert.Equal(t, now, v.UTC())
	})

	t.Run("uuid", func(t *testing.T) {
		t.Parallel()
		v, err := convert[uuid.UUID](id.String())
		require.NoError(t, err)
		assert.Equal(t, id, v)
	})

	t.Run("mismatch", func(t *testing.T) {
		t.Parallel()
		_, err := convert[int64]("not a number")
		require.Error(t, err)
		var ce *ConversionError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "int64", ce.Target)
	})
}

func TestCachedCursor(t *testing.T) {
	t.Parallel()
	p := &cachedRows{
		Columns: []string{"id", "name"},
		Rows: [][]any{
			{int64(1), "Bob"},
			{int64(2), "Alice"},
		},
	}
	cur := cursorFromCache(p)
	assert.Equal(t, []string{"id", "name"}, cur.Columns())

	require.True(t, cur.Next())
	id, err := ValueAt[int64](cur, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	require.True(t, cur.Next())
	name, err := ValueAt[string](cur, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)

	assert.False(t, cur.Next())
	assert.NoError(t, cur.Err())
	assert.NoError(t, cur.Close())
	assert.NoError(t, cur.Close())
	assert.False(t, cur.Next())
}

func TestNullValue(t *testing.T) {
	t.Parallel()
	age := schema.Int64("age").Nillable()
	cur := cursorFromCache(&cachedRows{
		Columns: []string{"age"},
		Rows:    [][]any{{nil}, {int64(30)}},
	})

	require.True(t, cur.Next())
	v, err := NullValue(cur, age)
	require.NoError(t, err)
	assert.False(t, v.Valid)

	require.True(t, cur.Next())
	v, err = NullValue(cur, age)
	require.NoError(t, err)
	require.True(t, v.Valid)
	assert.Equal(t, int64(30), v.V)
}

func TestCursorValueAtBounds(t *testing.T) {
	t.Parallel()
	cur := cursorFromCache(&cachedRows{Columns: []string{"id"}, Rows: [][]any{{int64(1)}}})
	require.True(t, cur.Next())
	_, err := ValueAt[int64](cur, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestCursorUnknownColumn(t *testing.T) {
	t.Parallel()
	cur := cursorFromCache(&cachedRows{Columns: []string{"id"}, Rows: [][]any{{int64(1)}}})
	require.True(t, cur.Next())
	_, err := cur.columnIndex("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no column "missing"`)
}
