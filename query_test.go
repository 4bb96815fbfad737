package recfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryReachesSubCollections(t *testing.T) {
	c := NewCompositeRecord()
	require.NoError(t, c.Put("name", "alice"))
	require.NoError(t, c.PutRows("rows", []*ScalarRecord{
		mustScalar(t, "city", "tokyo"),
		mustScalar(t, "city", "osaka"),
	}))
	require.NoError(t, c.PutGrid("g", [][]string{{"a", "b"}, {"c", "d"}}))

	res, err := c.Query("rows.1.city")
	require.NoError(t, err)
	assert.Equal(t, "osaka", res.String())

	res, err = c.Query("g.1.0")
	require.NoError(t, err)
	assert.Equal(t, "c", res.String())

	res, err = c.Query("rows.#")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Int())
}

func TestQueryMissingPath(t *testing.T) {
	c := NewCompositeRecord()
	require.NoError(t, c.Put("a", "1"))

	res, err := c.Query("nope.deep")
	require.NoError(t, err)
	assert.False(t, res.Exists())
}

func TestQueryMany(t *testing.T) {
	c := NewCompositeRecord()
	require.NoError(t, c.Put("a", "1"))
	require.NoError(t, c.PutList("l", []string{"x", "y"}))

	results, err := c.QueryMany("a", "l.0", "l.#")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "1", results[0].String())
	assert.Equal(t, "x", results[1].String())
	assert.Equal(t, int64(2), results[2].Int())
}

func TestQueryFrozenRecord(t *testing.T) {
	c := NewCompositeRecord()
	require.NoError(t, c.Put("a", "1"))
	frozen := c.Freeze()

	res, err := frozen.Query("a")
	require.NoError(t, err)
	assert.Equal(t, "1", res.String())
}

func TestQueryPropagatesEncodeError(t *testing.T) {
	inner := NewCompositeRecord()
	require.NoError(t, inner.PutRows("rows", []*ScalarRecord{mustScalar(t, "a", "1")}))
	c := NewCompositeRecord()
	require.NoError(t, c.PutRecord("sub", inner))

	_, err := c.Query("sub")
	assert.ErrorIs(t, err, ErrStructuralFormat)
}
