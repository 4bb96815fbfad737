package recfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeURLScalarsAndLists(t *testing.T) {
	c := NewCompositeRecord()
	require.NoError(t, c.Put("a", "1"))
	require.NoError(t, c.PutList("b", []string{"x", "y"}))

	assert.Equal(t, "a=1&b[]=x&b[]=y", c.EncodeURL())
}

func TestEncodeURLPercentRules(t *testing.T) {
	c := NewCompositeRecord()
	require.NoError(t, c.Put("q", "a b*c+d/e~f"))

	// Space is %20 (never "+"), '*' is %2A, '+' and '/' are escaped,
	// '~' is unreserved.
	assert.Equal(t, "q=a%20b%2Ac%2Bd%2Fe~f", c.EncodeURL())
}

func TestEncodeURLOmitsDeepKinds(t *testing.T) {
	c := NewCompositeRecord()
	require.NoError(t, c.Put("a", "1"))
	require.NoError(t, c.PutRecord("r", NewCompositeRecord()))
	require.NoError(t, c.PutRows("rows", nil))
	require.NoError(t, c.PutGrid("g", nil))
	require.NoError(t, c.Put("b", "2"))

	assert.Equal(t, "a=1&b=2", c.EncodeURL())
}

func TestEncodeURLNullAsBareKey(t *testing.T) {
	c := NewCompositeRecord()
	require.NoError(t, c.PutNull("n"))
	require.NoError(t, c.Put("e", ""))

	assert.Equal(t, "n&e=", c.EncodeURL())

	back, err := DecodeURL(c.EncodeURL(), CodecOpts{})
	require.NoError(t, err)
	isNull, err := back.IsNull("n")
	require.NoError(t, err)
	assert.True(t, isNull)
	isNull, err = back.IsNull("e")
	require.NoError(t, err)
	assert.False(t, isNull)
}

func TestDecodeURLScenario(t *testing.T) {
	rec, err := DecodeURL("a=1&b[]=x&b[]=y", CodecOpts{})
	require.NoError(t, err)

	a, err := rec.String("a")
	require.NoError(t, err)
	assert.Equal(t, "1", a)

	b, err := rec.List("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, b)
	assert.Equal(t, []string{"a", "b"}, rec.AllKeys())
}

func TestDecodeURLPercentDecoding(t *testing.T) {
	rec, err := DecodeURL("q=a%20b%2Ac&plus=1+1", CodecOpts{})
	require.NoError(t, err)

	q, _ := rec.String("q")
	assert.Equal(t, "a b*c", q)
	// '+' is a literal plus in this contract, not a space.
	plus, _ := rec.String("plus")
	assert.Equal(t, "1+1", plus)
}

func TestDecodeURLKeyKindCollision(t *testing.T) {
	_, err := DecodeURL("a=1&a[]=2", CodecOpts{})
	assert.ErrorIs(t, err, ErrStructuralFormat)

	_, err = DecodeURL("a[]=1&a=2", CodecOpts{})
	assert.ErrorIs(t, err, ErrStructuralFormat)
}

func TestDecodeURLBadPercentEscape(t *testing.T) {
	_, err := DecodeURL("a=%zz", CodecOpts{})
	assert.ErrorIs(t, err, ErrValueFormat)

	_, err = DecodeURL("a=%2", CodecOpts{})
	assert.ErrorIs(t, err, ErrValueFormat)
}

func TestDecodeURLEmptyAndSeparators(t *testing.T) {
	rec, err := DecodeURL("", CodecOpts{})
	require.NoError(t, err)
	assert.Zero(t, rec.TotalLen())

	rec, err = DecodeURL("a=1&&b=2", CodecOpts{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rec.AllKeys())
}

func TestURLRoundTrip(t *testing.T) {
	c := NewCompositeRecord()
	require.NoError(t, c.Put("name", "alice smith"))
	require.NoError(t, c.PutList("tag", []string{"a&b", "c=d"}))
	require.NoError(t, c.PutNull("gone"))

	back, err := DecodeURL(c.EncodeURL(), CodecOpts{})
	require.NoError(t, err)

	name, _ := back.String("name")
	assert.Equal(t, "alice smith", name)
	tags, err := back.List("tag")
	require.NoError(t, err)
	assert.Equal(t, []string{"a&b", "c=d"}, tags)
	isNull, err := back.IsNull("gone")
	require.NoError(t, err)
	assert.True(t, isNull)
}
