package recfmt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleFinderBasic(t *testing.T) {
	f := NewSimpleFinder("a=1&b=2&c=3", "&")
	spans, err := f.Spans()
	require.NoError(t, err)
	require.Len(t, spans, 3)
	assert.Equal(t, "a=1", spans[0].Text(f.Source()))
	assert.Equal(t, "b=2", spans[1].Text(f.Source()))
	assert.Equal(t, "c=3", spans[2].Text(f.Source()))
}

func TestSimpleFinderEmptySpans(t *testing.T) {
	// Consecutive, leading, and trailing delimiters all yield empty spans.
	f := NewSimpleFinder(",a,,b,", ",")
	texts, err := f.texts()
	require.NoError(t, err)
	assert.Equal(t, []string{"", "a", "", "b", ""}, texts)
}

func TestSimpleFinderMultiCharDelimiter(t *testing.T) {
	f := NewSimpleFinder("a::b::c", "::")
	texts, err := f.texts()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, texts)
}

func TestSimpleFinderQuoteOblivious(t *testing.T) {
	// The simple finder splits inside quotes; that is its contract.
	f := NewSimpleFinder(`"a,b"`, ",")
	texts, err := f.texts()
	require.NoError(t, err)
	assert.Equal(t, []string{`"a`, `b"`}, texts)
}

func TestSimpleFinderEmptyDelimiter(t *testing.T) {
	f := NewSimpleFinder("abc", "")
	texts, err := f.texts()
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, texts)
}

func TestSpanCacheComputesOnce(t *testing.T) {
	calls := 0
	c := &spanCache{src: "ab"}
	c.compute = func() ([]Span, error) {
		calls++
		return []Span{{Begin: 0, End: 2}}, nil
	}

	first, err := c.Spans()
	require.NoError(t, err)
	second, err := c.Spans()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "span computation must be memoized")

	// The returned slice is a copy; scribbling on it must not poison the
	// cache.
	first[0] = Span{Begin: 1, End: 1}
	third, err := c.Spans()
	require.NoError(t, err)
	assert.Equal(t, []Span{{Begin: 0, End: 2}}, third)
}

func TestSpanCacheConsistencyError(t *testing.T) {
	cases := []struct {
		name string
		span Span
	}{
		{"end beyond source", Span{Begin: 0, End: 5}},
		{"begin after end", Span{Begin: 2, End: 1}},
		{"negative begin", Span{Begin: -1, End: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &spanCache{src: "ab"}
			c.compute = func() ([]Span, error) { return []Span{tc.span}, nil }
			_, err := c.Spans()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConsistency)
			var ce *ConsistencyError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tc.span, ce.Span)
		})
	}
}
