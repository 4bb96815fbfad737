package recfmt

// jsonScanner tracks the three independent depth counters of the JSON
// subset scan: quote state, array nesting, object nesting. A split byte
// only takes effect when all three are zero.
type jsonScanner struct {
	quote bool
	arr   int
	obj   int
}

func (s *jsonScanner) step(c byte, escaped bool, pos int, split byte, splits *[]int) error {
	if c == DoubleQuoteChar && !escaped {
		s.quote = !s.quote
		return nil
	}
	if s.quote {
		return nil
	}
	switch c {
	case '[':
		s.arr++
	case ']':
		s.arr--
		if s.arr < 0 {
			return structuralErrorf("unmatched ']' at offset %d", pos)
		}
	case '{':
		s.obj++
	case '}':
		s.obj--
		if s.obj < 0 {
			return structuralErrorf("unmatched '}' at offset %d", pos)
		}
	case split:
		if s.arr == 0 && s.obj == 0 {
			*splits = append(*splits, pos)
		}
	}
	return nil
}

func (s *jsonScanner) finish() error {
	if s.quote {
		return structuralErrorf("unterminated string")
	}
	if s.arr != 0 || s.obj != 0 {
		return structuralErrorf("unbalanced brackets (array %+d, object %+d)", s.arr, s.obj)
	}
	return nil
}

// jsonSplit returns the offsets of every occurrence of split inside
// text[begin:end] that sits at zero quote, array, and object depth. Large
// regions are handed to the materialized-buffer twin; output is identical.
func jsonSplit(text string, begin, end int, split byte) ([]int, error) {
	if end-begin >= largeInputThreshold {
		return jsonSplitBytes([]byte(text), begin, end, split)
	}
	var (
		sc     jsonScanner
		splits []int
	)
	for i := begin; i < end; i++ {
		if err := sc.step(text[i], IsEscaped(text, i), i, split, &splits); err != nil {
			return nil, err
		}
	}
	return splits, sc.finish()
}

// jsonSplitBytes is the amortized-cost scan path for large inputs.
func jsonSplitBytes(buf []byte, begin, end int, split byte) ([]int, error) {
	var (
		sc     jsonScanner
		splits []int
	)
	for i := begin; i < end; i++ {
		if err := sc.step(buf[i], isEscapedBytes(buf, i), i, split, &splits); err != nil {
			return nil, err
		}
	}
	return splits, sc.finish()
}

func isBlankByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func trimBounds(s string, begin, end int) (int, int) {
	for begin < end && isBlankByte(s[begin]) {
		begin++
	}
	for end > begin && isBlankByte(s[end-1]) {
		end--
	}
	return begin, end
}

// bracketInterior validates that src, once trimmed, is enclosed in the
// given bracket pair and returns the interior bounds.
func bracketInterior(src string, open, close byte) (int, int, error) {
	begin, end := trimBounds(src, 0, len(src))
	if end-begin < 2 || src[begin] != open || src[end-1] != close {
		return 0, 0, structuralErrorf("input is not enclosed in %c...%c", open, close)
	}
	return begin + 1, end - 1, nil
}

// splitElements turns the comma offsets of a bracket interior into trimmed
// element spans. An all-blank interior yields zero spans.
func splitElements(src string, begin, end int) ([]Span, error) {
	b, e := trimBounds(src, begin, end)
	if b == e {
		return nil, nil
	}
	splits, err := jsonSplit(src, begin, end, CommaChar)
	if err != nil {
		return nil, err
	}
	spans := make([]Span, 0, len(splits)+1)
	prev := begin
	for _, pos := range append(splits, end) {
		sb, se := trimBounds(src, prev, pos)
		spans = append(spans, Span{Begin: sb, End: se})
		prev = pos + 1
	}
	return spans, nil
}

// JSONMapFinder splits the interior of a JSON object into one span per
// key-value entry. The trimmed input must be {...}; an all-blank interior
// yields zero spans; anything else malformed raises StructuralFormatError.
type JSONMapFinder struct {
	spanCache
}

func NewJSONMapFinder(src string) *JSONMapFinder {
	f := &JSONMapFinder{}
	f.src = src
	f.compute = f.findSpans
	return f
}

func (f *JSONMapFinder) findSpans() ([]Span, error) {
	begin, end, err := bracketInterior(f.src, '{', '}')
	if err != nil {
		return nil, err
	}
	return splitElements(f.src, begin, end)
}

// JSONArrayFinder splits the interior of a JSON array into one span per
// element. Same enclosure and blank rules as JSONMapFinder, for [...].
type JSONArrayFinder struct {
	spanCache
}

func NewJSONArrayFinder(src string) *JSONArrayFinder {
	f := &JSONArrayFinder{}
	f.src = src
	f.compute = f.findSpans
	return f
}

func (f *JSONArrayFinder) findSpans() ([]Span, error) {
	begin, end, err := bracketInterior(f.src, '[', ']')
	if err != nil {
		return nil, err
	}
	return splitElements(f.src, begin, end)
}

// JSONKeyValueFinder splits one object entry at its first unescaped,
// unnested colon into a (key, value) span pair. A missing colon or a blank
// key yields zero spans; the caller skips the entry.
type JSONKeyValueFinder struct {
	spanCache
}

func NewJSONKeyValueFinder(src string) *JSONKeyValueFinder {
	f := &JSONKeyValueFinder{}
	f.src = src
	f.compute = f.findSpans
	return f
}

func (f *JSONKeyValueFinder) findSpans() ([]Span, error) {
	splits, err := jsonSplit(f.src, 0, len(f.src), ColonChar)
	if err != nil {
		return nil, err
	}
	if len(splits) == 0 {
		return nil, nil
	}
	colon := splits[0]
	kb, ke := trimBounds(f.src, 0, colon)
	key := Span{Begin: kb, End: ke}.Unquote(f.src, DoubleQuoteChar)
	if key.Len() == 0 {
		return nil, nil
	}
	vb, ve := trimBounds(f.src, colon+1, len(f.src))
	return []Span{
		{Begin: kb, End: ke},
		{Begin: vb, End: ve},
	}, nil
}
