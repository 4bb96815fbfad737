package recfmt

// Span is a half-open (begin,end) offset pair into source text.
type Span struct {
	Begin int
	End   int
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int { return s.End - s.Begin }

// Text returns the substring of src the span denotes.
func (s Span) Text(src string) string { return src[s.Begin:s.End] }

// validIn reports whether the span fits inside a source of the given length.
func (s Span) validIn(length int) bool {
	return s.Begin >= 0 && s.Begin <= s.End && s.End <= length
}

// IsEscaped reports whether the character at pos is escaped: true exactly
// when the run of consecutive backslashes immediately before pos has odd
// length. It distinguishes `\"` (escaped) from `\\"` (the backslash is
// escaped, the quote is not). Position 0 and out-of-range positions are
// never escaped.
func IsEscaped(s string, pos int) bool {
	if pos <= 0 || pos >= len(s) {
		return false
	}
	n := 0
	for i := pos - 1; i >= 0 && s[i] == EscapeChar; i-- {
		n++
	}
	return n%2 == 1
}

// isEscapedBytes is the byte-buffer twin of IsEscaped, used by the
// materialized-buffer scan path on large inputs. Same truth table.
func isEscapedBytes(b []byte, pos int) bool {
	if pos <= 0 || pos >= len(b) {
		return false
	}
	n := 0
	for i := pos - 1; i >= 0 && b[i] == EscapeChar; i-- {
		n++
	}
	return n%2 == 1
}

// Unquote returns the interior span when both boundary characters are the
// given quote byte, otherwise the span unchanged. Only one layer is
// stripped.
func (s Span) Unquote(src string, quote byte) Span {
	if s.Len() >= 2 && src[s.Begin] == quote && src[s.End-1] == quote {
		return Span{Begin: s.Begin + 1, End: s.End - 1}
	}
	return s
}
