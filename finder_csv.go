package recfmt

import "strings"

// CSVFinder splits one physical CSV line on commas outside unescaped double
// quotes. Unquoted fields have leading and trailing blanks trimmed; quoted
// fields keep their interior verbatim, with the surrounding quote layer
// stripped from the span.
//
// A line may end inside an open quote (a multi-line quoted field). The
// finder does not treat that as an error: UnclosedQuote reports the state
// so the caller can fetch the next physical line, join with a line feed,
// and scan a fresh finder over the merged text.
type CSVFinder struct {
	spanCache
	unclosed bool
}

// NewCSVFinder returns a finder over one physical line of CSV text.
func NewCSVFinder(src string) *CSVFinder {
	f := &CSVFinder{}
	f.src = src
	f.compute = f.findSpans
	return f
}

func (f *CSVFinder) findSpans() ([]Span, error) {
	var spans []Span
	begin := 0
	inQuote := false
	for i := 0; i < len(f.src); i++ {
		switch c := f.src[i]; {
		case c == DoubleQuoteChar && !IsEscaped(f.src, i):
			inQuote = !inQuote
		case c == CommaChar && !inQuote:
			spans = append(spans, f.fieldSpan(begin, i))
			begin = i + 1
		}
	}
	f.unclosed = inQuote
	spans = append(spans, f.fieldSpan(begin, len(f.src)))
	return spans, nil
}

// fieldSpan trims plain blanks off an unquoted field and strips one quote
// layer off a quoted one. The quoted interior is never trimmed.
func (f *CSVFinder) fieldSpan(begin, end int) Span {
	for begin < end && (f.src[begin] == ' ' || f.src[begin] == '\t') {
		begin++
	}
	for end > begin && (f.src[end-1] == ' ' || f.src[end-1] == '\t') {
		end--
	}
	return Span{Begin: begin, End: end}.Unquote(f.src, DoubleQuoteChar)
}

// UnclosedQuote reports whether the line ended inside an open quote. It
// forces span computation.
func (f *CSVFinder) UnclosedQuote() bool {
	_, _ = f.Spans()
	return f.unclosed
}

// Fields returns the decoded field texts: span texts with doubled quotes
// collapsed back to single quotes inside quoted fields.
func (f *CSVFinder) Fields() ([]string, error) {
	spans, err := f.Spans()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(spans))
	for i, sp := range spans {
		text := sp.Text(f.src)
		if f.wasQuoted(sp) {
			text = strings.ReplaceAll(text, `""`, `"`)
		}
		out[i] = text
	}
	return out, nil
}

// wasQuoted reports whether the span's quote layer was stripped by
// fieldSpan, i.e. the characters just outside it are double quotes.
func (f *CSVFinder) wasQuoted(sp Span) bool {
	return sp.Begin > 0 && sp.End < len(f.src) &&
		f.src[sp.Begin-1] == DoubleQuoteChar && f.src[sp.End] == DoubleQuoteChar
}
