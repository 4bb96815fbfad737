package recfmt

import "strings"

// SimpleFinder splits on a literal, possibly multi-character delimiter. It
// is quote-oblivious: delimiters inside quotes still split. Consecutive
// delimiters yield empty spans, as do leading and trailing delimiters.
//
// Used for unquoted CSV and for URL parameter splitting.
type SimpleFinder struct {
	spanCache
	delim string
}

// NewSimpleFinder returns a finder splitting src on delim. An empty
// delimiter yields a single span covering the whole source.
func NewSimpleFinder(src, delim string) *SimpleFinder {
	f := &SimpleFinder{delim: delim}
	f.src = src
	f.compute = f.findSpans
	return f
}

func (f *SimpleFinder) findSpans() ([]Span, error) {
	if f.delim == "" {
		return []Span{{Begin: 0, End: len(f.src)}}, nil
	}
	var spans []Span
	begin := 0
	for {
		i := strings.Index(f.src[begin:], f.delim)
		if i < 0 {
			spans = append(spans, Span{Begin: begin, End: len(f.src)})
			return spans, nil
		}
		spans = append(spans, Span{Begin: begin, End: begin + i})
		begin += i + len(f.delim)
	}
}
