package recfmt

// SpanFinder computes the ordered list of token spans for one source
// string. Computation is deferred until the first Spans call and memoized;
// later calls reuse the cached list. A finder instance must not be shared
// across goroutines before its first Spans call has returned.
type SpanFinder interface {
	// Source returns the text the finder scans.
	Source() string

	// Spans returns the ordered token spans. The returned slice is a copy;
	// callers may keep or mutate it freely.
	Spans() ([]Span, error)
}

// spanCache is the guarded two-phase field backing every finder: unparsed
// until the first Spans call, then computed exactly once. The compute
// function is installed by the concrete finder's constructor.
type spanCache struct {
	src      string
	compute  func() ([]Span, error)
	computed bool
	spans    []Span
	err      error
}

func (c *spanCache) Source() string { return c.src }

func (c *spanCache) Spans() ([]Span, error) {
	if !c.computed {
		c.spans, c.err = c.compute()
		c.computed = true
	}
	if c.err != nil {
		return nil, c.err
	}
	// A span outside the source is a finder defect, never a data error.
	for _, sp := range c.spans {
		if !sp.validIn(len(c.src)) {
			return nil, &ConsistencyError{Span: sp, Length: len(c.src)}
		}
	}
	out := make([]Span, len(c.spans))
	copy(out, c.spans)
	return out, nil
}

// texts resolves every span against the source.
func (c *spanCache) texts() ([]string, error) {
	spans, err := c.Spans()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = sp.Text(c.src)
	}
	return out, nil
}
