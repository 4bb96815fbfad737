package recfmt

import "strings"

///////////////////////////////////////////////////////////////////////////////
// Encode
///////////////////////////////////////////////////////////////////////////////

// EncodeURL emits the record as a URL query string. Scalars encode as
// percent-encoded key=value pairs (space as %20, never "+"; "*" as %2A);
// an explicit null emits the bare key with no "="; Lists emit one
// "key[]=value" pair per element. Nested Records, RowLists and Grids are
// silently omitted: URL syntax has no representation for them.
func (c *CompositeRecord) EncodeURL() string {
	var parts []string
	for _, key := range c.order {
		switch c.kinds[key] {
		case KindScalar:
			v := c.ScalarRecord.vals[key]
			if v == nil {
				parts = append(parts, percentEncode(key))
				continue
			}
			parts = append(parts, percentEncode(key)+"="+percentEncode(*v))
		case KindList:
			for _, v := range c.lists[key] {
				parts = append(parts, percentEncode(key)+listKeySuffix+"="+percentEncode(v))
			}
		}
	}
	return strings.Join(parts, "&")
}

// percentEncode escapes everything outside the RFC 3986 unreserved set
// with uppercase %XX. Space becomes %20 and '*' becomes %2A; '+' is never
// emitted.
func percentEncode(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '-' || c == '_' || c == '.' || c == '~':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}

///////////////////////////////////////////////////////////////////////////////
// Decode
///////////////////////////////////////////////////////////////////////////////

// DecodeURL decodes a URL query string into a CompositeRecord. Parameters
// with a "[]"-suffixed key accumulate, in order, into a List under the
// base key; a bare key with no "=" decodes as an explicit null. Reusing an
// array-suffixed key as a scalar key (or the reverse) fails with
// StructuralFormatError. A '+' is a literal plus, not a space.
func DecodeURL(query string, opts CodecOpts) (*CompositeRecord, error) {
	rec := NewCompositeRecord()
	finder := NewSimpleFinder(query, "&")
	params, err := finder.Spans()
	if err != nil {
		return nil, err
	}
	for _, param := range params {
		raw := param.Text(query)
		if raw == "" {
			continue
		}
		if err := decodeURLParam(rec, raw); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func decodeURLParam(rec *CompositeRecord, raw string) error {
	rawKey, rawValue, hasValue := strings.Cut(raw, "=")
	key, err := percentDecode(rawKey)
	if err != nil {
		return &ValueFormatError{Key: rawKey, Raw: rawKey, Want: "percent-encoded key", Err: err}
	}
	value := ""
	if hasValue {
		if value, err = percentDecode(rawValue); err != nil {
			return &ValueFormatError{Key: key, Raw: rawValue, Want: "percent-encoded value", Err: err}
		}
	}

	if base, isList := strings.CutSuffix(key, listKeySuffix); isList {
		if kind, exists := rec.kinds[base]; exists && kind != KindList {
			return structuralErrorf("array parameter %q reuses %s key %q", key, kind, base)
		}
		if _, exists := rec.kinds[base]; !exists {
			if err := rec.PutList(base, nil); err != nil {
				return err
			}
		}
		rec.lists[base] = append(rec.lists[base], value)
		return nil
	}

	if kind, exists := rec.kinds[key]; exists && kind == KindList {
		return structuralErrorf("scalar parameter %q reuses array key %q%s", key, key, listKeySuffix)
	}
	if !hasValue {
		return rec.PutNull(key)
	}
	return rec.Put(key, value)
}

func percentDecode(s string) (string, error) {
	if !strings.ContainsRune(s, '%') {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(s) {
			return "", structuralErrorf("truncated percent escape in %q", s)
		}
		hi, ok1 := hexVal(s[i+1])
		lo, ok2 := hexVal(s[i+2])
		if !ok1 || !ok2 {
			return "", structuralErrorf("bad percent escape %q", s[i:i+3])
		}
		b.WriteByte(hi<<4 | lo)
		i += 2
	}
	return b.String(), nil
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
