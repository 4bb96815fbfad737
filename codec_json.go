package recfmt

import (
	"fmt"
	"strconv"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// Encode
///////////////////////////////////////////////////////////////////////////////

// EncodeJSON emits the record as a JSON object. Scalars encode as quoted,
// escaped strings (explicit nulls as the null literal); Lists as arrays of
// strings; nested Records as objects; RowLists as arrays of objects; Grids
// as arrays of arrays. Emission order follows the shared insertion ledger
// across all kinds.
//
// Container nesting deeper than three levels measured from this record
// fails with StructuralFormatError. A non-empty message channel is
// appended as a "_msg" array plus a "_has_err" boolean; messages do not
// count against the depth budget.
func (c *CompositeRecord) EncodeJSON() (string, error) {
	var b strings.Builder
	if err := encodeRecordJSON(&b, c, 1); err != nil {
		return "", err
	}
	return b.String(), nil
}

func encodeRecordJSON(b *strings.Builder, c *CompositeRecord, depth int) error {
	if depth > maxJSONDepth {
		return depthError(depth)
	}
	b.WriteByte('{')
	for i, key := range c.order {
		if i > 0 {
			b.WriteByte(',')
		}
		writeJSONString(b, key)
		b.WriteByte(':')
		if err := encodeValueJSON(b, c, key, depth); err != nil {
			return err
		}
	}
	if len(c.msgs.msgs) > 0 {
		if len(c.order) > 0 {
			b.WriteByte(',')
		}
		encodeMessagesJSON(b, c.msgs.msgs)
		b.WriteString(`,"` + HasErrorKey + `":`)
		b.WriteString(strconv.FormatBool(c.msgs.hasError()))
	}
	b.WriteByte('}')
	return nil
}

func encodeValueJSON(b *strings.Builder, c *CompositeRecord, key string, depth int) error {
	switch c.kinds[key] {
	case KindScalar:
		writeJSONOptString(b, c.ScalarRecord.vals[key])
	case KindList:
		if depth+1 > maxJSONDepth {
			return depthError(depth + 1)
		}
		b.WriteByte('[')
		for i, v := range c.lists[key] {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSONString(b, v)
		}
		b.WriteByte(']')
	case KindRecord:
		return encodeRecordJSON(b, c.recs[key], depth+1)
	case KindRows:
		if depth+2 > maxJSONDepth {
			return depthError(depth + 2)
		}
		b.WriteByte('[')
		for i, row := range c.rows[key] {
			if i > 0 {
				b.WriteByte(',')
			}
			encodeScalarObjectJSON(b, row)
		}
		b.WriteByte(']')
	case KindGrid:
		if depth+2 > maxJSONDepth {
			return depthError(depth + 2)
		}
		b.WriteByte('[')
		for i, inner := range c.grids[key] {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('[')
			for j, v := range inner {
				if j > 0 {
					b.WriteByte(',')
				}
				writeJSONString(b, v)
			}
			b.WriteByte(']')
		}
		b.WriteByte(']')
	}
	return nil
}

func encodeScalarObjectJSON(b *strings.Builder, row *ScalarRecord) {
	b.WriteByte('{')
	for i, key := range row.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		writeJSONString(b, key)
		b.WriteByte(':')
		writeJSONOptString(b, row.vals[key])
	}
	b.WriteByte('}')
}

func encodeMessagesJSON(b *strings.Builder, msgs []Message) {
	writeJSONString(b, MessagesKey)
	b.WriteString(":[")
	for i, m := range msgs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`{"severity":`)
		writeJSONString(b, m.Severity.String())
		b.WriteString(`,"id":`)
		writeJSONString(b, m.ID)
		b.WriteString(`,"args":[`)
		for j, a := range m.Args {
			if j > 0 {
				b.WriteByte(',')
			}
			writeJSONString(b, a)
		}
		b.WriteByte(']')
		if m.Field != "" {
			b.WriteString(`,"field":`)
			writeJSONString(b, m.Field)
		}
		if m.Row > 0 {
			b.WriteString(`,"row":"` + strconv.Itoa(m.Row) + `"`)
		}
		b.WriteByte('}')
	}
	b.WriteByte(']')
}

func depthError(depth int) error {
	return structuralErrorf("nesting depth %d exceeds the maximum of %d", depth, maxJSONDepth)
}

func writeJSONOptString(b *strings.Builder, v *string) {
	if v == nil {
		b.WriteString("null")
		return
	}
	writeJSONString(b, *v)
}

// writeJSONString writes s as a quoted JSON string using the standard
// control-character escapes, with '/' additionally escaped as `\/`.
func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '/':
			b.WriteString(`\/`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				fmt.Fprintf(b, `\u%04x`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
}

///////////////////////////////////////////////////////////////////////////////
// Decode
///////////////////////////////////////////////////////////////////////////////

// DecodeJSON decodes a JSON object into a CompositeRecord. An array
// value's element kind is chosen by its first non-blank element:
// object-shaped becomes a RowList, array-shaped a Grid, anything else a
// List; an empty array defaults to a List. Entries with a blank key are
// skipped (reported to the logger at debug level); a "_msg" array is read
// back into the message channel and "_has_err" is dropped. Unbracketed
// input and nesting beyond three levels fail with StructuralFormatError.
func DecodeJSON(text string, opts CodecOpts) (*CompositeRecord, error) {
	return decodeRecordJSON(text, 1, opts)
}

func decodeRecordJSON(text string, depth int, opts CodecOpts) (*CompositeRecord, error) {
	if depth > maxJSONDepth {
		return nil, depthError(depth)
	}
	log := opts.logger()
	finder := NewJSONMapFinder(text)
	entries, err := finder.Spans()
	if err != nil {
		return nil, err
	}
	rec := NewCompositeRecord()
	for _, entry := range entries {
		entryText := entry.Text(text)
		key, value, ok, err := splitJSONEntry(entryText)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Debug().Str("entry", entryText).Msg("json entry has a blank key or no colon, skipping")
			continue
		}
		switch key {
		case MessagesKey:
			if err := decodeMessagesJSON(value, rec); err != nil {
				return nil, err
			}
			continue
		case HasErrorKey:
			continue
		}
		if err := decodeEntryJSON(rec, key, value, depth, opts); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// splitJSONEntry resolves one object entry into its decoded key and raw
// value text. ok is false when the entry has no colon or a blank key.
func splitJSONEntry(entryText string) (key, value string, ok bool, err error) {
	kv := NewJSONKeyValueFinder(entryText)
	spans, err := kv.Spans()
	if err != nil {
		return "", "", false, err
	}
	if len(spans) == 0 {
		return "", "", false, nil
	}
	key, err = decodeJSONScalarText(spans[0].Text(entryText))
	if err != nil {
		return "", "", false, err
	}
	return key, spans[1].Text(entryText), true, nil
}

func decodeEntryJSON(rec *CompositeRecord, key, value string, depth int, opts CodecOpts) error {
	switch {
	case strings.HasPrefix(value, "{"):
		nested, err := decodeRecordJSON(value, depth+1, opts)
		if err != nil {
			return err
		}
		return rec.PutRecord(key, nested)
	case strings.HasPrefix(value, "["):
		return decodeArrayJSON(rec, key, value, depth, opts)
	case value == "null":
		return rec.PutNull(key)
	default:
		text, err := decodeJSONScalarText(value)
		if err != nil {
			return err
		}
		return rec.Put(key, text)
	}
}

func decodeArrayJSON(rec *CompositeRecord, key, value string, depth int, opts CodecOpts) error {
	if depth+1 > maxJSONDepth {
		return depthError(depth + 1)
	}
	finder := NewJSONArrayFinder(value)
	elements, err := finder.Spans()
	if err != nil {
		return err
	}
	// Blank elements carry no kind information; the first non-blank element
	// decides, and blanks are dropped from the decoded collection.
	kept := make([]Span, 0, len(elements))
	for _, el := range elements {
		if el.Len() > 0 {
			kept = append(kept, el)
		}
	}
	if len(kept) == 0 {
		// Zero-element arrays cannot reveal their kind; default to List.
		return rec.PutList(key, []string{})
	}
	switch first := kept[0].Text(value); {
	case strings.HasPrefix(first, "{"):
		if depth+2 > maxJSONDepth {
			return depthError(depth + 2)
		}
		rows := make([]*ScalarRecord, 0, len(kept))
		for _, el := range kept {
			row, err := decodeScalarObjectJSON(el.Text(value), opts)
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return rec.PutRows(key, rows)
	case strings.HasPrefix(first, "["):
		if depth+2 > maxJSONDepth {
			return depthError(depth + 2)
		}
		grid := make([][]string, 0, len(kept))
		for _, el := range kept {
			inner, err := decodeScalarArrayJSON(el.Text(value))
			if err != nil {
				return err
			}
			grid = append(grid, inner)
		}
		return rec.PutGrid(key, grid)
	default:
		list, err := decodeScalarArrayJSON(value)
		if err != nil {
			return err
		}
		return rec.PutList(key, list)
	}
}

// decodeScalarObjectJSON decodes a flat object of scalar entries (one row
// of a RowList). Blank keys are skipped; nested containers exceed the
// depth budget.
func decodeScalarObjectJSON(text string, opts CodecOpts) (*ScalarRecord, error) {
	log := opts.logger()
	finder := NewJSONMapFinder(text)
	entries, err := finder.Spans()
	if err != nil {
		return nil, err
	}
	row := NewScalarRecord()
	for _, entry := range entries {
		entryText := entry.Text(text)
		key, value, ok, err := splitJSONEntry(entryText)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Debug().Str("entry", entryText).Msg("json row entry has a blank key or no colon, skipping")
			continue
		}
		if strings.HasPrefix(value, "{") || strings.HasPrefix(value, "[") {
			return nil, depthError(maxJSONDepth + 1)
		}
		if value == "null" {
			err = row.PutNull(key)
		} else {
			var text string
			text, err = decodeJSONScalarText(value)
			if err == nil {
				err = row.Put(key, text)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return row, nil
}

// decodeScalarArrayJSON decodes an array of scalar tokens. Blank elements
// are dropped; a null element decodes as an empty string (lists carry no
// null slot); a nested container exceeds the depth budget.
func decodeScalarArrayJSON(text string) ([]string, error) {
	finder := NewJSONArrayFinder(text)
	elements, err := finder.Spans()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(elements))
	for _, el := range elements {
		if el.Len() == 0 {
			continue
		}
		tok := el.Text(text)
		if strings.HasPrefix(tok, "{") || strings.HasPrefix(tok, "[") {
			return nil, depthError(maxJSONDepth + 1)
		}
		if tok == "null" {
			out = append(out, "")
			continue
		}
		decoded, err := decodeJSONScalarText(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded)
	}
	return out, nil
}

func decodeMessagesJSON(value string, rec *CompositeRecord) error {
	finder := NewJSONArrayFinder(value)
	elements, err := finder.Spans()
	if err != nil {
		return err
	}
	for _, el := range elements {
		m, err := decodeMessageJSON(el.Text(value))
		if err != nil {
			return err
		}
		if err := rec.AddMessage(m); err != nil {
			return err
		}
	}
	return nil
}

// decodeMessageJSON parses one element of a "_msg" array. Unknown entry
// keys are ignored.
func decodeMessageJSON(text string) (Message, error) {
	finder := NewJSONMapFinder(text)
	entries, err := finder.Spans()
	if err != nil {
		return Message{}, err
	}
	var m Message
	for _, entry := range entries {
		entryText := entry.Text(text)
		key, value, ok, err := splitJSONEntry(entryText)
		if err != nil {
			return Message{}, err
		}
		if !ok {
			continue
		}
		switch key {
		case "severity":
			text, err := decodeJSONScalarText(value)
			if err != nil {
				return Message{}, err
			}
			m.Severity = parseSeverity(text)
		case "id":
			if m.ID, err = decodeJSONScalarText(value); err != nil {
				return Message{}, err
			}
		case "args":
			if m.Args, err = decodeScalarArrayJSON(value); err != nil {
				return Message{}, err
			}
		case "field":
			if m.Field, err = decodeJSONScalarText(value); err != nil {
				return Message{}, err
			}
		case "row":
			text, err := decodeJSONScalarText(value)
			if err != nil {
				return Message{}, err
			}
			if n, aerr := strconv.Atoi(text); aerr == nil {
				m.Row = n
			}
		}
	}
	return m, nil
}

// decodeJSONScalarText turns a raw scalar token into its text: a quoted
// token is unescaped, anything else (numbers, booleans) is kept verbatim.
func decodeJSONScalarText(token string) (string, error) {
	if len(token) >= 2 && token[0] == DoubleQuoteChar && token[len(token)-1] == DoubleQuoteChar {
		return unescapeJSONString(token[1 : len(token)-1])
	}
	return token, nil
}

func unescapeJSONString(s string) (string, error) {
	if !strings.ContainsRune(s, rune(EscapeChar)) {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != EscapeChar {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", structuralErrorf("dangling escape at end of string %q", s)
		}
		switch s[i] {
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case '/':
			b.WriteByte('/')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'u':
			if i+4 >= len(s) {
				return "", structuralErrorf("truncated \\u escape in %q", s)
			}
			code, err := strconv.ParseUint(s[i+1:i+5], 16, 32)
			if err != nil {
				return "", structuralErrorf("bad \\u escape %q", s[i+1:i+5])
			}
			b.WriteRune(rune(code))
			i += 4
		default:
			return "", structuralErrorf("unknown escape \\%c in %q", s[i], s)
		}
	}
	return b.String(), nil
}
