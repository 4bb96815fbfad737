package recfmt

import "strings"

///////////////////////////////////////////////////////////////////////////////
// Quoting modes
///////////////////////////////////////////////////////////////////////////////

// QuoteMode selects how EncodeCSV quotes fields.
type QuoteMode int

const (
	// QuoteNone never quotes. The mode is not line-break tolerant:
	// embedded line breaks collapse to a single space.
	QuoteNone QuoteMode = iota

	// QuoteAll quotes every field. Embedded line breaks are normalized to
	// a line feed and survive inside the quotes.
	QuoteAll

	// QuoteMinimal quotes only fields containing a comma, a quote, a line
	// break, or leading/trailing blanks (which the decoder would
	// otherwise trim away). Line breaks are normalized to a line feed.
	QuoteMinimal
)

// CSVEncodeOpts configures EncodeCSV. The zero value is QuoteMinimal.
type CSVEncodeOpts struct {
	Mode QuoteMode
}

///////////////////////////////////////////////////////////////////////////////
// Encode
///////////////////////////////////////////////////////////////////////////////

// EncodeCSVRow emits the record's fields as one CSV line, insertion order,
// no trailing line break. On a CompositeRecord the promoted method emits
// scalar fields only; sub-collections never appear in CSV.
func (r *ScalarRecord) EncodeCSVRow(opts CSVEncodeOpts) string {
	fields := make([]string, 0, len(r.keys))
	for _, key := range r.keys {
		fields = append(fields, encodeCSVField(r.StringOrDefault(key, ""), opts.Mode))
	}
	return strings.Join(fields, ",")
}

// EncodeCSV emits a header line built from the first row's keys followed
// by one line per record, joined by line feeds. Keys absent from a later
// row emit as empty fields. An empty row set encodes as "".
func EncodeCSV(rows []*ScalarRecord, opts CSVEncodeOpts) string {
	if len(rows) == 0 {
		return ""
	}
	header := rows[0].Keys()
	var b strings.Builder
	for i, key := range header {
		if i > 0 {
			b.WriteByte(CommaChar)
		}
		b.WriteString(encodeCSVField(key, opts.Mode))
	}
	for _, row := range rows {
		b.WriteByte('\n')
		for i, key := range header {
			if i > 0 {
				b.WriteByte(CommaChar)
			}
			b.WriteString(encodeCSVField(row.StringOrDefault(key, ""), opts.Mode))
		}
	}
	return b.String()
}

func encodeCSVField(value string, mode QuoteMode) string {
	value = normalizeLineBreaks(value)
	if mode == QuoteNone {
		// Not line-break tolerant: collapse each break to one space.
		return strings.ReplaceAll(value, "\n", " ")
	}
	if mode == QuoteMinimal && !csvNeedsQuotes(value) {
		return value
	}
	return `"` + doubleUnescapedQuotes(value) + `"`
}

// doubleUnescapedQuotes doubles every embedded quote the decoder would read
// as a state toggle. A backslash-escaped quote already re-parses as content
// (the finder's quote toggle is escape-aware), so it is left alone. One
// value shape stays out of reach: text ending in an odd run of backslashes
// makes the closing quote read as escaped, so it cannot survive a quoted
// round trip.
func doubleUnescapedQuotes(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == DoubleQuoteChar && !IsEscaped(value, i) {
			b.WriteByte(DoubleQuoteChar)
		}
		b.WriteByte(c)
	}
	return b.String()
}

func normalizeLineBreaks(value string) string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	return strings.ReplaceAll(value, "\r", "\n")
}

// csvNeedsQuotes also fires on boundary blanks: the decoder trims unquoted
// fields, so an unquoted " x" would not survive a round trip.
func csvNeedsQuotes(value string) bool {
	if value == "" {
		return false
	}
	if strings.ContainsAny(value, ",\"\n") {
		return true
	}
	first, last := value[0], value[len(value)-1]
	return first == ' ' || first == '\t' || last == ' ' || last == '\t'
}

///////////////////////////////////////////////////////////////////////////////
// Decode
///////////////////////////////////////////////////////////////////////////////

// RowReader supplies one physical line per call, without its line
// terminator. ok is false once the source is exhausted. The decoder asks
// for extra lines while a quoted field is still open, so any blocking I/O
// needed to produce a line stays with the collaborator.
type RowReader interface {
	ReadRow() (line string, ok bool)
}

// SliceRowReader serves physical lines from a slice.
type SliceRowReader struct {
	rows []string
	pos  int
}

// NewSliceRowReader returns a RowReader over the given lines.
func NewSliceRowReader(rows ...string) *SliceRowReader {
	return &SliceRowReader{rows: rows}
}

func (r *SliceRowReader) ReadRow() (string, bool) {
	if r.pos >= len(r.rows) {
		return "", false
	}
	line := r.rows[r.pos]
	r.pos++
	return line, true
}

// DecodeCSV decodes header-plus-rows CSV text into one ScalarRecord per
// data row. Line breaks inside quoted fields are handled through the
// unclosed-quote loop, so the text may be a whole multi-line document.
func DecodeCSV(text string, opts CodecOpts) ([]*ScalarRecord, error) {
	lines := strings.Split(normalizeLineBreaks(text), "\n")
	return DecodeCSVFrom(NewSliceRowReader(lines...), opts)
}

// DecodeCSVFrom decodes CSV from a RowReader. The first logical line is
// the header; its fields must be valid keys. Data rows with more fields
// than the header drop the extras, rows with fewer leave the trailing keys
// absent; both are recovered locally and reported to the logger at debug
// level. Entirely blank physical lines are skipped.
func DecodeCSVFrom(r RowReader, opts CodecOpts) ([]*ScalarRecord, error) {
	log := opts.logger()

	header, ok, err := nextLogicalLine(r)
	if err != nil || !ok {
		return nil, err
	}
	var rows []*ScalarRecord
	rowNum := 0
	for {
		fields, ok, err := nextLogicalLine(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			return rows, nil
		}
		rowNum++
		if len(fields) != len(header) {
			log.Debug().
				Int("row", rowNum).
				Int("want", len(header)).
				Int("got", len(fields)).
				Msg("csv column count mismatch, keeping matching columns")
		}
		row := NewScalarRecord()
		for i, key := range header {
			if i >= len(fields) {
				break
			}
			if err := row.Put(key, fields[i]); err != nil {
				return nil, err
			}
		}
		rows = append(rows, row)
	}
}

// nextLogicalLine reads one logical CSV line, pulling further physical
// lines (joined by a line feed) while a quoted field remains open. Blank
// physical lines between records are skipped.
func nextLogicalLine(r RowReader) ([]string, bool, error) {
	line, ok := r.ReadRow()
	for ok && strings.TrimSpace(line) == "" {
		line, ok = r.ReadRow()
	}
	if !ok {
		return nil, false, nil
	}
	finder := NewCSVFinder(line)
	for finder.UnclosedQuote() {
		next, more := r.ReadRow()
		if !more {
			break
		}
		line = line + "\n" + next
		finder = NewCSVFinder(line)
	}
	fields, err := finder.Fields()
	if err != nil {
		return nil, false, err
	}
	return fields, true, nil
}
