package recfmt

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustScalar(t *testing.T, pairs ...string) *ScalarRecord {
	t.Helper()
	r := NewScalarRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		require.NoError(t, r.Put(pairs[i], pairs[i+1]))
	}
	return r
}

func TestEncodeCSVRowMinimal(t *testing.T) {
	r := mustScalar(t,
		"a", "plain",
		"b", "has,comma",
		"c", `q"uote`,
		"d", "line\nbreak",
		"e", " padded ",
	)
	got := r.EncodeCSVRow(CSVEncodeOpts{Mode: QuoteMinimal})
	assert.Equal(t, `plain,"has,comma","q""uote","line`+"\n"+`break"," padded "`, got)
}

func TestEncodeCSVRowAll(t *testing.T) {
	r := mustScalar(t, "a", "x", "b", "")
	got := r.EncodeCSVRow(CSVEncodeOpts{Mode: QuoteAll})
	assert.Equal(t, `"x",""`, got)
}

func TestEncodeCSVRowNoneCollapsesLineBreaks(t *testing.T) {
	r := mustScalar(t, "a", "one\ntwo", "b", "three\r\nfour", "c", "five\rsix")
	got := r.EncodeCSVRow(CSVEncodeOpts{Mode: QuoteNone})
	assert.Equal(t, "one two,three four,five six", got)
}

func TestEncodeCSVRowNormalizesCRLF(t *testing.T) {
	r := mustScalar(t, "a", "one\r\ntwo")
	got := r.EncodeCSVRow(CSVEncodeOpts{Mode: QuoteAll})
	assert.Equal(t, "\"one\ntwo\"", got)
}

func TestEncodeCSVNullReadsAsEmpty(t *testing.T) {
	r := NewScalarRecord()
	require.NoError(t, r.Put("a", "1"))
	require.NoError(t, r.PutNull("b"))
	assert.Equal(t, "1,", r.EncodeCSVRow(CSVEncodeOpts{Mode: QuoteMinimal}))
}

func TestEncodeCSVHeaderAndRows(t *testing.T) {
	rows := []*ScalarRecord{
		mustScalar(t, "name", "alice", "city", "tokyo"),
		mustScalar(t, "name", "bob", "city", "osaka"),
	}
	got := EncodeCSV(rows, CSVEncodeOpts{Mode: QuoteMinimal})
	assert.Equal(t, "name,city\nalice,tokyo\nbob,osaka", got)

	assert.Equal(t, "", EncodeCSV(nil, CSVEncodeOpts{}))
}

func TestCSVRoundTripMinimal(t *testing.T) {
	rows := []*ScalarRecord{
		mustScalar(t, "a", "plain", "b", "has,comma", "c", `q"uote`),
		mustScalar(t, "a", " padded ", "b", "multi\nline", "c", ""),
	}
	text := EncodeCSV(rows, CSVEncodeOpts{Mode: QuoteMinimal})
	decoded, err := DecodeCSV(text, CodecOpts{})
	require.NoError(t, err)
	require.Len(t, decoded, len(rows))
	for i, want := range rows {
		assert.Equal(t, want.Keys(), decoded[i].Keys(), "row %d", i)
		for _, key := range want.Keys() {
			wv, _ := want.String(key)
			gv, _ := decoded[i].String(key)
			assert.Equal(t, wv, gv, "row %d key %s", i, key)
		}
	}
}

func TestCSVRoundTripQuoteAll(t *testing.T) {
	rows := []*ScalarRecord{mustScalar(t, "a", "x,y", "b", "")}
	decoded, err := DecodeCSV(EncodeCSV(rows, CSVEncodeOpts{Mode: QuoteAll}), CodecOpts{})
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	v, _ := decoded[0].String("a")
	assert.Equal(t, "x,y", v)
}

func TestCSVRoundTripBackslashQuote(t *testing.T) {
	// A backslash-escaped quote re-parses as content, so the encoder must
	// not double it; a quote behind an even backslash run still toggles
	// and is doubled as usual.
	rows := []*ScalarRecord{mustScalar(t, "a", `x\"y`, "b", `x\\"y`)}
	text := EncodeCSV(rows, CSVEncodeOpts{Mode: QuoteMinimal})
	assert.Equal(t, "a,b\n\"x\\\"y\",\"x\\\\\"\"y\"", text)

	decoded, err := DecodeCSV(text, CodecOpts{})
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	va, _ := decoded[0].String("a")
	assert.Equal(t, `x\"y`, va)
	vb, _ := decoded[0].String("b")
	assert.Equal(t, `x\\"y`, vb)
}

func TestDecodeCSVMultiLineQuotedField(t *testing.T) {
	text := "a,b\n1,\"first\nsecond\"\n2,plain"
	rows, err := DecodeCSV(text, CodecOpts{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	v, _ := rows[0].String("b")
	assert.Equal(t, "first\nsecond", v)
}

func TestDecodeCSVFromReader(t *testing.T) {
	reader := NewSliceRowReader(
		"id,note",
		`1,"starts`,
		`and ends"`,
		"2,short",
	)
	rows, err := DecodeCSVFrom(reader, CodecOpts{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	v, _ := rows[0].String("note")
	assert.Equal(t, "starts\nand ends", v)
}

func TestDecodeCSVColumnMismatchIsSkipped(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	text := "a,b\n1,2,3\n4\n5,6"
	rows, err := DecodeCSV(text, CodecOpts{Logger: &logger})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Extra column dropped.
	assert.Equal(t, []string{"a", "b"}, rows[0].Keys())
	// Missing column left absent.
	assert.Equal(t, []string{"a"}, rows[1].Keys())
	// Matching row intact.
	v, _ := rows[2].String("b")
	assert.Equal(t, "6", v)

	assert.Contains(t, buf.String(), "mismatch")
}

func TestDecodeCSVBlankLinesSkipped(t *testing.T) {
	text := "a,b\n\n1,2\n\n"
	rows, err := DecodeCSV(text, CodecOpts{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestDecodeCSVEmptyInput(t *testing.T) {
	rows, err := DecodeCSV("", CodecOpts{})
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestDecodeCSVBadHeaderKey(t *testing.T) {
	_, err := DecodeCSV("Name,city\nalice,tokyo", CodecOpts{})
	assert.ErrorIs(t, err, ErrKeyFormat)
}

func TestCompositeEncodeCSVScalarFieldsOnly(t *testing.T) {
	c := NewCompositeRecord()
	require.NoError(t, c.Put("a", "1"))
	require.NoError(t, c.PutList("l", []string{"x"}))
	require.NoError(t, c.Put("b", "2"))

	// Sub-collections never reach CSV output.
	assert.Equal(t, "1,2", c.EncodeCSVRow(CSVEncodeOpts{Mode: QuoteMinimal}))
}
