package recfmt

// Scanner character constants.
const (
	EscapeChar      = byte('\\')
	DoubleQuoteChar = byte('"')
	SingleQuoteChar = byte('\'')
	CommaChar       = byte(',')
	ColonChar       = byte(':')
)

// Canonical value layouts. Dates and timestamps are strict: no calendar
// rollover, no locale. The timestamp's six fractional digits follow the
// seconds directly, with no separator, so it cannot be expressed as a
// single time.Parse layout.
const (
	DateLayout          = "20060102"
	timestampCoreLayout = "20060102T150405"
	timestampFracDigits = 6
)

// Boolean texts accepted by the Bool accessor. The canonical encoding is
// "true"/"false"; the tolerant set mirrors what loosely-shaped upstream
// sources actually send.
var (
	boolTrueTexts  = []string{"true", "1", "yes", "on"}
	boolFalseTexts = []string{"false", "0", "no", "off"}
)

// Inputs at or above this many bytes are scanned over a materialized byte
// buffer instead of indexed string access. Output is identical either way;
// the split only changes the amortized cost on large documents.
const largeInputThreshold = 1 << 12

// maxJSONDepth caps nesting measured from the top record: record ->
// list/rows/grid -> scalar is depth 3. Deeper structures are rejected on
// both encode and decode.
const maxJSONDepth = 3

// Reserved keys used to surface the diagnostic message channel in JSON
// output. ValidKey rejects both as ordinary record keys.
const (
	MessagesKey = "_msg"
	HasErrorKey = "_has_err"
)

// listKeySuffix marks a URL parameter as a list element: "key[]=v".
const listKeySuffix = "[]"
