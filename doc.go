// Package recfmt moves data between serialized text formats (CSV, a JSON
// subset, URL query strings) and strongly-typed in-memory records without a
// grammar-based parser.
//
// The bottom layer is a family of span finders: hand-written scanners that
// compute the (begin,end) offsets of every token in a source string while
// tracking quote state, backslash escapes, and bracket nesting depth. Span
// computation is lazy and memoized; a finder scans its source at most once.
//
// On top of the finders sit two container types:
//   - ScalarRecord: an insertion-ordered key -> string map with typed
//     accessors (string, decimal, int, int64, bool, date, timestamp, UUID).
//     Keys are write-once unless the Force variant is used.
//   - CompositeRecord: a ScalarRecord extended with List, nested-Record,
//     RowList, and Grid sub-collections. All five kinds share a single key
//     namespace and a single insertion ledger, and every read or write of a
//     sub-collection deep-copies, so a caller can never alias a record's
//     internal state.
//
// Codecs connect the two layers:
//   - CSV: three quoting modes, doubled embedded quotes, and multi-line
//     quoted fields via the RowReader collaborator and the CSV finder's
//     UnclosedQuote predicate.
//   - JSON: a subset codec (at most 3 nesting levels) with the standard
//     escape table plus "/" escaped as "\/". Scalars encode as quoted
//     strings, explicit nulls as the null literal.
//   - URL: percent-encoded key=value pairs, lists as repeated "key[]="
//     parameters. Space encodes as %20, never "+".
//
// Loosely-shaped input is tolerated where it is recoverable locally: CSV
// rows with too many or too few columns and JSON entries with a blank key
// are skipped (and reported to the injected zerolog logger at debug level).
// Key, value, and structure violations are fatal and surface as the typed
// errors in errors.go.
//
// Records carry an ordered, de-duplicated diagnostic Message channel that is
// surfaced in JSON output as a "_msg" array plus a "_has_err" boolean.
package recfmt

/*
PLANNING:
- Streaming DecodeCSVFrom that yields rows through a callback instead of
  materializing the whole row slice.
- Optional type-preserving decode for empty JSON arrays once downstream
  consumers settle whether an empty Grid must survive a round trip.
*/
