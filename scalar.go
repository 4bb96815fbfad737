package recfmt

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

///////////////////////////////////////////////////////////////////////////////
// Keys and values
///////////////////////////////////////////////////////////////////////////////

// ValidKey reports whether key is non-empty, uses only lowercase letters,
// digits, '_', '-' and '.', and is not one of the reserved keys ("_msg",
// "_has_err") that surface the message channel in JSON output. A record
// holding them as ordinary keys could not survive a JSON round trip.
func ValidKey(key string) bool {
	if key == "" || key == MessagesKey || key == HasErrorKey {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-' || c == '.':
		default:
			return false
		}
	}
	return true
}

// ScalarRecord is an insertion-ordered key -> string map with typed
// accessors layered over one canonical string per key.
//
// A key holds either a string value or an explicit null; absence of the key
// and a null value are distinct states. Keys are write-once: an unforced
// Put to an existing key fails with DuplicateKey, the Force variants
// replace and return the prior value.
type ScalarRecord struct {
	keys   []string
	vals   map[string]*string
	frozen bool

	// owner keeps a CompositeRecord's shared namespace in sync when this
	// record is embedded as its scalar kind; nil for standalone records.
	owner recordOwner
}

// recordOwner receives namespace bookkeeping for writes that flow through
// an embedded ScalarRecord, so promoted scalar methods participate in the
// composite's shared key space and insertion ledger.
type recordOwner interface {
	reserveScalar(key string) error
	claimScalar(key string) (existed bool)
	releaseScalar(key string)
}

// NewScalarRecord returns an empty, mutable record.
func NewScalarRecord() *ScalarRecord {
	return &ScalarRecord{vals: make(map[string]*string)}
}

// ScalarRecordFrom builds a record by deep-copying src. Keys are inserted
// in sorted order (a Go map has no insertion order to preserve). Invalid
// keys fail with ErrKeyFormat.
func ScalarRecordFrom(src map[string]string) (*ScalarRecord, error) {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rec := NewScalarRecord()
	for _, k := range keys {
		if err := rec.Put(k, src[k]); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

///////////////////////////////////////////////////////////////////////////////
// Writes
///////////////////////////////////////////////////////////////////////////////

func (r *ScalarRecord) checkWrite(key string) error {
	if r.frozen {
		return keyErrorf(ErrFrozenRecord, key)
	}
	if !ValidKey(key) {
		return keyErrorf(ErrKeyFormat, key)
	}
	return nil
}

func (r *ScalarRecord) put(key string, val *string) error {
	if err := r.checkWrite(key); err != nil {
		return err
	}
	if _, exists := r.vals[key]; exists {
		return keyErrorf(ErrDuplicateKey, key)
	}
	if r.owner != nil {
		if err := r.owner.reserveScalar(key); err != nil {
			return err
		}
	}
	r.keys = append(r.keys, key)
	r.vals[key] = val
	return nil
}

// Put stores value under key. Fails if the key is already present.
func (r *ScalarRecord) Put(key, value string) error {
	v := value
	return r.put(key, &v)
}

// PutNull stores an explicit null under key. Fails if the key is already
// present.
func (r *ScalarRecord) PutNull(key string) error {
	return r.put(key, nil)
}

// ForcePut stores value under key, replacing any existing value. It
// returns the prior value: existed reports whether the key was present,
// prior is nil when the key was absent or held a null.
func (r *ScalarRecord) ForcePut(key, value string) (prior *string, existed bool, err error) {
	v := value
	return r.forcePut(key, &v)
}

// ForcePutNull is ForcePut storing an explicit null.
func (r *ScalarRecord) ForcePutNull(key string) (prior *string, existed bool, err error) {
	return r.forcePut(key, nil)
}

func (r *ScalarRecord) forcePut(key string, val *string) (*string, bool, error) {
	if err := r.checkWrite(key); err != nil {
		return nil, false, err
	}
	// A prior entry of another kind counts as existing, even though its
	// value cannot be returned through the scalar-typed prior.
	existedElsewhere := false
	if r.owner != nil {
		existedElsewhere = r.owner.claimScalar(key)
	}
	old, existed := r.vals[key]
	if !existed {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = val
	return copyOptString(old), existed || existedElsewhere, nil
}

// Delete removes key and reports whether it was present.
func (r *ScalarRecord) Delete(key string) (bool, error) {
	if r.frozen {
		return false, keyErrorf(ErrFrozenRecord, key)
	}
	if _, exists := r.vals[key]; !exists {
		return false, nil
	}
	delete(r.vals, key)
	r.keys = slices.DeleteFunc(r.keys, func(k string) bool { return k == key })
	if r.owner != nil {
		r.owner.releaseScalar(key)
	}
	return true, nil
}

// Typed canonical setters. Each stores the type's canonical text so the
// matching accessor reads it back exactly.

func (r *ScalarRecord) PutInt(key string, value int) error {
	return r.Put(key, strconv.Itoa(value))
}

func (r *ScalarRecord) PutInt64(key string, value int64) error {
	return r.Put(key, strconv.FormatInt(value, 10))
}

func (r *ScalarRecord) PutBool(key string, value bool) error {
	return r.Put(key, strconv.FormatBool(value))
}

func (r *ScalarRecord) PutDecimal(key string, value decimal.Decimal) error {
	return r.Put(key, value.String())
}

func (r *ScalarRecord) PutDate(key string, value time.Time) error {
	return r.Put(key, value.Format(DateLayout))
}

func (r *ScalarRecord) PutTimestamp(key string, value time.Time) error {
	return r.Put(key, formatTimestamp(value))
}

func (r *ScalarRecord) PutUUID(key string, value uuid.UUID) error {
	return r.Put(key, value.String())
}

///////////////////////////////////////////////////////////////////////////////
// Reads
///////////////////////////////////////////////////////////////////////////////

// Get returns a copy of the raw optional value: nil means the key holds an
// explicit null. An absent key fails with ErrNotFound.
func (r *ScalarRecord) Get(key string) (*string, error) {
	v, exists := r.vals[key]
	if !exists {
		return nil, keyErrorf(ErrNotFound, key)
	}
	return copyOptString(v), nil
}

// Has reports whether key is present (with a value or a null).
func (r *ScalarRecord) Has(key string) bool {
	_, exists := r.vals[key]
	return exists
}

// IsNull reports whether key holds an explicit null. An absent key fails
// with ErrNotFound.
func (r *ScalarRecord) IsNull(key string) (bool, error) {
	v, exists := r.vals[key]
	if !exists {
		return false, keyErrorf(ErrNotFound, key)
	}
	return v == nil, nil
}

// Keys returns the keys in insertion order.
func (r *ScalarRecord) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys.
func (r *ScalarRecord) Len() int { return len(r.keys) }

// String returns the text under key; an explicit null reads as "".
func (r *ScalarRecord) String(key string) (string, error) {
	v, err := r.Get(key)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

// StringOrDefault never fails: an absent key yields def. A null reads as
// "" (the key is present).
func (r *ScalarRecord) StringOrDefault(key, def string) string {
	v, exists := r.vals[key]
	if !exists {
		return def
	}
	if v == nil {
		return ""
	}
	return *v
}

// StringOrNullDefault never fails: both an absent key and an explicit null
// yield def.
func (r *ScalarRecord) StringOrNullDefault(key, def string) string {
	v, exists := r.vals[key]
	if !exists || v == nil {
		return def
	}
	return *v
}

// Int parses the value as a decimal integer.
func (r *ScalarRecord) Int(key string) (int, error) {
	raw, err := r.String(key)
	if err != nil {
		return 0, err
	}
	n, perr := strconv.Atoi(raw)
	if perr != nil {
		return 0, &ValueFormatError{Key: key, Raw: raw, Want: "int", Err: perr}
	}
	return n, nil
}

// IntOrDefault never fails: absent, null, or unparsable values yield def.
func (r *ScalarRecord) IntOrDefault(key string, def int) int {
	n, err := r.Int(key)
	if err != nil {
		return def
	}
	return n
}

// Int64 parses the value as a 64-bit decimal integer.
func (r *ScalarRecord) Int64(key string) (int64, error) {
	raw, err := r.String(key)
	if err != nil {
		return 0, err
	}
	n, perr := strconv.ParseInt(raw, 10, 64)
	if perr != nil {
		return 0, &ValueFormatError{Key: key, Raw: raw, Want: "int64", Err: perr}
	}
	return n, nil
}

// Int64OrDefault never fails.
func (r *ScalarRecord) Int64OrDefault(key string, def int64) int64 {
	n, err := r.Int64(key)
	if err != nil {
		return def
	}
	return n
}

// Decimal parses the value as an exact decimal number.
func (r *ScalarRecord) Decimal(key string) (decimal.Decimal, error) {
	raw, err := r.String(key)
	if err != nil {
		return decimal.Decimal{}, err
	}
	d, perr := decimal.NewFromString(raw)
	if perr != nil {
		return decimal.Decimal{}, &ValueFormatError{Key: key, Raw: raw, Want: "decimal", Err: perr}
	}
	return d, nil
}

// DecimalOrDefault never fails.
func (r *ScalarRecord) DecimalOrDefault(key string, def decimal.Decimal) decimal.Decimal {
	d, err := r.Decimal(key)
	if err != nil {
		return def
	}
	return d
}

// Bool parses the value as a boolean. Beyond the canonical "true"/"false"
// the tolerant set 1/0, yes/no, on/off is accepted, case-insensitively.
func (r *ScalarRecord) Bool(key string) (bool, error) {
	raw, err := r.String(key)
	if err != nil {
		return false, err
	}
	lowered := strings.ToLower(raw)
	if slices.Contains(boolTrueTexts, lowered) {
		return true, nil
	}
	if slices.Contains(boolFalseTexts, lowered) {
		return false, nil
	}
	return false, &ValueFormatError{Key: key, Raw: raw, Want: "bool"}
}

// BoolOrDefault never fails.
func (r *ScalarRecord) BoolOrDefault(key string, def bool) bool {
	b, err := r.Bool(key)
	if err != nil {
		return def
	}
	return b
}

// Date parses the value as a strict 8-digit YYYYMMDD date in UTC.
func (r *ScalarRecord) Date(key string) (time.Time, error) {
	raw, err := r.String(key)
	if err != nil {
		return time.Time{}, err
	}
	t, perr := time.Parse(DateLayout, raw)
	if perr != nil {
		return time.Time{}, &ValueFormatError{Key: key, Raw: raw, Want: "date", Err: perr}
	}
	return t, nil
}

// DateOrDefault never fails.
func (r *ScalarRecord) DateOrDefault(key string, def time.Time) time.Time {
	t, err := r.Date(key)
	if err != nil {
		return def
	}
	return t
}

// Timestamp parses the value as the strict YYYYMMDD'T'HHMMSS form followed
// by exactly six fractional-second digits, in UTC.
func (r *ScalarRecord) Timestamp(key string) (time.Time, error) {
	raw, err := r.String(key)
	if err != nil {
		return time.Time{}, err
	}
	t, perr := parseTimestamp(raw)
	if perr != nil {
		return time.Time{}, &ValueFormatError{Key: key, Raw: raw, Want: "timestamp", Err: perr}
	}
	return t, nil
}

// TimestampOrDefault never fails.
func (r *ScalarRecord) TimestampOrDefault(key string, def time.Time) time.Time {
	t, err := r.Timestamp(key)
	if err != nil {
		return def
	}
	return t
}

// UUID parses the value as an RFC 4122 UUID.
func (r *ScalarRecord) UUID(key string) (uuid.UUID, error) {
	raw, err := r.String(key)
	if err != nil {
		return uuid.Nil, err
	}
	u, perr := uuid.Parse(raw)
	if perr != nil {
		return uuid.Nil, &ValueFormatError{Key: key, Raw: raw, Want: "uuid", Err: perr}
	}
	return u, nil
}

// UUIDOrDefault never fails.
func (r *ScalarRecord) UUIDOrDefault(key string, def uuid.UUID) uuid.UUID {
	u, err := r.UUID(key)
	if err != nil {
		return def
	}
	return u
}

///////////////////////////////////////////////////////////////////////////////
// Lifecycle
///////////////////////////////////////////////////////////////////////////////

// Clone returns a mutable deep copy.
func (r *ScalarRecord) Clone() *ScalarRecord {
	out := NewScalarRecord()
	out.keys = make([]string, len(r.keys))
	copy(out.keys, r.keys)
	for k, v := range r.vals {
		out.vals[k] = copyOptString(v)
	}
	return out
}

// Freeze returns a read-only deep copy. Writes on the copy fail with
// ErrFrozenRecord; the original stays mutable.
func (r *ScalarRecord) Freeze() *ScalarRecord {
	out := r.Clone()
	out.frozen = true
	return out
}

// IsFrozen reports whether the record rejects writes.
func (r *ScalarRecord) IsFrozen() bool { return r.frozen }

func copyOptString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

///////////////////////////////////////////////////////////////////////////////
// Timestamp text
///////////////////////////////////////////////////////////////////////////////

// The six fractional digits follow the seconds with no separator, so the
// layout cannot be expressed as a single time.Parse layout string.

func parseTimestamp(raw string) (time.Time, error) {
	coreLen := len(timestampCoreLayout)
	if len(raw) != coreLen+timestampFracDigits {
		return time.Time{}, fmt.Errorf("timestamp must be %d characters, got %d", coreLen+timestampFracDigits, len(raw))
	}
	t, err := time.Parse(timestampCoreLayout, raw[:coreLen])
	if err != nil {
		return time.Time{}, err
	}
	micros := 0
	for _, c := range []byte(raw[coreLen:]) {
		if c < '0' || c > '9' {
			return time.Time{}, fmt.Errorf("fractional seconds %q are not six digits", raw[coreLen:])
		}
		micros = micros*10 + int(c-'0')
	}
	return t.Add(time.Duration(micros) * time.Microsecond), nil
}

func formatTimestamp(t time.Time) string {
	return t.Format(timestampCoreLayout) + fmt.Sprintf("%06d", t.Nanosecond()/1000)
}
