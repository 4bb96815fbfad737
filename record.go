package recfmt

import "slices"

///////////////////////////////////////////////////////////////////////////////
// Kinds
///////////////////////////////////////////////////////////////////////////////

// Kind tags which sub-collection of a CompositeRecord a key belongs to.
// The five kinds form a closed union sharing one key namespace: a key can
// hold exactly one kind at a time.
type Kind int

const (
	KindScalar Kind = iota
	KindList
	KindRecord
	KindRows
	KindGrid
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindRecord:
		return "record"
	case KindRows:
		return "rows"
	case KindGrid:
		return "grid"
	default:
		return "unknown"
	}
}

///////////////////////////////////////////////////////////////////////////////
// CompositeRecord
///////////////////////////////////////////////////////////////////////////////

// CompositeRecord is a ScalarRecord extended with four sub-collection
// kinds: List (string slice), nested Record, RowList (slice of flat
// ScalarRecords) and Grid (slice of string slices).
//
// All five kinds share one key namespace and one insertion ledger, which
// drives emission order in the codecs. Every sub-collection read or write
// deep-copies: mutating a returned value, or mutating the source passed to
// a Put, never affects the record.
type CompositeRecord struct {
	*ScalarRecord

	order []string
	kinds map[string]Kind
	lists map[string][]string
	recs  map[string]*CompositeRecord
	rows  map[string][]*ScalarRecord
	grids map[string][][]string

	msgs messageList
}

// NewCompositeRecord returns an empty, mutable record.
func NewCompositeRecord() *CompositeRecord {
	c := &CompositeRecord{
		kinds: make(map[string]Kind),
		lists: make(map[string][]string),
		recs:  make(map[string]*CompositeRecord),
		rows:  make(map[string][]*ScalarRecord),
		grids: make(map[string][][]string),
	}
	c.ScalarRecord = NewScalarRecord()
	c.ScalarRecord.owner = c
	return c
}

// CompositeRecordFrom builds a record by deep-copying a scalar source map,
// keys in sorted order. Invalid keys fail with ErrKeyFormat.
func CompositeRecordFrom(src map[string]string) (*CompositeRecord, error) {
	base, err := ScalarRecordFrom(src)
	if err != nil {
		return nil, err
	}
	c := NewCompositeRecord()
	for _, k := range base.Keys() {
		v, _ := base.Get(k)
		if v == nil {
			err = c.PutNull(k)
		} else {
			err = c.Put(k, *v)
		}
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// KindOf reports which sub-collection holds key.
func (c *CompositeRecord) KindOf(key string) (Kind, bool) {
	k, exists := c.kinds[key]
	return k, exists
}

// AllKeys returns every key of every kind, in insertion order across the
// whole record (the shared ledger).
func (c *CompositeRecord) AllKeys() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// TotalLen returns the number of keys across all kinds.
func (c *CompositeRecord) TotalLen() int { return len(c.order) }

///////////////////////////////////////////////////////////////////////////////
// Namespace bookkeeping
///////////////////////////////////////////////////////////////////////////////

// claim registers key under kind k for an unforced write. It fails when
// the key is already present under any kind.
func (c *CompositeRecord) claim(key string, k Kind) error {
	if c.frozen {
		return keyErrorf(ErrFrozenRecord, key)
	}
	if !ValidKey(key) {
		return keyErrorf(ErrKeyFormat, key)
	}
	if _, exists := c.kinds[key]; exists {
		return keyErrorf(ErrDuplicateKey, key)
	}
	c.kinds[key] = k
	c.order = append(c.order, key)
	return nil
}

// forceClaim registers key under kind k, evicting a prior entry of a
// different kind. It returns the prior kind when the key existed.
func (c *CompositeRecord) forceClaim(key string, k Kind) (Kind, bool, error) {
	if c.frozen {
		return 0, false, keyErrorf(ErrFrozenRecord, key)
	}
	if !ValidKey(key) {
		return 0, false, keyErrorf(ErrKeyFormat, key)
	}
	prev, existed := c.kinds[key]
	if !existed {
		c.order = append(c.order, key)
	} else if prev != k {
		c.dropValue(key, prev)
	}
	c.kinds[key] = k
	return prev, existed, nil
}

// release removes key from the ledger.
func (c *CompositeRecord) release(key string) {
	delete(c.kinds, key)
	c.order = slices.DeleteFunc(c.order, func(k string) bool { return k == key })
}

// dropValue discards the stored value of key under its prior kind. The
// ledger entry is kept; the caller re-tags it.
func (c *CompositeRecord) dropValue(key string, k Kind) {
	switch k {
	case KindScalar:
		delete(c.ScalarRecord.vals, key)
		c.ScalarRecord.keys = slices.DeleteFunc(c.ScalarRecord.keys, func(s string) bool { return s == key })
	case KindList:
		delete(c.lists, key)
	case KindRecord:
		delete(c.recs, key)
	case KindRows:
		delete(c.rows, key)
	case KindGrid:
		delete(c.grids, key)
	}
}

// Namespace hooks called by the embedded ScalarRecord, so promoted scalar
// writes (Put, PutInt, ForcePut, Delete, ...) participate in the shared
// namespace.

func (c *CompositeRecord) reserveScalar(key string) error {
	if _, exists := c.kinds[key]; exists {
		return keyErrorf(ErrDuplicateKey, key)
	}
	c.kinds[key] = KindScalar
	c.order = append(c.order, key)
	return nil
}

func (c *CompositeRecord) claimScalar(key string) bool {
	prev, existed := c.kinds[key]
	if !existed {
		c.order = append(c.order, key)
	} else if prev != KindScalar {
		c.dropValue(key, prev)
	}
	c.kinds[key] = KindScalar
	return existed
}

func (c *CompositeRecord) releaseScalar(key string) {
	c.release(key)
}

///////////////////////////////////////////////////////////////////////////////
// List namespace
///////////////////////////////////////////////////////////////////////////////

// PutList stores a deep copy of values under key.
func (c *CompositeRecord) PutList(key string, values []string) error {
	if err := c.claim(key, KindList); err != nil {
		return err
	}
	c.lists[key] = copyList(values)
	return nil
}

// ForcePutList replaces any existing entry under key. prior is the former
// list when the key already held one; a prior entry of another kind is
// evicted and reported as existed with a nil prior.
func (c *CompositeRecord) ForcePutList(key string, values []string) (prior []string, existed bool, err error) {
	prevKind, existed, err := c.forceClaim(key, KindList)
	if err != nil {
		return nil, false, err
	}
	if existed && prevKind == KindList {
		prior = copyList(c.lists[key])
	}
	c.lists[key] = copyList(values)
	return prior, existed, nil
}

// List returns a deep copy of the list under key. A key that is absent, or
// present under another kind, fails with ErrNotFound.
func (c *CompositeRecord) List(key string) ([]string, error) {
	if c.kinds[key] != KindList {
		return nil, keyErrorf(ErrNotFound, key)
	}
	return copyList(c.lists[key]), nil
}

// ListOrDefault never fails: def is returned when key holds no list.
func (c *CompositeRecord) ListOrDefault(key string, def []string) []string {
	v, err := c.List(key)
	if err != nil {
		return def
	}
	return v
}

///////////////////////////////////////////////////////////////////////////////
// Nested-record namespace
///////////////////////////////////////////////////////////////////////////////

// PutRecord stores a deep copy of rec under key.
func (c *CompositeRecord) PutRecord(key string, rec *CompositeRecord) error {
	if err := c.claim(key, KindRecord); err != nil {
		return err
	}
	c.recs[key] = rec.Clone()
	return nil
}

// ForcePutRecord replaces any existing entry under key.
func (c *CompositeRecord) ForcePutRecord(key string, rec *CompositeRecord) (prior *CompositeRecord, existed bool, err error) {
	prevKind, existed, err := c.forceClaim(key, KindRecord)
	if err != nil {
		return nil, false, err
	}
	if existed && prevKind == KindRecord {
		prior = c.recs[key].Clone()
	}
	c.recs[key] = rec.Clone()
	return prior, existed, nil
}

// Record returns a deep copy of the nested record under key.
func (c *CompositeRecord) Record(key string) (*CompositeRecord, error) {
	if c.kinds[key] != KindRecord {
		return nil, keyErrorf(ErrNotFound, key)
	}
	return c.recs[key].Clone(), nil
}

// RecordOrDefault never fails.
func (c *CompositeRecord) RecordOrDefault(key string, def *CompositeRecord) *CompositeRecord {
	v, err := c.Record(key)
	if err != nil {
		return def
	}
	return v
}

///////////////////////////////////////////////////////////////////////////////
// RowList namespace
///////////////////////////////////////////////////////////////////////////////

// PutRows stores a deep copy of rows under key.
func (c *CompositeRecord) PutRows(key string, rows []*ScalarRecord) error {
	if err := c.claim(key, KindRows); err != nil {
		return err
	}
	c.rows[key] = copyRows(rows)
	return nil
}

// ForcePutRows replaces any existing entry under key.
func (c *CompositeRecord) ForcePutRows(key string, rows []*ScalarRecord) (prior []*ScalarRecord, existed bool, err error) {
	prevKind, existed, err := c.forceClaim(key, KindRows)
	if err != nil {
		return nil, false, err
	}
	if existed && prevKind == KindRows {
		prior = copyRows(c.rows[key])
	}
	c.rows[key] = copyRows(rows)
	return prior, existed, nil
}

// Rows returns a deep copy of the row list under key.
func (c *CompositeRecord) Rows(key string) ([]*ScalarRecord, error) {
	if c.kinds[key] != KindRows {
		return nil, keyErrorf(ErrNotFound, key)
	}
	return copyRows(c.rows[key]), nil
}

// RowsOrDefault never fails.
func (c *CompositeRecord) RowsOrDefault(key string, def []*ScalarRecord) []*ScalarRecord {
	v, err := c.Rows(key)
	if err != nil {
		return def
	}
	return v
}

///////////////////////////////////////////////////////////////////////////////
// Grid namespace
///////////////////////////////////////////////////////////////////////////////

// PutGrid stores a deep copy of grid under key.
func (c *CompositeRecord) PutGrid(key string, grid [][]string) error {
	if err := c.claim(key, KindGrid); err != nil {
		return err
	}
	c.grids[key] = copyGrid(grid)
	return nil
}

// ForcePutGrid replaces any existing entry under key.
func (c *CompositeRecord) ForcePutGrid(key string, grid [][]string) (prior [][]string, existed bool, err error) {
	prevKind, existed, err := c.forceClaim(key, KindGrid)
	if err != nil {
		return nil, false, err
	}
	if existed && prevKind == KindGrid {
		prior = copyGrid(c.grids[key])
	}
	c.grids[key] = copyGrid(grid)
	return prior, existed, nil
}

// Grid returns a deep copy of the grid under key.
func (c *CompositeRecord) Grid(key string) ([][]string, error) {
	if c.kinds[key] != KindGrid {
		return nil, keyErrorf(ErrNotFound, key)
	}
	return copyGrid(c.grids[key]), nil
}

// GridOrDefault never fails.
func (c *CompositeRecord) GridOrDefault(key string, def [][]string) [][]string {
	v, err := c.Grid(key)
	if err != nil {
		return def
	}
	return v
}

///////////////////////////////////////////////////////////////////////////////
// Removal
///////////////////////////////////////////////////////////////////////////////

// Delete removes key from whichever kind holds it.
func (c *CompositeRecord) Delete(key string) (bool, error) {
	if c.frozen {
		return false, keyErrorf(ErrFrozenRecord, key)
	}
	k, exists := c.kinds[key]
	if !exists {
		return false, nil
	}
	if k == KindScalar {
		// The embedded record's Delete also releases the ledger entry
		// through the namespace hook.
		return c.ScalarRecord.Delete(key)
	}
	c.dropValue(key, k)
	c.release(key)
	return true, nil
}

///////////////////////////////////////////////////////////////////////////////
// Messages
///////////////////////////////////////////////////////////////////////////////

// AddMessage appends m to the diagnostic channel. An identical message
// (same severity, id, args, and field reference) is silently dropped.
func (c *CompositeRecord) AddMessage(m Message) error {
	if c.frozen {
		return ErrFrozenRecord
	}
	c.msgs.add(m)
	return nil
}

// Messages returns a deep copy of the diagnostic channel, in arrival
// order.
func (c *CompositeRecord) Messages() []Message {
	out := make([]Message, 0, len(c.msgs.msgs))
	for _, m := range c.msgs.msgs {
		out = append(out, m.clone())
	}
	return out
}

// HasError reports whether any message has severity error.
func (c *CompositeRecord) HasError() bool { return c.msgs.hasError() }

///////////////////////////////////////////////////////////////////////////////
// Lifecycle
///////////////////////////////////////////////////////////////////////////////

// Clone returns a mutable deep copy, message channel included.
func (c *CompositeRecord) Clone() *CompositeRecord {
	out := NewCompositeRecord()
	out.order = make([]string, len(c.order))
	copy(out.order, c.order)
	for k, v := range c.kinds {
		out.kinds[k] = v
	}
	base := c.ScalarRecord.Clone()
	base.owner = out
	out.ScalarRecord = base
	for k, v := range c.lists {
		out.lists[k] = copyList(v)
	}
	for k, v := range c.recs {
		out.recs[k] = v.Clone()
	}
	for k, v := range c.rows {
		out.rows[k] = copyRows(v)
	}
	for k, v := range c.grids {
		out.grids[k] = copyGrid(v)
	}
	out.msgs = c.msgs.clone()
	return out
}

// Freeze returns a read-only deep copy. Writes of any kind, including
// AddMessage, fail with ErrFrozenRecord; the original stays mutable.
func (c *CompositeRecord) Freeze() *CompositeRecord {
	out := c.Clone()
	out.ScalarRecord.frozen = true
	return out
}

// IsFrozen reports whether the record rejects writes.
func (c *CompositeRecord) IsFrozen() bool { return c.frozen }

///////////////////////////////////////////////////////////////////////////////
// Deep-copy helpers
///////////////////////////////////////////////////////////////////////////////

func copyList(v []string) []string {
	out := make([]string, len(v))
	copy(out, v)
	return out
}

func copyGrid(v [][]string) [][]string {
	out := make([][]string, len(v))
	for i, row := range v {
		out[i] = copyList(row)
	}
	return out
}

func copyRows(v []*ScalarRecord) []*ScalarRecord {
	out := make([]*ScalarRecord, len(v))
	for i, row := range v {
		out[i] = row.Clone()
	}
	return out
}
