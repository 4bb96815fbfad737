package recfmt

import (
	"errors"
	"fmt"
)

// Base error classes. Typed errors below wrap one of these, so callers can
// branch with errors.Is regardless of which operation raised them.
var (
	ErrKeyFormat        = errors.New("key is reserved or contains characters outside [a-z0-9_.-]")
	ErrDuplicateKey     = errors.New("key already present; use the Force variant to overwrite")
	ErrNotFound         = errors.New("key not present in record")
	ErrValueFormat      = errors.New("value does not parse as the requested type")
	ErrStructuralFormat = errors.New("source text is structurally malformed")
	ErrConsistency      = errors.New("internal span bounds violation")
	ErrFrozenRecord     = errors.New("record is frozen and cannot be modified")
)

// ValueFormatError reports a typed accessor that could not convert the
// stored text. It always carries the key and the raw value.
type ValueFormatError struct {
	Key  string
	Raw  string
	Want string // target type name, e.g. "int64" or "date"
	Err  error  // underlying conversion error, may be nil
}

func (e *ValueFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("value %q for key %q is not a valid %s: %v", e.Raw, e.Key, e.Want, e.Err)
	}
	return fmt.Sprintf("value %q for key %q is not a valid %s", e.Raw, e.Key, e.Want)
}

func (e *ValueFormatError) Unwrap() error { return ErrValueFormat }

// StructuralFormatError reports malformed structure in source text: missing
// or unbalanced brackets, nesting beyond maxJSONDepth, or a URL key used
// both as a scalar and as a list.
type StructuralFormatError struct {
	Reason string
}

func (e *StructuralFormatError) Error() string {
	return fmt.Sprintf("structural format error: %s", e.Reason)
}

func (e *StructuralFormatError) Unwrap() error { return ErrStructuralFormat }

func structuralErrorf(format string, args ...any) error {
	return &StructuralFormatError{Reason: fmt.Sprintf(format, args...)}
}

// ConsistencyError signals an implementation defect, not a data error: a
// finder produced a span whose bounds do not fit its own source.
type ConsistencyError struct {
	Span   Span
	Length int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("span [%d,%d) is inconsistent with source length %d", e.Span.Begin, e.Span.End, e.Length)
}

func (e *ConsistencyError) Unwrap() error { return ErrConsistency }

func keyErrorf(sentinel error, key string) error {
	return fmt.Errorf("%w: %q", sentinel, key)
}
