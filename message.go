package recfmt

import "strings"

// Severity grades a diagnostic Message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// parseSeverity is the inverse of Severity.String. Unknown texts map to
// SeverityError so a garbled message is never silently downgraded.
func parseSeverity(text string) Severity {
	switch text {
	case "info":
		return SeverityInfo
	case "warn":
		return SeverityWarn
	default:
		return SeverityError
	}
}

// Message is one entry of a record's diagnostic channel: a message id with
// replacement arguments, optionally referencing the field and 1-based row
// it concerns (Row 0 means no row reference).
type Message struct {
	Severity Severity
	ID       string
	Args     []string
	Field    string
	Row      int
}

// dedupeKey identifies a message for de-duplication: severity, id, args,
// and field reference. The row reference deliberately does not
// participate.
func (m Message) dedupeKey() string {
	return m.Severity.String() + "\x00" + m.ID + "\x00" + strings.Join(m.Args, "\x00") + "\x00" + m.Field
}

func (m Message) clone() Message {
	out := m
	if m.Args != nil {
		out.Args = make([]string, len(m.Args))
		copy(out.Args, m.Args)
	}
	return out
}

// messageList keeps messages in arrival order and drops exact re-adds.
type messageList struct {
	msgs []Message
	seen map[string]struct{}
}

// add appends a copy of m unless an identical message is already present;
// re-adding is a silent no-op.
func (l *messageList) add(m Message) {
	key := m.dedupeKey()
	if l.seen == nil {
		l.seen = make(map[string]struct{})
	}
	if _, dup := l.seen[key]; dup {
		return
	}
	l.seen[key] = struct{}{}
	l.msgs = append(l.msgs, m.clone())
}

func (l *messageList) clone() messageList {
	var out messageList
	for _, m := range l.msgs {
		out.add(m)
	}
	return out
}

func (l *messageList) hasError() bool {
	for _, m := range l.msgs {
		if m.Severity >= SeverityError {
			return true
		}
	}
	return false
}
