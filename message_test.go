package recfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityStrings(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warn", SeverityWarn.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "unknown", Severity(99).String())
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, SeverityInfo, parseSeverity("info"))
	assert.Equal(t, SeverityWarn, parseSeverity("warn"))
	assert.Equal(t, SeverityError, parseSeverity("error"))
	// Anything unrecognized is promoted, never dropped.
	assert.Equal(t, SeverityError, parseSeverity("fatal"))
	assert.Equal(t, SeverityError, parseSeverity(""))
}

func TestMessageListDedupeIgnoresRow(t *testing.T) {
	var l messageList
	l.add(Message{Severity: SeverityWarn, ID: "w1", Args: []string{"a"}, Row: 1})
	l.add(Message{Severity: SeverityWarn, ID: "w1", Args: []string{"a"}, Row: 2})
	assert.Len(t, l.msgs, 1)

	// A different arg list is a different message.
	l.add(Message{Severity: SeverityWarn, ID: "w1", Args: []string{"b"}})
	assert.Len(t, l.msgs, 2)

	// So is a different field reference.
	l.add(Message{Severity: SeverityWarn, ID: "w1", Args: []string{"a"}, Field: "f"})
	assert.Len(t, l.msgs, 3)
}

func TestMessageListCloneIsIndependent(t *testing.T) {
	var l messageList
	l.add(Message{Severity: SeverityInfo, ID: "i1", Args: []string{"x"}})

	c := l.clone()
	c.add(Message{Severity: SeverityError, ID: "e1"})
	c.msgs[0].Args[0] = "mutated"

	assert.Len(t, l.msgs, 1)
	assert.Equal(t, "x", l.msgs[0].Args[0])
	assert.False(t, l.hasError())
	assert.True(t, c.hasError())
}
