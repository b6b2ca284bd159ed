package sse

import (
	"fmt"
	"strings"
)

// Tag identifies the semantic role of a single wire-format line.
type Tag int

const (
	TagID Tag = iota
	TagEvent
	TagData
	TagRetry

	// TagEnd is synthetic: it is produced for any line that contains no
	// field separator, which by convention is the blank line ending an event.
	TagEnd
)

func (t Tag) String() string {
	switch t {
	case TagID:
		return "id"
	case TagEvent:
		return "event"
	case TagData:
		return "data"
	case TagRetry:
		return "retry"
	case TagEnd:
		return "end"
	default:
		return fmt.Sprintf("Tag(%d)", int(t))
	}
}

// ParseTag maps a field name to its Tag. Field names are compared literally,
// with no case folding. "end" is not a field name and does not parse.
func ParseTag(field string) (Tag, error) {
	switch field {
	case "id":
		return TagID, nil
	case "event":
		return TagEvent, nil
	case "data":
		return TagData, nil
	case "retry":
		return TagRetry, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFieldTag, field)
	}
}

// Line is one decoded wire-format line.
type Line struct {
	Tag  Tag
	Data string
}

// ParseLine decodes a single line, with or without its trailing newline.
//
// The line is split at the first ':'. The field name before it must be a known
// tag. The value after it has at most one leading space and any trailing
// newline removed; no other whitespace is touched. A line with no ':' decodes
// to a TagEnd line with empty data.
func ParseLine(raw string) (Line, error) {
	field, value, ok := strings.Cut(raw, ":")
	if !ok {
		return Line{Tag: TagEnd}, nil
	}

	tag, err := ParseTag(field)
	if err != nil {
		return Line{}, err
	}

	value = strings.TrimPrefix(value, " ")
	value = strings.TrimRight(value, "\n")

	return Line{Tag: tag, Data: value}, nil
}
