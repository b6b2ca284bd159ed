package sse

// Builder accumulates the fields of one in-flight event. The zero value is an
// empty builder ready for its first line.
//
// Builder methods never mutate the receiver: each transition returns the next
// Builder, so a caller holding an older value still sees the older state.
type Builder struct {
	id      *string
	typ     *string
	data    string
	hasData bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() Builder {
	return Builder{}
}

// Step is the outcome of applying one or more lines to a Builder.
//
// When Complete is false, Builder holds the accumulated state to continue
// from. When Complete is true, Event holds the finished event and Builder is
// empty. Consumed counts the lines that were applied, terminator included.
type Step struct {
	Builder  Builder
	Event    Event
	Complete bool
	Consumed int
}

// WithID returns a copy of b with the id field set.
func (b Builder) WithID(id string) Builder {
	b.id = &id
	return b
}

// WithType returns a copy of b with the event type field set.
func (b Builder) WithType(eventType string) Builder {
	b.typ = &eventType
	return b
}

// WithData returns a copy of b with its data replaced.
func (b Builder) WithData(data string) Builder {
	b.data = data
	b.hasData = true
	return b
}

// ExtendData returns a copy of b with data appended. The first data field
// sets the buffer, later fields are joined with "\n".
func (b Builder) ExtendData(data string) Builder {
	if !b.hasData {
		return b.WithData(data)
	}
	b.data = b.data + "\n" + data
	return b
}

// Data returns the data accumulated so far.
func (b Builder) Data() string {
	return b.data
}

// ReadLine applies a single raw line. Lines that fail to decode leave the
// builder unchanged and are still counted as consumed.
func (b Builder) ReadLine(raw string) Step {
	line, err := ParseLine(raw)
	if err != nil {
		return Step{Builder: b, Consumed: 1}
	}

	switch line.Tag {
	case TagID:
		return Step{Builder: b.WithID(line.Data), Consumed: 1}
	case TagEvent:
		return Step{Builder: b.WithType(line.Data), Consumed: 1}
	case TagData:
		return Step{Builder: b.ExtendData(line.Data), Consumed: 1}
	case TagEnd:
		return Step{Event: b.Build(), Complete: true, Consumed: 1}
	default:
		// Retry hints are accepted but unused: there is no reconnect policy
		// driven by the stream itself.
		return Step{Builder: b, Consumed: 1}
	}
}

// ReadLines applies lines in order and stops at the first terminator. Lines
// after the terminator are not processed; Step.Consumed tells the caller where
// to resume.
func (b Builder) ReadLines(lines []string) Step {
	current := b
	for i, raw := range lines {
		step := current.ReadLine(raw)
		if step.Complete {
			step.Consumed = i + 1
			return step
		}
		current = step.Builder
	}

	return Step{Builder: current, Consumed: len(lines)}
}

// Build finalizes the accumulated fields into an Event.
func (b Builder) Build() Event {
	return NewEvent(b.id, b.typ, b.data)
}
