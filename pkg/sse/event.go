// Package sse provides an incremental decoder for the SSE (Server-Sent Events)
// wire format as consumed by the masque relay. Bytes arrive from the upstream in
// arbitrary chunks; the decoder frames them into lines, classifies each line and
// accumulates fields until a terminator line completes an event.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Event represents a single decoded SSE event. Events are only created by
// Builder.Build and are treated as immutable values afterwards.
type Event struct {
	// ID is the value of the last "id:" field seen for this event, or nil
	// when the event carried no id field.
	ID *string `json:"id,omitempty"`

	// Type is the value of the last "event:" field seen for this event, or
	// nil when the event carried no event field.
	Type *string `json:"event,omitempty"`

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n".
	Data string `json:"data"`
}

// NewEvent creates an Event from its parts, copying id and eventType. A nil
// pointer means the field was absent; a pointer to "" means it was present
// but empty.
func NewEvent(id, eventType *string, data string) Event {
	return Event{
		ID:   cloneString(id),
		Type: cloneString(eventType),
		Data: data,
	}
}

// IDOrEmpty returns the event id, or "" when absent.
func (e Event) IDOrEmpty() string {
	if e.ID == nil {
		return ""
	}
	return *e.ID
}

// TypeOrEmpty returns the event type, or "" when absent.
func (e Event) TypeOrEmpty() string {
	if e.Type == nil {
		return ""
	}
	return *e.Type
}

// Clone returns a deep copy of the event so the copy shares no pointers with e.
func (e Event) Clone() Event {
	return NewEvent(e.ID, e.Type, e.Data)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
