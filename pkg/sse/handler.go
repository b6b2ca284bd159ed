package sse

// StreamHandler owns a single Builder across successive batches of lines so
// callers never observe a partially built event. It is not safe for
// concurrent use; one handler belongs to one upstream session.
type StreamHandler struct {
	builder Builder
}

// NewStreamHandler returns a handler with an empty builder.
func NewStreamHandler() *StreamHandler {
	return &StreamHandler{}
}

// Feed applies lines to the held builder. If a terminator is reached, the
// completed event is returned with Complete set and the held builder is reset.
// Lines after the terminator are left for the caller (see Step.Consumed).
func (h *StreamHandler) Feed(lines []string) Step {
	step := h.builder.ReadLines(lines)
	if step.Complete {
		h.builder = NewBuilder()
		return step
	}

	h.builder = step.Builder
	return step
}

// FeedAll applies every line, resubmitting the remainder after each
// terminator, and returns all completed events in order. A trailing partial
// event stays in the held builder for the next call.
func (h *StreamHandler) FeedAll(lines []string) []Event {
	var events []Event

	for len(lines) > 0 {
		step := h.Feed(lines)
		if !step.Complete {
			break
		}
		events = append(events, step.Event)
		lines = lines[step.Consumed:]
	}

	return events
}

// Pending reports the data accumulated for the in-flight event.
func (h *StreamHandler) Pending() string {
	return h.builder.Data()
}

// Reset discards any in-flight event. The relay calls this when a session
// ends so a half-received event never leaks into the next connection.
func (h *StreamHandler) Reset() {
	h.builder = NewBuilder()
}
