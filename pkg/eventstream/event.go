package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/masque/pkg/sse"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeRelayed is emitted for every event the relay decodes.
	EventTypeRelayed = "masque.event.relayed"
)

// RelayedEvent is a transport-neutral payload describing one decoded
// upstream event.
type RelayedEvent struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	ReceiptID     string      `json:"receipt_id"`
	EmittedAt     time.Time   `json:"emitted_at"`
	Source        EventSource `json:"source"`
	Seq           uint64      `json:"seq"`
	Event         sse.Event   `json:"event"`
}

// EventSource identifies the upstream subscription the event arrived on.
type EventSource struct {
	Upstream  string `json:"upstream"`
	SessionID string `json:"session_id"`
}

// NewRelayedEvent builds a v1 payload for ev. receiptID may be empty, in
// which case a new one is generated.
func NewRelayedEvent(receiptID string, source EventSource, seq uint64, ev sse.Event, emittedAt time.Time) *RelayedEvent {
	if receiptID == "" {
		receiptID = uuid.NewString()
	}

	return &RelayedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeRelayed,
		ReceiptID:     receiptID,
		EmittedAt:     emittedAt.UTC(),
		Source:        source,
		Seq:           seq,
		Event:         ev.Clone(),
	}
}
