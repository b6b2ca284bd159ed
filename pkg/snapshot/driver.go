// Package snapshot persists the most recently relayed event so a restarted
// relay can serve it before the upstream delivers anything new. Exactly one
// record is kept; there is no event history.
package snapshot

import (
	"context"
	"time"

	"github.com/papercomputeco/masque/pkg/sse"
)

// Record is the persisted form of the latest relayed event.
type Record struct {
	// Seq orders records within one relay process. Save ignores records
	// whose Seq is not greater than the stored one.
	Seq uint64

	ReceiptID  string
	SessionID  string
	EventID    *string
	EventType  *string
	Data       string
	ReceivedAt time.Time
}

// NewRecord builds a Record for ev.
func NewRecord(seq uint64, receiptID, sessionID string, ev sse.Event, receivedAt time.Time) *Record {
	ev = ev.Clone()
	return &Record{
		Seq:        seq,
		ReceiptID:  receiptID,
		SessionID:  sessionID,
		EventID:    ev.ID,
		EventType:  ev.Type,
		Data:       ev.Data,
		ReceivedAt: receivedAt.UTC(),
	}
}

// Event returns the stored event.
func (r *Record) Event() sse.Event {
	return sse.NewEvent(r.EventID, r.EventType, r.Data)
}

// Driver persists the latest event snapshot.
type Driver interface {
	// Save stores rec if it is newer than the stored record. It reports
	// whether rec replaced the stored record.
	Save(ctx context.Context, rec *Record) (bool, error)

	// Latest returns the stored record, or NotFoundError when nothing has
	// been saved yet.
	Latest(ctx context.Context) (*Record, error)

	// Close releases any resources held by the driver.
	Close() error
}
