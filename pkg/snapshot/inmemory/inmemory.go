// Package inmemory provides a process-local snapshot driver.
package inmemory

import (
	"context"
	"sync"

	"github.com/papercomputeco/masque/pkg/snapshot"
)

// Driver implements snapshot.Driver in memory.
type Driver struct {
	// mu guards latest
	mu sync.RWMutex

	latest *snapshot.Record
}

// NewDriver creates an empty in-memory snapshot driver.
func NewDriver() *Driver {
	return &Driver{}
}

// Save stores a copy of rec if its Seq is newer than the stored one.
func (d *Driver) Save(_ context.Context, rec *snapshot.Record) (bool, error) {
	if rec == nil {
		return false, snapshot.ErrNilRecord
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.latest != nil && rec.Seq <= d.latest.Seq {
		return false, nil
	}

	d.latest = copyRecord(rec)
	return true, nil
}

// Latest returns a copy of the stored record.
func (d *Driver) Latest(_ context.Context) (*snapshot.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.latest == nil {
		return nil, snapshot.NotFoundError{}
	}

	return copyRecord(d.latest), nil
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}

func copyRecord(rec *snapshot.Record) *snapshot.Record {
	ev := rec.Event()
	cp := *rec
	cp.EventID = ev.ID
	cp.EventType = ev.Type
	return &cp
}
