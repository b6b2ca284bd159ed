package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/masque/pkg/snapshot"
)

// MockSnapshotDriver is a test snapshot driver that records calls and returns
// configurable results.
type MockSnapshotDriver struct {
	mu sync.Mutex

	// Saved accumulates every record passed to Save.
	Saved []*snapshot.Record

	// Stored is returned by Latest. Nil yields snapshot.NotFoundError.
	Stored *snapshot.Record

	// FailSave causes Save to return an error.
	FailSave bool

	// FailLatest causes Latest to return an error.
	FailLatest bool

	Closed bool
}

// NewMockSnapshotDriver creates a new mock snapshot driver.
func NewMockSnapshotDriver() *MockSnapshotDriver {
	return &MockSnapshotDriver{}
}

func (m *MockSnapshotDriver) Save(_ context.Context, rec *snapshot.Record) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSave {
		return false, errors.New("mock save failure")
	}

	m.Saved = append(m.Saved, rec)
	if m.Stored == nil || rec.Seq > m.Stored.Seq {
		m.Stored = rec
		return true, nil
	}
	return false, nil
}

func (m *MockSnapshotDriver) Latest(_ context.Context) (*snapshot.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailLatest {
		return nil, errors.New("mock latest failure")
	}
	if m.Stored == nil {
		return nil, snapshot.NotFoundError{}
	}
	return m.Stored, nil
}

func (m *MockSnapshotDriver) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Closed = true
	return nil
}

// SavedCount returns how many records Save has received.
func (m *MockSnapshotDriver) SavedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.Saved)
}
