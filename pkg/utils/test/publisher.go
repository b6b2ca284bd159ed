package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/masque/pkg/eventstream"
)

// MockPublisher is a test eventstream publisher that records published
// events.
type MockPublisher struct {
	mu sync.Mutex

	// Events accumulates every published event.
	Events []*eventstream.RelayedEvent

	// FailPublish causes PublishEvent to return an error.
	FailPublish bool

	Closed bool
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishEvent(_ context.Context, event *eventstream.RelayedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailPublish {
		return errors.New("mock publish failure")
	}
	if event == nil {
		return eventstream.ErrNilEvent
	}

	m.Events = append(m.Events, event)
	return nil
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Closed = true
	return nil
}

// Published returns a copy of the events published so far.
func (m *MockPublisher) Published() []*eventstream.RelayedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*eventstream.RelayedEvent(nil), m.Events...)
}
