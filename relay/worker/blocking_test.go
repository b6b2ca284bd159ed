package worker

import (
	"context"

	"github.com/papercomputeco/masque/pkg/eventstream"
)

// blockingPublisher holds every publish until release is closed.
type blockingPublisher struct {
	release chan struct{}
}

func (b *blockingPublisher) PublishEvent(ctx context.Context, _ *eventstream.RelayedEvent) error {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}

func (b *blockingPublisher) Close() error { return nil }
