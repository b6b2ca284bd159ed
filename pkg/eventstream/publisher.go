// Package eventstream mirrors relayed events to a downstream event stream.
package eventstream

import "context"

// Publisher publishes relayed events to an event stream backend.
type Publisher interface {
	PublishEvent(ctx context.Context, event *RelayedEvent) error
	Close() error
}
