package relay

import (
	"net/http"
	"time"

	"github.com/papercomputeco/masque/pkg/eventstream"
	"github.com/papercomputeco/masque/pkg/snapshot"
)

// Config is the relay configuration.
type Config struct {
	// UpstreamURL is the SSE endpoint to subscribe to
	// (e.g., "https://www.masquerade.io/api/v1/stream/dev/dev/")
	UpstreamURL string

	// Username and Password are sent as HTTP Basic credentials when
	// Username is non-empty.
	Username string
	Password string

	// MaxRetries is the number of consecutive failed subscribe cycles
	// tolerated before Run gives up. Zero retries forever.
	MaxRetries uint

	// InitialBackoff and MaxBackoff bound the exponential reconnect delay.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// HTTPClient is used for the upstream subscription. It must not set a
	// Timeout, which would cut the long-lived stream.
	HTTPClient *http.Client

	// Snapshot is an optional driver the latest event is persisted to and
	// restored from.
	Snapshot snapshot.Driver

	// Publisher is an optional event stream each decoded event is mirrored to.
	Publisher eventstream.Publisher

	// NumWorkers and QueueSize size the side effect worker pool.
	NumWorkers uint
	QueueSize  uint

	// ChunkSize is the upstream read buffer size.
	ChunkSize int

	// MaxLineSize bounds an unterminated line before it is dropped.
	MaxLineSize int

	// DropEmpty skips events that carry no id, no event type and no data,
	// such as keep-alive comments followed by a blank line.
	DropEmpty bool
}
