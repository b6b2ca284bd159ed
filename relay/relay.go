// Package relay provides the ingest side of masque: it subscribes to an
// upstream SSE stream, decodes events and keeps the most recent one in a
// Store for the serve path to read.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/papercomputeco/masque/pkg/snapshot"
	"github.com/papercomputeco/masque/pkg/sse"
	"github.com/papercomputeco/masque/pkg/store"
	"github.com/papercomputeco/masque/pkg/utils"
	"github.com/papercomputeco/masque/relay/header"
	"github.com/papercomputeco/masque/relay/worker"
)

const (
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 30 * time.Second

	// errorBodyLimit caps how much of a rejected response is kept.
	errorBodyLimit = 512

	logDataLimit = 120
)

// Relay subscribes to an upstream SSE stream and writes every completed event
// into its Store. Side effects (snapshot, event stream) are handed to a worker
// pool so they never delay the Store update.
type Relay struct {
	config        Config
	store         *store.Store[sse.Event]
	workerPool    *worker.Pool
	logger        *slog.Logger
	httpClient    *http.Client
	headerHandler *header.Handler

	// seq numbers decoded events. It continues from a restored snapshot.
	seq atomic.Uint64

	mu          sync.RWMutex
	lastEventID string
	sessionID   string
}

// NewStore creates the Store shared by the relay and the serve path. Its
// initial value is an event carrying only initialData.
func NewStore(initialData string) *store.Store[sse.Event] {
	return store.New(sse.Event{Data: initialData}, store.WithClone(sse.Event.Clone))
}

// New creates a new Relay writing into st.
func New(config Config, st *store.Store[sse.Event], logger *slog.Logger) (*Relay, error) {
	if config.UpstreamURL == "" {
		return nil, errors.New("upstream url is required")
	}

	u, err := url.Parse(config.UpstreamURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("upstream url must be http or https, got %q", config.UpstreamURL)
	}

	if st == nil {
		return nil, errors.New("store is required")
	}

	if logger == nil {
		return nil, errors.New("logger is required")
	}

	if config.InitialBackoff <= 0 {
		config.InitialBackoff = defaultInitialBackoff
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = defaultMaxBackoff
	}
	if config.MaxBackoff < config.InitialBackoff {
		config.MaxBackoff = config.InitialBackoff
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		// No Timeout: the subscription is expected to stay open indefinitely
		// and is bounded by the Run context instead.
		httpClient = &http.Client{}
	}

	wp, err := worker.NewPool(&worker.Config{
		Snapshot:   config.Snapshot,
		Publisher:  config.Publisher,
		NumWorkers: config.NumWorkers,
		QueueSize:  config.QueueSize,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create worker pool: %w", err)
	}

	return &Relay{
		config:        config,
		store:         st,
		workerPool:    wp,
		logger:        logger,
		httpClient:    httpClient,
		headerHandler: header.NewHandler(config.Username, config.Password),
	}, nil
}

// Restore seeds the Store from the snapshot driver, if one is configured, so a
// restarted relay serves the last known event before the upstream emits again.
// Sequence numbering and Last-Event-ID resume from the snapshot.
func (r *Relay) Restore(ctx context.Context) error {
	if r.config.Snapshot == nil {
		return nil
	}

	rec, err := r.config.Snapshot.Latest(ctx)
	if err != nil {
		if snapshot.IsNotFound(err) {
			r.logger.Debug("no snapshot to restore")
			return nil
		}
		return fmt.Errorf("loading snapshot: %w", err)
	}

	if _, err := r.store.Update(rec.Event()); err != nil {
		return fmt.Errorf("restoring snapshot into store: %w", err)
	}

	r.seq.Store(rec.Seq)
	if rec.EventID != nil {
		r.setLastEventID(*rec.EventID)
	}

	r.logger.Info("restored snapshot",
		"seq", rec.Seq,
		"received_at", rec.ReceivedAt,
	)

	return nil
}

// Run subscribes to the upstream until ctx is cancelled, reconnecting with
// exponential backoff whenever the stream ends or fails.
//
// Run returns nil when ctx is cancelled. It returns an error wrapping
// store.ErrPoisoned if the Store can no longer be written, and one wrapping
// ErrRetriesExhausted once MaxRetries consecutive cycles decoded nothing.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("starting relay",
		"upstream", r.config.UpstreamURL,
		"max_retries", r.config.MaxRetries,
	)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.config.InitialBackoff
	b.MaxInterval = r.config.MaxBackoff
	b.Reset()

	var failures uint
	for {
		decoded, err := r.subscribe(ctx)
		if ctx.Err() != nil {
			r.logger.Info("relay stopped")
			return nil
		}

		if errors.Is(err, store.ErrPoisoned) {
			r.logger.Error("store poisoned, stopping relay", "error", err)
			return err
		}

		if decoded > 0 {
			failures = 0
			b.Reset()
		} else {
			failures++
			if r.config.MaxRetries > 0 && failures > r.config.MaxRetries {
				return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, failures, err)
			}
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			wait = r.config.MaxBackoff
		}

		r.logger.Warn("upstream disconnected, reconnecting",
			"error", err,
			"events", decoded,
			"failures", failures,
			"backoff", wait,
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			r.logger.Info("relay stopped")
			return nil
		case <-timer.C:
		}
	}
}

// Close waits for queued side effects to drain. Call it after Run returns.
func (r *Relay) Close() {
	r.workerPool.Close()
}

// Seq returns the sequence number of the most recent event.
func (r *Relay) Seq() uint64 {
	return r.seq.Load()
}

// LastEventID returns the id of the most recent event that carried one.
func (r *Relay) LastEventID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastEventID
}

// SessionID returns the id of the current, or last, subscribe cycle.
func (r *Relay) SessionID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessionID
}

func (r *Relay) setLastEventID(id string) {
	r.mu.Lock()
	r.lastEventID = id
	r.mu.Unlock()
}

// subscribe runs one subscribe cycle and returns how many events it decoded.
// The returned error is never nil: a clean end of stream is ErrStreamEnded.
func (r *Relay) subscribe(ctx context.Context) (int, error) {
	sessionID := uuid.NewString()
	r.mu.Lock()
	r.sessionID = sessionID
	r.mu.Unlock()

	logger := r.logger.With("session_id", sessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.config.UpstreamURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating upstream request: %w", err)
	}
	r.headerHandler.SetUpstreamRequestHeaders(req, r.LastEventID())

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("subscribing to upstream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || !header.IsEventStream(resp) {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return 0, &UpstreamStatusError{
			StatusCode:  resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),
			Body:        strings.TrimSpace(string(body)),
		}
	}

	logger.Info("subscribed to upstream",
		"upstream", r.config.UpstreamURL,
		"last_event_id", req.Header.Get(header.LastEventIDHeader),
	)

	reader := sse.NewReaderSize(resp.Body, r.config.ChunkSize, r.config.MaxLineSize)

	decoded := 0
	for {
		ev, err := reader.Next()
		if err != nil {
			if sse.IsChunkError(err) {
				logger.Warn("dropping undecodable upstream bytes", "error", err)
				continue
			}
			return decoded, fmt.Errorf("reading upstream: %w", err)
		}

		if ev == nil {
			return decoded, ErrStreamEnded
		}

		if r.config.DropEmpty && isEmpty(ev) {
			logger.Debug("dropping empty event")
			continue
		}

		if err := r.handleEvent(sessionID, *ev, logger); err != nil {
			return decoded, err
		}
		decoded++
	}
}

// handleEvent publishes a completed event to the Store and queues its side
// effects.
func (r *Relay) handleEvent(sessionID string, ev sse.Event, logger *slog.Logger) error {
	receivedAt := time.Now().UTC()

	if _, err := r.store.Update(ev); err != nil {
		return fmt.Errorf("updating store: %w", err)
	}

	if ev.ID != nil {
		r.setLastEventID(*ev.ID)
	}

	seq := r.seq.Add(1)

	logger.Debug("event relayed",
		"seq", seq,
		"id", ev.IDOrEmpty(),
		"event", ev.TypeOrEmpty(),
		"data", utils.Truncate(ev.Data, logDataLimit),
	)

	r.workerPool.Enqueue(worker.Job{
		Seq:        seq,
		SessionID:  sessionID,
		Upstream:   r.config.UpstreamURL,
		Event:      ev,
		ReceivedAt: receivedAt,
	})

	return nil
}

func isEmpty(ev *sse.Event) bool {
	return ev.ID == nil && ev.Type == nil && ev.Data == ""
}
