// Package worker provides an asynchronous worker pool that carries each relayed
// event to the optional side effects: the latest-event snapshot and the event
// stream mirror.
//
// The pool decouples those operations from the relay's ingest loop so a slow
// database or broker never delays the Store update that serves clients.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/masque/pkg/eventstream"
	"github.com/papercomputeco/masque/pkg/snapshot"
	"github.com/papercomputeco/masque/pkg/sse"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
	defaultJobTimeout        = 10 * time.Second
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Seq        uint64
	SessionID  string
	Upstream   string
	Event      sse.Event
	ReceivedAt time.Time
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Snapshot is the optional driver the latest event is persisted to.
	Snapshot snapshot.Driver

	// Publisher is the optional event stream each event is mirrored to.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// JobTimeout bounds each job's snapshot and publish calls (defaults to 10s).
	JobTimeout time.Duration

	Logger *slog.Logger
}

// Pool processes relayed events asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.JobTimeout == 0 {
		c.JobTimeout = defaultJobTimeout
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		return nil, fmt.Errorf("worker pool requires a logger")
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			"seq", job.Seq,
			"session_id", job.SessionID,
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			"seq", job.Seq,
			"session_id", job.SessionID,
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the ingest loop has returned.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("worker stopped", "worker_id", id)
}

// processJob saves the snapshot and publishes the event. Both share one
// receipt id so the two records can be correlated. Errors are logged only.
func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.JobTimeout)
	defer cancel()

	receiptID := uuid.NewString()

	if p.config.Snapshot != nil {
		rec := snapshot.NewRecord(job.Seq, receiptID, job.SessionID, job.Event, job.ReceivedAt)
		saved, err := p.config.Snapshot.Save(ctx, rec)
		if err != nil {
			p.logger.Error("snapshot save failed",
				"seq", job.Seq,
				"error", err,
			)
		} else {
			p.logger.Debug("snapshot saved",
				"seq", job.Seq,
				"replaced", saved,
			)
		}
	}

	if p.config.Publisher != nil {
		source := eventstream.EventSource{
			Upstream:  job.Upstream,
			SessionID: job.SessionID,
		}
		ev := eventstream.NewRelayedEvent(receiptID, source, job.Seq, job.Event, job.ReceivedAt)
		if err := p.config.Publisher.PublishEvent(ctx, ev); err != nil {
			p.logger.Error("event publish failed",
				"seq", job.Seq,
				"receipt_id", receiptID,
				"error", err,
			)
			return
		}

		p.logger.Debug("event published",
			"seq", job.Seq,
			"receipt_id", receiptID,
		)
	}
}
