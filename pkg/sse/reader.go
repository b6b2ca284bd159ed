package sse

import (
	"errors"
	"io"
)

const defaultChunkSize = 32 * 1024

// Reader decodes SSE events from a source io.Reader. Every Read from the
// source is one chunk: it is framed into lines by a LineSplitter and fed to a
// StreamHandler, so events are reconstructed regardless of where the
// transport happens to cut the stream.
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
// │ chunks
// ▼
// ┌──────────────────┐
// │   LineSplitter   │
// └──────────────────┘
// │ lines
// ▼
// ┌──────────────────┐
// │  StreamHandler   │
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐
// │      Event       │
// └──────────────────┘
type Reader struct {
	src      io.Reader
	buf      []byte
	splitter *LineSplitter
	handler  *StreamHandler

	// pending holds events completed by the last chunk but not yet returned.
	pending []Event
	done    bool
}

// NewReader returns a Reader that decodes events from src.
func NewReader(src io.Reader) *Reader {
	return NewReaderSize(src, defaultChunkSize, DefaultMaxLineSize)
}

// NewReaderSize returns a Reader with an explicit chunk buffer size and
// maximum line length.
func NewReaderSize(src io.Reader, chunkSize, maxLine int) *Reader {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	return &Reader{
		src:      src,
		buf:      make([]byte, chunkSize),
		splitter: NewLineSplitter(maxLine),
		handler:  NewStreamHandler(),
	}
}

// Next returns the next complete event. It blocks until an event is
// terminated in the stream. Next returns nil, nil when the source is
// exhausted; an unterminated trailing event is discarded.
//
// Chunk-level decode failures are returned wrapping ErrInvalidChunk or
// ErrLineTooLong. They are recoverable: the offending bytes are dropped and the
// caller may keep calling Next. Any other error comes from the source.
func (r *Reader) Next() (*Event, error) {
	for {
		if len(r.pending) > 0 {
			ev := r.pending[0]
			r.pending = r.pending[1:]
			return &ev, nil
		}

		if r.done {
			return nil, nil
		}

		n, err := r.src.Read(r.buf)

		var splitErr error
		if n > 0 {
			var lines []string
			lines, splitErr = r.splitter.Split(r.buf[:n])
			r.pending = append(r.pending, r.handler.FeedAll(lines)...)
		}

		if errors.Is(err, io.EOF) {
			r.done = true
			r.handler.Reset()
			r.splitter.Reset()
			err = nil
		}

		switch {
		case splitErr != nil:
			return nil, splitErr
		case err != nil:
			return nil, err
		}
	}
}

// IsChunkError reports whether err is a recoverable chunk-level decode error.
func IsChunkError(err error) bool {
	return errors.Is(err, ErrInvalidChunk) || errors.Is(err, ErrLineTooLong)
}
