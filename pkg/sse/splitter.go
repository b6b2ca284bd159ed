package sse

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// DefaultMaxLineSize bounds how large a single unterminated line may grow
// before the splitter gives up on it.
const DefaultMaxLineSize = 1024 * 1024

// LineSplitter frames an arbitrarily chunked byte stream into lines. The
// trailing partial line of each chunk is buffered and prepended to the next
// chunk, so a field cut across a chunk boundary is reassembled rather than
// decoded as two malformed lines.
type LineSplitter struct {
	partial []byte
	maxLine int

	// discarding is set after an oversized line was dropped. Bytes are
	// skipped until that line's terminating newline.
	discarding bool
}

// NewLineSplitter returns a splitter that drops partial lines longer than
// maxLine bytes. A non-positive maxLine uses DefaultMaxLineSize.
func NewLineSplitter(maxLine int) *LineSplitter {
	if maxLine <= 0 {
		maxLine = DefaultMaxLineSize
	}

	return &LineSplitter{maxLine: maxLine}
}

// Split appends chunk to the buffered partial line and returns every complete
// line, without its "\n" or "\r\n" terminator.
//
// If the completed lines are not valid UTF-8 they are dropped and the error
// wraps ErrInvalidChunk. If the buffered partial line exceeds the size limit
// it is dropped, together with the rest of that line in later chunks, and the
// error wraps ErrLineTooLong; lines completed before it are still returned.
// In both cases the splitter stays usable for the next chunk.
func (s *LineSplitter) Split(chunk []byte) ([]string, error) {
	if s.discarding {
		i := bytes.IndexByte(chunk, '\n')
		if i == -1 {
			return nil, nil
		}
		chunk = chunk[i+1:]
		s.discarding = false
	}

	buf := append(s.partial, chunk...)

	last := bytes.LastIndexByte(buf, '\n')
	if last == -1 {
		if len(buf) > s.maxLine {
			return nil, s.dropPartial(len(buf))
		}
		s.partial = buf
		return nil, nil
	}

	complete := buf[:last+1]
	rest := buf[last+1:]

	var tooLong error
	if len(rest) > s.maxLine {
		tooLong = s.dropPartial(len(rest))
	} else {
		// Keep the remainder in its own backing array; buf may alias the
		// caller's read buffer on the next call otherwise.
		s.partial = append([]byte(nil), rest...)
	}

	if !utf8.Valid(complete) {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidChunk, len(complete))
	}

	raw := bytes.Split(complete[:len(complete)-1], []byte{'\n'})
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = string(bytes.TrimSuffix(l, []byte{'\r'}))
	}

	return lines, tooLong
}

func (s *LineSplitter) dropPartial(n int) error {
	s.partial = nil
	s.discarding = true
	return fmt.Errorf("%w: %d bytes without newline", ErrLineTooLong, n)
}

// Buffered returns the number of bytes held for an unterminated line.
func (s *LineSplitter) Buffered() int {
	return len(s.partial)
}

// Reset discards the buffered partial line.
func (s *LineSplitter) Reset() {
	s.partial = nil
	s.discarding = false
}
