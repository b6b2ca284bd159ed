package sse

import (
	"errors"
	"io"
	"strings"
	"testing/iotest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// chunkReader returns the given chunks one Read at a time.
type chunkReader struct {
	chunks [][]byte
	err    error
}

func newChunkReader(chunks ...string) *chunkReader {
	r := &chunkReader{}
	for _, c := range chunks {
		r.chunks = append(r.chunks, []byte(c))
	}
	return r
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks = r.chunks[1:]
	return n, nil
}

func readAll(r *Reader) []Event {
	var events []Event
	for {
		ev, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		if ev == nil {
			return events
		}
		events = append(events, *ev)
	}
}

var _ = Describe("Reader", func() {
	Describe("Next", func() {
		Context("with standard SSE events", func() {
			It("parses a single event", func() {
				r := NewReader(strings.NewReader("data: hello world\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("hello world"))
				Expect(ev.Type).To(BeNil())
				Expect(ev.ID).To(BeNil())

				ev, err = r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).To(BeNil())
			})

			It("parses multiple events from one chunk", func() {
				events := readAll(NewReader(strings.NewReader("data: first\n\ndata: second\n\n")))

				Expect(events).To(HaveLen(2))
				Expect(events[0].Data).To(Equal("first"))
				Expect(events[1].Data).To(Equal("second"))
			})

			It("parses event type and id", func() {
				events := readAll(NewReader(strings.NewReader("id: 42\nevent: content_block_delta\ndata: {\"type\":\"delta\"}\n\n")))

				Expect(events).To(HaveLen(1))
				Expect(events[0].ID).To(HaveValue(Equal("42")))
				Expect(events[0].Type).To(HaveValue(Equal("content_block_delta")))
				Expect(events[0].Data).To(Equal("{\"type\":\"delta\"}"))
			})

			It("joins multiple data lines with newline", func() {
				events := readAll(NewReader(strings.NewReader("data: line one\ndata: line two\ndata: line three\n\n")))

				Expect(events).To(HaveLen(1))
				Expect(events[0].Data).To(Equal("line one\nline two\nline three"))
			})
		})

		Context("with arbitrary chunk boundaries", func() {
			const input = "id: 1\nevent: tick\ndata: {\"n\":1}\ndata: more\n\nid: 2\ndata: second\n\n"

			It("decodes identically when read one byte at a time", func() {
				events := readAll(NewReader(iotest.OneByteReader(strings.NewReader(input))))

				Expect(events).To(HaveLen(2))
				Expect(events[0].ID).To(HaveValue(Equal("1")))
				Expect(events[0].Type).To(HaveValue(Equal("tick")))
				Expect(events[0].Data).To(Equal("{\"n\":1}\nmore"))
				Expect(events[1].ID).To(HaveValue(Equal("2")))
				Expect(events[1].Data).To(Equal("second"))
			})

			It("decodes a field cut mid-line across chunks", func() {
				events := readAll(NewReader(newChunkReader("data: hel", "lo\n", "\n")))

				Expect(events).To(HaveLen(1))
				Expect(events[0].Data).To(Equal("hello"))
			})

			It("uses a small chunk buffer without losing data", func() {
				events := readAll(NewReaderSize(strings.NewReader(input), 3, 0))
				Expect(events).To(HaveLen(2))
			})
		})

		Context("with comments and unknown fields", func() {
			It("ignores comment lines", func() {
				events := readAll(NewReader(strings.NewReader(": this is a comment\ndata: hello\n\n")))

				Expect(events).To(HaveLen(1))
				Expect(events[0].Data).To(Equal("hello"))
			})

			It("ignores unknown and retry fields", func() {
				events := readAll(NewReader(strings.NewReader("retry: 3000\nfoo: bar\ndata: hello\n\n")))

				Expect(events).To(HaveLen(1))
				Expect(events[0].Data).To(Equal("hello"))
			})
		})

		Context("edge cases", func() {
			It("returns nil on empty input", func() {
				r := NewReader(strings.NewReader(""))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).To(BeNil())
			})

			It("completes an empty event for each blank line", func() {
				events := readAll(NewReader(strings.NewReader("\n\n")))

				Expect(events).To(HaveLen(2))
				Expect(events[0].Data).To(BeEmpty())
			})

			It("discards an event unterminated at end of stream", func() {
				events := readAll(NewReader(strings.NewReader("data: done\n\ndata: unterminated")))

				Expect(events).To(HaveLen(1))
				Expect(events[0].Data).To(Equal("done"))
			})

			It("treats a line without a colon as a terminator", func() {
				events := readAll(NewReader(strings.NewReader("data: a\ndata\n")))

				Expect(events).To(HaveLen(1))
				Expect(events[0].Data).To(Equal("a"))
			})
		})

		Context("with chunk-level failures", func() {
			It("reports an invalid chunk and keeps decoding", func() {
				r := NewReader(newChunkReader("data: \xff\n\n", "data: ok\n\n"))

				_, err := r.Next()
				Expect(err).To(MatchError(ErrInvalidChunk))
				Expect(IsChunkError(err)).To(BeTrue())

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("ok"))
			})

			It("does not turn the tail of an oversized line into an event", func() {
				r := NewReaderSize(newChunkReader(
					"id: 7\n",
					"data: "+strings.Repeat("a", 40),
					strings.Repeat("a", 10)+"\n",
					"data: real\n\n",
				), 64, 16)

				_, err := r.Next()
				Expect(err).To(MatchError(ErrLineTooLong))
				Expect(IsChunkError(err)).To(BeTrue())

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).NotTo(BeNil())
				Expect(ev.IDOrEmpty()).To(Equal("7"))
				Expect(ev.Data).To(Equal("real"))

				ev, err = r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).To(BeNil())
			})

			It("surfaces source errors", func() {
				boom := errors.New("connection reset")
				src := newChunkReader("data: a\n")
				src.err = boom
				r := NewReader(src)

				_, err := r.Next()
				Expect(err).To(MatchError(boom))
				Expect(IsChunkError(err)).To(BeFalse())
			})
		})
	})
})
