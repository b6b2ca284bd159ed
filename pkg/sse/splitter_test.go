package sse

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LineSplitter", func() {
	var s *LineSplitter

	BeforeEach(func() {
		s = NewLineSplitter(0)
	})

	It("splits a chunk into complete lines", func() {
		lines, err := s.Split([]byte("data: a\ndata: b\n\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(Equal([]string{"data: a", "data: b", ""}))
		Expect(s.Buffered()).To(Equal(0))
	})

	It("does not emit a spurious empty line for a trailing newline", func() {
		lines, err := s.Split([]byte("data: a\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(Equal([]string{"data: a"}))
	})

	It("reassembles a line cut across chunks", func() {
		lines, err := s.Split([]byte("data: hel"))
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(BeEmpty())
		Expect(s.Buffered()).To(Equal(len("data: hel")))

		lines, err = s.Split([]byte("lo\n\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(Equal([]string{"data: hello", ""}))
	})

	It("reassembles a field name cut across chunks", func() {
		_, err := s.Split([]byte("da"))
		Expect(err).NotTo(HaveOccurred())

		lines, err := s.Split([]byte("ta: x\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(Equal([]string{"data: x"}))
	})

	It("strips carriage returns from CRLF line endings", func() {
		lines, err := s.Split([]byte("data: a\r\n\r\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(Equal([]string{"data: a", ""}))
	})

	It("carries a multi-byte rune split across chunks", func() {
		snow := []byte("data: ☃\n")
		cut := len("data: ") + 1

		lines, err := s.Split(snow[:cut])
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(BeEmpty())

		lines, err = s.Split(snow[cut:])
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(Equal([]string{"data: ☃"}))
	})

	It("drops completed lines that are not valid UTF-8", func() {
		lines, err := s.Split([]byte("data: \xff\xfe\npar"))
		Expect(err).To(MatchError(ErrInvalidChunk))
		Expect(lines).To(BeNil())

		lines, err = s.Split([]byte("tial\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(Equal([]string{"partial"}))
	})

	It("drops a partial line that exceeds the limit", func() {
		s = NewLineSplitter(8)

		_, err := s.Split([]byte("data: 0123456789"))
		Expect(err).To(MatchError(ErrLineTooLong))
		Expect(s.Buffered()).To(Equal(0))

		lines, err := s.Split([]byte("data: ok\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(Equal([]string{"data: ok"}))
	})

	It("skips the tail of a dropped line in later chunks", func() {
		s = NewLineSplitter(8)

		_, err := s.Split([]byte("data: 0123456789"))
		Expect(err).To(MatchError(ErrLineTooLong))

		lines, err := s.Split([]byte("abcdef"))
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(BeEmpty())

		lines, err = s.Split([]byte("ghij\ndata: ok\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(Equal([]string{"data: ok"}))
	})

	It("limits the carried tail of a chunk that also completes lines", func() {
		s = NewLineSplitter(8)

		lines, err := s.Split([]byte("id: 1\ndata: 0123456789"))
		Expect(err).To(MatchError(ErrLineTooLong))
		Expect(lines).To(Equal([]string{"id: 1"}))
		Expect(s.Buffered()).To(Equal(0))

		lines, err = s.Split([]byte("tail\ndata: ok\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(Equal([]string{"data: ok"}))
	})

	It("stops skipping after Reset", func() {
		s = NewLineSplitter(8)

		_, err := s.Split([]byte("data: 0123456789"))
		Expect(err).To(MatchError(ErrLineTooLong))
		s.Reset()

		lines, err := s.Split([]byte("data: ok\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(Equal([]string{"data: ok"}))
	})

	It("does not alias the caller's buffer", func() {
		chunk := []byte("data: abc")
		_, err := s.Split(chunk)
		Expect(err).NotTo(HaveOccurred())
		copy(chunk, "XXXXXXXXX")

		lines, err := s.Split([]byte("\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(Equal([]string{"data: abc"}))
	})
})
