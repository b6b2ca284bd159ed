package sse

import "errors"

var (
	// ErrUnknownFieldTag indicates a line whose field name is not one of
	// "id", "event", "data" or "retry". Callers ignore the line.
	ErrUnknownFieldTag = errors.New("unknown field tag")

	// ErrInvalidChunk indicates a chunk of upstream bytes that is not valid
	// UTF-8 text. The lines completed by that chunk are dropped.
	ErrInvalidChunk = errors.New("invalid chunk bytes")

	// ErrLineTooLong indicates a partial line grew past the splitter's limit
	// without a newline. The partial line is dropped.
	ErrLineTooLong = errors.New("line exceeds maximum length")
)
