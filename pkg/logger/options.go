package logger

import (
	"io"
	"log/slog"
)

// Option tunes a logger built by New.
type Option func(*config)

// WithDebug lowers the level to Debug, which includes per-event relay logs.
func WithDebug(debug bool) Option {
	return func(c *config) {
		c.level = slog.LevelInfo
		if debug {
			c.level = slog.LevelDebug
		}
	}
}

// WithPretty selects the colourised charmbracelet/log handler used for
// interactive terminals.
func WithPretty(pretty bool) Option {
	return func(c *config) {
		c.pretty = pretty
	}
}

// WithJSON selects slog's JSON handler, as used for the serve log file.
// It takes precedence over WithPretty.
func WithJSON(json bool) Option {
	return func(c *config) {
		c.json = json
	}
}

// WithWriter sends records to w instead of os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.writer = w
	}
}

// WithSource annotates each record with the calling file and line.
func WithSource(source bool) Option {
	return func(c *config) {
		c.source = source
	}
}
