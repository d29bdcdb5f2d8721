package bytefile

import (
	"io"
	"log/slog"
)

// DefaultHighWaterMark is the tail-buffer size above which Write
// triggers an automatic flush.
const DefaultHighWaterMark = 50 * 1024 * 1024

// Option configures Open via the functional-options pattern.
type Option func(*options)

type options struct {
	writable      bool
	highWaterMark int64
	logger        *slog.Logger
}

func defaultOptions() options {
	return options{
		highWaterMark: DefaultHighWaterMark,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithWritable opens the file read-write, creating it if necessary.
// Without this option, a File is read-only and every mutating method
// returns ErrReadOnly.
func WithWritable() Option {
	return func(o *options) {
		o.writable = true
	}
}

// WithHighWaterMark overrides DefaultHighWaterMark.
func WithHighWaterMark(n int64) Option {
	return func(o *options) {
		o.highWaterMark = n
	}
}

// WithLogger sets a logger for Open/Flush/Reload/Truncate to report
// progress on. If not provided, no logging output is produced.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
