package services

import (
	"log/slog"

	"github.com/vncsmyrnk/personhood/internal/core/ports"
)

const defaultFetchConcurrency = 8

type options struct {
	clock            ports.Clock
	logger           *slog.Logger
	fetchConcurrency int
	allowReissue     bool
}

type Option func(*options)

func WithClock(clock ports.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFetchConcurrency bounds how many objects one operation fetches at once.
func WithFetchConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.fetchConcurrency = n
		}
	}
}

// WithReissue lets Issue publish a fresh active credential for an address
// whose latest record is revoked. Revocation is terminal by default.
func WithReissue(allow bool) Option {
	return func(o *options) {
		o.allowReissue = allow
	}
}

func newOptions(opts []Option) options {
	o := options{
		clock:            ports.SystemClock{},
		fetchConcurrency: defaultFetchConcurrency,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = resolveLogger(o.logger)
	return o
}

// resolveLogger guarantees a non-nil logger for service code paths.
func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
