package minicluster

import (
	"log/slog"
	"time"
)

const (
	defaultHost          = "localhost"
	defaultHealthPath    = "/health"
	defaultMaxAttempts   = 100
	defaultRetryInterval = 1 * time.Second
	defaultStopTimeout   = 5 * time.Second
)

type options struct {
	// Host is the address apps and coordination services are probed on.
	Host string
	// HealthPath is the HTTP path polled by WaitForApp.
	HealthPath string
	// MaxAttempts bounds the readiness polling loop.
	MaxAttempts int
	// RetryInterval is the pause between readiness polling attempts.
	RetryInterval time.Duration
	// StopTimeout is the grace period given to a container on Stop.
	StopTimeout time.Duration
	Logger      *slog.Logger
}

func defaultOptions() options {
	return options{
		Host:          defaultHost,
		HealthPath:    defaultHealthPath,
		MaxAttempts:   defaultMaxAttempts,
		RetryInterval: defaultRetryInterval,
		StopTimeout:   defaultStopTimeout,
	}
}

type Option func(opt *options)

// WithHost sets the host used to reach published container ports. Defaults
// to localhost, which is the only address this utility is meant for.
func WithHost(host string) Option {
	return func(opt *options) {
		opt.Host = host
	}
}

// WithHealthPath sets the HTTP path polled by WaitForApp.
func WithHealthPath(path string) Option {
	return func(opt *options) {
		opt.HealthPath = path
	}
}

// WithMaxAttempts sets the readiness polling budget. Test suites use this to
// inject budgets much smaller than the 100-attempt default.
func WithMaxAttempts(attempts int) Option {
	return func(opt *options) {
		opt.MaxAttempts = attempts
	}
}

// WithRetryInterval sets the pause between readiness polling attempts.
func WithRetryInterval(interval time.Duration) Option {
	return func(opt *options) {
		opt.RetryInterval = interval
	}
}

// WithStopTimeout sets the grace period StopContainer gives a container
// before the daemon kills it.
func WithStopTimeout(timeout time.Duration) Option {
	return func(opt *options) {
		opt.StopTimeout = timeout
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(opt *options) {
		opt.Logger = logger
	}
}
