package realtime

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fleetflow/console/internal/clock"
)

const (
	// DefaultInterval is the cadence for generic sessions.
	DefaultInterval = 10 * time.Second
	// DashboardInterval is the cadence dashboard metrics are polled at.
	DashboardInterval = 5 * time.Second
	// StatusChangeDwell is how long StatusChanged stays raised.
	StatusChangeDwell = 3 * time.Second
)

// Recorder observes poll outcomes. observability.Metrics implements it.
type Recorder interface {
	RecordPoll(session string, err error, duration time.Duration)
}

type config struct {
	ctx            context.Context
	enabled        bool
	interval       time.Duration
	dwell          time.Duration
	name           string
	onUpdate       func()
	onStatusChange func(StatusChange)
	clock          clock.Clock
	logger         *zap.Logger
	recorder       Recorder
}

func defaultConfig() config {
	return config{
		ctx:      context.Background(),
		enabled:  true,
		interval: DefaultInterval,
		dwell:    StatusChangeDwell,
		name:     "session",
		clock:    clock.Real(),
		logger:   zap.NewNop(),
	}
}

// Option configures a Session or StatusMonitor.
type Option func(*config)

// WithEnabled gates polling. A disabled session never fetches.
func WithEnabled(enabled bool) Option {
	return func(c *config) { c.enabled = enabled }
}

// WithInterval sets the tick cadence. It must be positive.
func WithInterval(d time.Duration) Option {
	return func(c *config) { c.interval = d }
}

// WithOnUpdate registers a callback run once per applied success,
// after state has been updated.
func WithOnUpdate(fn func()) Option {
	return func(c *config) { c.onUpdate = fn }
}

// WithContext sets the parent of every fetch context.
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// WithClock swaps the time source.
func WithClock(clk clock.Clock) Option {
	return func(c *config) {
		if clk != nil {
			c.clock = clk
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(c *config) { c.recorder = r }
}

// WithName labels the session in logs and metrics.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

// WithDwell overrides how long a status change stays signalled.
func WithDwell(d time.Duration) Option {
	return func(c *config) { c.dwell = d }
}

// WithStatusChange registers a callback invoked once per detected
// status transition.
func WithStatusChange(fn func(StatusChange)) Option {
	return func(c *config) { c.onStatusChange = fn }
}
