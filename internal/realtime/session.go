package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fleetflow/console/internal/clock"
)

var (
	// ErrStopped is returned when operating on a torn-down session.
	ErrStopped = errors.New("realtime: session stopped")
	// ErrNotRunning is returned by Refresh before the session started.
	ErrNotRunning = errors.New("realtime: session not running")
	// ErrInvalidInterval is returned for non-positive intervals.
	ErrInvalidInterval = errors.New("realtime: interval must be positive")
	// ErrInvalidDwell is returned for non-positive status dwell times.
	ErrInvalidDwell = errors.New("realtime: dwell must be positive")
	// ErrNilFetch is returned when no fetch function is supplied.
	ErrNilFetch = errors.New("realtime: fetch function required")
)

// DefaultErrorMessage stands in for errors that carry no text.
const DefaultErrorMessage = "failed to fetch data"

// FetchFunc produces the latest value of a polled resource.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// State is the lifecycle position of a Session.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateReadyWithError
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateReadyWithError:
		return "ready_with_error"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Snapshot is a point-in-time copy of a session's exposed state.
type Snapshot[T any] struct {
	Data       T
	HasData    bool
	Loading    bool
	Err        error
	LastUpdate time.Time
	State      State
}

// ErrorMessage returns the human readable error, or "" when the last
// poll succeeded.
func (s Snapshot[T]) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	if msg := s.Err.Error(); msg != "" {
		return msg
	}
	return DefaultErrorMessage
}

// Session keeps one value fresh by invoking a fetch function
// immediately on Start and then on every tick of a fixed interval.
//
// Each tick runs its fetch in its own goroutine, so a hung fetch never
// delays the schedule and several fetches may be in flight at once.
// Whichever completes last wins. Every arm of the timer bumps a
// generation counter; results carrying an older generation, or arriving
// after Stop, are discarded before they touch state.
//
// A Session is owned by the caller that created it and is not reusable
// after Stop.
type Session[T any] struct {
	fetch FetchFunc[T]
	cfg   config

	mu         sync.Mutex
	idle       *sync.Cond
	state      State
	enabled    bool
	interval   time.Duration
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
	ticker     *clock.Ticker
	inflight   int

	data       T
	hasData    bool
	err        error
	lastUpdate time.Time
	loading    bool

	// observe runs under mu for every applied success; the returned
	// func, if any, runs after mu is released.
	observe func(T) func()
}

// New builds an idle session. Call Start to begin polling.
func New[T any](fetch FetchFunc[T], opts ...Option) (*Session[T], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newSession(fetch, cfg)
}

func newSession[T any](fetch FetchFunc[T], cfg config) (*Session[T], error) {
	if fetch == nil {
		return nil, ErrNilFetch
	}
	if cfg.interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, cfg.interval)
	}
	s := &Session[T]{
		fetch:    fetch,
		cfg:      cfg,
		state:    StateIdle,
		enabled:  cfg.enabled,
		interval: cfg.interval,
	}
	s.idle = sync.NewCond(&s.mu)
	return s, nil
}

// Name returns the session label.
func (s *Session[T]) Name() string { return s.cfg.name }

// Start performs the first fetch and arms the ticker. It is a no-op for
// disabled or already running sessions.
func (s *Session[T]) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateStopped:
		return ErrStopped
	case StateIdle:
	default:
		return nil
	}
	if !s.enabled {
		return nil
	}
	s.state = StateLoading
	s.loading = true
	s.armLocked()
	s.spawnLocked()
	return nil
}

// Stop cancels the ticker and in-flight fetch contexts. No state
// changes after Stop returns. Stop is idempotent.
func (s *Session[T]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Session[T]) stopLocked() {
	if s.state == StateStopped {
		return
	}
	s.disarmLocked()
	s.generation++
	s.state = StateStopped
	s.loading = false
	s.cfg.logger.Debug("realtime session stopped", zap.String("session", s.cfg.name))
}

// Refresh runs one out-of-band fetch without touching the ticker phase.
func (s *Session[T]) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateStopped:
		return ErrStopped
	case StateIdle:
		return ErrNotRunning
	}
	s.state = StateLoading
	s.loading = true
	s.spawnLocked()
	return nil
}

// SetInterval changes the cadence. A running session is torn down and
// re-armed: results of the old timer are discarded, a fetch runs
// immediately and the new ticker starts from now.
func (s *Session[T]) SetInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, d)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStopped {
		return ErrStopped
	}
	if d == s.interval {
		return nil
	}
	s.interval = d
	if s.state == StateIdle {
		return nil
	}
	s.disarmLocked()
	s.armLocked()
	s.spawnLocked()
	s.cfg.logger.Debug("realtime session re-armed",
		zap.String("session", s.cfg.name),
		zap.Duration("interval", d))
	return nil
}

// SetEnabled toggles polling. Disabling stops the session for good;
// enabling an idle session starts it. A stopped session cannot be
// re-enabled, build a new one instead.
func (s *Session[T]) SetEnabled(enabled bool) error {
	if !enabled {
		s.Stop()
		return nil
	}

	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return ErrStopped
	}
	s.enabled = true
	s.mu.Unlock()
	return s.Start()
}

// Interval returns the current cadence.
func (s *Session[T]) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// State returns the current lifecycle state.
func (s *Session[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot copies the exposed state.
func (s *Session[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot[T]{
		Data:       s.data,
		HasData:    s.hasData,
		Loading:    s.loading,
		Err:        s.err,
		LastUpdate: s.lastUpdate,
		State:      s.state,
	}
}

// Wait blocks until no fetch is in flight.
func (s *Session[T]) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.inflight > 0 {
		s.idle.Wait()
	}
}

func (s *Session[T]) armLocked() {
	s.generation++
	ctx, cancel := context.WithCancel(s.cfg.ctx)
	s.ctx = ctx
	s.cancel = cancel
	ticker := s.cfg.clock.NewTicker(s.interval)
	s.ticker = ticker
	go s.loop(ctx, s.generation, ticker)
}

func (s *Session[T]) disarmLocked() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session[T]) loop(ctx context.Context, gen uint64, ticker *clock.Ticker) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			if gen != s.generation {
				s.mu.Unlock()
				return
			}
			s.spawnLocked()
			s.mu.Unlock()
		}
	}
}

func (s *Session[T]) spawnLocked() {
	s.inflight++
	go s.poll(s.ctx, s.generation)
}

func (s *Session[T]) poll(ctx context.Context, gen uint64) {
	started := s.cfg.clock.Now()
	value, err := s.invoke(ctx)
	if s.cfg.recorder != nil {
		s.cfg.recorder.RecordPoll(s.cfg.name, err, s.cfg.clock.Now().Sub(started))
	}
	s.apply(gen, value, err)
}

func (s *Session[T]) invoke(ctx context.Context) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("realtime: fetch panicked: %v", r)
		}
	}()
	return s.fetch(ctx)
}

func (s *Session[T]) apply(gen uint64, value T, err error) {
	s.mu.Lock()
	s.inflight--
	s.idle.Broadcast()

	if gen != s.generation || s.state == StateStopped {
		s.mu.Unlock()
		s.cfg.logger.Debug("realtime discarded stale result", zap.String("session", s.cfg.name))
		return
	}

	s.loading = false
	if err != nil {
		s.err = err
		s.state = StateReadyWithError
		s.mu.Unlock()
		s.cfg.logger.Debug("realtime fetch failed",
			zap.String("session", s.cfg.name),
			zap.Error(err))
		return
	}

	s.data = value
	s.hasData = true
	s.err = nil
	now := s.cfg.clock.Now()
	if !now.After(s.lastUpdate) {
		now = s.lastUpdate.Add(time.Nanosecond)
	}
	s.lastUpdate = now
	s.state = StateReady

	var after func()
	if s.observe != nil {
		after = s.observe(value)
	}
	s.mu.Unlock()

	if after != nil {
		after()
	}
	if s.cfg.onUpdate != nil {
		s.cfg.onUpdate()
	}
}
