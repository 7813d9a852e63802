package realtime

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fleetflow/console/internal/clock"
)

// StatusFunc extracts the status field from a fetched value. It reports
// false when the value carries no status.
type StatusFunc[T any] func(T) (string, bool)

// StatusChange describes one observed transition.
type StatusChange struct {
	From string
	To   string
	At   time.Time
}

// StatusSnapshot extends Snapshot with the monitored status.
type StatusSnapshot[T any] struct {
	Snapshot[T]
	Status        string
	HasStatus     bool
	StatusChanged bool
}

// StatusMonitor is a Session that watches one status field. When a
// freshly fetched status differs from the previously observed one it
// raises StatusChanged for the dwell time. The signal fires once per
// transition, restarts its window on every new transition and always
// clears itself. The first observation is recorded silently.
type StatusMonitor[T any] struct {
	session  *Session[T]
	extract  StatusFunc[T]
	dwell    time.Duration
	clock    clock.Clock
	logger   *zap.Logger
	onChange func(StatusChange)

	mu        sync.Mutex
	status    string
	hasStatus bool
	changed   bool
	seq       uint64
	timer     *clock.Timer
	stopped   bool
}

// NewStatusMonitor builds an idle monitor. Call Start to begin polling.
func NewStatusMonitor[T any](fetch FetchFunc[T], extract StatusFunc[T], opts ...Option) (*StatusMonitor[T], error) {
	if extract == nil {
		return nil, fmt.Errorf("realtime: status extractor required")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.dwell <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDwell, cfg.dwell)
	}
	session, err := newSession(fetch, cfg)
	if err != nil {
		return nil, err
	}
	m := &StatusMonitor[T]{
		session:  session,
		extract:  extract,
		dwell:    cfg.dwell,
		clock:    cfg.clock,
		logger:   cfg.logger,
		onChange: cfg.onStatusChange,
	}
	session.observe = m.observe
	return m, nil
}

func (m *StatusMonitor[T]) Start() error                      { return m.session.Start() }
func (m *StatusMonitor[T]) Refresh() error                    { return m.session.Refresh() }
func (m *StatusMonitor[T]) SetInterval(d time.Duration) error { return m.session.SetInterval(d) }
func (m *StatusMonitor[T]) Interval() time.Duration           { return m.session.Interval() }
func (m *StatusMonitor[T]) State() State                      { return m.session.State() }
func (m *StatusMonitor[T]) Wait()                             { m.session.Wait() }
func (m *StatusMonitor[T]) Name() string                      { return m.session.Name() }

// SetEnabled mirrors Session.SetEnabled and clears the signal on disable.
func (m *StatusMonitor[T]) SetEnabled(enabled bool) error {
	if !enabled {
		m.Stop()
		return nil
	}
	return m.session.SetEnabled(true)
}

// Stop tears down the session and drops any raised signal so it cannot
// stay set forever.
func (m *StatusMonitor[T]) Stop() {
	m.session.Stop()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	m.changed = false
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// Snapshot copies session and status state.
func (m *StatusMonitor[T]) Snapshot() StatusSnapshot[T] {
	snap := m.session.Snapshot()

	m.mu.Lock()
	defer m.mu.Unlock()
	return StatusSnapshot[T]{
		Snapshot:      snap,
		Status:        m.status,
		HasStatus:     m.hasStatus,
		StatusChanged: m.changed,
	}
}

// observe runs under the session lock for every applied success.
func (m *StatusMonitor[T]) observe(value T) func() {
	status, ok := m.extract(value)
	if !ok {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return nil
	}

	previous, had := m.status, m.hasStatus
	m.status, m.hasStatus = status, true
	if !had || previous == status {
		return nil
	}

	m.changed = true
	m.seq++
	seq := m.seq
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = m.clock.AfterFunc(m.dwell, func() { m.clear(seq) })

	change := StatusChange{From: previous, To: status, At: m.clock.Now()}
	m.logger.Debug("realtime status changed",
		zap.String("session", m.session.Name()),
		zap.String("from", previous),
		zap.String("to", status))
	if m.onChange == nil {
		return nil
	}
	return func() { m.onChange(change) }
}

func (m *StatusMonitor[T]) clear(seq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.seq {
		return
	}
	m.changed = false
	m.timer = nil
}
