package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetflow/console/internal/clock"
)

type vehicle struct {
	ID     string
	Status string
}

func vehicleStatus(v vehicle) (string, bool) {
	return v.Status, v.Status != ""
}

// feed serves statuses in order, repeating the last one.
func feed(statuses ...string) (*counter, FetchFunc[vehicle]) {
	c := &counter{script: func(_ context.Context, call int) (int, error) { return call, nil }}
	fetch := func(ctx context.Context) (vehicle, error) {
		n, _ := c.fetch(ctx)
		if n > len(statuses) {
			n = len(statuses)
		}
		return vehicle{ID: "VH-1", Status: statuses[n-1]}, nil
	}
	return c, fetch
}

type changeLog struct {
	mu      sync.Mutex
	changes []StatusChange
}

func (l *changeLog) record(c StatusChange) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.changes = append(l.changes, c)
}

func (l *changeLog) transitions() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.changes))
	for _, c := range l.changes {
		out = append(out, c.From+"->"+c.To)
	}
	return out
}

func TestStatusMonitorEdgeTriggered(t *testing.T) {
	clk := clock.Fake(epoch)
	c, fetch := feed("A", "A", "B", "B", "C")
	log := &changeLog{}

	m, err := NewStatusMonitor(fetch, vehicleStatus,
		WithClock(clk),
		WithInterval(10*time.Second),
		WithStatusChange(log.record))
	require.NoError(t, err)
	require.NoError(t, m.Start())
	defer m.Stop()

	waitCalls(t, c, 1)
	m.Wait()
	snap := m.Snapshot()
	assert.Equal(t, "A", snap.Status)
	assert.False(t, snap.StatusChanged, "first observation must not signal")

	tick(t, clk, m, c, 10*time.Second) // A
	assert.False(t, m.Snapshot().StatusChanged)

	tick(t, clk, m, c, 10*time.Second) // B
	snap = m.Snapshot()
	assert.Equal(t, "B", snap.Status)
	assert.True(t, snap.StatusChanged)

	clk.Advance(StatusChangeDwell)
	assert.False(t, m.Snapshot().StatusChanged, "signal must clear after the dwell")

	tick(t, clk, m, c, 7*time.Second) // B repeat
	assert.False(t, m.Snapshot().StatusChanged)

	tick(t, clk, m, c, 10*time.Second) // C
	assert.True(t, m.Snapshot().StatusChanged)
	clk.Advance(StatusChangeDwell - time.Millisecond)
	assert.True(t, m.Snapshot().StatusChanged)
	clk.Advance(time.Millisecond)
	assert.False(t, m.Snapshot().StatusChanged)

	assert.Equal(t, []string{"A->B", "B->C"}, log.transitions())
}

func TestStatusMonitorRestartsDwellOnNewTransition(t *testing.T) {
	clk := clock.Fake(epoch)
	c, fetch := feed("A", "B", "C")

	m, err := NewStatusMonitor(fetch, vehicleStatus, WithClock(clk), WithInterval(time.Second))
	require.NoError(t, err)
	require.NoError(t, m.Start())
	defer m.Stop()
	waitCalls(t, c, 1)
	m.Wait()

	tick(t, clk, m, c, time.Second) // t=1 A->B, clears at t=4
	assert.True(t, m.Snapshot().StatusChanged)
	tick(t, clk, m, c, time.Second) // t=2 B->C, clears at t=5
	tick(t, clk, m, c, time.Second) // t=3
	tick(t, clk, m, c, time.Second) // t=4: first window would have closed here
	assert.True(t, m.Snapshot().StatusChanged)
	tick(t, clk, m, c, time.Second) // t=5
	assert.False(t, m.Snapshot().StatusChanged)
}

func TestStatusMonitorIgnoresFailuresAndMissingStatus(t *testing.T) {
	clk := clock.Fake(epoch)
	c := &counter{script: func(_ context.Context, call int) (int, error) { return call, nil }}
	fetch := func(ctx context.Context) (vehicle, error) {
		n, _ := c.fetch(ctx)
		switch n {
		case 1:
			return vehicle{Status: "AVAILABLE"}, nil
		case 2:
			return vehicle{}, errors.New("timeout")
		case 3:
			return vehicle{}, nil
		}
		return vehicle{Status: "AVAILABLE"}, nil
	}

	m, err := NewStatusMonitor(fetch, vehicleStatus, WithClock(clk), WithInterval(time.Second))
	require.NoError(t, err)
	require.NoError(t, m.Start())
	defer m.Stop()
	waitCalls(t, c, 1)
	m.Wait()

	for i := 0; i < 3; i++ {
		tick(t, clk, m, c, time.Second)
		snap := m.Snapshot()
		assert.Equal(t, "AVAILABLE", snap.Status)
		assert.False(t, snap.StatusChanged)
	}
}

func TestStatusMonitorStopClearsSignal(t *testing.T) {
	clk := clock.Fake(epoch)
	c, fetch := feed("ON_TRIP", "AVAILABLE")

	m, err := NewStatusMonitor(fetch, vehicleStatus, WithClock(clk), WithInterval(time.Second))
	require.NoError(t, err)
	require.NoError(t, m.Start())
	waitCalls(t, c, 1)
	m.Wait()
	tick(t, clk, m, c, time.Second)
	require.True(t, m.Snapshot().StatusChanged)

	require.NoError(t, m.SetEnabled(false))
	snap := m.Snapshot()
	assert.False(t, snap.StatusChanged)
	assert.Equal(t, StateStopped, snap.State)
	assert.Equal(t, 0, clk.PendingCount())
	assert.ErrorIs(t, m.SetEnabled(true), ErrStopped)
}

func TestStatusMonitorDelegatesLifecycle(t *testing.T) {
	clk := clock.Fake(epoch)
	c, fetch := feed("A")

	m, err := NewStatusMonitor(fetch, vehicleStatus, WithClock(clk), WithName("vehicle:VH-1"))
	require.NoError(t, err)
	assert.Equal(t, "vehicle:VH-1", m.Name())
	assert.Equal(t, StateIdle, m.State())
	assert.ErrorIs(t, m.Refresh(), ErrNotRunning)

	require.NoError(t, m.Start())
	defer m.Stop()
	waitCalls(t, c, 1)
	m.Wait()
	require.NoError(t, m.SetInterval(time.Minute))
	waitCalls(t, c, 2)
	m.Wait()
	assert.Equal(t, time.Minute, m.Interval())
	require.NoError(t, m.Refresh())
	waitCalls(t, c, 3)
	m.Wait()
	assert.Equal(t, StateReady, m.State())
}

func TestStatusMonitorRejectsBadConfig(t *testing.T) {
	_, fetch := feed("A")

	_, err := NewStatusMonitor(fetch, vehicleStatus, WithDwell(0))
	assert.ErrorIs(t, err, ErrInvalidDwell)

	_, err = NewStatusMonitor(fetch, nil)
	assert.Error(t, err)

	_, err = NewStatusMonitor[vehicle](nil, vehicleStatus)
	assert.ErrorIs(t, err, ErrNilFetch)

	_, err = NewStatusMonitor(fetch, vehicleStatus, WithInterval(0))
	assert.ErrorIs(t, err, ErrInvalidInterval)
}
