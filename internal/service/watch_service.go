package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetflow/console/internal/clock"
	"github.com/fleetflow/console/internal/config"
	"github.com/fleetflow/console/internal/domain"
	"github.com/fleetflow/console/internal/events"
	"github.com/fleetflow/console/internal/rbac"
	"github.com/fleetflow/console/internal/realtime"
	apperrors "github.com/fleetflow/console/pkg/util/errorutil"
)

// WatchResource names what a subscription polls.
type WatchResource string

const (
	WatchDashboard WatchResource = "dashboard"
	WatchVehicle   WatchResource = "vehicle"
	WatchDriver    WatchResource = "driver"
	WatchTrip      WatchResource = "trip"
)

// Permission returns the view permission a caller needs to watch r.
func (r WatchResource) Permission() (rbac.Permission, bool) {
	switch r {
	case WatchDashboard:
		return rbac.PermViewDashboard, true
	case WatchVehicle:
		return rbac.PermViewVehicles, true
	case WatchDriver:
		return rbac.PermViewDrivers, true
	case WatchTrip:
		return rbac.PermViewTrips, true
	}
	return "", false
}

// WatchMetrics receives subscription lifecycle and poll telemetry.
type WatchMetrics interface {
	realtime.Recorder
	SubscriptionOpened()
	SubscriptionClosed()
}

// WatchRequest opens a subscription. A zero Interval picks the resource default.
type WatchRequest struct {
	Resource WatchResource
	ID       string
	Interval time.Duration
	Enabled  *bool
}

// WatchUpdate changes a subscription. Zero values leave fields untouched.
type WatchUpdate struct {
	Interval time.Duration
	Enabled  *bool
}

// SubscriptionView is a type-erased snapshot of one subscription.
type SubscriptionView struct {
	ID            string
	Resource      WatchResource
	ResourceID    string
	Enabled       bool
	Interval      time.Duration
	State         realtime.State
	Data          any
	HasData       bool
	Loading       bool
	Error         string
	LastUpdate    time.Time
	Status        string
	HasStatus     bool
	StatusChanged bool
	CreatedAt     time.Time
	LastAccess    time.Time
}

// watcher is the lifecycle surface shared by sessions and monitors.
type watcher interface {
	Start() error
	Stop()
	Refresh() error
	SetInterval(time.Duration) error
	SetEnabled(bool) error
	Interval() time.Duration
	State() realtime.State
	fill(*SubscriptionView)
}

type sessionWatcher[T any] struct {
	*realtime.Session[T]
}

func (w sessionWatcher[T]) fill(v *SubscriptionView) {
	fillSnapshot(v, w.Snapshot())
}

type monitorWatcher[T any] struct {
	*realtime.StatusMonitor[T]
}

func (w monitorWatcher[T]) fill(v *SubscriptionView) {
	snap := w.Snapshot()
	fillSnapshot(v, snap.Snapshot)
	v.Status = snap.Status
	v.HasStatus = snap.HasStatus
	v.StatusChanged = snap.StatusChanged
}

func fillSnapshot[T any](v *SubscriptionView, snap realtime.Snapshot[T]) {
	v.State = snap.State
	v.HasData = snap.HasData
	if snap.HasData {
		v.Data = snap.Data
	}
	v.Loading = snap.Loading
	v.LastUpdate = snap.LastUpdate
	v.Error = publicErrorMessage(snap)
}

// Client-facing error text: domain errors below 500 keep their message,
// anything else collapses to the generic fetch failure.
func publicErrorMessage[T any](snap realtime.Snapshot[T]) string {
	if snap.Err == nil {
		return ""
	}
	var de *apperrors.DomainError
	if errors.As(snap.Err, &de) && de.HTTPStatus < 500 {
		return de.Message
	}
	return realtime.DefaultErrorMessage
}

type subscription struct {
	id         string
	owner      string
	resource   WatchResource
	resourceID string
	enabled    bool
	interval   time.Duration
	w          watcher
	createdAt  time.Time
	lastAccess time.Time
}

// WatchDependencies bundles collaborators for the watch service.
type WatchDependencies struct {
	Fleet      FleetReader
	Dispatcher events.Dispatcher
	Metrics    WatchMetrics
	Clock      clock.Clock
	Logger     *zap.Logger
}

// WatchService hosts server-side realtime subscriptions. Each
// subscription owns exactly one session or status monitor; nothing is
// shared between subscriptions, even for the same record.
type WatchService struct {
	cfg        config.RealtimeConfig
	fleet      FleetReader
	dispatcher events.Dispatcher
	metrics    WatchMetrics
	clock      clock.Clock
	logger     *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	subs map[string]*subscription
}

// NewWatchService builds the service. Shutdown stops every subscription.
func NewWatchService(cfg config.RealtimeConfig, deps WatchDependencies) *WatchService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WatchService{
		cfg:        cfg,
		fleet:      deps.Fleet,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		clock:      clk,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		subs:       make(map[string]*subscription),
	}
}

// Create opens and starts a subscription owned by owner.
func (s *WatchService) Create(ctx context.Context, owner string, scope rbac.Scope, req WatchRequest) (SubscriptionView, error) {
	perm, ok := req.Resource.Permission()
	if !ok {
		return SubscriptionView{}, apperrors.NewValidationError("unsupported resource", map[string]any{"resource": req.Resource})
	}
	if !scope.HasPermission(perm) {
		return SubscriptionView{}, apperrors.NewForbidden(fmt.Sprintf("missing permission %s", perm))
	}
	if req.Resource == WatchDashboard {
		req.ID = ""
	} else if req.ID == "" {
		return SubscriptionView{}, apperrors.NewValidationError("id required", map[string]any{"resource": req.Resource})
	}

	interval := req.Interval
	if interval == 0 {
		interval = s.defaultInterval(req.Resource)
	}
	if err := s.checkInterval(interval); err != nil {
		return SubscriptionView{}, err
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	if err := s.ensureExists(ctx, req.Resource, req.ID); err != nil {
		return SubscriptionView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n := s.countLocked(owner); n >= s.cfg.MaxSubscriptionsPerUser {
		return SubscriptionView{}, apperrors.NewTooManyRequests("subscription limit reached",
			map[string]any{"limit": s.cfg.MaxSubscriptionsPerUser})
	}

	now := s.clock.Now()
	sub := &subscription{
		id:         uuid.NewString(),
		owner:      owner,
		resource:   req.Resource,
		resourceID: req.ID,
		enabled:    enabled,
		interval:   interval,
		createdAt:  now,
		lastAccess: now,
	}
	w, err := s.build(sub)
	if err != nil {
		return SubscriptionView{}, err
	}
	if err := w.Start(); err != nil {
		return SubscriptionView{}, err
	}
	sub.w = w
	s.subs[sub.id] = sub
	s.opened()

	s.logger.Info("realtime subscription opened",
		zap.String("subscription_id", sub.id),
		zap.String("owner", owner),
		zap.String("resource", string(sub.resource)),
		zap.String("resource_id", sub.resourceID),
		zap.Duration("interval", interval),
		zap.Bool("enabled", enabled))
	return s.viewLocked(sub), nil
}

// Get returns the latest snapshot and marks the subscription as read.
func (s *WatchService) Get(owner, id string) (SubscriptionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := s.lookupLocked(owner, id)
	if err != nil {
		return SubscriptionView{}, err
	}
	sub.lastAccess = s.clock.Now()
	return s.viewLocked(sub), nil
}

// List returns the owner's subscriptions, oldest first.
func (s *WatchService) List(owner string) []SubscriptionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SubscriptionView, 0)
	for _, sub := range s.subs {
		if sub.owner == owner {
			out = append(out, s.viewLocked(sub))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Refresh triggers one out-of-band fetch.
func (s *WatchService) Refresh(owner, id string) (SubscriptionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := s.lookupLocked(owner, id)
	if err != nil {
		return SubscriptionView{}, err
	}
	sub.lastAccess = s.clock.Now()
	if err := sub.w.Refresh(); err != nil {
		if errors.Is(err, realtime.ErrNotRunning) || errors.Is(err, realtime.ErrStopped) {
			return SubscriptionView{}, apperrors.NewConflict("subscription is not running", map[string]any{"state": sub.w.State().String()})
		}
		return SubscriptionView{}, err
	}
	return s.viewLocked(sub), nil
}

// Update changes interval and enablement. Re-enabling a stopped
// subscription replaces its session with a fresh one.
func (s *WatchService) Update(owner, id string, upd WatchUpdate) (SubscriptionView, error) {
	if upd.Interval != 0 {
		if err := s.checkInterval(upd.Interval); err != nil {
			return SubscriptionView{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := s.lookupLocked(owner, id)
	if err != nil {
		return SubscriptionView{}, err
	}
	sub.lastAccess = s.clock.Now()

	if upd.Interval != 0 && upd.Interval != sub.interval {
		sub.interval = upd.Interval
		if sub.w.State() != realtime.StateStopped {
			if err := sub.w.SetInterval(upd.Interval); err != nil {
				return SubscriptionView{}, err
			}
		}
	}

	if upd.Enabled != nil {
		switch enable := *upd.Enabled; {
		case !enable:
			sub.enabled = false
			if err := sub.w.SetEnabled(false); err != nil {
				return SubscriptionView{}, err
			}
		case sub.w.State() == realtime.StateStopped:
			sub.enabled = true
			w, err := s.build(sub)
			if err != nil {
				return SubscriptionView{}, err
			}
			if err := w.Start(); err != nil {
				return SubscriptionView{}, err
			}
			sub.w = w
		default:
			sub.enabled = true
			if err := sub.w.SetEnabled(true); err != nil {
				return SubscriptionView{}, err
			}
		}
	}
	return s.viewLocked(sub), nil
}

// Delete stops and forgets a subscription.
func (s *WatchService) Delete(owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := s.lookupLocked(owner, id)
	if err != nil {
		return err
	}
	s.removeLocked(sub)
	s.logger.Info("realtime subscription closed", zap.String("subscription_id", id), zap.String("owner", owner))
	return nil
}

// Reap closes subscriptions nobody has read within the configured TTL
// and returns how many were closed.
func (s *WatchService) Reap() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.clock.Now().Add(-s.cfg.SubscriptionTTL)
	reaped := 0
	for _, sub := range s.subs {
		if sub.lastAccess.Before(cutoff) {
			s.removeLocked(sub)
			reaped++
		}
	}
	if reaped > 0 {
		s.logger.Info("realtime subscriptions reaped", zap.Int("count", reaped))
	}
	return reaped
}

// Count returns the number of live subscriptions.
func (s *WatchService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Shutdown stops every subscription and cancels in-flight fetches.
func (s *WatchService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		s.removeLocked(sub)
	}
	s.cancel()
}

func (s *WatchService) lookupLocked(owner, id string) (*subscription, error) {
	sub, ok := s.subs[id]
	if !ok || sub.owner != owner {
		return nil, apperrors.NewNotFound("subscription", map[string]any{"id": id})
	}
	return sub, nil
}

func (s *WatchService) removeLocked(sub *subscription) {
	sub.w.Stop()
	delete(s.subs, sub.id)
	if s.metrics != nil {
		s.metrics.SubscriptionClosed()
	}
}

func (s *WatchService) opened() {
	if s.metrics != nil {
		s.metrics.SubscriptionOpened()
	}
}

func (s *WatchService) countLocked(owner string) int {
	n := 0
	for _, sub := range s.subs {
		if sub.owner == owner {
			n++
		}
	}
	return n
}

func (s *WatchService) viewLocked(sub *subscription) SubscriptionView {
	v := SubscriptionView{
		ID:         sub.id,
		Resource:   sub.resource,
		ResourceID: sub.resourceID,
		Enabled:    sub.enabled,
		Interval:   sub.interval,
		CreatedAt:  sub.createdAt,
		LastAccess: sub.lastAccess,
	}
	sub.w.fill(&v)
	return v
}

func (s *WatchService) defaultInterval(r WatchResource) time.Duration {
	if r == WatchDashboard {
		return s.cfg.DashboardInterval
	}
	return s.cfg.DefaultInterval
}

func (s *WatchService) checkInterval(d time.Duration) error {
	if d < s.cfg.MinInterval {
		return apperrors.NewValidationError("interval too short", map[string]any{
			"min_interval_ms": s.cfg.MinInterval.Milliseconds(),
		})
	}
	return nil
}

func (s *WatchService) ensureExists(ctx context.Context, r WatchResource, id string) error {
	var err error
	switch r {
	case WatchVehicle:
		_, err = s.fleet.GetVehicle(ctx, id)
	case WatchDriver:
		_, err = s.fleet.GetDriver(ctx, id)
	case WatchTrip:
		_, err = s.fleet.GetTrip(ctx, id)
	}
	return err
}

func (s *WatchService) options(sub *subscription) []realtime.Option {
	name := string(sub.resource)
	if sub.resourceID != "" {
		name += ":" + sub.resourceID
	}
	opts := []realtime.Option{
		realtime.WithName(name),
		realtime.WithInterval(sub.interval),
		realtime.WithEnabled(sub.enabled),
		realtime.WithContext(s.ctx),
		realtime.WithClock(s.clock),
		realtime.WithLogger(s.logger),
		realtime.WithDwell(s.cfg.StatusDwell),
	}
	if s.metrics != nil {
		opts = append(opts, realtime.WithRecorder(s.metrics))
	}
	return opts
}

func (s *WatchService) build(sub *subscription) (watcher, error) {
	opts := s.options(sub)
	id := sub.resourceID
	notify := realtime.WithStatusChange(func(change realtime.StatusChange) {
		s.publishStatusChange(sub.id, sub.owner, sub.resource, id, change)
	})

	switch sub.resource {
	case WatchDashboard:
		session, err := realtime.New(realtime.FetchFunc[*domain.DashboardMetrics](s.fleet.Dashboard), opts...)
		if err != nil {
			return nil, err
		}
		return sessionWatcher[*domain.DashboardMetrics]{session}, nil
	case WatchVehicle:
		m, err := realtime.NewStatusMonitor(
			func(ctx context.Context) (*domain.Vehicle, error) { return s.fleet.GetVehicle(ctx, id) },
			func(v *domain.Vehicle) (string, bool) {
				if v == nil {
					return "", false
				}
				return string(v.Status), v.Status != ""
			},
			append(opts, notify)...)
		if err != nil {
			return nil, err
		}
		return monitorWatcher[*domain.Vehicle]{m}, nil
	case WatchDriver:
		m, err := realtime.NewStatusMonitor(
			func(ctx context.Context) (*domain.Driver, error) { return s.fleet.GetDriver(ctx, id) },
			func(d *domain.Driver) (string, bool) {
				if d == nil {
					return "", false
				}
				return string(d.Status), d.Status != ""
			},
			append(opts, notify)...)
		if err != nil {
			return nil, err
		}
		return monitorWatcher[*domain.Driver]{m}, nil
	case WatchTrip:
		m, err := realtime.NewStatusMonitor(
			func(ctx context.Context) (*domain.Trip, error) { return s.fleet.GetTrip(ctx, id) },
			func(t *domain.Trip) (string, bool) {
				if t == nil {
					return "", false
				}
				return string(t.Status), t.Status != ""
			},
			append(opts, notify)...)
		if err != nil {
			return nil, err
		}
		return monitorWatcher[*domain.Trip]{m}, nil
	}
	return nil, fmt.Errorf("unsupported resource %q", sub.resource)
}

// publishStatusChange runs on the poll goroutine after the session lock
// is released, so it never holds s.mu.
func (s *WatchService) publishStatusChange(subID, owner string, resource WatchResource, resourceID string, change realtime.StatusChange) {
	if s.dispatcher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()

	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventResourceStatusChanged,
		Resource:  string(resource),
		SubjectID: resourceID,
		Timestamp: change.At,
		Payload: events.ResourceStatusChangedPayload{
			SubscriptionID: subID,
			OwnerID:        owner,
			OldStatus:      change.From,
			NewStatus:      change.To,
		},
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("status change delivery failed",
			zap.String("subscription_id", subID),
			zap.String("resource", string(resource)),
			zap.String("resource_id", resourceID),
			zap.Error(err))
	}
}
