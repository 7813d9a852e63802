package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fleetflow/console/internal/config"
	"github.com/fleetflow/console/internal/events"
)

// StatusChangeCounter counts delivered status transitions per resource.
type StatusChangeCounter interface {
	RecordStatusChange(resource string)
}

// NotificationService fans status-change events out over Redis: a
// PUBLISH for live listeners and a capped list for recent history.
type NotificationService struct {
	dispatcher events.Dispatcher
	redis      *redis.Client
	metrics    StatusChangeCounter
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, client *redis.Client, metrics StatusChangeCounter, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		redis:      client,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventResourceStatusChanged, n.handleStatusChanged)
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ResourceStatusChanged",
		zap.String("resource", event.Resource),
		zap.String("subject_id", event.SubjectID),
		zap.Any("payload", event.Payload))
	if n.metrics != nil {
		n.metrics.RecordStatusChange(event.Resource)
	}
	if n.redis == nil {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}

	pipe := n.redis.TxPipeline()
	pipe.Publish(ctx, n.cfg.Channel, body)
	if n.cfg.HistoryLength > 0 {
		pipe.LPush(ctx, n.cfg.HistoryKey, body)
		pipe.LTrim(ctx, n.cfg.HistoryKey, 0, n.cfg.HistoryLength-1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deliver event %s: %w", event.ID, err)
	}
	return nil
}

// Recent returns up to limit of the newest status changes, newest first.
func (n *NotificationService) Recent(ctx context.Context, limit int64) ([]events.Event, error) {
	if n.redis == nil || limit <= 0 {
		return []events.Event{}, nil
	}
	if n.cfg.HistoryLength > 0 && limit > n.cfg.HistoryLength {
		limit = n.cfg.HistoryLength
	}
	raw, err := n.redis.LRange(ctx, n.cfg.HistoryKey, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]events.Event, 0, len(raw))
	for _, item := range raw {
		var event events.Event
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			n.logger.Warn("skipping malformed status history entry", zap.Error(err))
			continue
		}
		out = append(out, event)
	}
	return out, nil
}

// RecentVisible returns up to limit of the newest status changes that keep
// accepts. The whole retained history is scanned so that hidden entries do
// not crowd out visible ones.
func (n *NotificationService) RecentVisible(ctx context.Context, limit int64, keep func(events.Event) bool) ([]events.Event, error) {
	if limit <= 0 {
		return []events.Event{}, nil
	}
	all, err := n.Recent(ctx, n.cfg.HistoryLength)
	if err != nil {
		return nil, err
	}
	out := make([]events.Event, 0, min(limit, int64(len(all))))
	for _, event := range all {
		if int64(len(out)) == limit {
			break
		}
		if keep(event) {
			out = append(out, event)
		}
	}
	return out, nil
}
