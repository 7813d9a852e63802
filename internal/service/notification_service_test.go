package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fleetflow/console/internal/config"
	"github.com/fleetflow/console/internal/events"
)

type resourceCounter map[string]int

func (c resourceCounter) RecordStatusChange(resource string) { c[resource]++ }

func newNotificationFixture(t *testing.T, historyLen int64) (*NotificationService, events.Dispatcher, *miniredis.Miniredis, *redis.Client, resourceCounter) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	dispatcher := events.NewInMemoryDispatcher()
	counter := resourceCounter{}
	svc := NewNotificationService(dispatcher, client, counter, zap.NewNop(), config.NotificationConfig{
		Channel:       "fleet:status_changed",
		HistoryKey:    "fleet:status_history",
		HistoryLength: historyLen,
	})
	svc.RegisterHandlers()
	return svc, dispatcher, mr, client, counter
}

func statusEvent(i int) events.Event {
	return events.Event{
		ID:        fmt.Sprintf("evt-%d", i),
		Type:      events.EventResourceStatusChanged,
		Resource:  "vehicle",
		SubjectID: "VH-001",
		Timestamp: t0.Add(time.Duration(i) * time.Second),
		Payload: events.ResourceStatusChangedPayload{
			OldStatus: "AVAILABLE",
			NewStatus: "ON_TRIP",
		},
	}
}

func TestNotificationPublishesToChannel(t *testing.T) {
	_, dispatcher, _, client, counter := newNotificationFixture(t, 10)
	ctx := context.Background()

	sub := client.Subscribe(ctx, "fleet:status_changed")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, dispatcher.Publish(ctx, statusEvent(1)))

	select {
	case msg := <-sub.Channel():
		var got events.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "evt-1", got.ID)
		assert.Equal(t, "VH-001", got.SubjectID)
		payload, ok := got.Payload.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "ON_TRIP", payload["new_status"])
	case <-time.After(2 * time.Second):
		t.Fatal("no message published")
	}
	assert.Equal(t, 1, counter["vehicle"])
}

func TestNotificationHistoryIsCapped(t *testing.T) {
	svc, dispatcher, mr, _, _ := newNotificationFixture(t, 3)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, dispatcher.Publish(ctx, statusEvent(i)))
	}

	items, err := mr.List("fleet:status_history")
	require.NoError(t, err)
	assert.Len(t, items, 3)

	recent, err := svc.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "evt-5", recent[0].ID)
	assert.Equal(t, "evt-3", recent[2].ID)

	recent, err = svc.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "evt-5", recent[0].ID)
}

func TestNotificationSkipsMalformedHistory(t *testing.T) {
	svc, _, mr, _, _ := newNotificationFixture(t, 10)
	_, err := mr.Lpush("fleet:status_history", "not json")
	require.NoError(t, err)

	recent, err := svc.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestNotificationReportsRedisFailure(t *testing.T) {
	_, dispatcher, mr, _, counter := newNotificationFixture(t, 10)
	mr.SetError("READONLY replica")

	err := dispatcher.Publish(context.Background(), statusEvent(1))
	assert.Error(t, err)
	assert.Equal(t, 1, counter["vehicle"])
}

func TestNotificationRecentVisibleScansPastHiddenEntries(t *testing.T) {
	svc, dispatcher, _, _, _ := newNotificationFixture(t, 10)
	ctx := context.Background()

	trip := statusEvent(1)
	trip.Resource = "trip"
	require.NoError(t, dispatcher.Publish(ctx, trip))
	for i := 2; i <= 4; i++ {
		require.NoError(t, dispatcher.Publish(ctx, statusEvent(i)))
	}

	onlyTrips := func(e events.Event) bool { return e.Resource == "trip" }
	recent, err := svc.RecentVisible(ctx, 1, onlyTrips)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "evt-1", recent[0].ID)

	recent, err = svc.RecentVisible(ctx, 2, func(events.Event) bool { return true })
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "evt-4", recent[0].ID)

	recent, err = svc.RecentVisible(ctx, 0, onlyTrips)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
