package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherRunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []string
	d.Subscribe(EventResourceStatusChanged, func(_ context.Context, e Event) error {
		seen = append(seen, "first:"+e.SubjectID)
		return errors.New("redis down")
	})
	d.Subscribe(EventResourceStatusChanged, func(_ context.Context, e Event) error {
		seen = append(seen, "second:"+e.SubjectID)
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventResourceStatusChanged, SubjectID: "VH-001"})
	assert.EqualError(t, err, "redis down")
	assert.Equal(t, []string{"first:VH-001", "second:VH-001"}, seen)
}

func TestDispatcherIgnoresOtherTypes(t *testing.T) {
	d := NewInMemoryDispatcher()
	called := false
	d.Subscribe(EventResourceStatusChanged, func(context.Context, Event) error {
		called = true
		return nil
	})
	assert.NoError(t, d.Publish(context.Background(), Event{Type: "other"}))
	assert.False(t, called)
}
