package dto

import (
	"time"

	"github.com/fleetflow/console/internal/domain"
	"github.com/fleetflow/console/internal/events"
	"github.com/fleetflow/console/internal/service"
)

// CreateSubscriptionRequest opens a realtime subscription.
type CreateSubscriptionRequest struct {
	Resource   string `json:"resource" validate:"required,oneof=dashboard vehicle driver trip"`
	ID         string `json:"id" validate:"required_unless=Resource dashboard"`
	IntervalMs int64  `json:"interval_ms" validate:"gte=0,lte=86400000"`
	Enabled    *bool  `json:"enabled"`
}

// WatchRequest converts the payload for the watch service.
func (r CreateSubscriptionRequest) WatchRequest() service.WatchRequest {
	return service.WatchRequest{
		Resource: service.WatchResource(r.Resource),
		ID:       r.ID,
		Interval: time.Duration(r.IntervalMs) * time.Millisecond,
		Enabled:  r.Enabled,
	}
}

// UpdateSubscriptionRequest changes interval or enabled flag.
type UpdateSubscriptionRequest struct {
	IntervalMs int64 `json:"interval_ms" validate:"gte=0,lte=86400000"`
	Enabled    *bool `json:"enabled"`
}

// WatchUpdate converts the payload for the watch service.
func (r UpdateSubscriptionRequest) WatchUpdate() service.WatchUpdate {
	return service.WatchUpdate{
		Interval: time.Duration(r.IntervalMs) * time.Millisecond,
		Enabled:  r.Enabled,
	}
}

// SubscriptionResponse is a snapshot of one subscription.
type SubscriptionResponse struct {
	ID            string     `json:"id"`
	Resource      string     `json:"resource"`
	ResourceID    string     `json:"resource_id,omitempty"`
	Enabled       bool       `json:"enabled"`
	IntervalMs    int64      `json:"interval_ms"`
	State         string     `json:"state"`
	Data          any        `json:"data"`
	Loading       bool       `json:"loading"`
	Error         *string    `json:"error"`
	LastUpdate    *time.Time `json:"last_update"`
	Status        *string    `json:"status,omitempty"`
	StatusChanged bool       `json:"status_changed"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewSubscriptionResponse maps a subscription view. now is used for
// derived fields on driver and trip payloads.
func NewSubscriptionResponse(v service.SubscriptionView, now time.Time) SubscriptionResponse {
	resp := SubscriptionResponse{
		ID:            v.ID,
		Resource:      string(v.Resource),
		ResourceID:    v.ResourceID,
		Enabled:       v.Enabled,
		IntervalMs:    v.Interval.Milliseconds(),
		State:         v.State.String(),
		Loading:       v.Loading,
		StatusChanged: v.StatusChanged,
		CreatedAt:     v.CreatedAt,
	}
	if v.HasData {
		resp.Data = subscriptionData(v.Data, now)
	}
	if v.Error != "" {
		msg := v.Error
		resp.Error = &msg
	}
	if !v.LastUpdate.IsZero() {
		ts := v.LastUpdate
		resp.LastUpdate = &ts
	}
	if v.HasStatus {
		status := v.Status
		resp.Status = &status
	}
	return resp
}

func subscriptionData(data any, now time.Time) any {
	switch d := data.(type) {
	case *domain.Vehicle:
		return NewVehicleResponse(d)
	case *domain.Driver:
		return NewDriverResponse(d, now)
	case *domain.Trip:
		return NewTripResponse(d, now)
	}
	return data
}

// StatusChangeResponse is one entry of the recent status-change feed.
// Subscription and owner identifiers stay internal.
type StatusChangeResponse struct {
	ID         string    `json:"id"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewStatusChangeResponse maps a delivered event. History read back from
// redis carries the payload as a decoded JSON object.
func NewStatusChangeResponse(e events.Event) StatusChangeResponse {
	resp := StatusChangeResponse{
		ID:         e.ID,
		Resource:   e.Resource,
		ResourceID: e.SubjectID,
		Timestamp:  e.Timestamp,
	}
	switch p := e.Payload.(type) {
	case events.ResourceStatusChangedPayload:
		resp.OldStatus, resp.NewStatus = p.OldStatus, p.NewStatus
	case *events.ResourceStatusChangedPayload:
		if p != nil {
			resp.OldStatus, resp.NewStatus = p.OldStatus, p.NewStatus
		}
	case map[string]any:
		resp.OldStatus, _ = p["old_status"].(string)
		resp.NewStatus, _ = p["new_status"].(string)
	}
	return resp
}
