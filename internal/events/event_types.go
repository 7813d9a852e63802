package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventResourceStatusChanged EventType = "resource_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Resource  string      `json:"resource"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ResourceStatusChangedPayload carries one observed status transition.
type ResourceStatusChangedPayload struct {
	SubscriptionID string `json:"subscription_id"`
	OwnerID        string `json:"owner_id"`
	OldStatus      string `json:"old_status"`
	NewStatus      string `json:"new_status"`
}
