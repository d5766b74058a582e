package types

import (
	"context"
	"encoding/json"
	"time"

	"github.com/DealDocs/dealdocs-backend/errors"
)

type EventType string

const (
	CategoryVerification = "VERIFICATION"
	CategoryReview       = "REVIEW"
)

const (
	// Verification events, published once per gate evaluation.
	EventTypeVerificationPassed         EventType = CategoryVerification + "_PASSED"
	EventTypeVerificationReviewRequired EventType = CategoryVerification + "_REVIEW_REQUIRED"

	// Review events, published when a human resolves an item.
	EventTypeReviewItemResolved EventType = CategoryReview + "_ITEM_RESOLVED"
)

// BaseEvent carries the fields every pipeline event shares.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	DealID    string    `json:"dealId"`
	Timestamp time.Time `json:"timestamp"`
	Version   int       `json:"version"`
}

// EventMetadata for tracking and debugging.
type EventMetadata struct {
	CorrelationID string            `json:"correlationId,omitempty"`
	Source        string            `json:"source"`
	Tags          map[string]string `json:"tags,omitempty"`
}

// Event is the envelope published on the per-deal channel.
type Event struct {
	BaseEvent
	Metadata EventMetadata   `json:"metadata"`
	Payload  json.RawMessage `json:"payload"`
}

// Validate rejects events missing required envelope fields.
func (e Event) Validate() error {
	if e.ID == "" {
		return errors.ValidationFailed("invalid event", "event ID is required")
	}
	if e.Type == "" {
		return errors.ValidationFailed("invalid event", "event type is required")
	}
	if e.DealID == "" {
		return errors.ValidationFailed("invalid event", "deal ID is required")
	}
	if e.Timestamp.IsZero() {
		return errors.ValidationFailed("invalid event", "timestamp is required")
	}
	return nil
}

// EventPublisher is implemented by the Redis-backed publisher in services.
type EventPublisher interface {
	Publish(ctx context.Context, dealID string, event Event) error
}
