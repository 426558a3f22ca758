package event

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event observed after a committed operation.
// Events carry results only; no external calls originate from them.
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	TokenID       uuid.UUID              `json:"token_id"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// NewEvent creates a new domain event with auto-generated ID and timestamp
func NewEvent(eventType Type, tokenID uuid.UUID, payload map[string]interface{}) *Event {
	return &Event{
		ID:            generateID(),
		Type:          eventType,
		TokenID:       tokenID,
		Payload:       payload,
		Timestamp:     time.Now(),
		CorrelationID: generateID(),
	}
}

// NewEventWithCorrelation creates an event linked to a correlation chain
func NewEventWithCorrelation(eventType Type, tokenID uuid.UUID, payload map[string]interface{}, correlationID string) *Event {
	evt := NewEvent(eventType, tokenID, payload)
	evt.CorrelationID = correlationID
	return evt
}

// generateID produces a random 16-byte hex identifier
func generateID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// Collisions on this fallback are acceptable for event identifiers.
		return hex.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	return hex.EncodeToString(b)
}
