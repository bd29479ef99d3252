package events

import (
	"time"

	"github.com/rtcstack/rtc-token-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTokenIssued EventType = "token_issued"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TokenIssuedPayload payload. It never carries the token itself.
type TokenIssuedPayload struct {
	Channel    string      `json:"channel"`
	UID        uint32      `json:"uid"`
	Role       domain.Role `json:"role"`
	TTLSeconds uint32      `json:"ttl_seconds"`
}
