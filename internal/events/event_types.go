package events

import (
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated        EventType = "ticket_created"
	EventTicketStatusChanged  EventType = "ticket_status_changed"
	EventTicketsBulkCancelled EventType = "tickets_bulk_cancelled"
)

// Event represents a lifecycle event emitted after a committed mutation.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticketId,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject string `json:"subject"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	Action    string              `json:"action"`
	NewStatus domain.TicketStatus `json:"newStatus"`
}

// TicketsBulkCancelledPayload payload.
type TicketsBulkCancelledPayload struct {
	FromStatus    domain.TicketStatus `json:"fromStatus"`
	ModifiedCount int64               `json:"modifiedCount"`
}
