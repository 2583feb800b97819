package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "New"
	TicketStatusInProgress TicketStatus = "InProgress"
	TicketStatusCompleted  TicketStatus = "Completed"
	TicketStatusCancelled  TicketStatus = "Cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusNew, TicketStatusInProgress, TicketStatusCompleted, TicketStatusCancelled:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID                 string
	Subject            string
	Description        string
	Status             TicketStatus
	CreatedAt          time.Time
	Resolution         *string
	CancellationReason *string
}

// DateRange bounds a creation-time query. Nil bounds are open; set bounds
// are inclusive.
type DateRange struct {
	From *time.Time
	To   *time.Time
}
