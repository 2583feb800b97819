package dto

import (
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// CompleteTicketRequest payload.
type CompleteTicketRequest struct {
	Resolution string `json:"resolution"`
}

// CancelTicketRequest payload, shared by single and bulk cancel.
type CancelTicketRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

// TicketResponse is the persisted record shape.
type TicketResponse struct {
	ID                 string              `json:"id"`
	Subject            string              `json:"subject"`
	Description        string              `json:"description"`
	Status             domain.TicketStatus `json:"status"`
	CreatedAt          time.Time           `json:"createdAt"`
	Resolution         *string             `json:"resolution,omitempty"`
	CancellationReason *string             `json:"cancellationReason,omitempty"`
}

// CancelAllResponse reports how many tickets a bulk cancel changed.
type CancelAllResponse struct {
	ModifiedCount int64 `json:"modifiedCount"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                 ticket.ID,
		Subject:            ticket.Subject,
		Description:        ticket.Description,
		Status:             ticket.Status,
		CreatedAt:          ticket.CreatedAt,
		Resolution:         ticket.Resolution,
		CancellationReason: ticket.CancellationReason,
	}
}
