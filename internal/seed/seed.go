package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/service"
)

// demoTicket is a ticket plus the lifecycle steps that bring it to its
// demo state.
type demoTicket struct {
	subject     string
	description string
	status      domain.TicketStatus
	resolution  string
}

var demoTickets = []demoTicket{
	{
		subject:     "Cannot sign in.",
		description: "Pressed the sign-in button many times and the account got locked.",
		status:      domain.TicketStatusNew,
	},
	{
		subject:     "Desktop disappeared after reboot.",
		description: "Changed the system default Python version; after restarting only a console is shown.",
		status:      domain.TicketStatusInProgress,
	},
	{
		subject:     "Payment form is broken.",
		description: "The payment form on my site does not work and purchases cannot be completed.",
		status:      domain.TicketStatusCompleted,
		resolution:  "Fixed the payment gateway integration.",
	},
}

// Run loads demo tickets when the store is empty. It reports how many
// tickets were created.
func Run(ctx context.Context, tickets *service.TicketService, logger *zap.Logger) (int, error) {
	existing, err := tickets.ListTickets(ctx, domain.DateRange{})
	if err != nil {
		return 0, fmt.Errorf("count tickets: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("store already has tickets; skipping seed", zap.Int("count", len(existing)))
		return 0, nil
	}

	for _, demo := range demoTickets {
		if err := createDemo(ctx, tickets, demo); err != nil {
			return 0, err
		}
	}
	logger.Info("seeded demo tickets", zap.Int("count", len(demoTickets)))
	return len(demoTickets), nil
}

func createDemo(ctx context.Context, tickets *service.TicketService, demo demoTicket) error {
	ticket, err := tickets.CreateTicket(ctx, service.TicketCreateInput{
		Subject:     demo.subject,
		Description: demo.description,
	})
	if err != nil {
		return fmt.Errorf("seed %q: %w", demo.subject, err)
	}
	if demo.status == domain.TicketStatusNew {
		return nil
	}
	if _, err := tickets.StartTicket(ctx, ticket.ID); err != nil {
		return fmt.Errorf("seed %q: %w", demo.subject, err)
	}
	if demo.status == domain.TicketStatusCompleted {
		if _, err := tickets.CompleteTicket(ctx, ticket.ID, demo.resolution); err != nil {
			return fmt.Errorf("seed %q: %w", demo.subject, err)
		}
	}
	return nil
}
