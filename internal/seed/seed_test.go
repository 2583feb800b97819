package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/persistence"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	"github.com/spec-kit/ticket-tracker/internal/seed"
	"github.com/spec-kit/ticket-tracker/internal/service"
)

func newService(t *testing.T) *service.TicketService {
	t.Helper()
	db, err := persistence.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return service.NewTicketService(service.TicketDependencies{
		TicketRepo: repository.NewSQLiteTicketRepository(db.DB),
	})
}

func TestRun_SeedsEmptyStore(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := seed.Run(ctx, svc, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 3, created)

	tickets, err := svc.ListTickets(ctx, domain.DateRange{})
	require.NoError(t, err)
	require.Len(t, tickets, 3)

	counts := map[domain.TicketStatus]int{}
	for _, ticket := range tickets {
		counts[ticket.Status]++
		if ticket.Status == domain.TicketStatusCompleted {
			require.NotNil(t, ticket.Resolution)
			require.NotEmpty(t, *ticket.Resolution)
		} else {
			require.Nil(t, ticket.Resolution)
		}
	}
	require.Equal(t, map[domain.TicketStatus]int{
		domain.TicketStatusNew:        1,
		domain.TicketStatusInProgress: 1,
		domain.TicketStatusCompleted:  1,
	}, counts)
}

func TestRun_SkipsPopulatedStore(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.CreateTicket(ctx, service.TicketCreateInput{Subject: "existing", Description: "ticket"})
	require.NoError(t, err)

	created, err := seed.Run(ctx, svc, zap.NewNop())
	require.NoError(t, err)
	require.Zero(t, created)

	tickets, err := svc.ListTickets(ctx, domain.DateRange{})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
}
