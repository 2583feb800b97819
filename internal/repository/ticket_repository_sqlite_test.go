package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/persistence"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	"github.com/spec-kit/ticket-tracker/internal/testutil"
)

var baseTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestRepository(t *testing.T) *repository.SQLiteTicketRepository {
	t.Helper()

	db, err := persistence.NewSQLite(":memory:")
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(db.Close)

	clock := testutil.NewStepClock(baseTime, time.Hour)
	return repository.NewSQLiteTicketRepository(db.DB, repository.WithClock(clock.Now))
}

func strPtr(s string) *string { return &s }

func TestSQLiteTicketRepository_Create(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	ticket, err := repo.Create(ctx, "Login broken", "Locked out after retries")
	require.NoError(t, err)
	require.NotEmpty(t, ticket.ID)
	require.Equal(t, domain.TicketStatusNew, ticket.Status)
	require.Equal(t, baseTime, ticket.CreatedAt)
	require.Nil(t, ticket.Resolution)
	require.Nil(t, ticket.CancellationReason)

	other, err := repo.Create(ctx, "Second", "Another")
	require.NoError(t, err)
	require.NotEqual(t, ticket.ID, other.ID)

	_, err = repo.Create(ctx, "", "missing subject")
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestSQLiteTicketRepository_ConditionalTransition(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	ticket, err := repo.Create(ctx, "Subject", "Description")
	require.NoError(t, err)

	started, err := repo.ConditionalTransition(ctx, ticket.ID,
		repository.StatusIs(domain.TicketStatusNew), domain.TicketStatusInProgress, repository.TransitionFields{})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusInProgress, started.Status)
	require.Equal(t, ticket.Subject, started.Subject)
	require.Equal(t, ticket.Description, started.Description)
	require.Equal(t, ticket.CreatedAt, started.CreatedAt)

	// precondition no longer holds
	_, err = repo.ConditionalTransition(ctx, ticket.ID,
		repository.StatusIs(domain.TicketStatusNew), domain.TicketStatusInProgress, repository.TransitionFields{})
	require.ErrorIs(t, err, repository.ErrNotFound)

	// unknown id
	_, err = repo.ConditionalTransition(ctx, "00000000-0000-0000-0000-000000000000",
		repository.StatusIsNot(domain.TicketStatusCompleted), domain.TicketStatusCancelled, repository.TransitionFields{})
	require.ErrorIs(t, err, repository.ErrNotFound)

	completed, err := repo.ConditionalTransition(ctx, ticket.ID,
		repository.StatusIs(domain.TicketStatusInProgress), domain.TicketStatusCompleted,
		repository.TransitionFields{Resolution: strPtr("fixed")})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusCompleted, completed.Status)
	require.Equal(t, "fixed", *completed.Resolution)
	require.Nil(t, completed.CancellationReason)

	_, err = repo.ConditionalTransition(ctx, ticket.ID,
		repository.StatusIsNot(domain.TicketStatusCompleted), domain.TicketStatusCancelled,
		repository.TransitionFields{CancellationReason: strPtr("late")})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSQLiteTicketRepository_ConcurrentTransition(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	ticket, err := repo.Create(ctx, "Race", "Two agents pick it up")
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ConditionalTransition(ctx, ticket.ID,
				repository.StatusIs(domain.TicketStatusNew), domain.TicketStatusInProgress, repository.TransitionFields{})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, notFound int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case err == repository.ErrNotFound:
			notFound++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, workers-1, notFound)
}

func TestSQLiteTicketRepository_BulkTransition(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		ticket, err := repo.Create(ctx, "Subject", "Description")
		require.NoError(t, err)
		ids = append(ids, ticket.ID)
	}
	for _, id := range ids[:2] {
		_, err := repo.ConditionalTransition(ctx, id,
			repository.StatusIs(domain.TicketStatusNew), domain.TicketStatusInProgress, repository.TransitionFields{})
		require.NoError(t, err)
	}

	count, err := repo.BulkTransition(ctx, domain.TicketStatusInProgress, domain.TicketStatusCancelled,
		repository.TransitionFields{CancellationReason: strPtr("maintenance")})
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	count, err = repo.BulkTransition(ctx, domain.TicketStatusInProgress, domain.TicketStatusCancelled,
		repository.TransitionFields{CancellationReason: strPtr("maintenance")})
	require.NoError(t, err)
	require.Equal(t, int64(0), count)

	tickets, err := repo.List(ctx, repository.TicketFilter{})
	require.NoError(t, err)
	statuses := map[string]domain.TicketStatus{}
	for _, ticket := range tickets {
		statuses[ticket.ID] = ticket.Status
		if ticket.Status == domain.TicketStatusCancelled {
			require.Equal(t, "maintenance", *ticket.CancellationReason)
		}
	}
	require.Equal(t, domain.TicketStatusCancelled, statuses[ids[0]])
	require.Equal(t, domain.TicketStatusCancelled, statuses[ids[1]])
	require.Equal(t, domain.TicketStatusNew, statuses[ids[2]])
}

func TestSQLiteTicketRepository_List(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	// created at baseTime, +1h, +2h, +3h
	var created []*domain.Ticket
	for i := 0; i < 4; i++ {
		ticket, err := repo.Create(ctx, "Subject", "Description")
		require.NoError(t, err)
		created = append(created, ticket)
	}

	all, err := repo.List(ctx, repository.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := range all {
		require.Equal(t, created[len(created)-1-i].ID, all[i].ID, "expected newest first")
	}

	from := baseTime.Add(time.Hour)
	to := baseTime.Add(2 * time.Hour)
	bounded, err := repo.List(ctx, repository.TicketFilter{CreatedFrom: &from, CreatedTo: &to})
	require.NoError(t, err)
	require.Len(t, bounded, 2)
	require.Equal(t, created[2].ID, bounded[0].ID)
	require.Equal(t, created[1].ID, bounded[1].ID)

	openEnded, err := repo.List(ctx, repository.TicketFilter{CreatedFrom: &to})
	require.NoError(t, err)
	require.Len(t, openEnded, 2)

	before := baseTime.Add(-time.Minute)
	none, err := repo.List(ctx, repository.TicketFilter{CreatedTo: &before})
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)
}

func TestSQLiteTicketRepository_ListSubMillisecondBounds(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	ticket, err := repo.Create(ctx, "Subject", "Description")
	require.NoError(t, err)
	require.Equal(t, baseTime, ticket.CreatedAt)

	justAfter := baseTime.Add(500 * time.Microsecond)
	afterCreation, err := repo.List(ctx, repository.TicketFilter{CreatedFrom: &justAfter})
	require.NoError(t, err)
	require.Empty(t, afterCreation)

	justBefore := baseTime.Add(-500 * time.Microsecond)
	beforeCreation, err := repo.List(ctx, repository.TicketFilter{CreatedTo: &justBefore})
	require.NoError(t, err)
	require.Empty(t, beforeCreation)

	around, err := repo.List(ctx, repository.TicketFilter{CreatedFrom: &justBefore, CreatedTo: &justAfter})
	require.NoError(t, err)
	require.Len(t, around, 1)
	require.Equal(t, ticket.ID, around[0].ID)
}

func TestSQLiteTicketRepository_RejectsUnknownStoredStatus(t *testing.T) {
	db, err := persistence.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(db.Close)
	repo := repository.NewSQLiteTicketRepository(db.DB)
	ctx := context.Background()

	ticket, err := repo.Create(ctx, "Subject", "Description")
	require.NoError(t, err)
	// the schema CHECK guards writes; drop it to simulate a foreign writer
	_, err = db.DB.ExecContext(ctx, "PRAGMA ignore_check_constraints = ON")
	require.NoError(t, err)
	_, err = db.DB.ExecContext(ctx, "UPDATE tickets SET status = 'Archived' WHERE id = ?", ticket.ID)
	require.NoError(t, err)

	_, err = repo.List(ctx, repository.TicketFilter{})
	require.ErrorIs(t, err, repository.ErrUnknownStatus)
}
