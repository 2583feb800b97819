package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// createdAt is stored as unix milliseconds so range comparisons are numeric.
var sqliteDialect = sqlDialect{
	placeholder: func(int) string { return "?" },
	timeValue:   func(t time.Time) any { return t.UnixMilli() },
}

// SQLiteTicketRepository implements TicketRepository for SQLite. SQLite
// serializes writers, and each transition is a single UPDATE ... RETURNING.
type SQLiteTicketRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteTicketRepository creates a new SQLiteTicketRepository.
func NewSQLiteTicketRepository(db *sql.DB, opts ...Option) *SQLiteTicketRepository {
	o := buildOptions(opts)
	return &SQLiteTicketRepository{db: db, now: o.now}
}

// Create inserts a new ticket in status New.
func (r *SQLiteTicketRepository) Create(ctx context.Context, subject, description string) (*domain.Ticket, error) {
	ticket, err := newTicket(r.now, subject, description)
	if err != nil {
		return nil, err
	}
	query := `
		INSERT INTO tickets (id, subject, description, status, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query,
		ticket.ID,
		ticket.Subject,
		ticket.Description,
		string(ticket.Status),
		ticket.CreatedAt.UnixMilli(),
	); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}
	return ticket, nil
}

// ConditionalTransition updates the ticket only if its status satisfies when.
func (r *SQLiteTicketRepository) ConditionalTransition(ctx context.Context, id string, when StatusPredicate, to domain.TicketStatus, fields TransitionFields) (*domain.Ticket, error) {
	query, args := buildTransitionQuery(sqliteDialect, id, when, to, fields)
	ticket, err := scanSQLiteTicket(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to transition ticket: %w", err)
	}
	return ticket, nil
}

// BulkTransition moves every ticket in match to status to.
func (r *SQLiteTicketRepository) BulkTransition(ctx context.Context, match, to domain.TicketStatus, fields TransitionFields) (int64, error) {
	query, args := buildBulkTransitionQuery(sqliteDialect, match, to, fields)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk transition tickets: %w", err)
	}
	return res.RowsAffected()
}

// List returns tickets in the creation range, newest first.
func (r *SQLiteTicketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query, args := buildListQuery(sqliteDialect, filter)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanSQLiteTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTicket(row rowScanner) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var status string
	var createdAt int64
	var resolution, cancellationReason sql.NullString
	if err := row.Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Description,
		&status,
		&createdAt,
		&resolution,
		&cancellationReason,
	); err != nil {
		return nil, err
	}
	parsed, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	ticket.Status = parsed
	ticket.CreatedAt = time.UnixMilli(createdAt).UTC()
	if resolution.Valid {
		ticket.Resolution = &resolution.String
	}
	if cancellationReason.Valid {
		ticket.CancellationReason = &cancellationReason.String
	}
	return &ticket, nil
}
