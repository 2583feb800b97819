package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// TicketFilter captures list parameters.
type TicketFilter struct {
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// atStoredPrecision snaps the bounds to whole milliseconds, the precision
// createdAt is stored at: From rounds up and To rounds down, so no stored
// instant outside [CreatedFrom, CreatedTo] is matched.
func (f TicketFilter) atStoredPrecision() TicketFilter {
	out := TicketFilter{}
	if f.CreatedFrom != nil {
		from := f.CreatedFrom.UTC().Add(time.Millisecond - 1).Truncate(time.Millisecond)
		out.CreatedFrom = &from
	}
	if f.CreatedTo != nil {
		to := f.CreatedTo.UTC().Truncate(time.Millisecond)
		out.CreatedTo = &to
	}
	return out
}

// StatusMatch selects how a StatusPredicate compares the current status.
type StatusMatch int

const (
	MatchEquals StatusMatch = iota
	MatchNotEquals
)

// StatusPredicate is the precondition a conditional transition checks
// against the stored status.
type StatusPredicate struct {
	Match  StatusMatch
	Status domain.TicketStatus
}

// StatusIs matches tickets currently in status.
func StatusIs(status domain.TicketStatus) StatusPredicate {
	return StatusPredicate{Match: MatchEquals, Status: status}
}

// StatusIsNot matches tickets in any status except status.
func StatusIsNot(status domain.TicketStatus) StatusPredicate {
	return StatusPredicate{Match: MatchNotEquals, Status: status}
}

// Matches evaluates the predicate against a status.
func (p StatusPredicate) Matches(status domain.TicketStatus) bool {
	if p.Match == MatchNotEquals {
		return status != p.Status
	}
	return status == p.Status
}

// TransitionFields are merged into the record by a transition. Nil fields
// are left untouched.
type TransitionFields struct {
	Resolution         *string
	CancellationReason *string
}

// TicketRepository encapsulates ticket persistence. Every mutation is a
// single atomic statement against the backing store.
type TicketRepository interface {
	Create(ctx context.Context, subject, description string) (*domain.Ticket, error)
	ConditionalTransition(ctx context.Context, id string, when StatusPredicate, to domain.TicketStatus, fields TransitionFields) (*domain.Ticket, error)
	BulkTransition(ctx context.Context, match, to domain.TicketStatus, fields TransitionFields) (int64, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

// Option configures a repository implementation.
type Option func(*repoOptions)

type repoOptions struct {
	now func() time.Time
}

// WithClock overrides the clock used to stamp createdAt.
func WithClock(now func() time.Time) Option {
	return func(o *repoOptions) {
		o.now = now
	}
}

func buildOptions(opts []Option) repoOptions {
	o := repoOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// newTicket validates input and builds a fresh record in status New.
func newTicket(now func() time.Time, subject, description string) (*domain.Ticket, error) {
	subject = strings.TrimSpace(subject)
	description = strings.TrimSpace(description)
	if subject == "" || description == "" {
		return nil, ErrInvalidInput
	}
	return &domain.Ticket{
		ID:          uuid.NewString(),
		Subject:     subject,
		Description: description,
		Status:      domain.TicketStatusNew,
		CreatedAt:   now().UTC().Truncate(time.Millisecond),
	}, nil
}

const ticketColumns = `id, subject, description, status, created_at, resolution, cancellation_reason`

// sqlDialect abstracts placeholder and time encoding differences between
// the SQL backends.
type sqlDialect struct {
	placeholder func(n int) string
	timeValue   func(t time.Time) any
}

var postgresDialect = sqlDialect{
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	timeValue:   func(t time.Time) any { return t },
}

type sqlBuilder struct {
	dialect sqlDialect
	args    []any
}

func (b *sqlBuilder) bind(val any) string {
	b.args = append(b.args, val)
	return b.dialect.placeholder(len(b.args))
}

func (b *sqlBuilder) setClauses(to domain.TicketStatus, fields TransitionFields) string {
	sets := []string{"status=" + b.bind(string(to))}
	if fields.Resolution != nil {
		sets = append(sets, "resolution="+b.bind(*fields.Resolution))
	}
	if fields.CancellationReason != nil {
		sets = append(sets, "cancellation_reason="+b.bind(*fields.CancellationReason))
	}
	return strings.Join(sets, ", ")
}

func (b *sqlBuilder) statusClause(when StatusPredicate) string {
	op := "="
	if when.Match == MatchNotEquals {
		op = "<>"
	}
	return "status" + op + b.bind(string(when.Status))
}

func buildTransitionQuery(d sqlDialect, id string, when StatusPredicate, to domain.TicketStatus, fields TransitionFields) (string, []any) {
	b := &sqlBuilder{dialect: d}
	sets := b.setClauses(to, fields)
	idClause := "id=" + b.bind(id)
	statusClause := b.statusClause(when)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE %s AND %s RETURNING %s`,
		sets, idClause, statusClause, ticketColumns)
	return query, b.args
}

func buildBulkTransitionQuery(d sqlDialect, match, to domain.TicketStatus, fields TransitionFields) (string, []any) {
	b := &sqlBuilder{dialect: d}
	sets := b.setClauses(to, fields)
	statusClause := b.statusClause(StatusIs(match))
	return fmt.Sprintf(`UPDATE tickets SET %s WHERE %s`, sets, statusClause), b.args
}

func buildListQuery(d sqlDialect, filter TicketFilter) (string, []any) {
	b := &sqlBuilder{dialect: d}
	filter = filter.atStoredPrecision()
	clauses := []string{"1=1"}
	if filter.CreatedFrom != nil {
		clauses = append(clauses, "created_at >= "+b.bind(d.timeValue(*filter.CreatedFrom)))
	}
	if filter.CreatedTo != nil {
		clauses = append(clauses, "created_at <= "+b.bind(d.timeValue(*filter.CreatedTo)))
	}
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC`,
		ticketColumns, strings.Join(clauses, " AND "))
	return query, b.args
}

type ticketRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewTicketRepository instantiates the Postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool, opts ...Option) TicketRepository {
	o := buildOptions(opts)
	return &ticketRepository{pool: pool, now: o.now}
}

func (r *ticketRepository) Create(ctx context.Context, subject, description string) (*domain.Ticket, error) {
	ticket, err := newTicket(r.now, subject, description)
	if err != nil {
		return nil, err
	}
	const query = `
        INSERT INTO tickets (id, subject, description, status, created_at)
        VALUES ($1,$2,$3,$4,$5)`
	if _, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert ticket: %w", err)
	}
	return ticket, nil
}

func (r *ticketRepository) ConditionalTransition(ctx context.Context, id string, when StatusPredicate, to domain.TicketStatus, fields TransitionFields) (*domain.Ticket, error) {
	query, args := buildTransitionQuery(postgresDialect, id, when, to, fields)
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("transition ticket: %w", err)
	}
	return ticket, nil
}

func (r *ticketRepository) BulkTransition(ctx context.Context, match, to domain.TicketStatus, fields TransitionFields) (int64, error) {
	query, args := buildBulkTransitionQuery(postgresDialect, match, to, fields)
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk transition tickets: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query, args := buildListQuery(postgresDialect, filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var status string
	if err := row.Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Description,
		&status,
		&ticket.CreatedAt,
		&ticket.Resolution,
		&ticket.CancellationReason,
	); err != nil {
		return nil, err
	}
	parsed, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	ticket.Status = parsed
	ticket.CreatedAt = ticket.CreatedAt.UTC()
	return &ticket, nil
}

func parseStatus(raw string) (domain.TicketStatus, error) {
	status := domain.TicketStatus(raw)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return status, nil
}
