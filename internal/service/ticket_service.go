package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

const notFoundMessage = "ticket not found or not in the required state"

// TransitionRecorder observes transition outcomes.
type TransitionRecorder interface {
	RecordTransition(action, outcome string)
}

// TicketService coordinates ticket workflows. It holds no ticket state of
// its own; every mutation is one conditional call on the repository.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	metrics    TransitionRecorder
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Metrics    TransitionRecorder
	Logger     *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateTicket validates and stores a new ticket in status New.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	var missing []string
	if strings.TrimSpace(input.Subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(input.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("subject and description are required",
			map[string]any{"missing": missing})
	}

	ticket, err := s.tickets.Create(ctx, input.Subject, input.Description)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidInput) {
			return nil, apperrors.NewValidationError("subject and description are required", nil)
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload:  events.TicketCreatedPayload{Subject: ticket.Subject},
	})
	return ticket, nil
}

// StartTicket moves a New ticket to InProgress.
func (s *TicketService) StartTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.transition(ctx, ActionStart, ticketID, repository.TransitionFields{})
}

// CompleteTicket moves an InProgress ticket to Completed with a resolution.
// The resolution is stored as given, including empty.
func (s *TicketService) CompleteTicket(ctx context.Context, ticketID, resolution string) (*domain.Ticket, error) {
	return s.transition(ctx, ActionComplete, ticketID, repository.TransitionFields{Resolution: &resolution})
}

// CancelTicket cancels any ticket that is not Completed.
func (s *TicketService) CancelTicket(ctx context.Context, ticketID, reason string) (*domain.Ticket, error) {
	return s.transition(ctx, ActionCancel, ticketID, repository.TransitionFields{CancellationReason: &reason})
}

// CancelAllInProgress cancels every ticket currently InProgress and returns
// how many were changed.
func (s *TicketService) CancelAllInProgress(ctx context.Context, reason string) (int64, error) {
	count, err := s.tickets.BulkTransition(ctx, bulkCancelSource, domain.TicketStatusCancelled,
		repository.TransitionFields{CancellationReason: &reason})
	if err != nil {
		s.recordTransition(actionCancelAll, "error")
		return 0, apperrors.NewStoreUnavailable(err)
	}
	s.recordTransition(actionCancelAll, "ok")
	s.publishEvent(ctx, events.Event{
		Type: events.EventTicketsBulkCancelled,
		Payload: events.TicketsBulkCancelledPayload{
			FromStatus:    bulkCancelSource,
			ModifiedCount: count,
		},
	})
	return count, nil
}

// ListTickets returns tickets created within r, newest first.
func (s *TicketService) ListTickets(ctx context.Context, r domain.DateRange) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		CreatedFrom: r.From,
		CreatedTo:   r.To,
	})
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return tickets, nil
}

func (s *TicketService) transition(ctx context.Context, action Action, ticketID string, fields repository.TransitionFields) (*domain.Ticket, error) {
	rule, ok := lifecycle[action]
	if !ok {
		return nil, apperrors.NewInternalError(fmt.Errorf("unknown action %q", action))
	}
	// Ids are stored in canonical lower-case UUID form; anything that does
	// not parse cannot name a stored ticket.
	parsed, err := uuid.Parse(ticketID)
	if err != nil {
		s.recordTransition(string(action), "not_found")
		return nil, notFound(action, ticketID)
	}

	ticket, err := s.tickets.ConditionalTransition(ctx, parsed.String(), rule.when, rule.to, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.recordTransition(string(action), "not_found")
			return nil, notFound(action, ticketID)
		}
		s.recordTransition(string(action), "error")
		return nil, apperrors.NewStoreUnavailable(err)
	}

	s.recordTransition(string(action), "ok")
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			Action:    string(action),
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

func notFound(action Action, ticketID string) error {
	return apperrors.NewNotFound(notFoundMessage, map[string]any{
		"ticket_id": ticketID,
		"action":    string(action),
	})
}

func (s *TicketService) recordTransition(action, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordTransition(action, outcome)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}
