package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

// TicketRepository is a mock for repository.TicketRepository.
type TicketRepository struct {
	mock.Mock
}

func (m *TicketRepository) Create(ctx context.Context, subject, description string) (*domain.Ticket, error) {
	args := m.Called(ctx, subject, description)
	if ticket, ok := args.Get(0).(*domain.Ticket); ok {
		return ticket, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TicketRepository) ConditionalTransition(ctx context.Context, id string, when repository.StatusPredicate, to domain.TicketStatus, fields repository.TransitionFields) (*domain.Ticket, error) {
	args := m.Called(ctx, id, when, to, fields)
	if ticket, ok := args.Get(0).(*domain.Ticket); ok {
		return ticket, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TicketRepository) BulkTransition(ctx context.Context, match, to domain.TicketStatus, fields repository.TransitionFields) (int64, error) {
	args := m.Called(ctx, match, to, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TicketRepository) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	args := m.Called(ctx, filter)
	if list, ok := args.Get(0).([]domain.Ticket); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repository.TicketRepository = (*TicketRepository)(nil)
