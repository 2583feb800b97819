package service

import (
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

// Action names a single-ticket lifecycle transition.
type Action string

const (
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

// actionCancelAll labels the bulk cancel in metrics and events.
const actionCancelAll = "cancel_all"

type transitionRule struct {
	when repository.StatusPredicate
	to   domain.TicketStatus
}

// No rule targets New, and every rule refuses to leave Completed.
var lifecycle = map[Action]transitionRule{
	ActionStart: {
		when: repository.StatusIs(domain.TicketStatusNew),
		to:   domain.TicketStatusInProgress,
	},
	ActionComplete: {
		when: repository.StatusIs(domain.TicketStatusInProgress),
		to:   domain.TicketStatusCompleted,
	},
	ActionCancel: {
		when: repository.StatusIsNot(domain.TicketStatusCompleted),
		to:   domain.TicketStatusCancelled,
	},
}

// bulkCancelSource is the only status cancel-all touches.
const bulkCancelSource = domain.TicketStatusInProgress
