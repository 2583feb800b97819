package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

func TestLifecycleRules(t *testing.T) {
	statuses := []domain.TicketStatus{
		domain.TicketStatusNew,
		domain.TicketStatusInProgress,
		domain.TicketStatusCompleted,
		domain.TicketStatusCancelled,
	}
	allowed := map[Action][]domain.TicketStatus{
		ActionStart:    {domain.TicketStatusNew},
		ActionComplete: {domain.TicketStatusInProgress},
		ActionCancel:   {domain.TicketStatusNew, domain.TicketStatusInProgress, domain.TicketStatusCancelled},
	}
	require.Len(t, lifecycle, len(allowed))

	for action, from := range allowed {
		rule, ok := lifecycle[action]
		require.True(t, ok, "missing rule for %s", action)
		for _, status := range statuses {
			assert.Equal(t, contains(from, status), rule.when.Matches(status), "%s from %s", action, status)
		}
	}
}

func TestLifecycleNeverTargetsNewOrLeavesCompleted(t *testing.T) {
	for action, rule := range lifecycle {
		assert.True(t, rule.to.Valid(), "%s targets unknown status", action)
		assert.NotEqual(t, domain.TicketStatusNew, rule.to, "%s targets New", action)
		assert.False(t, rule.when.Matches(domain.TicketStatusCompleted), "%s leaves Completed", action)
	}
	assert.Equal(t, domain.TicketStatusInProgress, bulkCancelSource)
}

func contains(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
