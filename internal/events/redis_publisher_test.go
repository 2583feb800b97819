package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

func testEvent() Event {
	return Event{
		ID:        "e1",
		Type:      EventTicketStatusChanged,
		TicketID:  "t1",
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Payload: TicketStatusChangedPayload{
			Action:    "start",
			NewStatus: domain.TicketStatusInProgress,
		},
	}
}

func TestRedisPublisher_Publish(t *testing.T) {
	db, mock := redismock.NewClientMock()

	event := testEvent()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	mock.ExpectPublish("tickets.events", body).SetVal(1)

	publisher := NewRedisPublisher(db, "tickets.events")
	require.NoError(t, publisher.Publish(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisPublisher_PublishError(t *testing.T) {
	db, mock := redismock.NewClientMock()

	event := testEvent()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	mock.ExpectPublish("tickets.events", body).SetErr(errors.New("connection reset"))

	publisher := NewRedisPublisher(db, "tickets.events")
	err = publisher.Publish(context.Background(), event)
	require.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventJSONShape(t *testing.T) {
	body, err := json.Marshal(testEvent())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "e1",
		"type": "ticket_status_changed",
		"ticketId": "t1",
		"timestamp": "2024-01-02T03:04:05Z",
		"payload": {"action": "start", "newStatus": "InProgress"}
	}`, string(body))
}
