package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/service"
)

type captureForwarder struct {
	events []events.Event
	err    error
}

func (f *captureForwarder) Publish(_ context.Context, event events.Event) error {
	f.events = append(f.events, event)
	return f.err
}

func TestNotificationService_ForwardsLifecycleEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	forwarder := &captureForwarder{}
	service.NewNotificationService(dispatcher, forwarder, zap.NewNop()).RegisterHandlers()

	ctx := context.Background()
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketsBulkCancelled,
	} {
		require.NoError(t, dispatcher.Publish(ctx, events.Event{ID: string(eventType), Type: eventType}))
	}
	require.Len(t, forwarder.events, 3)
}

func TestNotificationService_ReportsForwardFailure(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	forwarder := &captureForwarder{err: errors.New("redis down")}
	service.NewNotificationService(dispatcher, forwarder, zap.NewNop()).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketCreated})
	require.ErrorContains(t, err, "redis down")
}

func TestNotificationService_WithoutForwarder(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, nil, zap.NewNop()).RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketCreated}))
}
