package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/persistence"
	"github.com/spec-kit/ticket-tracker/internal/service"
)

// StartNotificationWorker subscribes event delivery to dispatcher. Events
// are always logged; they are also published to channel when a Redis
// client is available.
func StartNotificationWorker(dispatcher events.Dispatcher, redis *persistence.Redis, channel string, logger *zap.Logger) *service.NotificationService {
	if dispatcher == nil {
		return nil
	}
	var forwarder service.EventForwarder
	if redis != nil && redis.Client != nil {
		forwarder = events.NewRedisPublisher(redis.Client, channel)
		logger.Info("forwarding ticket events to redis", zap.String("channel", channel))
	}
	notifications := service.NewNotificationService(dispatcher, forwarder, logger)
	notifications.RegisterHandlers()
	return notifications
}
