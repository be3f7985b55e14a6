package worker

import (
	"github.com/spec-kit/stay-service/internal/events"
	"github.com/spec-kit/stay-service/internal/service"
)

// StartNotificationWorker registers notification handlers and, when given, the
// stream forwarder on the dispatcher.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, forwarder *events.StreamForwarder) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if forwarder != nil && dispatcher != nil {
		forwarder.Register(dispatcher)
	}
}
