package worker

import (
	"go.uber.org/zap"

	"github.com/helpdesk-tools/ticket-triage/internal/config"
	"github.com/helpdesk-tools/ticket-triage/internal/events"
	"github.com/helpdesk-tools/ticket-triage/internal/service"
)

// StartNotificationWorker subscribes ticket notifications to the dispatcher.
// Handlers run synchronously on the publishing goroutine.
func StartNotificationWorker(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *service.NotificationService {
	if dispatcher == nil {
		return nil
	}
	notifications := service.NewNotificationService(dispatcher, logger, cfg)
	notifications.RegisterHandlers()
	if logger != nil {
		logger.Info("notification handlers registered", zap.Bool("webhook", cfg.WebhookURL != ""))
	}
	return notifications
}
