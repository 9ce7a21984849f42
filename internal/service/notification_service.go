package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/helpdesk-tools/ticket-triage/internal/config"
	"github.com/helpdesk-tools/ticket-triage/internal/events"
)

// NotificationService logs ticket events and forwards high-priority
// creations and resolutions to the configured webhook.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketUpdated, n.handleTicketUpdated)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	fields := []zap.Field{zap.Int64("ticket_id", event.TicketID), zap.String("actor", event.Actor)}
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if ok {
		fields = append(fields,
			zap.String("category", payload.Category),
			zap.String("priority", payload.Priority),
			zap.Bool("auto_triaged", payload.AutoTriaged))
	}
	n.logger.Info("ticket created", fields...)
	// High priority tickets page the on-call webhook.
	if ok && payload.Priority == "high" {
		return n.notifyWebhook(ctx, event)
	}
	return nil
}

func (n *NotificationService) handleTicketUpdated(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket updated", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.TicketUpdatedPayload); ok && payload.Status == "resolved" {
		return n.notifyWebhook(ctx, event)
	}
	return nil
}

// notifyWebhook POSTs the event as JSON. A non-2xx answer is an error; the
// publisher logs it and the ticket operation still succeeds.
func (n *NotificationService) notifyWebhook(ctx context.Context, event events.Event) error {
	if n.cfg.WebhookURL == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	agent := fiber.Post(n.cfg.WebhookURL).
		JSON(event).
		Timeout(n.cfg.WebhookTimeout())
	status, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("webhook %s: %w", event.Type, errors.Join(errs...))
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook %s: unexpected status %d", event.Type, status)
	}

	n.logger.Debug("webhook notification",
		zap.Int64("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)),
		zap.Int("status", status))
	return nil
}
