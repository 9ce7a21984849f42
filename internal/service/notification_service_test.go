package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/helpdesk-tools/ticket-triage/internal/config"
	"github.com/helpdesk-tools/ticket-triage/internal/domain"
	"github.com/helpdesk-tools/ticket-triage/internal/events"
	"github.com/helpdesk-tools/ticket-triage/internal/triage"
)

// webhookRecorder captures webhook deliveries.
type webhookRecorder struct {
	mu       sync.Mutex
	received []map[string]any
	status   int
}

func newWebhookRecorder(t *testing.T, status int) (*webhookRecorder, string) {
	t.Helper()
	rec := &webhookRecorder{status: status}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Method == http.MethodPost && json.NewDecoder(r.Body).Decode(&body) == nil {
			rec.mu.Lock()
			rec.received = append(rec.received, body)
			rec.mu.Unlock()
		}
		w.WriteHeader(rec.status)
	}))
	t.Cleanup(srv.Close)
	return rec, srv.URL
}

func (r *webhookRecorder) deliveries() []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]map[string]any(nil), r.received...)
}

func TestNotificationService_DeliversWebhook(t *testing.T) {
	rec, url := newWebhookRecorder(t, http.StatusNoContent)
	core, logs := observer.New(zap.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{WebhookURL: url}).RegisterHandlers()

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.NewEvent(events.EventTicketCreated, 1, "agent-1", events.TicketCreatedPayload{Title: "Outage", Priority: "high"})))
	require.NoError(t, dispatcher.Publish(ctx, events.NewEvent(events.EventTicketCreated, 2, "", events.TicketCreatedPayload{Priority: "low"})))
	require.NoError(t, dispatcher.Publish(ctx, events.NewEvent(events.EventTicketUpdated, 1, "", events.TicketUpdatedPayload{Fields: []string{"status"}, Status: "resolved"})))
	require.NoError(t, dispatcher.Publish(ctx, events.NewEvent(events.EventTicketUpdated, 2, "", events.TicketUpdatedPayload{Fields: []string{"status"}, Status: "in_progress"})))

	assert.Equal(t, 2, logs.FilterMessage("ticket created").Len())
	assert.Equal(t, 2, logs.FilterMessage("ticket updated").Len())
	assert.Equal(t, 2, logs.FilterMessage("webhook notification").Len())

	got := rec.deliveries()
	require.Len(t, got, 2)
	assert.Equal(t, "ticket_created", got[0]["type"])
	assert.Equal(t, float64(1), got[0]["ticket_id"])
	assert.Equal(t, "agent-1", got[0]["actor"])
	assert.Equal(t, "high", got[0]["payload"].(map[string]any)["priority"])
	assert.Equal(t, "ticket_updated", got[1]["type"])
	assert.Equal(t, "resolved", got[1]["payload"].(map[string]any)["status"])
}

func TestNotificationService_WebhookFailureSurfaces(t *testing.T) {
	_, url := newWebhookRecorder(t, http.StatusBadGateway)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{WebhookURL: url}).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.NewEvent(events.EventTicketCreated, 1, "", events.TicketCreatedPayload{Priority: "high"}))
	assert.ErrorContains(t, err, "unexpected status 502")
}

func TestNotificationService_WebhookFailureDoesNotFailCreate(t *testing.T) {
	_, url := newWebhookRecorder(t, http.StatusInternalServerError)
	core, logs := observer.New(zap.WarnLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{WebhookURL: url}).RegisterHandlers()
	svc := NewTicketService(TicketDependencies{TicketRepo: &mockTicketRepo{}, Dispatcher: dispatcher, Logger: zap.New(core)})

	ticket, err := svc.CreateTicket(context.Background(), "", TicketCreateInput{Title: "Server outage", Description: "everything is down"})

	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityHigh, *ticket.Priority)
	assert.Equal(t, triage.Uncategorized, *ticket.Category)
	assert.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
}

func TestNotificationService_NoWebhook(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{}).RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.NewEvent(events.EventTicketCreated, 1, "", events.TicketCreatedPayload{Priority: "high"})))
	assert.Equal(t, 1, logs.FilterMessage("ticket created").Len())
	assert.Zero(t, logs.FilterMessage("webhook notification").Len())
}
