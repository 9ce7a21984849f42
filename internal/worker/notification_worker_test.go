package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/helpdesk-tools/ticket-triage/internal/config"
	"github.com/helpdesk-tools/ticket-triage/internal/events"
)

func TestStartNotificationWorker(t *testing.T) {
	assert.Nil(t, StartNotificationWorker(nil, zap.NewNop(), config.NotificationConfig{}))

	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	require.NotNil(t, StartNotificationWorker(dispatcher, zap.New(core), config.NotificationConfig{}))

	require.NoError(t, dispatcher.Publish(context.Background(), events.NewEvent(events.EventTicketCreated, 3, "", events.TicketCreatedPayload{})))
	assert.Equal(t, 1, logs.FilterMessage("notification handlers registered").Len())
	assert.Equal(t, 1, logs.FilterMessage("ticket created").Len())
}
