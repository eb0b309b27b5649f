package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/events"
)

func TestNotificationService_UserRegistered(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	svc := NewNotificationService(zap.New(core), config.NotificationConfig{
		EmailFrom:  "noreply@example.com",
		WebhookURL: "https://hooks.example.com/accounts",
	})

	err := svc.Handle(context.Background(), events.Event{
		Type:    events.EventUserRegistered,
		UserID:  "u1",
		Payload: events.UserRegisteredPayload{Name: "A", Email: "a@x.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("UserRegistered").Len())
	emails := logs.FilterMessage("sendWelcomeEmailStub").All()
	require.Len(t, emails, 1)
	assert.Equal(t, "a@x.com", emails[0].ContextMap()["to"])
	assert.Equal(t, 1, logs.FilterMessage("sendWebhookNotificationStub").Len())
}

func TestNotificationService_StubsDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	svc := NewNotificationService(zap.New(core), config.NotificationConfig{})
	require.NoError(t, svc.Handle(context.Background(), events.Event{Type: events.EventUserRegistered, UserID: "u1"}))

	assert.Equal(t, 1, logs.Len())
}

func TestNotificationService_IgnoresOtherEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	svc := NewNotificationService(zap.New(core), config.NotificationConfig{EmailFrom: "noreply@example.com"})
	require.NoError(t, svc.Handle(context.Background(), events.Event{Type: events.EventUserLoggedIn, UserID: "u1"}))

	assert.Equal(t, 0, logs.Len())
	assert.Equal(t, []events.EventType{events.EventUserRegistered}, svc.Events())
}
