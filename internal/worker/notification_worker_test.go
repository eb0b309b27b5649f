package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/events"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingHandler struct {
	mu      sync.Mutex
	got     []events.Event
	block   chan struct{}
	failing bool
}

func (h *recordingHandler) Events() []events.EventType {
	return []events.EventType{events.EventUserRegistered}
}

func (h *recordingHandler) Handle(_ context.Context, event events.Event) error {
	if h.block != nil {
		<-h.block
	}
	h.mu.Lock()
	h.got = append(h.got, event)
	h.mu.Unlock()
	if h.failing {
		return errors.New("smtp down")
	}
	return nil
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.got)
}

func TestNotificationWorker_DeliversSubscribedEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	handler := &recordingHandler{failing: true}
	w := StartNotificationWorker(dispatcher, handler, zap.NewNop(), 4)

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventUserRegistered, UserID: "u1"}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventUserLoggedIn, UserID: "u1"}))

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, w.Stop(stopCtx))

	assert.Equal(t, 1, handler.count())
}

func TestNotificationWorker_DropsWhenFull(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	handler := &recordingHandler{block: make(chan struct{})}
	w := StartNotificationWorker(dispatcher, handler, zap.NewNop(), 1)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventUserRegistered}))
	}
	close(handler.block)

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, w.Stop(stopCtx))

	// One event in flight and one buffered at most.
	assert.LessOrEqual(t, handler.count(), 2)
	assert.GreaterOrEqual(t, handler.count(), 1)

	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventUserRegistered}))
	assert.LessOrEqual(t, handler.count(), 2)
}
