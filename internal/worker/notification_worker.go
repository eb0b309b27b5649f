package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/events"
)

// DefaultQueueSize bounds the events waiting for delivery.
const DefaultQueueSize = 256

// Handler consumes events off the request path.
type Handler interface {
	Events() []events.EventType
	Handle(ctx context.Context, event events.Event) error
}

// NotificationWorker queues dispatched events and hands them to a Handler on
// its own goroutine, so publishers never wait on delivery.
type NotificationWorker struct {
	handler Handler
	logger  *zap.Logger
	queue   chan events.Event

	mu      sync.RWMutex
	stopped bool
	done    chan struct{}
}

// StartNotificationWorker subscribes handler to dispatcher and starts draining.
func StartNotificationWorker(dispatcher events.Dispatcher, handler Handler, logger *zap.Logger, queueSize int) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	w := &NotificationWorker{
		handler: handler,
		logger:  logger,
		queue:   make(chan events.Event, queueSize),
		done:    make(chan struct{}),
	}
	for _, eventType := range handler.Events() {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
	go w.run()
	return w
}

// Stop refuses new events and waits until queued ones are delivered or ctx ends.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		w.logger.Warn("notification dropped: worker stopped", zap.String("event_type", string(event.Type)))
		return nil
	}
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification dropped: queue full", zap.String("event_type", string(event.Type)))
	}
	return nil
}

func (w *NotificationWorker) run() {
	defer close(w.done)
	for event := range w.queue {
		// The request that published the event may already be finished.
		if err := w.handler.Handle(context.Background(), event); err != nil {
			w.logger.Warn("notification failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}
}
