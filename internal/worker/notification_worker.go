package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/outagetrack/outage-service/internal/events"
)

const queueSize = 256

// Handler processes a single event.
type Handler interface {
	Handle(ctx context.Context, event events.Event) error
}

// NotificationWorker moves notification delivery off the request path. Events
// are queued by the dispatcher and drained by a fixed pool of goroutines.
type NotificationWorker struct {
	handler Handler
	logger  *zap.Logger
	workers int
	jobs    chan events.Event
	wg      sync.WaitGroup
	once    sync.Once
}

// NewNotificationWorker builds a worker pool of the given size.
func NewNotificationWorker(handler Handler, logger *zap.Logger, workers int) *NotificationWorker {
	if workers <= 0 {
		workers = 1
	}
	return &NotificationWorker{
		handler: handler,
		logger:  logger,
		workers: workers,
		jobs:    make(chan events.Event, queueSize),
	}
}

// StartNotificationWorker subscribes the pool to every location event and starts it.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, w *NotificationWorker) {
	if dispatcher == nil || w == nil {
		return
	}
	for _, eventType := range events.AllLocationEvents {
		dispatcher.Subscribe(eventType, w.Enqueue)
	}
	w.Start(ctx)
}

// Start launches the pool goroutines.
func (w *NotificationWorker) Start(ctx context.Context) {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for event := range w.jobs {
				if err := w.handler.Handle(ctx, event); err != nil {
					w.logger.Warn("notification failed",
						zap.String("event_type", string(event.Type)),
						zap.String("location_id", event.LocationID),
						zap.Error(err))
				}
			}
		}()
	}
}

// Enqueue never blocks; events are dropped when the queue is full.
func (w *NotificationWorker) Enqueue(_ context.Context, event events.Event) error {
	select {
	case w.jobs <- event:
	default:
		w.logger.Warn("notification queue full; dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("location_id", event.LocationID))
	}
	return nil
}

// Stop drains queued events and waits for the pool to exit.
func (w *NotificationWorker) Stop() {
	w.once.Do(func() {
		close(w.jobs)
	})
	w.wg.Wait()
}
