package runtime

import (
	"context"
	"log/slog"

	"lanchat/domain/event"
	"lanchat/observability"
)

// Bus broadcasts domain events to every connection registered in the
// Registry at the moment of dispatch.
//
// It provides best-effort, at-most-once fan-out with no delivery guarantee
// to connections that disconnect mid-broadcast. A single dispatcher
// goroutine drains the queue, so each connection observes events in the
// order they were published.
//
// Bus is safe for concurrent use by multiple goroutines.
type Bus struct {
	log      *slog.Logger
	registry *Registry
	monitor  *observability.Monitor
	events   chan event.DomainEvent
}

func NewBus(log *slog.Logger, registry *Registry, monitor *observability.Monitor, bufferSize int) *Bus {
	return &Bus{
		log:      log,
		registry: registry,
		monitor:  monitor,
		events:   make(chan event.DomainEvent, bufferSize),
	}
}

// Publish enqueues an event for fan-out. It blocks when the queue is full
// rather than dropping, so a producer's publish order is preserved.
func (b *Bus) Publish(e event.DomainEvent) {
	b.events <- e
}

// Run drains the queue until the context is canceled. It is meant to be
// started under the Supervisor.
func (b *Bus) Run(ctx context.Context) error {
	for {
		select {
		case e := <-b.events:
			b.dispatch(e)
		case <-ctx.Done():
			b.log.Debug("Context done, stopping event dispatch")
			return nil
		}
	}
}

// dispatch delivers one event to each registered sink. Consume never
// blocks; a full or closed connection buffer drops the event for that
// connection only.
func (b *Bus) dispatch(e event.DomainEvent) {
	for _, sink := range b.registry.Sinks() {
		if sink.Consume(e) {
			b.monitor.IncrEventsDispatched()
		} else {
			b.monitor.IncrEventsDropped()
			b.log.Debug("Event dropped", "event", e.Name())
		}
	}
}
