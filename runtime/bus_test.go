package runtime

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"lanchat/domain/event"
	"lanchat/observability"
)

type collectSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
	full   bool
}

func (s *collectSink) Consume(e event.DomainEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return false
	}
	s.events = append(s.events, e)
	return true
}

func (s *collectSink) collected() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.DomainEvent, len(s.events))
	copy(out, s.events)
	return out
}

func startBus(t *testing.T, registry *Registry, monitor *observability.Monitor) *Bus {
	t.Helper()
	bus := NewBus(slog.Default(), registry, monitor, 16)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = bus.Run(ctx) }()
	return bus
}

func TestBus_Delivers_To_Every_Registered_Sink_In_Order(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	monitor := observability.NewMonitor(slog.Default())
	bus := startBus(t, registry, monitor)

	alice := &collectSink{}
	bob := &collectSink{}
	_, err := registry.Admit(uuid.New(), "alice", alice)
	req.NoError(err)
	_, err = registry.Admit(uuid.New(), "bob", bob)
	req.NoError(err)

	bus.Publish(event.MessageReceived{Seq: 1, Username: "alice", Message: "hi"})
	bus.Publish(event.MessageReceived{Seq: 2, Username: "alice", Message: "there"})

	req.Eventually(func() bool {
		return len(alice.collected()) == 2 && len(bob.collected()) == 2
	}, time.Second, 10*time.Millisecond)

	for _, sink := range []*collectSink{alice, bob} {
		events := sink.collected()
		first, ok := events[0].(event.MessageReceived)
		req.True(ok)
		req.Equal(uint64(1), first.Seq)
		second, ok := events[1].(event.MessageReceived)
		req.True(ok)
		req.Equal(uint64(2), second.Seq)
	}
}

func TestBus_Sink_Registered_After_Publish_Misses_The_Event(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	monitor := observability.NewMonitor(slog.Default())
	bus := startBus(t, registry, monitor)

	early := &collectSink{}
	_, err := registry.Admit(uuid.New(), "early", early)
	req.NoError(err)

	bus.Publish(event.UserJoined{Username: "alice"})
	req.Eventually(func() bool {
		return len(early.collected()) == 1
	}, time.Second, 10*time.Millisecond)

	// No queued replay for reconnecting clients: a sink admitted after
	// dispatch never sees the event.
	late := &collectSink{}
	_, err = registry.Admit(uuid.New(), "late", late)
	req.NoError(err)

	bus.Publish(event.UserJoined{Username: "bob"})
	req.Eventually(func() bool {
		return len(late.collected()) == 1
	}, time.Second, 10*time.Millisecond)
	req.Len(early.collected(), 2)
}

func TestBus_Counts_Dropped_Deliveries(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	monitor := observability.NewMonitor(slog.Default())
	bus := startBus(t, registry, monitor)

	saturated := &collectSink{full: true}
	_, err := registry.Admit(uuid.New(), "slow", saturated)
	req.NoError(err)

	bus.Publish(event.UserJoined{Username: "alice"})
	req.Eventually(func() bool {
		return monitor.EventsDropped() == 1
	}, time.Second, 10*time.Millisecond)
	req.Empty(saturated.collected())
}
