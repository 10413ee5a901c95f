package logging_test

import (
	"context"
	"testing"
	"time"

	"block-party/server/logging"
	"block-party/server/logging/sinks"
)

func waitForEvents(t *testing.T, sink *sinks.MemorySink, want int) []logging.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		events := sink.Events()
		if len(events) >= want {
			return events
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d events, have %d", want, len(events))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRouterForwardsToNamedSinks(t *testing.T) {
	t.Parallel()

	memory := sinks.NewMemorySink()
	router, err := logging.NewRouter(nil, logging.DefaultConfig(), []logging.NamedSink{
		{Name: "memory", Sink: memory},
	})
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}
	defer closeRouter(t, router)

	router.Publish(context.Background(), logging.Event{
		Type:     "powerups.collected",
		Tick:     3,
		Severity: logging.SeverityInfo,
	})

	events := waitForEvents(t, memory, 1)
	if events[0].Type != "powerups.collected" || events[0].Tick != 3 {
		t.Fatalf("unexpected event: %+v", events[0])
	}
	if events[0].Time.IsZero() {
		t.Fatalf("router did not stamp the event time")
	}
}

func TestRouterFiltersBelowMinimumSeverity(t *testing.T) {
	t.Parallel()

	memory := sinks.NewMemorySink()
	cfg := logging.DefaultConfig()
	cfg.MinimumSeverity = logging.SeverityWarn
	router, err := logging.NewRouter(nil, cfg, []logging.NamedSink{
		{Name: "memory", Sink: memory},
	})
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}
	defer closeRouter(t, router)

	router.Publish(context.Background(), logging.Event{Type: "powerups.applied", Severity: logging.SeverityInfo})
	router.Publish(context.Background(), logging.Event{Type: "powerups.expired", Severity: logging.SeverityWarn})

	events := waitForEvents(t, memory, 1)
	if len(events) != 1 || events[0].Type != "powerups.expired" {
		t.Fatalf("severity filter let the wrong events through: %+v", events)
	}
}

func TestRouterAttachesConfiguredFields(t *testing.T) {
	t.Parallel()

	memory := sinks.NewMemorySink()
	cfg := logging.DefaultConfig()
	cfg.Fields = map[string]any{"session": "demo"}
	router, err := logging.NewRouter(nil, cfg, []logging.NamedSink{
		{Name: "memory", Sink: memory},
	})
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}
	defer closeRouter(t, router)

	router.Publish(context.Background(), logging.Event{Type: "powerups.revealed", Severity: logging.SeverityInfo})

	events := waitForEvents(t, memory, 1)
	if got := events[0].Extra["session"]; got != "demo" {
		t.Fatalf("configured field missing, extra = %v", events[0].Extra)
	}
}

func TestRouterIgnoresUntypedEvents(t *testing.T) {
	t.Parallel()

	memory := sinks.NewMemorySink()
	router, err := logging.NewRouter(nil, logging.DefaultConfig(), []logging.NamedSink{
		{Name: "memory", Sink: memory},
	})
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}

	router.Publish(context.Background(), logging.Event{Severity: logging.SeverityError})
	router.Publish(context.Background(), logging.Event{Type: "powerups.extra_life", Severity: logging.SeverityInfo})

	events := waitForEvents(t, memory, 1)
	closeRouter(t, router)
	if len(events) != 1 || events[0].Type != "powerups.extra_life" {
		t.Fatalf("untyped event was forwarded: %+v", events)
	}
}

func closeRouter(t *testing.T, router *logging.Router) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := router.Close(ctx); err != nil {
		t.Fatalf("router close: %v", err)
	}
}
