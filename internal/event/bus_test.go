package event

import (
	"sync"
	"testing"
)

func TestSubscribeAndPublish(t *testing.T) {
	bus := NewBus()

	var got []Event
	bus.Subscribe("stage.completed", func(e Event) {
		got = append(got, e)
	})

	bus.Publish(NewStageCompletedEvent("run-1", 1, "critique", "claude", ""))
	bus.Publish(NewRoundCompletedEvent("run-1", 1)) // different type, not delivered

	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	ev, ok := got[0].(StageCompletedEvent)
	if !ok {
		t.Fatalf("got %T, want StageCompletedEvent", got[0])
	}
	if ev.Stage != "critique" || ev.Round != 1 {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestSubscribeAllReceivesEverything(t *testing.T) {
	bus := NewBus()

	count := 0
	bus.SubscribeAll(func(Event) { count++ })

	bus.Publish(NewRunStartedEvent("run-1", 3, 1, false))
	bus.Publish(NewStageStartedEvent("run-1", 1, "critique", "claude", "m"))
	bus.Publish(NewRunFailedEvent("run-1", 1, "critique", "auth"))

	if count != 3 {
		t.Errorf("wildcard handler called %d times, want 3", count)
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()

	count := 0
	id := bus.Subscribe("round.completed", func(Event) { count++ })

	bus.Publish(NewRoundCompletedEvent("run-1", 1))
	if !bus.Unsubscribe(id) {
		t.Fatal("Unsubscribe returned false for live subscription")
	}
	bus.Publish(NewRoundCompletedEvent("run-1", 2))

	if count != 1 {
		t.Errorf("handler called %d times, want 1", count)
	}
	if bus.Unsubscribe(id) {
		t.Error("Unsubscribe returned true for removed subscription")
	}
}

func TestPublishRecoversHandlerPanic(t *testing.T) {
	bus := NewBus()

	called := false
	bus.Subscribe("run.completed", func(Event) { panic("boom") })
	bus.Subscribe("run.completed", func(Event) { called = true })

	bus.Publish(NewRunCompletedEvent("run-1", 2, 0, "final.md"))

	if !called {
		t.Error("panic in first handler blocked delivery to second")
	}
}

func TestConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.Subscribe("stage.started", func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(round int) {
			defer wg.Done()
			bus.Publish(NewStageStartedEvent("run-1", round, "critique", "claude", "m"))
		}(i)
	}
	wg.Wait()

	if count != 10 {
		t.Errorf("handler called %d times, want 10", count)
	}
}

func TestSubscriptionCountAndClear(t *testing.T) {
	bus := NewBus()
	bus.Subscribe("a", func(Event) {})
	bus.Subscribe("b", func(Event) {})
	bus.SubscribeAll(func(Event) {})

	if got := bus.SubscriptionCount(); got != 3 {
		t.Errorf("SubscriptionCount = %d, want 3", got)
	}
	bus.Clear()
	if got := bus.SubscriptionCount(); got != 0 {
		t.Errorf("SubscriptionCount after Clear = %d, want 0", got)
	}
}

func TestSubscriptionIDsStayUnique(t *testing.T) {
	bus := NewBus()

	// Far more subscriptions than any short cyclic ID scheme survives.
	ids := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		id := bus.Subscribe("x", func(Event) {})
		if ids[id] {
			t.Fatalf("duplicate subscription ID %q after %d subscriptions", id, i+1)
		}
		ids[id] = true
	}

	// Unsubscribing by ID must detach exactly one handler.
	for id := range ids {
		if !bus.Unsubscribe(id) {
			t.Fatalf("Unsubscribe(%q) found nothing", id)
		}
		break
	}
	if got := bus.SubscriptionCount(); got != 9999 {
		t.Errorf("SubscriptionCount = %d, want 9999", got)
	}
}
