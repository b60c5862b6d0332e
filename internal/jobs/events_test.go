package jobs

import (
	"testing"
	"time"
)

// TestBusSince verifies incremental per-job reads by sequence.
func TestBusSince(t *testing.T) {
	t.Parallel()

	bus := NewBus(10)
	bus.Publish(Event{JobID: "a", Type: EventTypeStage, Stage: "requested"})
	bus.Publish(Event{JobID: "b", Type: EventTypeStage, Stage: "requested"})
	bus.Publish(Event{JobID: "a", Type: EventTypeStage, Stage: "normalizing"})
	bus.Publish(Event{JobID: "a", Type: EventTypeCompleted})

	events := bus.Since("a", 1)
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Seq != 3 || events[1].Seq != 4 {
		t.Fatalf("unexpected seqs: %+v", events)
	}
	if events[0].Timestamp.IsZero() {
		t.Error("Publish() should stamp the event")
	}
}

// TestBusCapsHistory verifies buffer limit trimming behavior.
func TestBusCapsHistory(t *testing.T) {
	t.Parallel()

	bus := NewBus(2)
	bus.Publish(Event{JobID: "a", Stage: "1"})
	bus.Publish(Event{JobID: "a", Stage: "2"})
	bus.Publish(Event{JobID: "a", Stage: "3"})

	events := bus.Since("a", 0)
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Stage != "2" || events[1].Stage != "3" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestBusSubscribe(t *testing.T) {
	t.Parallel()

	bus := NewBus(0)
	bus.Publish(Event{JobID: "a", Stage: "requested"})

	replay, events, cancel := bus.Subscribe("a")
	defer cancel()

	if len(replay) != 1 || replay[0].Stage != "requested" {
		t.Fatalf("replay = %+v, want the buffered event", replay)
	}

	bus.Publish(Event{JobID: "b", Stage: "other job"})
	bus.Publish(Event{JobID: "a", Type: EventTypeCompleted})

	select {
	case e := <-events:
		if e.JobID != "a" || !e.Type.Terminal() {
			t.Errorf("received %+v, want job a completion", e)
		}
	case <-time.After(time.Second):
		t.Fatal("no live event delivered")
	}

	if got := bus.Subscribers("a"); got != 1 {
		t.Errorf("Subscribers() = %d, want 1", got)
	}
	cancel()
	cancel() // idempotent
	if got := bus.Subscribers("a"); got != 0 {
		t.Errorf("Subscribers() after cancel = %d, want 0", got)
	}
}

func TestBusSlowSubscriberDoesNotBlock(t *testing.T) {
	t.Parallel()

	bus := NewBus(0)
	_, _, cancel := bus.Subscribe("a")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for range subscriberBuffer * 2 {
			bus.Publish(Event{JobID: "a"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish() blocked on a full subscriber")
	}
}
