package notify

import (
	"testing"
	"time"
)

func TestPublishReachesSubscriber(t *testing.T) {
	hub := NewHub()

	events, cancel := hub.Subscribe("note-1")
	defer cancel()

	hub.Publish("note-1", "summary_ready")

	select {
	case ev := <-events:
		if ev.Type != "summary_ready" || ev.NoteID != "note-1" {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("expected event, got none")
	}
}

func TestPublishScopedToNote(t *testing.T) {
	hub := NewHub()

	events, cancel := hub.Subscribe("note-1")
	defer cancel()

	hub.Publish("note-2", "summary_ready")

	select {
	case ev := <-events:
		t.Errorf("expected no event for other note, got %+v", ev)
	default:
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := NewHub()

	_, cancel := hub.Subscribe("note-1")
	defer cancel()

	// overflow the subscriber buffer; extra events must be dropped silently
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish("note-1", "media_ready")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestCancelRemovesSubscription(t *testing.T) {
	hub := NewHub()

	events, cancel := hub.Subscribe("note-1")
	cancel()

	hub.Publish("note-1", "summary_ready")

	select {
	case ev := <-events:
		t.Errorf("expected no event after cancel, got %+v", ev)
	default:
	}
}
