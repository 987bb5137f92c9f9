package stream

import (
	"testing"
	"time"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus(10)

	ch := bus.Subscribe()

	event := Event{
		Type:           EventProcessingStarted,
		ConversationID: "conv-1",
		Data:           ProcessingData{Status: "Thinking...", QueuePosition: 2},
		Timestamp:      time.Now(),
	}
	bus.Publish(event)

	select {
	case received := <-ch:
		if received.Type != EventProcessingStarted {
			t.Errorf("expected type=%s, got %s", EventProcessingStarted, received.Type)
		}
		if received.ConversationID != "conv-1" {
			t.Errorf("expected conversation=conv-1, got %s", received.ConversationID)
		}
		data, ok := received.Data.(ProcessingData)
		if !ok {
			t.Fatalf("expected ProcessingData payload, got %T", received.Data)
		}
		if data.QueuePosition != 2 {
			t.Errorf("expected queue position 2, got %d", data.QueuePosition)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	// Unsubscribe closes the channel
	bus.Unsubscribe(ch)
	_, ok := <-ch
	if ok {
		t.Error("expected channel to be closed")
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus(10)

	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()

	bus.Publish(Event{Type: EventCompleted, ConversationID: "conv-1", Timestamp: time.Now()})

	select {
	case <-ch1:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("ch1 timeout")
	}

	select {
	case <-ch2:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("ch2 timeout")
	}

	bus.Close()
}

func TestEventBusNonBlocking(t *testing.T) {
	bus := NewEventBus(1)
	ch := bus.Subscribe()

	for len(ch) < cap(ch) {
		bus.Publish(Event{Type: EventProgress})
	}

	// This should not block (event dropped)
	done := make(chan bool)
	go func() {
		bus.Publish(Event{Type: EventCompleted})
		done <- true
	}()

	select {
	case <-done:
		// Good, didn't block
	case <-time.After(100 * time.Millisecond):
		t.Fatal("publish blocked")
	}

	<-ch
	bus.Close()
}

func TestEventBusClose(t *testing.T) {
	bus := NewEventBus(10)

	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()

	bus.Close()

	_, ok1 := <-ch1
	_, ok2 := <-ch2

	if ok1 || ok2 {
		t.Error("expected all channels to be closed")
	}
}
