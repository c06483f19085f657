package eeg

import "testing"

func TestHubPublish(t *testing.T) {
	h := NewHub(1)
	a, closeA := h.Subscribe()
	b, closeB := h.Subscribe()
	defer closeB()

	if n := h.Publish([]byte("one")); n != 2 {
		t.Fatalf("delivered to %d, want 2", n)
	}
	if got := string(<-a); got != "one" {
		t.Fatalf("a got %q", got)
	}

	// b has not drained its buffer, so the next message is dropped for it.
	if n := h.Publish([]byte("two")); n != 1 {
		t.Fatalf("delivered to %d, want 1", n)
	}
	if got := string(<-b); got != "one" {
		t.Fatalf("b got %q", got)
	}

	closeA()
	closeA()
	if h.Subscribers() != 1 {
		t.Fatalf("subscribers = %d", h.Subscribers())
	}
	if got := string(<-a); got != "two" {
		t.Fatalf("a got %q", got)
	}
	if _, ok := <-a; ok {
		t.Fatal("channel should be closed")
	}
}

func TestHubClose(t *testing.T) {
	h := NewHub(1)
	a, release := h.Subscribe()
	h.Close()
	if _, ok := <-a; ok {
		t.Fatal("subscription should end when the hub closes")
	}
	release()

	late, _ := h.Subscribe()
	if _, ok := <-late; ok {
		t.Fatal("subscribing to a closed hub should return a closed channel")
	}
	if n := h.Publish([]byte("x")); n != 0 {
		t.Errorf("delivered to %d after close", n)
	}
}
