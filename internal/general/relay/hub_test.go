package relay

import (
	"errors"
	"sync"
	"testing"

	"ride-share/internal/general/logger"
)

// fakeConn records everything written to it and can be told to fail writes.
type fakeConn struct {
	mu       sync.Mutex
	written  []any
	writeErr error
	closed   bool
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.written = append(c.written, v)
	return nil
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	return 0, nil, errors.New("closed")
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) messages() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]any, len(c.written))
	copy(out, c.written)
	return out
}

func newTestHub() *Hub {
	return NewHub(logger.New("relay-test"))
}

func TestBroadcastReachesTopicSubscribersOnly(t *testing.T) {
	hub := newTestHub()
	rider := &fakeConn{}
	driver := &fakeConn{}
	hub.Attach(rider, "rider:1")
	hub.Attach(driver, "driver:2")

	hub.Broadcast("rider:1", "hello")

	if got := rider.messages(); len(got) != 1 || got[0] != "hello" {
		t.Fatalf("rider got %v, want [hello]", got)
	}
	if got := driver.messages(); len(got) != 0 {
		t.Fatalf("driver got %v, want nothing", got)
	}
}

func TestBroadcastPreservesOrderPerTopic(t *testing.T) {
	hub := newTestHub()
	c := &fakeConn{}
	hub.Attach(c, "ride:7:driver:location")

	for i := 0; i < 5; i++ {
		hub.Broadcast("ride:7:driver:location", i)
	}

	got := c.messages()
	if len(got) != 5 {
		t.Fatalf("messages = %d, want 5", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("message %d = %v, want %d", i, v, i)
		}
	}
}

func TestBroadcastDropsOnWriteFailure(t *testing.T) {
	hub := newTestHub()
	broken := &fakeConn{writeErr: errors.New("write: broken pipe")}
	healthy := &fakeConn{}
	hub.Attach(broken, "rider:1")
	hub.Attach(healthy, "rider:1")

	hub.Broadcast("rider:1", "a")

	// the failed write evicts the subscriber from the topic and closes
	// its connection; the other subscriber keeps receiving
	if n := hub.Subscribers("rider:1"); n != 1 {
		t.Fatalf("subscribers after failed write = %d, want 1", n)
	}
	if !broken.closed {
		t.Fatal("failed subscriber's connection not closed")
	}

	hub.Broadcast("rider:1", "b")

	if got := broken.messages(); len(got) != 0 {
		t.Fatalf("broken got %v, want nothing", got)
	}
	if got := healthy.messages(); len(got) != 2 {
		t.Fatalf("healthy got %v, want 2 messages", got)
	}
}

func TestFailedWriteEvictsFromAllTopics(t *testing.T) {
	hub := newTestHub()
	broken := &fakeConn{writeErr: errors.New("write: broken pipe")}
	hub.Attach(broken, "rider:1", "drivers:available")

	hub.Broadcast("rider:1", "ping")

	if n := hub.Subscribers("rider:1"); n != 0 {
		t.Fatalf("rider:1 subscribers = %d, want 0", n)
	}
	if n := hub.Subscribers("drivers:available"); n != 0 {
		t.Fatalf("drivers:available subscribers = %d, want 0", n)
	}
	if !broken.closed {
		t.Fatal("evicted connection not closed")
	}
}

func TestAttachMultipleTopics(t *testing.T) {
	hub := newTestHub()
	c := &fakeConn{}
	hub.Attach(c, "driver:2", "drivers:available")

	hub.Broadcast("driver:2", "direct")
	hub.Broadcast("drivers:available", "feed")

	if got := c.messages(); len(got) != 2 {
		t.Fatalf("messages = %v, want 2", got)
	}
}

func TestDetachStopsDeliveryAndCloses(t *testing.T) {
	hub := newTestHub()
	c := &fakeConn{}
	sub := hub.Attach(c, "rider:1", "drivers:available")

	if n := hub.Subscribers("rider:1"); n != 1 {
		t.Fatalf("subscribers = %d, want 1", n)
	}

	hub.Detach(sub, "rider:1", "drivers:available")

	if n := hub.Subscribers("rider:1"); n != 0 {
		t.Fatalf("subscribers after detach = %d, want 0", n)
	}
	hub.Broadcast("rider:1", "late")
	if got := c.messages(); len(got) != 0 {
		t.Fatalf("detached conn got %v", got)
	}
	if !c.closed {
		t.Fatal("detach did not close the connection")
	}
}

func TestDetachLeavesOtherSubscribers(t *testing.T) {
	hub := newTestHub()
	a := &fakeConn{}
	b := &fakeConn{}
	subA := hub.Attach(a, "rider:1")
	hub.Attach(b, "rider:1")

	hub.Detach(subA, "rider:1")
	hub.Broadcast("rider:1", "still here")

	if got := b.messages(); len(got) != 1 {
		t.Fatalf("remaining subscriber got %v, want 1 message", got)
	}
}

func TestConcurrentBroadcastAndChurn(t *testing.T) {
	hub := newTestHub()
	stable := &fakeConn{}
	hub.Attach(stable, "drivers:available")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				hub.Broadcast("drivers:available", j)
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c := &fakeConn{}
				sub := hub.Attach(c, "drivers:available")
				hub.Detach(sub, "drivers:available")
			}
		}()
	}
	wg.Wait()

	if got := len(stable.messages()); got != 8*50 {
		t.Fatalf("stable subscriber got %d messages, want %d", got, 8*50)
	}
	if n := hub.Subscribers("drivers:available"); n != 1 {
		t.Fatalf("subscribers = %d, want 1", n)
	}
}
