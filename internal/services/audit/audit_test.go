package audit

import (
	"sync"
	"testing"
	"time"
)

type captureSink struct {
	mu  sync.Mutex
	evs []Event
}

func (c *captureSink) Record(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evs = append(c.evs, ev)
}

func (c *captureSink) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.evs)
}

type blockingSink struct{ release chan struct{} }

func (b *blockingSink) Record(Event) { <-b.release }

func TestNewEventStampsIDAndTime(t *testing.T) {
	ev := NewEvent(Event{Provider: "anvil", Outcome: OutcomeResolutionSucceeded})
	if ev.ID == "" {
		t.Fatalf("id should be stamped")
	}
	if ev.At.IsZero() {
		t.Fatalf("time should be stamped")
	}

	fixed := Event{ID: "keep", At: time.Unix(100, 0)}
	if got := NewEvent(fixed); got.ID != "keep" || !got.At.Equal(time.Unix(100, 0)) {
		t.Fatalf("existing stamps must be preserved: %+v", got)
	}
}

func TestAsyncSinkForwards(t *testing.T) {
	inner := &captureSink{}
	s := NewAsyncSink(inner, 8)

	s.Record(Event{Provider: "anvil", Outcome: OutcomeSignedURLIssued})
	s.Record(Event{Provider: "crdc", Outcome: OutcomeResolutionFailed})
	s.Close()

	if inner.len() != 2 {
		t.Fatalf("forwarded %d events, want 2", inner.len())
	}
}

func TestAsyncSinkNeverBlocks(t *testing.T) {
	blocked := &blockingSink{release: make(chan struct{})}
	s := NewAsyncSink(blocked, 1)

	done := make(chan struct{})
	go func() {
		// worker is stuck in the inner sink; buffer of 1 fills, extras drop
		for i := 0; i < 50; i++ {
			s.Record(Event{Provider: "anvil"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Record blocked on a slow sink")
	}
	close(blocked.release)
}
