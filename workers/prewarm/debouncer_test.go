package prewarm

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	events []struct {
		path      string
		eventType EventType
	}
}

func (r *recorder) record(path string, eventType EventType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, struct {
		path      string
		eventType EventType
	}{path, eventType})
}

func (r *recorder) snapshot() []struct {
	path      string
	eventType EventType
} {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]struct {
		path      string
		eventType EventType
	}, len(r.events))
	copy(out, r.events)
	return out
}

func TestDebouncerCoalescesRapidWrites(t *testing.T) {
	r := &recorder{}
	d := newDebouncer(50*time.Millisecond, r.record)
	defer d.Stop()

	// A document being copied in produces a burst of writes
	for i := 0; i < 5; i++ {
		d.Queue("docs/notes.pdf", EventWrite)
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	events := r.snapshot()
	if len(events) != 1 {
		t.Fatalf("expected 1 processed event, got %d", len(events))
	}
	if events[0].path != "docs/notes.pdf" {
		t.Errorf("expected path 'docs/notes.pdf', got %q", events[0].path)
	}
	if events[0].eventType != EventWrite {
		t.Errorf("expected EventWrite, got %v", events[0].eventType)
	}
}

func TestDebouncerDeleteIsImmediate(t *testing.T) {
	r := &recorder{}
	done := make(chan bool, 1)
	d := newDebouncer(100*time.Millisecond, func(path string, eventType EventType) {
		r.record(path, eventType)
		if eventType == EventDelete {
			done <- true
		}
	})
	defer d.Stop()

	d.Queue("docs/notes.pdf", EventDelete)

	select {
	case <-done:
	case <-time.After(50 * time.Millisecond):
		t.Error("delete was not processed immediately")
	}
}

func TestDebouncerDeleteCancelsPending(t *testing.T) {
	r := &recorder{}
	d := newDebouncer(50*time.Millisecond, r.record)
	defer d.Stop()

	d.Queue("docs/notes.pdf", EventWrite)
	d.Queue("docs/notes.pdf", EventDelete)

	time.Sleep(100 * time.Millisecond)

	events := r.snapshot()
	if len(events) != 1 {
		t.Fatalf("expected only the delete, got %d events", len(events))
	}
	if events[0].eventType != EventDelete {
		t.Errorf("expected EventDelete, got %v", events[0].eventType)
	}
}

func TestDebouncerCreateOverridesPendingWrite(t *testing.T) {
	r := &recorder{}
	d := newDebouncer(50*time.Millisecond, r.record)
	defer d.Stop()

	d.Queue("docs/notes.pdf", EventWrite)
	d.Queue("docs/notes.pdf", EventCreate)

	time.Sleep(100 * time.Millisecond)

	events := r.snapshot()
	if len(events) != 1 {
		t.Fatalf("expected 1 processed event, got %d", len(events))
	}
	if events[0].eventType != EventCreate {
		t.Errorf("create should win over a pending write, got %v", events[0].eventType)
	}
}

func TestDebouncerIndependentPaths(t *testing.T) {
	r := &recorder{}
	d := newDebouncer(50*time.Millisecond, r.record)
	defer d.Stop()

	d.Queue("docs/a.pdf", EventWrite)
	d.Queue("docs/b.pdf", EventWrite)

	if got := d.PendingCount(); got != 2 {
		t.Errorf("expected 2 pending events, got %d", got)
	}

	time.Sleep(100 * time.Millisecond)

	if len(r.snapshot()) != 2 {
		t.Errorf("expected both paths processed, got %d", len(r.snapshot()))
	}
	if got := d.PendingCount(); got != 0 {
		t.Errorf("expected empty queue after firing, got %d", got)
	}
}

func TestDebouncerStopRejectsNewEvents(t *testing.T) {
	r := &recorder{}
	d := newDebouncer(50*time.Millisecond, r.record)

	d.Queue("docs/a.pdf", EventWrite)
	d.Stop()

	if d.Queue("docs/b.pdf", EventWrite) {
		t.Error("Queue should reject events after Stop")
	}

	time.Sleep(100 * time.Millisecond)

	if len(r.snapshot()) != 0 {
		t.Errorf("stopped debouncer should fire nothing, got %d events", len(r.snapshot()))
	}
}
