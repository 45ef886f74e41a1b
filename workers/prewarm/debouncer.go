package prewarm

import (
	"sync"
	"sync/atomic"
	"time"
)

// EventType represents the type of filesystem event
type EventType int

const (
	EventCreate EventType = iota
	EventWrite
	EventDelete
)

// Default debounce delay for coalescing rapid filesystem events. Documents
// arrive through copies and editors that emit bursts of writes; pre-warming
// should only run once the file has settled.
const DefaultDebounceDelay = 150 * time.Millisecond

// String returns the string representation of an EventType
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventWrite:
		return "write"
	case EventDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// debouncer coalesces rapid filesystem events so each document is processed
// once after a quiet period. DELETE events are processed immediately and
// cancel any pending event for the same path.
type debouncer struct {
	pending   map[string]*pendingEvent
	mu        sync.Mutex
	delay     time.Duration
	onProcess func(path string, eventType EventType)
	stopping  atomic.Bool
}

type pendingEvent struct {
	path      string
	timer     *time.Timer
	eventType EventType
}

func newDebouncer(delay time.Duration, onProcess func(path string, eventType EventType)) *debouncer {
	return &debouncer{
		pending:   make(map[string]*pendingEvent),
		delay:     delay,
		onProcess: onProcess,
	}
}

// Queue adds an event to the debounce queue. DELETE events are processed
// immediately; CREATE/WRITE events wait for the debounce delay, and new
// events for the same path reset the timer. Returns false if the debouncer
// is stopping and the event was ignored.
func (d *debouncer) Queue(path string, eventType EventType) bool {
	if d.stopping.Load() {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Double-check after acquiring lock (prevents race with Stop)
	if d.stopping.Load() {
		return false
	}

	if eventType == EventDelete {
		if p, ok := d.pending[path]; ok {
			p.timer.Stop()
			delete(d.pending, path)
		}
		go d.onProcess(path, EventDelete)
		return true
	}

	if p, ok := d.pending[path]; ok {
		// CREATE takes precedence over an already-pending WRITE
		if eventType == EventCreate {
			p.eventType = EventCreate
		}
		if p.timer.Reset(d.delay) {
			return true
		}
		// Timer already fired; fall through and re-arm as a new event
	}

	p := &pendingEvent{path: path, eventType: eventType}
	p.timer = time.AfterFunc(d.delay, func() {
		d.fire(path)
	})
	d.pending[path] = p
	return true
}

// fire delivers a settled event and removes it from the pending set
func (d *debouncer) fire(path string) {
	d.mu.Lock()
	p, ok := d.pending[path]
	if ok {
		delete(d.pending, path)
	}
	d.mu.Unlock()

	if ok && !d.stopping.Load() {
		d.onProcess(p.path, p.eventType)
	}
}

// PendingCount returns the number of queued events
func (d *debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop cancels all pending timers and rejects further events
func (d *debouncer) Stop() {
	d.stopping.Store(true)

	d.mu.Lock()
	defer d.mu.Unlock()
	for path, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, path)
	}
}
