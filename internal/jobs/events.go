package jobs

import (
	"sync"
	"time"
)

// EventType classifies messages emitted during job execution.
type EventType string

const (
	EventTypeStage     EventType = "stage"
	EventTypeCompleted EventType = "completed"
	EventTypeFailed    EventType = "failed"
)

// Terminal reports whether no further events follow for the job.
func (t EventType) Terminal() bool {
	return t == EventTypeCompleted || t == EventTypeFailed
}

// Event is a sequenced payload consumed by subscribers.
type Event struct {
	Seq       int64     `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	JobID     string    `json:"jobId"`
	Type      EventType `json:"type"`
	Stage     string    `json:"stage,omitempty"`
	Status    Status    `json:"status,omitempty"`
	PDFURL    string    `json:"pdfUrl,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// defaultMaxEvents bounds the replay buffer when none is given.
const defaultMaxEvents = 500

// subscriberBuffer is the per-subscriber channel capacity. A subscriber that
// falls this far behind misses live events but can catch up with Since.
const subscriberBuffer = 32

// Bus stores recent events and fans them out to per-job subscribers.
type Bus struct {
	mu        sync.RWMutex
	nextSeq   int64
	maxEvents int
	events    []Event
	subs      map[string]map[chan Event]struct{}
}

// NewBus creates a bounded in-memory event buffer.
func NewBus(maxEvents int) *Bus {
	if maxEvents <= 0 {
		maxEvents = defaultMaxEvents
	}

	return &Bus{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
		subs:      make(map[string]map[chan Event]struct{}),
	}
}

// Publish appends one event, assigns sequence and timestamp, and delivers
// it to the job's subscribers without blocking.
func (b *Bus) Publish(event Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	event.Seq = b.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.events = append(b.events, event)
	if len(b.events) > b.maxEvents {
		trim := len(b.events) - b.maxEvents
		b.events = append([]Event(nil), b.events[trim:]...)
	}

	for ch := range b.subs[event.JobID] {
		select {
		case ch <- event:
		default:
		}
	}

	return event
}

// Since returns the job's events with sequence strictly greater than seq.
func (b *Bus) Since(jobID string, seq int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.since(jobID, seq)
}

func (b *Bus) since(jobID string, seq int64) []Event {
	var out []Event
	for _, event := range b.events {
		if event.JobID == jobID && event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}

// Subscribe returns the job's buffered events and a channel of later ones.
// No event is both replayed and delivered, and none falls between them.
// The cancel func must be called to release the subscription.
func (b *Bus) Subscribe(jobID string) (replay []Event, events <-chan Event, cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if b.subs[jobID] == nil {
		b.subs[jobID] = make(map[chan Event]struct{})
	}
	b.subs[jobID][ch] = struct{}{}

	var once sync.Once
	cancel = func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[jobID], ch)
			if len(b.subs[jobID]) == 0 {
				delete(b.subs, jobID)
			}
		})
	}
	return b.since(jobID, 0), ch, cancel
}

// Subscribers returns the number of live subscriptions for a job.
func (b *Bus) Subscribers(jobID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[jobID])
}
